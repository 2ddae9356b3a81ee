package gg20_test

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/internal/mta"
	"github.com/nguyenkha/demo-mpc/internal/test"
	"github.com/nguyenkha/demo-mpc/pkg/ecdsa"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/pool"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	"github.com/nguyenkha/demo-mpc/pkg/vss"
	"github.com/nguyenkha/demo-mpc/protocols/gg20"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/keygen"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/sign"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// call runs name through the serialized boundary and decodes its output.
func call[O, I any](caller *gg20.Caller, name protocol.Stage, in *I) *O {
	GinkgoHelper()
	data, err := cbor.Marshal(in)
	Expect(err).NotTo(HaveOccurred())
	raw, err := caller.Call(name.String(), data)
	Expect(err).NotTo(HaveOccurred(), "stage %s", name)
	out := new(O)
	Expect(cbor.Unmarshal(raw, out)).To(Succeed())
	return out
}

// keygenCall runs all four key generation stages between parameters.ShareCount parties.
func keygenCall(caller *gg20.Caller, parameters config.Parameters) []*config.LocalKey {
	GinkgoHelper()
	n := parameters.ShareCount
	parties := party.NewIDSlice(n)

	out1 := make([]*keygen.Stage1Output, n)
	for i, id := range parties {
		out1[i] = call[keygen.Stage1Output](caller, protocol.KeyGenStage1, &keygen.Stage1Input{ID: id})
	}
	broadcasts := make([]*keygen.BroadcastMessage1, n)
	decommits := make([]*keygen.DecommitMessage1, n)
	ys := make([]*curve.Point, n)
	for j := range parties {
		broadcasts[j], decommits[j], ys[j] = out1[j].Broadcast, out1[j].Decommit, out1[j].Decommit.Y
	}

	out2 := make([]*keygen.Stage2Output, n)
	for i := range parties {
		out2[i] = call[keygen.Stage2Output](caller, protocol.KeyGenStage2, &keygen.Stage2Input{
			Keys:       out1[i].Keys,
			Broadcasts: broadcasts,
			Decommits:  decommits,
			Parameters: parameters,
		})
	}
	schemes := make([]*vss.Scheme, n)
	for j := range parties {
		schemes[j] = out2[j].Scheme
	}

	out3 := make([]*keygen.Stage3Output, n)
	for i := range parties {
		shares := make([]*curve.Scalar, n)
		for j := range parties {
			shares[j] = out2[j].Shares[i]
		}
		out3[i] = call[keygen.Stage3Output](caller, protocol.KeyGenStage3, &keygen.Stage3Input{
			Keys:       out1[i].Keys,
			Ys:         ys,
			Schemes:    schemes,
			Shares:     shares,
			Parameters: parameters,
		})
	}
	proofs := make([]*keygen.DLogProof, n)
	for j := range parties {
		proofs[j] = out3[j].DLogProof
	}

	keys := make([]*config.LocalKey, n)
	for i := range parties {
		out := call[gg20.KeyGenStage4Output](caller, protocol.KeyGenStage4, &gg20.KeyGenStage4Input{
			Stage4Input: keygen.Stage4Input{Ys: ys, Schemes: schemes, Proofs: proofs, Parameters: parameters},
			Assemble: &keygen.AssembleInput{
				Keys:       out1[i].Keys,
				Parameters: parameters,
				Broadcasts: broadcasts,
				Scheme:     out2[i].Scheme,
				SharedKeys: out3[i].SharedKeys,
				Proofs:     proofs,
			},
		})
		Expect(out.LocalKey).NotTo(BeNil())
		keys[i] = out.LocalKey
	}
	return keys
}

// signCall runs the nine signing stages between signers, and returns the signature of every signer.
func signCall(caller *gg20.Caller, keys []*config.LocalKey, signers party.IDSlice, digest []byte) []*ecdsa.Signature {
	GinkgoHelper()
	m := len(signers)
	key := func(i int) *config.LocalKey { return keys[signers[i].Index()] }
	peersOf := func(i int) party.Peers {
		peers, err := signers.Peers(signers[i])
		Expect(err).NotTo(HaveOccurred())
		return peers
	}
	// positionAmongPeers returns the position of to among the peers of from.
	positionAmongPeers := func(from, to party.ID) int {
		peers, err := signers.Peers(from)
		Expect(err).NotTo(HaveOccurred())
		j, ok := peers.Position(to)
		Expect(ok).To(BeTrue())
		return j
	}

	out1 := make([]*sign.Stage1Output, m)
	for i := range signers {
		out1[i] = call[sign.Stage1Output](caller, protocol.SignStage1, &sign.Stage1Input{Key: key(i), Signers: signers})
	}

	out2 := make([]*sign.Stage2Output, m)
	for i := range signers {
		peers := peersOf(i)
		messageAs := make([]*sign.MessageA, peers.Len())
		for p := range messageAs {
			messageAs[p] = out1[signers.Position(peers.At(p))].MessageA
		}
		out2[i] = call[sign.Stage2Output](caller, protocol.SignStage2, &sign.Stage2Input{
			Key: key(i), Signers: signers, SignKeys: out1[i].SignKeys, MessageAs: messageAs,
		})
	}

	bGammas := make([][]*mta.MessageB, m)
	out3 := make([]*sign.Stage3Output, m)
	for i, self := range signers {
		peers := peersOf(i)
		bGammas[i] = make([]*mta.MessageB, peers.Len())
		bWs := make([]*mta.MessageB, peers.Len())
		for p := range bWs {
			from := peers.At(p)
			sent := out2[signers.Position(from)]
			bGammas[i][p] = sent.MessageBGammas[positionAmongPeers(from, self)]
			bWs[p] = sent.MessageBWs[positionAmongPeers(from, self)]
		}
		out3[i] = call[sign.Stage3Output](caller, protocol.SignStage3, &sign.Stage3Input{
			Key: key(i), Signers: signers, SignKeys: out1[i].SignKeys,
			Betas: out2[i].Betas, Nus: out2[i].Nus,
			MessageBGammas: bGammas[i], MessageBWs: bWs,
		})
	}

	deltas := make([]*curve.Scalar, m)
	ts := make([]*curve.Point, m)
	tProofs := make([]*sign.TProof, m)
	commitments := make([]*sign.BroadcastMessage, m)
	decommits := make([]*sign.DecommitMessage, m)
	messageAs := make([]*sign.MessageA, m)
	for j := range signers {
		deltas[j], ts[j], tProofs[j] = out3[j].DeltaI, out3[j].TProof.T, out3[j].TProof
		commitments[j], decommits[j], messageAs[j] = out1[j].Broadcast, out1[j].Decommit, out1[j].MessageA
	}

	out5 := make([]*sign.Stage5Output, m)
	for i := range signers {
		out4 := call[sign.Stage4Output](caller, protocol.SignStage4, &sign.Stage4Input{
			Signers: signers, Deltas: deltas, Ts: ts, TProofs: tProofs,
		})
		out5[i] = call[sign.Stage5Output](caller, protocol.SignStage5, &sign.Stage5Input{
			Key: key(i), Signers: signers, SignKeys: out1[i].SignKeys,
			MessageBGammas: bGammas[i],
			Commitments:    commitments,
			Decommits:      decommits,
			DeltaInv:       out4.DeltaInv,
		})
	}

	rDashes := make([]*curve.Point, m)
	logStar := make([]sign.LogStarProofs, m)
	for j := range signers {
		rDashes[j], logStar[j] = out5[j].RDash, out5[j].Proofs
	}
	out6 := make([]*sign.Stage6Output, m)
	for i := range signers {
		out6[i] = call[sign.Stage6Output](caller, protocol.SignStage6, &sign.Stage6Input{
			Key: key(i), Signers: signers, MessageAs: messageAs,
			R: out5[i].R, RDashes: rDashes, Proofs: logStar,
			TI: out3[i].TI, LI: out3[i].LI, SigmaI: out3[i].SigmaI,
		})
	}

	ss := make([]*curve.Point, m)
	hegProofs := make([]*sign.HEGProof, m)
	for j := range signers {
		ss[j], hegProofs[j] = out6[j].SI, out6[j].HEGProof
	}
	out8 := make([]*gg20.SignStage8Output, m)
	for i, self := range signers {
		offline := &sign.CompletedOfflineStage{
			ID: self, Signers: signers, LocalKey: key(i), SignKeys: out1[i].SignKeys,
			Ts: ts, R: out5[i].R, RDashes: rDashes, SigmaI: out3[i].SigmaI,
		}
		call[sign.Stage7Output](caller, protocol.SignStage7, &sign.Stage7Input{
			Signers: signers, Ss: ss, HEGProofs: hegProofs, Offline: offline,
		})
		offline.Ss = ss
		out8[i] = call[gg20.SignStage8Output](caller, protocol.SignStage8, &sign.Stage8Input{Offline: offline, Digest: digest})
		Expect(out8[i].Offline.SignKeys.Consumed()).To(BeTrue())
	}

	signatures := make([]*ecdsa.Signature, m)
	for i := range signers {
		peers := peersOf(i)
		partials := make([]*sign.PartialSignature, peers.Len())
		for p := range partials {
			partials[p] = out8[signers.Position(peers.At(p))].PartialSignature
		}
		out9 := call[sign.Stage9Output](caller, protocol.SignStage9, &sign.Stage9Input{
			LocalSignature: out8[i].LocalSignature, PartialSignatures: partials,
		})
		signatures[i] = out9.Signature
	}
	return signatures
}

func expectValid(signatures []*ecdsa.Signature, public *curve.Point, digest []byte) {
	GinkgoHelper()
	Expect(signatures).NotTo(BeEmpty())
	for _, sig := range signatures {
		Expect(sig.Verify(public, digest)).To(BeTrue())
		Expect(sig.S.IsOverHalfOrder()).To(BeFalse())
		Expect(sig.R.Equal(signatures[0].R)).To(BeTrue())
		Expect(sig.S.Equal(signatures[0].S)).To(BeTrue())
	}
	recovered, err := signatures[0].RecoverPublicKey(digest)
	Expect(err).NotTo(HaveOccurred())
	Expect(recovered.Equal(public)).To(BeTrue())
}

var _ = Describe("GG20", func() {
	var pl *pool.Pool

	BeforeEach(func() {
		pl = pool.NewPool(0)
	})

	AfterEach(func() {
		pl.TearDown()
	})

	Describe("threshold signing", func() {
		DescribeTable("any t+1 signers produce a valid signature",
			func(t, n int, signerSets ...party.IDSlice) {
				keys, err := config.FakeData(config.Parameters{Threshold: t, ShareCount: n}, rand.Reader, pl)
				Expect(err).NotTo(HaveOccurred())
				digest := sha256.Sum256([]byte("hello"))
				for _, signers := range signerSets {
					By(fmt.Sprint("signing with ", signers))
					sigs, err := test.Sign(keys, signers, digest[:], nil)
					Expect(err).NotTo(HaveOccurred())
					expectValid(sigs, keys[0].PublicKey(), digest[:])
				}
			},
			Entry("1-of-2", 1, 2, party.IDSlice{1, 2}, party.IDSlice{2, 1}),
			Entry("2-of-3", 1, 3, party.IDSlice{1, 2}, party.IDSlice{3, 1}, party.IDSlice{2, 3}),
			Entry("3-of-3", 2, 3, party.IDSlice{1, 2, 3}, party.IDSlice{3, 2, 1}),
			Entry("3-of-4", 2, 4, party.IDSlice{2, 3, 4}, party.IDSlice{4, 1, 3}),
			Entry("4-of-5", 3, 5, party.IDSlice{5, 4, 3, 2}, party.IDSlice{1, 3, 5, 2}),
		)

		It("signs Keccak-256 digests", func() {
			keys, err := config.FakeData(config.Parameters{Threshold: 1, ShareCount: 2}, rand.Reader, pl)
			Expect(err).NotTo(HaveOccurred())
			digest := ecdsa.Keccak256([]byte("hello"))
			sigs, err := test.Sign(keys, party.IDSlice{2, 1}, digest, nil)
			Expect(err).NotTo(HaveOccurred())
			expectValid(sigs, keys[0].PublicKey(), digest)
			eth, err := sigs[0].SigEthereum()
			Expect(err).NotTo(HaveOccurred())
			Expect(eth).To(HaveLen(ecdsa.CompactLength))
		})
	})

	Describe("the serialized boundary", Ordered, func() {
		var (
			caller *gg20.Caller
			keys   []*config.LocalKey
		)

		BeforeAll(func() {
			caller = &gg20.Caller{Pool: pool.NewPool(0)}
			DeferCleanup(caller.Pool.TearDown)
			keys = keygenCall(caller, config.Parameters{Threshold: 1, ShareCount: 3})
		})

		It("generates consistent keys", func() {
			Expect(keys).To(HaveLen(3))
			for _, key := range keys {
				Expect(key.Validate()).To(Succeed())
				Expect(key.PublicKey().Equal(keys[0].PublicKey())).To(BeTrue())
			}
		})

		It("reconstructs the same secret from any pair", func() {
			var first *curve.Scalar
			for _, ids := range []party.IDSlice{{1, 2}, {2, 3}, {3, 1}} {
				shares := make([]*curve.Scalar, len(ids))
				for i, id := range ids {
					shares[i] = keys[id.Index()].SharedKeys.XI
				}
				out := call[gg20.ConstructPrivateKeyOutput](caller, protocol.ConstructPrivateKey, &gg20.ConstructPrivateKeyInput{
					Scheme: keys[0].VSS, Parties: ids, Shares: shares,
				})
				Expect(out.Secret.ActOnBase().Equal(keys[0].PublicKey())).To(BeTrue())
				if first == nil {
					first = out.Secret
				}
				Expect(out.Secret.Equal(first)).To(BeTrue())
			}
		})

		It("signs with every stage called by name", func() {
			digest := sha256.Sum256([]byte("hello"))
			for _, signers := range []party.IDSlice{{1, 3}, {3, 2}} {
				expectValid(signCall(caller, keys, signers, digest[:]), keys[0].PublicKey(), digest[:])
			}
		})

		It("signs with tweaked keys", func() {
			il := curve.FromHash(ecdsa.Keccak256([]byte("tweak")))
			tweaked := make([]*config.LocalKey, len(keys))
			for i, key := range keys {
				out := call[gg20.TweakKeyOutput](caller, protocol.TweakKey, &gg20.TweakKeyInput{
					Index: key.ID, LocalKey: key, IL: il,
				})
				tweaked[i] = out.NewLocalKey
			}
			expected := curve.NewIdentityPoint().Add(keys[0].PublicKey(), il.ActOnBase())
			Expect(tweaked[0].PublicKey().Equal(expected)).To(BeTrue())

			digest := sha256.Sum256([]byte("tweaked"))
			expectValid(signCall(caller, tweaked, party.IDSlice{2, 3}, digest[:]), expected, digest[:])
		})

		It("rejects unknown stages and malformed input", func() {
			_, err := caller.Call("sign_stage10", nil)
			Expect(err).To(MatchError(gg20.ErrUnknownStage))

			_, err = gg20.Call(protocol.SignStage1.String(), []byte{0xff, 0x00})
			Expect(err).To(MatchError(protocol.ErrMalformed))

			data, err := cbor.Marshal(&sign.Stage8Input{Digest: make([]byte, 32)})
			Expect(err).NotTo(HaveOccurred())
			_, err = gg20.Call(protocol.SignStage8.String(), data)
			Expect(err).To(MatchError(protocol.ErrMalformed))

			data, err = cbor.Marshal(&gg20.ConstructPrivateKeyInput{
				Scheme: keys[0].VSS, Parties: party.IDSlice{1}, Shares: []*curve.Scalar{keys[0].SharedKeys.XI},
			})
			Expect(err).NotTo(HaveOccurred())
			_, err = gg20.Call(protocol.ConstructPrivateKey.String(), data)
			Expect(err).To(MatchError(protocol.ErrShape))
			Expect(err).To(MatchError(vss.ErrNotEnoughShares))
		})

		It("handles every stage name", func() {
			for _, s := range protocol.Stages {
				_, err := gg20.Call(s.String(), []byte{0xa0})
				Expect(err).To(HaveOccurred())
				Expect(err).NotTo(MatchError(gg20.ErrUnknownStage), "stage %s", s)
			}
		})
	})
})
