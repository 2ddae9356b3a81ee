package test

import (
	"fmt"

	"github.com/nguyenkha/demo-mpc/internal/mta"
	"github.com/nguyenkha/demo-mpc/internal/parallel"
	"github.com/nguyenkha/demo-mpc/pkg/ecdsa"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/sign"
)

// signerKeys returns the keys of signers, in the order of signers.
func signerKeys(keys []*config.LocalKey, signers party.IDSlice) ([]*config.LocalKey, error) {
	out := make([]*config.LocalKey, len(signers))
	for i, id := range signers {
		if id.Index() < 0 || id.Index() >= len(keys) || keys[id.Index()] == nil {
			return nil, fmt.Errorf("test: no key for party %d", id)
		}
		out[i] = keys[id.Index()]
	}
	return out, nil
}

// peerPosition returns the position of to among the peers of from.
func peerPosition(signers party.IDSlice, from, to party.ID) int {
	peers, _ := signers.Peers(from)
	j, _ := peers.Position(to)
	return j
}

// Offline runs stages 1 to 7 between signers, and returns their states indexed by signer position.
// keys is indexed by party.ID.Index.
func Offline(keys []*config.LocalKey, signers party.IDSlice, rule Rule) ([]*sign.Round7, error) {
	signerKey, err := signerKeys(keys, signers)
	if err != nil {
		return nil, err
	}
	m := len(signers)
	position := func(id party.ID) int { return signers.Position(id) }

	round1 := make([]*sign.Round1, m)
	if err = parallel.ForEach(m, func(i int) (err error) {
		round1[i], err = sign.Start(signerKey[i], signers)
		return
	}); err != nil {
		return nil, err
	}

	round2 := make([]*sign.Round2, m)
	if err = parallel.ForEach(m, func(i int) error {
		messageAs, err := gatherPeers(rule, protocol.SignStage1, round1[i].Peers(), func(from party.ID) *sign.MessageA {
			return round1[position(from)].MessageA()
		})
		if err != nil {
			return err
		}
		round2[i], err = round1[i].Next(messageAs)
		return err
	}); err != nil {
		return nil, err
	}

	round3 := make([]*sign.Round3, m)
	if err = parallel.ForEach(m, func(i int) error {
		self := signers[i]
		peers := round1[i].Peers()
		bGammas, err := gatherPeers(rule, protocol.SignStage2, peers, func(from party.ID) *mta.MessageB {
			return round2[position(from)].MessageBGamma(peerPosition(signers, from, self))
		})
		if err != nil {
			return err
		}
		bWs, err := gatherPeers(rule, protocol.SignStage2, peers, func(from party.ID) *mta.MessageB {
			return round2[position(from)].MessageBW(peerPosition(signers, from, self))
		})
		if err != nil {
			return err
		}
		round3[i], err = round2[i].Next(bGammas, bWs)
		return err
	}); err != nil {
		return nil, err
	}

	round4 := make([]*sign.Round4, m)
	if err = parallel.ForEach(m, func(i int) error {
		deltas, err := gather(rule, protocol.SignStage3, signers, signers[i], func(j int) *curve.Scalar {
			return round3[j].DeltaI()
		})
		if err != nil {
			return err
		}
		tProofs, err := gather(rule, protocol.SignStage3, signers, signers[i], func(j int) *sign.TProof {
			return round3[j].TProof()
		})
		if err != nil {
			return err
		}
		round4[i], err = round3[i].Next(deltas, tProofs)
		return err
	}); err != nil {
		return nil, err
	}

	round5 := make([]*sign.Round5, m)
	if err = parallel.ForEach(m, func(i int) error {
		commitments, err := gather(rule, protocol.SignStage1, signers, signers[i], func(j int) *sign.BroadcastMessage {
			return round1[j].Broadcast()
		})
		if err != nil {
			return err
		}
		decommits, err := gather(rule, protocol.SignStage4, signers, signers[i], func(j int) *sign.DecommitMessage {
			return round1[j].Decommit()
		})
		if err != nil {
			return err
		}
		round5[i], err = round4[i].Next(commitments, decommits)
		return err
	}); err != nil {
		return nil, err
	}

	round6 := make([]*sign.Round6, m)
	if err = parallel.ForEach(m, func(i int) error {
		rDashes, err := gather(rule, protocol.SignStage5, signers, signers[i], func(j int) *curve.Point {
			return round5[j].RDash()
		})
		if err != nil {
			return err
		}
		proofs, err := gather(rule, protocol.SignStage5, signers, signers[i], func(j int) sign.LogStarProofs {
			return round5[j].Proofs()
		})
		if err != nil {
			return err
		}
		round6[i], err = round5[i].Next(rDashes, proofs)
		return err
	}); err != nil {
		return nil, err
	}

	round7 := make([]*sign.Round7, m)
	if err = parallel.ForEach(m, func(i int) error {
		ss, err := gather(rule, protocol.SignStage6, signers, signers[i], func(j int) *curve.Point {
			return round6[j].SI()
		})
		if err != nil {
			return err
		}
		hegProofs, err := gather(rule, protocol.SignStage6, signers, signers[i], func(j int) *sign.HEGProof {
			return round6[j].HEGProof()
		})
		if err != nil {
			return err
		}
		round7[i], err = round6[i].Next(ss, hegProofs)
		return err
	}); err != nil {
		return nil, err
	}
	return round7, nil
}

// Online runs stages 8 and 9 from completed offline stages, indexed by signer position.
func Online(offline []*sign.Round7, digest []byte, rule Rule) ([]*ecdsa.Signature, error) {
	m := len(offline)
	signers := make(party.IDSlice, m)
	for i, r := range offline {
		signers[i] = r.Offline().ID
	}

	round8 := make([]*sign.Round8, m)
	if err := parallel.ForEach(m, func(i int) (err error) {
		round8[i], err = offline[i].Next(digest)
		return
	}); err != nil {
		return nil, err
	}

	signatures := make([]*ecdsa.Signature, m)
	if err := parallel.ForEach(m, func(i int) error {
		peers, err := signers.Peers(signers[i])
		if err != nil {
			return err
		}
		partials, err := gatherPeers(rule, protocol.SignStage8, peers, func(from party.ID) *sign.PartialSignature {
			return round8[signers.Position(from)].PartialSignature()
		})
		if err != nil {
			return err
		}
		round9, err := round8[i].Next(partials)
		if err != nil {
			return err
		}
		signatures[i] = round9.Signature()
		return nil
	}); err != nil {
		return nil, err
	}
	return signatures, nil
}

// Sign runs all the signing stages between signers for digest.
func Sign(keys []*config.LocalKey, signers party.IDSlice, digest []byte, rule Rule) ([]*ecdsa.Signature, error) {
	offline, err := Offline(keys, signers, rule)
	if err != nil {
		return nil, err
	}
	return Online(offline, digest, rule)
}
