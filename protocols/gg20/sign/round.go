package sign

import (
	"github.com/nguyenkha/demo-mpc/internal/mta"
	"github.com/nguyenkha/demo-mpc/pkg/ecdsa"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
)

var (
	_ protocol.State = (*Round1)(nil)
	_ protocol.State = (*Round2)(nil)
	_ protocol.State = (*Round3)(nil)
	_ protocol.State = (*Round4)(nil)
	_ protocol.State = (*Round5)(nil)
	_ protocol.State = (*Round6)(nil)
	_ protocol.State = (*Round7)(nil)
	_ protocol.State = (*Round8)(nil)
	_ protocol.State = (*Round9)(nil)
)

// withSelf inserts own at the position of the caller in a vector indexed by peers.
func withSelf[T any](peers party.Peers, own T, others []T) []T {
	all := make([]T, 0, len(others)+1)
	all = append(all, others[:peers.SelfPosition()]...)
	all = append(all, own)
	return append(all, others[peers.SelfPosition():]...)
}

// Round1 is the state of a signer after Stage1.
type Round1 struct {
	key     *config.LocalKey
	signers party.IDSlice
	peers   party.Peers
	out     *Stage1Output
}

// Start runs Stage1 for key with the given signer set.
func Start(key *config.LocalKey, signers party.IDSlice) (*Round1, error) {
	signers = signers.Copy()
	out, err := Stage1(&Stage1Input{Key: key, Signers: signers})
	if err != nil {
		return nil, err
	}
	peers, _ := signers.Peers(key.ID)
	return &Round1{key: key, signers: signers, peers: peers, out: out}, nil
}

func (*Round1) Stage() protocol.Stage { return protocol.SignStage1 }

func (r *Round1) SignKeys() *SignKeys          { return r.out.SignKeys }
func (r *Round1) Broadcast() *BroadcastMessage { return r.out.Broadcast }
func (r *Round1) Decommit() *DecommitMessage   { return r.out.Decommit }
func (r *Round1) MessageA() *MessageA          { return r.out.MessageA }
func (r *Round1) Peers() party.Peers           { return r.peers }
func (r *Round1) Signers() party.IDSlice       { return r.signers }
func (r *Round1) LocalKey() *config.LocalKey   { return r.key }

// Next runs Stage2 on the MessageA of every peer.
func (r *Round1) Next(messageAs []*MessageA) (*Round2, error) {
	out, err := Stage2(&Stage2Input{
		Key:       r.key,
		Signers:   r.signers,
		SignKeys:  r.out.SignKeys,
		MessageAs: messageAs,
	})
	if err != nil {
		return nil, err
	}
	return &Round2{Round1: r, messageAs: withSelf(r.peers, r.out.MessageA, messageAs), out: out}, nil
}

// Round2 is the state of a signer after Stage2.
type Round2 struct {
	*Round1
	// messageAs is indexed by signer position
	messageAs []*MessageA
	out       *Stage2Output
}

func (*Round2) Stage() protocol.Stage { return protocol.SignStage2 }

// MessageBGamma returns the answer to the K of the j-th peer, for γᵢ.
func (r *Round2) MessageBGamma(j int) *mta.MessageB { return r.out.MessageBGammas[j] }

// MessageBW returns the answer to the K of the j-th peer, for wᵢ.
func (r *Round2) MessageBW(j int) *mta.MessageB { return r.out.MessageBWs[j] }

// Next runs Stage3 on the MtA responses addressed to this party by every peer.
func (r *Round2) Next(bGammas, bWs []*mta.MessageB) (*Round3, error) {
	out, err := Stage3(&Stage3Input{
		Key:            r.key,
		Signers:        r.signers,
		SignKeys:       r.Round1.out.SignKeys,
		Betas:          r.out.Betas,
		Nus:            r.out.Nus,
		MessageBGammas: bGammas,
		MessageBWs:     bWs,
	})
	if err != nil {
		return nil, err
	}
	return &Round3{Round2: r, bGammas: bGammas, out: out}, nil
}

// Round3 is the state of a signer after Stage3.
type Round3 struct {
	*Round2
	bGammas []*mta.MessageB
	out     *Stage3Output
}

func (*Round3) Stage() protocol.Stage { return protocol.SignStage3 }

func (r *Round3) DeltaI() *curve.Scalar { return r.out.DeltaI }
func (r *Round3) TProof() *TProof       { return r.out.TProof }

// Next runs Stage4 on the δⱼ and Tⱼ of every signer.
func (r *Round3) Next(deltas []*curve.Scalar, tProofs []*TProof) (*Round4, error) {
	ts := make([]*curve.Point, len(tProofs))
	for i, p := range tProofs {
		if p != nil {
			ts[i] = p.T
		}
	}
	out, err := Stage4(&Stage4Input{
		Signers: r.signers,
		Deltas:  deltas,
		Ts:      ts,
		TProofs: tProofs,
	})
	if err != nil {
		return nil, err
	}
	return &Round4{Round3: r, ts: ts, out: out}, nil
}

// Round4 is the state of a signer after Stage4.
type Round4 struct {
	*Round3
	ts  []*curve.Point
	out *Stage4Output
}

func (*Round4) Stage() protocol.Stage { return protocol.SignStage4 }

// Next runs Stage5 on the commitments of Stage1 and their openings, indexed by signer position.
func (r *Round4) Next(commitments []*BroadcastMessage, decommits []*DecommitMessage) (*Round5, error) {
	out, err := Stage5(&Stage5Input{
		Key:            r.key,
		Signers:        r.signers,
		SignKeys:       r.Round1.out.SignKeys,
		MessageBGammas: r.bGammas,
		Commitments:    commitments,
		Decommits:      decommits,
		DeltaInv:       r.out.DeltaInv,
	})
	if err != nil {
		return nil, err
	}
	return &Round5{Round4: r, out: out}, nil
}

// Round5 is the state of a signer after Stage5.
type Round5 struct {
	*Round4
	out *Stage5Output
}

func (*Round5) Stage() protocol.Stage { return protocol.SignStage5 }

func (r *Round5) R() *curve.Point       { return r.out.R }
func (r *Round5) RDash() *curve.Point   { return r.out.RDash }
func (r *Round5) Proofs() LogStarProofs { return r.out.Proofs }

// Next runs Stage6 on the R'ⱼ and log* proofs of every signer, indexed by signer position.
func (r *Round5) Next(rDashes []*curve.Point, proofs []LogStarProofs) (*Round6, error) {
	out, err := Stage6(&Stage6Input{
		Key:       r.key,
		Signers:   r.signers,
		MessageAs: r.messageAs,
		R:         r.out.R,
		RDashes:   rDashes,
		Proofs:    proofs,
		TI:        r.Round3.out.TI,
		LI:        r.Round3.out.LI,
		SigmaI:    r.Round3.out.SigmaI,
	})
	if err != nil {
		return nil, err
	}
	return &Round6{Round5: r, rDashes: rDashes, out: out}, nil
}

// Round6 is the state of a signer after Stage6.
type Round6 struct {
	*Round5
	rDashes []*curve.Point
	out     *Stage6Output
}

func (*Round6) Stage() protocol.Stage { return protocol.SignStage6 }

func (r *Round6) SI() *curve.Point    { return r.out.SI }
func (r *Round6) HEGProof() *HEGProof { return r.out.HEGProof }

func (r *Round6) offline() *CompletedOfflineStage {
	return &CompletedOfflineStage{
		ID:       r.key.ID,
		Signers:  r.signers,
		LocalKey: r.key,
		SignKeys: r.Round1.out.SignKeys,
		Ts:       r.ts,
		R:        r.Round5.out.R,
		RDashes:  r.rDashes,
		SigmaI:   r.Round3.out.SigmaI,
	}
}

// Next runs Stage7 on the Sⱼ and their proofs, indexed by signer position.
func (r *Round6) Next(ss []*curve.Point, proofs []*HEGProof) (*Round7, error) {
	offline := r.offline()
	if _, err := Stage7(&Stage7Input{
		Signers:   r.signers,
		Ss:        ss,
		HEGProofs: proofs,
		Offline:   offline,
	}); err != nil {
		return nil, err
	}
	offline.Ss = ss
	return &Round7{offline: offline}, nil
}

// Round7 holds a CompletedOfflineStage, ready to sign a single message.
type Round7 struct {
	offline *CompletedOfflineStage
}

// Resume returns the state of a signer from a stored offline stage.
func Resume(offline *CompletedOfflineStage) *Round7 {
	return &Round7{offline: offline}
}

func (*Round7) Stage() protocol.Stage { return protocol.SignStage7 }

func (r *Round7) Offline() *CompletedOfflineStage { return r.offline }

// Next runs Stage8 on the digest of the message.
func (r *Round7) Next(digest []byte) (*Round8, error) {
	out, err := Stage8(&Stage8Input{Offline: r.offline, Digest: digest})
	if err != nil {
		return nil, err
	}
	return &Round8{out: out}, nil
}

// Round8 is the state of a signer after Stage8.
type Round8 struct {
	out *Stage8Output
}

func (*Round8) Stage() protocol.Stage { return protocol.SignStage8 }

func (r *Round8) PartialSignature() *PartialSignature { return r.out.PartialSignature }
func (r *Round8) LocalSignature() *LocalSignature     { return r.out.LocalSignature }

// Next runs Stage9 on the partial signatures of every peer.
func (r *Round8) Next(partials []*PartialSignature) (*Round9, error) {
	out, err := Stage9(&Stage9Input{
		LocalSignature:    r.out.LocalSignature,
		PartialSignatures: partials,
	})
	if err != nil {
		return nil, err
	}
	return &Round9{signature: out.Signature}, nil
}

// Round9 is the final state of signing.
type Round9 struct {
	signature *ecdsa.Signature
}

func (*Round9) Stage() protocol.Stage { return protocol.SignStage9 }

func (r *Round9) Signature() *ecdsa.Signature { return r.signature }
