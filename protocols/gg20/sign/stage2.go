package sign

import (
	"github.com/nguyenkha/demo-mpc/internal/mta"
	"github.com/nguyenkha/demo-mpc/internal/parallel"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	zkenc "github.com/nguyenkha/demo-mpc/pkg/zk/enc"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
	"github.com/pkg/errors"
)

type Stage2Input struct {
	Key      *config.LocalKey
	Signers  party.IDSlice
	SignKeys *SignKeys
	// MessageAs[j] was sent by the j-th peer.
	MessageAs []*MessageA
}

type Stage2Output struct {
	// MessageBGammas[j] answers the K of the j-th peer with γᵢ.
	MessageBGammas []*mta.MessageB
	// MessageBWs[j] answers the K of the j-th peer with wᵢ.
	MessageBWs []*mta.MessageB
	// Betas[j] = βᵢⱼ
	Betas []*curve.Scalar
	// Nus[j] = νᵢⱼ
	Nus []*curve.Scalar
}

// Validate checks the shape of the input, and returns the view of the caller.
func (in *Stage2Input) Validate() (party.Peers, error) {
	const stage = protocol.SignStage2
	if in == nil {
		return party.Peers{}, protocol.NewError(protocol.KindMalformed, stage, ErrMissingMessage)
	}
	peers, err := session(stage, in.Key, in.Signers)
	if err != nil {
		return peers, err
	}
	if err = checkSignKeys(stage, in.SignKeys, in.Key.ID); err != nil {
		return peers, err
	}
	if err = checkLength(stage, "message as", len(in.MessageAs), peers.Len()); err != nil {
		return peers, err
	}
	for j, msg := range in.MessageAs {
		if err = checkMessageA(stage, msg, in.Signers, peers.At(j)); err != nil {
			return peers, err
		}
	}
	return peers, nil
}

func checkMessageA(stage protocol.Stage, msg *MessageA, signers party.IDSlice, sender party.ID) error {
	if msg == nil || msg.K == nil {
		return protocol.Blame(protocol.KindMalformed, stage, sender, ErrMissingMessage)
	}
	if msg.ID != sender {
		return protocol.Blame(protocol.KindShape, stage, sender, ErrWrongSender)
	}
	if len(msg.Proofs) != len(signers)-1 {
		return protocol.Blame(protocol.KindShape, stage, sender, errors.WithMessage(ErrVectorLength, "enc proofs"))
	}
	return nil
}

// Stage2 verifies the range proof of every Kⱼ and answers it with two MtA instances:
// one for γᵢ⋅kⱼ and one for wᵢ⋅kⱼ.
func Stage2(in *Stage2Input) (*Stage2Output, error) {
	const stage = protocol.SignStage2
	peers, err := in.Validate()
	if err != nil {
		return nil, err
	}
	self := in.Key.ID
	l := logger(stage, self)
	l.Debug().Msg("start")

	n := peers.Len()
	out := &Stage2Output{
		MessageBGammas: make([]*mta.MessageB, n),
		MessageBWs:     make([]*mta.MessageB, n),
		Betas:          make([]*curve.Scalar, n),
		Nus:            make([]*curve.Scalar, n),
	}
	ownPaillier := in.Key.PaillierKey(self)
	ownPedersen := in.Key.PedersenParameters(self)

	err = parallel.ForEach(n, func(j int) error {
		id := peers.At(j)
		msg := in.MessageAs[j]
		senderPeers, _ := in.Signers.Peers(id)
		pos, _ := senderPeers.Position(self)
		proof := msg.Proofs[pos]
		if proof == nil || !proof.Verify(proverHash(in.Signers, id), zkenc.Public{
			K:      msg.K,
			Prover: in.Key.PaillierKey(id),
			Aux:    ownPedersen,
		}) {
			return protocol.Blame(protocol.KindVerification, stage, id, errors.WithStack(ErrStage2ZKEnc))
		}

		peerPaillier := in.Key.PaillierKey(id)
		peerPedersen := in.Key.PedersenParameters(id)
		out.MessageBGammas[j], out.Betas[j] = mta.ProveAffG(mtaHash(in.Signers, self, id, labelGamma),
			in.SignKeys.Gamma, in.SignKeys.GGamma, msg.K, ownPaillier, peerPaillier, peerPedersen)
		out.MessageBWs[j], out.Nus[j] = mta.ProveAffG(mtaHash(in.Signers, self, id, labelW),
			in.SignKeys.W, in.SignKeys.GW, msg.K, ownPaillier, peerPaillier, peerPedersen)
		return nil
	})
	if err != nil {
		l.Warn().Err(err).Msg("verification failed")
		return nil, err
	}

	l.Debug().Msg("done")
	return out, nil
}
