package sign

import (
	"github.com/nguyenkha/demo-mpc/internal/elgamal"
	"github.com/nguyenkha/demo-mpc/internal/parallel"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	zkelog "github.com/nguyenkha/demo-mpc/pkg/zk/elog"
	zklogstar "github.com/nguyenkha/demo-mpc/pkg/zk/logstar"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
	"github.com/pkg/errors"
)

type Stage6Input struct {
	Key     *config.LocalKey
	Signers party.IDSlice
	// MessageAs, RDashes and Proofs are indexed by signer position.
	MessageAs []*MessageA
	R         *curve.Point
	RDashes   []*curve.Point
	// Proofs[j] are the proofs of the j-th signer, indexed by its own peers.
	Proofs []LogStarProofs
	// TI, LI and SigmaI are the outputs of this party's Stage3.
	TI     *curve.Point
	LI     *curve.Scalar
	SigmaI *curve.Scalar
}

type Stage6Output struct {
	// SI = Sᵢ = σᵢ⋅R
	SI       *curve.Point
	HEGProof *HEGProof
}

// Validate checks the shape of the input, and returns the view of the caller.
func (in *Stage6Input) Validate() (party.Peers, error) {
	const stage = protocol.SignStage6
	if in == nil {
		return party.Peers{}, protocol.NewError(protocol.KindMalformed, stage, ErrMissingMessage)
	}
	peers, err := session(stage, in.Key, in.Signers)
	if err != nil {
		return peers, err
	}
	if in.R == nil || in.R.IsIdentity() || in.TI == nil || in.LI == nil || in.SigmaI == nil {
		return peers, protocol.NewError(protocol.KindMalformed, stage, errors.WithMessage(ErrMissingMessage, "own stage outputs"))
	}
	n := len(in.Signers)
	if err = checkLength(stage, "message as", len(in.MessageAs), n); err != nil {
		return peers, err
	}
	if err = checkLength(stage, "r dashes", len(in.RDashes), n); err != nil {
		return peers, err
	}
	if err = checkLength(stage, "proofs", len(in.Proofs), n); err != nil {
		return peers, err
	}
	for i, id := range in.Signers {
		if err = checkMessageA(stage, in.MessageAs[i], in.Signers, id); err != nil {
			return peers, err
		}
		if in.RDashes[i] == nil {
			return peers, protocol.Blame(protocol.KindMalformed, stage, id, ErrMissingMessage)
		}
		if id == in.Key.ID {
			continue
		}
		if len(in.Proofs[i]) != n-1 {
			return peers, protocol.Blame(protocol.KindShape, stage, id, errors.WithMessage(ErrVectorLength, "log* proofs"))
		}
	}
	return peers, nil
}

// Stage6 verifies that every R'ⱼ is consistent with Kⱼ, and that they sum to G.
// It then reveals Sᵢ = σᵢ⋅R, with a proof that σᵢ is the value committed in Tᵢ.
func Stage6(in *Stage6Input) (*Stage6Output, error) {
	const stage = protocol.SignStage6
	peers, err := in.Validate()
	if err != nil {
		return nil, err
	}
	self := in.Key.ID
	l := logger(stage, self)
	l.Debug().Msg("start")

	ownPedersen := in.Key.PedersenParameters(self)
	err = parallel.ForEach(peers.Len(), func(j int) error {
		id := peers.At(j)
		i := peers.SetPosition(j)
		senderPeers, _ := in.Signers.Peers(id)
		pos, _ := senderPeers.Position(self)
		proof := in.Proofs[i][pos]
		if proof == nil || !proof.Verify(proverHash(in.Signers, id), zklogstar.Public{
			C:      in.MessageAs[i].K,
			X:      in.RDashes[i],
			G:      in.R,
			Prover: in.Key.PaillierKey(id),
			Aux:    ownPedersen,
		}) {
			return protocol.Blame(protocol.KindVerification, stage, id, errors.WithStack(ErrStage6ZKLogStar))
		}
		return nil
	})
	if err != nil {
		l.Warn().Err(err).Msg("verification failed")
		return nil, err
	}

	if !sumPoints(in.RDashes).Equal(curve.NewBasePoint()) {
		err = protocol.NewError(protocol.KindVerification, stage, errors.WithStack(ErrStage6RDashSum))
		l.Warn().Err(err).Msg("verification failed")
		return nil, err
	}

	S := in.SigmaI.Act(in.R)
	L := in.LI.ActOnBase()
	proof := zkelog.NewProof(proverHash(in.Signers, self), zkelog.Public{
		E:             &elgamal.Ciphertext{L: L, M: in.TI},
		ElGamalPublic: curve.H(),
		Base:          in.R,
		Y:             S,
	}, zkelog.Private{
		Y:      in.SigmaI,
		Lambda: in.LI,
	})

	l.Debug().Msg("done")
	return &Stage6Output{
		SI:       S,
		HEGProof: &HEGProof{L: L, Proof: proof},
	}, nil
}
