package sign

import (
	"github.com/nguyenkha/demo-mpc/internal/mta"
	"github.com/nguyenkha/demo-mpc/internal/parallel"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	zklogstar "github.com/nguyenkha/demo-mpc/pkg/zk/logstar"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
	"github.com/pkg/errors"
)

type Stage5Input struct {
	Key      *config.LocalKey
	Signers  party.IDSlice
	SignKeys *SignKeys
	// MessageBGammas[j] was sent by the j-th peer in Stage2.
	MessageBGammas []*mta.MessageB
	// Commitments and Decommits are indexed by signer position.
	Commitments []*BroadcastMessage
	Decommits   []*DecommitMessage
	DeltaInv    *curve.Scalar
}

type Stage5Output struct {
	// R = δ⁻¹⋅∑ⱼ Γⱼ = k⁻¹⋅G
	R *curve.Point
	// RDash = R'ᵢ = kᵢ⋅R
	RDash *curve.Point
	// Proofs[j] proves to the j-th peer that Kᵢ and R'ᵢ share the same kᵢ.
	Proofs LogStarProofs
}

// Validate checks the shape of the input, and returns the view of the caller.
func (in *Stage5Input) Validate() (party.Peers, error) {
	const stage = protocol.SignStage5
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
	if in.DeltaInv == nil || in.DeltaInv.IsZero() {
		return peers, protocol.NewError(protocol.KindMalformed, stage, errors.WithMessage(ErrMissingMessage, "δ⁻¹"))
	}
	if err = checkLength(stage, "message b gammas", len(in.MessageBGammas), peers.Len()); err != nil {
		return peers, err
	}
	if err = checkLength(stage, "commitments", len(in.Commitments), len(in.Signers)); err != nil {
		return peers, err
	}
	if err = checkLength(stage, "decommits", len(in.Decommits), len(in.Signers)); err != nil {
		return peers, err
	}
	for i, id := range in.Signers {
		c, d := in.Commitments[i], in.Decommits[i]
		if c == nil || d == nil || d.GGamma == nil {
			return peers, protocol.Blame(protocol.KindMalformed, stage, id, ErrMissingMessage)
		}
		if c.ID != id || d.ID != id {
			return peers, protocol.Blame(protocol.KindShape, stage, id, ErrWrongSender)
		}
	}
	for j, msg := range in.MessageBGammas {
		if msg.Validate() != nil {
			return peers, protocol.Blame(protocol.KindMalformed, stage, peers.At(j), errors.WithStack(mta.ErrMessageBMalformed))
		}
	}
	return peers, nil
}

// Stage5 opens every Γⱼ, checks that it is the point used by j in its MtA response,
// and computes R = δ⁻¹⋅Γ. It then proves that R'ᵢ = kᵢ⋅R is consistent with Kᵢ.
func Stage5(in *Stage5Input) (*Stage5Output, error) {
	const stage = protocol.SignStage5
	peers, err := in.Validate()
	if err != nil {
		return nil, err
	}
	self := in.Key.ID
	l := logger(stage, self)
	l.Debug().Msg("start")

	err = parallel.ForEach(len(in.Signers), func(i int) error {
		id := in.Signers[i]
		c, d := in.Commitments[i], in.Decommits[i]
		if !proverHash(in.Signers, id).Decommit(c.Commitment, d.Decommitment, d.GGamma) {
			return protocol.Blame(protocol.KindVerification, stage, id, errors.WithStack(ErrStage5Decommit))
		}
		if j, ok := peers.Position(id); ok && !in.MessageBGammas[j].X.Equal(d.GGamma) {
			return protocol.Blame(protocol.KindVerification, stage, id, errors.WithStack(ErrStage5GammaMismatch))
		}
		return nil
	})
	if err != nil {
		l.Warn().Err(err).Msg("verification failed")
		return nil, err
	}

	Gamma := curve.NewIdentityPoint()
	for _, d := range in.Decommits {
		Gamma.Add(Gamma, d.GGamma)
	}
	R := in.DeltaInv.Act(Gamma)
	if R.IsIdentity() {
		return nil, protocol.NewError(protocol.KindVerification, stage, errors.WithStack(ErrStage5IdentityR))
	}
	RDash := in.SignKeys.K.Act(R)

	h := proverHash(in.Signers, self)
	proofs := make(LogStarProofs, peers.Len())
	for j := range proofs {
		proofs[j] = zklogstar.NewProof(h.Clone(), zklogstar.Public{
			C:      in.SignKeys.KCiphertext,
			X:      RDash,
			G:      R,
			Prover: in.Key.PaillierKey(self),
			Aux:    in.Key.PedersenParameters(peers.At(j)),
		}, zklogstar.Private{
			X:   in.SignKeys.K.Int(),
			Rho: in.SignKeys.KNonce,
		})
	}

	l.Debug().Msg("done")
	return &Stage5Output{
		R:      R,
		RDash:  RDash,
		Proofs: proofs,
	}, nil
}
