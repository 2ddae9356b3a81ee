package sign

import (
	"github.com/nguyenkha/demo-mpc/internal/parallel"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	zkped "github.com/nguyenkha/demo-mpc/pkg/zk/ped"
	"github.com/pkg/errors"
)

type Stage4Input struct {
	Signers party.IDSlice
	// Deltas[j] = δⱼ, indexed by signer position
	Deltas  []*curve.Scalar
	Ts      []*curve.Point
	TProofs []*TProof
}

type Stage4Output struct {
	// DeltaInv = δ⁻¹
	DeltaInv *curve.Scalar
}

// Validate checks the shape of the input, before any cryptographic work.
func (in *Stage4Input) Validate() error {
	const stage = protocol.SignStage4
	if in == nil {
		return protocol.NewError(protocol.KindMalformed, stage, ErrMissingMessage)
	}
	if len(in.Signers) < 2 {
		return protocol.NewError(protocol.KindShape, stage, errors.WithStack(ErrInvalidSigners))
	}
	n := len(in.Signers)
	if err := checkLength(stage, "deltas", len(in.Deltas), n); err != nil {
		return err
	}
	if err := checkLength(stage, "ts", len(in.Ts), n); err != nil {
		return err
	}
	if err := checkLength(stage, "t proofs", len(in.TProofs), n); err != nil {
		return err
	}
	for i, id := range in.Signers {
		if in.Deltas[i] == nil || in.Ts[i] == nil {
			return protocol.Blame(protocol.KindMalformed, stage, id, ErrMissingMessage)
		}
		if p := in.TProofs[i]; p == nil || p.T == nil || p.Proof == nil {
			return protocol.Blame(protocol.KindMalformed, stage, id, ErrMissingMessage)
		}
	}
	return nil
}

// Stage4 verifies the proofs of knowledge of the openings of every Tⱼ,
// and reveals δ = k⋅γ by summing the shares.
func Stage4(in *Stage4Input) (*Stage4Output, error) {
	const stage = protocol.SignStage4
	if err := in.Validate(); err != nil {
		return nil, err
	}
	l := logger(stage, 0)
	l.Debug().Msg("start")

	err := parallel.ForEach(len(in.Signers), func(i int) error {
		id := in.Signers[i]
		proof := in.TProofs[i]
		if !proof.T.Equal(in.Ts[i]) {
			return protocol.Blame(protocol.KindVerification, stage, id, errors.WithStack(ErrStage4TBinding))
		}
		if !proof.Proof.Verify(proverHash(in.Signers, id), zkped.Public{T: in.Ts[i]}) {
			return protocol.Blame(protocol.KindVerification, stage, id, errors.WithStack(ErrStage4ZKPed))
		}
		return nil
	})
	if err != nil {
		l.Warn().Err(err).Msg("verification failed")
		return nil, err
	}

	delta := curve.NewScalar()
	for _, d := range in.Deltas {
		delta.Add(delta, d)
	}
	if delta.IsZero() {
		return nil, protocol.NewError(protocol.KindVerification, stage, errors.WithStack(ErrStage4ZeroDelta))
	}

	l.Debug().Msg("done")
	return &Stage4Output{DeltaInv: curve.NewScalar().Invert(delta)}, nil
}
