package keygen

import (
	"github.com/nguyenkha/demo-mpc/internal/parallel"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/math/polynomial"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	"github.com/nguyenkha/demo-mpc/pkg/vss"
	zksch "github.com/nguyenkha/demo-mpc/pkg/zk/sch"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
	"github.com/pkg/errors"
)

type Stage4Input struct {
	Ys      []*curve.Point
	Schemes []*vss.Scheme
	// Proofs[j] is the DLogProof of party j+1.
	Proofs     []*DLogProof
	Parameters config.Parameters
}

// Stage4Output is empty: a successful Stage4 acknowledges the key.
type Stage4Output struct{}

// Validate checks the shape of the input, before any cryptographic work.
func (in *Stage4Input) Validate() error {
	const stage = protocol.KeyGenStage4
	if in == nil {
		return protocol.NewError(protocol.KindMalformed, stage, ErrMissingMessage)
	}
	if err := in.Parameters.Validate(); err != nil {
		return protocol.NewError(protocol.KindShape, stage, err)
	}
	n := in.Parameters.ShareCount
	if err := checkLength(stage, "ys", len(in.Ys), n); err != nil {
		return err
	}
	if err := checkLength(stage, "schemes", len(in.Schemes), n); err != nil {
		return err
	}
	if err := checkLength(stage, "proofs", len(in.Proofs), n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		j := party.FromIndex(i)
		if in.Ys[i] == nil || in.Schemes[i] == nil || in.Schemes[i].Commitments == nil {
			return protocol.Blame(protocol.KindMalformed, stage, j, ErrMissingMessage)
		}
		if p := in.Proofs[i]; p == nil || p.PK == nil || p.Proof == nil {
			return protocol.Blame(protocol.KindMalformed, stage, j, ErrMissingMessage)
		}
	}
	return nil
}

// Stage4 checks that every public share xⱼ⋅G is the evaluation at j of the summed sharing,
// and verifies the proofs of knowledge of xⱼ.
func Stage4(in *Stage4Input) (*Stage4Output, error) {
	const stage = protocol.KeyGenStage4
	if err := in.Validate(); err != nil {
		return nil, err
	}
	l := logger(stage, 0)
	l.Debug().Msg("start")

	exponents := make([]*polynomial.Exponent, len(in.Schemes))
	for i, scheme := range in.Schemes {
		j := party.FromIndex(i)
		if err := checkScheme(stage, j, scheme, in.Ys[i], in.Parameters); err != nil {
			l.Warn().Err(err).Msg("verification failed")
			return nil, err
		}
		exponents[i] = scheme.Commitments
	}
	summed, err := polynomial.Sum(exponents)
	if err != nil {
		return nil, protocol.NewError(protocol.KindShape, stage, err)
	}

	err = parallel.ForEach(in.Parameters.ShareCount, func(i int) error {
		j := party.FromIndex(i)
		proof := in.Proofs[i]
		if !proof.PK.Equal(summed.Evaluate(j.Scalar())) {
			return protocol.Blame(protocol.KindVerification, stage, j, errors.WithStack(ErrStage4PublicShare))
		}
		if !proof.Proof.Verify(transcript(j), zksch.Public{X: proof.PK}) {
			return protocol.Blame(protocol.KindVerification, stage, j, errors.WithStack(ErrStage4ZKSch))
		}
		return nil
	})
	if err != nil {
		l.Warn().Err(err).Msg("verification failed")
		return nil, err
	}

	l.Debug().Msg("done")
	return &Stage4Output{}, nil
}
