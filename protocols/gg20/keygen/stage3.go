package keygen

import (
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	"github.com/nguyenkha/demo-mpc/pkg/vss"
	zksch "github.com/nguyenkha/demo-mpc/pkg/zk/sch"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
	"github.com/pkg/errors"
)

type Stage3Input struct {
	Keys *Keys
	// Ys[j] is the value opened by party j+1 in DecommitMessage1.
	Ys []*curve.Point
	// Schemes[j] is the VSS scheme dealt by party j+1.
	Schemes []*vss.Scheme
	// Shares[j] is the share dealt by party j+1 to this party.
	Shares     []*curve.Scalar
	Parameters config.Parameters
}

type Stage3Output struct {
	SharedKeys config.SharedKeys
	DLogProof  *DLogProof
}

// Validate checks the shape of the input, before any cryptographic work.
func (in *Stage3Input) Validate() error {
	const stage = protocol.KeyGenStage3
	if in == nil {
		return protocol.NewError(protocol.KindMalformed, stage, ErrMissingMessage)
	}
	if err := validateKeys(stage, in.Keys, in.Parameters); err != nil {
		return err
	}
	n := in.Parameters.ShareCount
	if err := checkLength(stage, "ys", len(in.Ys), n); err != nil {
		return err
	}
	if err := checkLength(stage, "schemes", len(in.Schemes), n); err != nil {
		return err
	}
	if err := checkLength(stage, "shares", len(in.Shares), n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		j := party.FromIndex(i)
		if in.Ys[i] == nil || in.Schemes[i] == nil || in.Schemes[i].Commitments == nil || in.Shares[i] == nil {
			return protocol.Blame(protocol.KindMalformed, stage, j, ErrMissingMessage)
		}
	}
	return nil
}

// Stage3 checks every dealt sharing against the opened yⱼ and the received share,
// then sums the shares into xᵢ and proves knowledge of it.
func Stage3(in *Stage3Input) (*Stage3Output, error) {
	const stage = protocol.KeyGenStage3
	if err := in.Validate(); err != nil {
		return nil, err
	}
	self := in.Keys.ID
	l := logger(stage, self)
	l.Debug().Msg("start")

	if !in.Ys[self.Index()].Equal(in.Keys.Y) {
		return nil, protocol.NewError(protocol.KindShape, stage, errors.WithMessage(ErrInconsistentOutput, "own y differs from keys"))
	}

	xi := curve.NewScalar()
	for i, scheme := range in.Schemes {
		j := party.FromIndex(i)
		if err := checkScheme(stage, j, scheme, in.Ys[i], in.Parameters); err != nil {
			l.Warn().Err(err).Msg("verification failed")
			return nil, err
		}
		if err := scheme.ValidateShare(self, in.Shares[i]); err != nil {
			err = protocol.Blame(protocol.KindVerification, stage, j, errors.WithMessage(ErrStage3VSSShare, err.Error()))
			l.Warn().Err(err).Msg("verification failed")
			return nil, err
		}
		xi.Add(xi, in.Shares[i])
	}

	X := xi.ActOnBase()
	proof := zksch.NewProof(transcript(self), zksch.Public{X: X}, zksch.Private{X: xi})

	l.Debug().Msg("done")
	return &Stage3Output{
		SharedKeys: config.SharedKeys{
			XI: xi,
			Y:  sumPoints(in.Ys),
		},
		DLogProof: &DLogProof{
			PK:    X,
			Proof: proof,
		},
	}, nil
}

// checkScheme verifies that the scheme dealt by j has degree t and commits to yⱼ.
func checkScheme(stage protocol.Stage, j party.ID, scheme *vss.Scheme, y *curve.Point, parameters config.Parameters) error {
	if scheme.Threshold != parameters.Threshold || scheme.ShareCount != parameters.ShareCount {
		return protocol.Blame(protocol.KindVerification, stage, j, errors.WithStack(ErrStage3VSSDegree))
	}
	if err := scheme.Validate(); err != nil {
		return protocol.Blame(protocol.KindVerification, stage, j, errors.WithMessage(ErrStage3VSSDegree, err.Error()))
	}
	if !scheme.Constant().Equal(y) {
		return protocol.Blame(protocol.KindVerification, stage, j, errors.WithStack(ErrStage3VSSConstant))
	}
	return nil
}
