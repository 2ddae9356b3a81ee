package sign

import (
	"github.com/nguyenkha/demo-mpc/internal/params"
	"github.com/nguyenkha/demo-mpc/pkg/ecdsa"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	"github.com/pkg/errors"
)

type Stage8Input struct {
	Offline *CompletedOfflineStage
	// Digest is the 32 byte hash of the message.
	Digest []byte
}

type Stage8Output struct {
	LocalSignature   *LocalSignature
	PartialSignature *PartialSignature
}

// Validate checks the shape of the input, before any cryptographic work.
func (in *Stage8Input) Validate() error {
	const stage = protocol.SignStage8
	if in == nil {
		return protocol.NewError(protocol.KindMalformed, stage, ErrMissingMessage)
	}
	if err := in.Offline.validate(stage); err != nil {
		return err
	}
	if len(in.Offline.Ss) != len(in.Offline.Signers) {
		return protocol.NewError(protocol.KindShape, stage, errors.WithMessage(ErrInconsistentOfflineStage, "ss"))
	}
	if len(in.Digest) != params.BytesScalar {
		return protocol.NewError(protocol.KindShape, stage, errors.Wrapf(ErrStage8DigestLength, "got %d", len(in.Digest)))
	}
	return nil
}

// Stage8 computes the partial signature sᵢ = m⋅kᵢ + r⋅σᵢ.
//
// The SignKeys of the offline stage are consumed: a CompletedOfflineStage signs a single message.
func Stage8(in *Stage8Input) (*Stage8Output, error) {
	const stage = protocol.SignStage8
	if err := in.Validate(); err != nil {
		return nil, err
	}
	o := in.Offline
	l := logger(stage, o.ID)

	if err := o.SignKeys.Consume(); err != nil {
		return nil, protocol.NewError(protocol.KindShape, stage, errors.WithStack(err))
	}

	digest := append([]byte(nil), in.Digest...)
	si := ecdsa.NewSignatureShare(digest, o.R, o.SignKeys.K, o.SigmaI)

	l.Debug().Msg("done")
	return &Stage8Output{
		LocalSignature: &LocalSignature{
			ID:      o.ID,
			R:       o.R,
			LittleR: o.R.XScalar(),
			SI:      si,
			M:       curve.FromHash(digest),
			Digest:  digest,
			Y:       o.LocalKey.PublicKey(),
			Signers: o.Signers.Copy(),
			RDashes: append([]*curve.Point(nil), o.RDashes...),
			Ss:      append([]*curve.Point(nil), o.Ss...),
		},
		PartialSignature: &PartialSignature{ID: o.ID, S: si},
	}, nil
}

// peers returns the view of the signer set of the caller.
func (s *LocalSignature) peers() (party.Peers, error) {
	return s.Signers.Peers(s.ID)
}
