package sign

import (
	"github.com/nguyenkha/demo-mpc/internal/elgamal"
	"github.com/nguyenkha/demo-mpc/internal/parallel"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	zkelog "github.com/nguyenkha/demo-mpc/pkg/zk/elog"
	"github.com/pkg/errors"
)

type Stage7Input struct {
	Signers party.IDSlice
	// Ss and HEGProofs are indexed by signer position.
	Ss        []*curve.Point
	HEGProofs []*HEGProof
	// Offline holds the state of this party. Its Ss field is ignored.
	Offline *CompletedOfflineStage
}

// Stage7Output is empty: a successful Stage7 completes the offline stage.
type Stage7Output struct{}

// validate checks that the offline stage is usable by stage, regardless of Ss.
func (o *CompletedOfflineStage) validate(stage protocol.Stage) error {
	if o == nil || o.R == nil || o.R.IsIdentity() || o.SigmaI == nil {
		return protocol.NewError(protocol.KindMalformed, stage, errors.WithMessage(ErrInconsistentOfflineStage, "missing field"))
	}
	if _, err := session(stage, o.LocalKey, o.Signers); err != nil {
		return err
	}
	if o.ID != o.LocalKey.ID {
		return protocol.NewError(protocol.KindShape, stage, errors.WithMessage(ErrInconsistentOfflineStage, "id differs from local key"))
	}
	if err := checkSignKeys(stage, o.SignKeys, o.ID); err != nil {
		return err
	}
	n := len(o.Signers)
	if len(o.Ts) != n || len(o.RDashes) != n {
		return protocol.NewError(protocol.KindShape, stage, errors.WithMessage(ErrInconsistentOfflineStage, "vector length"))
	}
	for i := 0; i < n; i++ {
		if o.Ts[i] == nil || o.RDashes[i] == nil {
			return protocol.NewError(protocol.KindMalformed, stage, errors.WithMessage(ErrInconsistentOfflineStage, "missing point"))
		}
	}
	return nil
}

func sameSigners(a, b party.IDSlice) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Validate checks the shape of the input, before any cryptographic work.
func (in *Stage7Input) Validate() error {
	const stage = protocol.SignStage7
	if in == nil {
		return protocol.NewError(protocol.KindMalformed, stage, ErrMissingMessage)
	}
	if err := in.Offline.validate(stage); err != nil {
		return err
	}
	if !sameSigners(in.Signers, in.Offline.Signers) {
		return protocol.NewError(protocol.KindShape, stage, errors.WithMessage(ErrInvalidSigners, "differs from offline stage"))
	}
	n := len(in.Signers)
	if err := checkLength(stage, "ss", len(in.Ss), n); err != nil {
		return err
	}
	if err := checkLength(stage, "heg proofs", len(in.HEGProofs), n); err != nil {
		return err
	}
	for i, id := range in.Signers {
		if in.Ss[i] == nil {
			return protocol.Blame(protocol.KindMalformed, stage, id, ErrMissingMessage)
		}
		if p := in.HEGProofs[i]; p == nil || p.L == nil || p.Proof == nil {
			return protocol.Blame(protocol.KindMalformed, stage, id, ErrMissingMessage)
		}
	}
	return nil
}

// Stage7 verifies that every Sⱼ = σⱼ⋅R uses the σⱼ committed in Tⱼ, and that ∑ⱼ Sⱼ = Y.
// The latter implies that R was computed with the shares of the actual key.
func Stage7(in *Stage7Input) (*Stage7Output, error) {
	const stage = protocol.SignStage7
	if err := in.Validate(); err != nil {
		return nil, err
	}
	o := in.Offline
	l := logger(stage, o.ID)
	l.Debug().Msg("start")

	err := parallel.ForEach(len(in.Signers), func(i int) error {
		id := in.Signers[i]
		heg := in.HEGProofs[i]
		if !heg.Proof.Verify(proverHash(in.Signers, id), zkelog.Public{
			E:             &elgamal.Ciphertext{L: heg.L, M: o.Ts[i]},
			ElGamalPublic: curve.H(),
			Base:          o.R,
			Y:             in.Ss[i],
		}) {
			return protocol.Blame(protocol.KindVerification, stage, id, errors.WithStack(ErrStage7ZKElog))
		}
		return nil
	})
	if err != nil {
		l.Warn().Err(err).Msg("verification failed")
		return nil, err
	}

	if !sumPoints(in.Ss).Equal(o.LocalKey.PublicKey()) {
		err = protocol.NewError(protocol.KindVerification, stage, errors.WithStack(ErrStage7SSum))
		l.Warn().Err(err).Msg("verification failed")
		return nil, err
	}

	l.Debug().Msg("done")
	return &Stage7Output{}, nil
}
