// Package reconstruct recombines secret shares into the full ECDSA private key.
//
// This defeats the purpose of threshold signing, and is only meant for audits and
// recovery drills. Signing never needs it.
package reconstruct

import (
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	"github.com/nguyenkha/demo-mpc/pkg/vss"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var (
	ErrMissingScheme     = errors.New("missing VSS scheme")
	ErrInconsistentKeys  = errors.New("keys belong to different sessions")
	ErrPublicKeyMismatch = errors.New("reconstructed secret does not match the public key")
)

// Secret interpolates at 0 the shares held by ids.
// At least t+1 distinct ids in 1, …, n are required, and any such subset gives the same result.
func Secret(scheme *vss.Scheme, ids []party.ID, shares []*curve.Scalar) (*curve.Scalar, error) {
	if scheme == nil {
		return nil, protocol.NewError(protocol.KindMalformed, protocol.ConstructPrivateKey, errors.WithStack(ErrMissingScheme))
	}
	secret, err := scheme.Reconstruct(ids, shares)
	switch {
	case err == nil:
		return secret, nil
	case errors.Is(err, vss.ErrSharesMismatch), errors.Is(err, vss.ErrNotEnoughShares):
		return nil, protocol.NewError(protocol.KindShape, protocol.ConstructPrivateKey, errors.WithStack(err))
	default:
		return nil, protocol.NewError(protocol.KindMalformed, protocol.ConstructPrivateKey, errors.WithStack(err))
	}
}

// FromLocalKeys reconstructs the private key of YSum from the keys of at least t+1 parties.
// Tweaks applied to the keys are taken into account.
func FromLocalKeys(keys ...*config.LocalKey) (*curve.Scalar, error) {
	if len(keys) == 0 {
		return nil, protocol.NewError(protocol.KindShape, protocol.ConstructPrivateKey, errors.WithStack(vss.ErrNotEnoughShares))
	}
	first := keys[0]
	ids := make([]party.ID, len(keys))
	shares := make([]*curve.Scalar, len(keys))
	for i, key := range keys {
		if err := key.Validate(); err != nil {
			return nil, protocol.NewError(protocol.KindMalformed, protocol.ConstructPrivateKey,
				errors.WithMessagef(err, "key %d", i))
		}
		if key.Parameters != first.Parameters || !key.YSum.Equal(first.YSum) || !key.Tweak.Equal(first.Tweak) {
			return nil, protocol.NewError(protocol.KindShape, protocol.ConstructPrivateKey,
				errors.WithMessagef(ErrInconsistentKeys, "party %d", key.ID))
		}
		ids[i] = key.ID
		shares[i] = curve.NewScalar().Set(key.SharedKeys.XI)
		if key.ID == 1 {
			shares[i].Subtract(shares[i], key.Tweak)
		}
	}

	secret, err := Secret(first.VSS, ids, shares)
	if err != nil {
		return nil, err
	}
	secret.Add(secret, first.Tweak)
	if !secret.ActOnBase().Equal(first.PublicKey()) {
		return nil, protocol.NewError(protocol.KindVerification, protocol.ConstructPrivateKey, errors.WithStack(ErrPublicKeyMismatch))
	}
	log.Warn().Str("component", "gg20/reconstruct").Ints("parties", idsToInts(ids)).Msg("private key reconstructed")
	return secret, nil
}

func idsToInts(ids []party.ID) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
