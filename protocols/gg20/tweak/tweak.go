// Package tweak shifts a threshold key by a public scalar, as used by non-hardened BIP32 derivation.
//
// Every party applies the same tweak il locally. The secret becomes x + il, and the
// public key Y + il⋅G. No interaction is needed.
package tweak

import (
	"github.com/nguyenkha/demo-mpc/internal/bip32"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const protocolID = "gg20/tweak"

var (
	ErrMissingKey   = errors.New("missing local key")
	ErrMissingTweak = errors.New("missing tweak")
	ErrWrongParty   = errors.New("key belongs to another party")
	ErrInvalidKey   = errors.New("tweaked key is invalid")
)

func logger(id party.ID) zerolog.Logger {
	return log.With().
		Str("component", protocolID).
		Str("stage", protocol.TweakKey.String()).
		Uint16("party", uint16(id)).
		Logger()
}

// Tweaked is the state of a party once a derivation has been applied to its key.
type Tweaked struct {
	key       *config.LocalKey
	chainCode []byte
}

func (*Tweaked) Stage() protocol.Stage { return protocol.TweakKey }

// LocalKey returns the derived key. It can be used to sign right away.
func (t *Tweaked) LocalKey() *config.LocalKey { return t.key }

// ChainCode returns the chain code of the derived key, for further derivation.
func (t *Tweaked) ChainCode() []byte { return append([]byte(nil), t.chainCode...) }

// Apply returns a copy of key, shifted by il. The input key is left untouched.
//
// Party 1 adds il to its share. Every party adds il⋅G to Y, YSum, the public share
// of party 1 and the constant of its VSS commitments, and records il in Tweak.
func Apply(id party.ID, key *config.LocalKey, il *curve.Scalar) (*config.LocalKey, error) {
	if key == nil {
		return nil, protocol.NewError(protocol.KindMalformed, protocol.TweakKey, errors.WithStack(ErrMissingKey))
	}
	if il == nil {
		return nil, protocol.NewError(protocol.KindMalformed, protocol.TweakKey, errors.WithStack(ErrMissingTweak))
	}
	if id != key.ID {
		return nil, protocol.NewError(protocol.KindShape, protocol.TweakKey,
			errors.WithMessagef(ErrWrongParty, "got %d, key of %d", id, key.ID))
	}
	if err := key.Validate(); err != nil {
		return nil, protocol.NewError(protocol.KindMalformed, protocol.TweakKey, errors.WithStack(err))
	}

	l := logger(id)
	l.Debug().Msg("applying tweak")

	out := key.Clone()
	IL := il.ActOnBase()
	if id == 1 {
		out.SharedKeys.XI.Add(out.SharedKeys.XI, il)
	}
	out.SharedKeys.Y.Add(out.SharedKeys.Y, IL)
	out.YSum.Add(out.YSum, IL)
	out.PublicShares[0].Add(out.PublicShares[0], IL)
	out.VSS.Commitments = out.VSS.Commitments.AddConstant(IL)
	out.Tweak.Add(out.Tweak, il)

	if err := out.Validate(); err != nil {
		l.Warn().Err(err).Msg("tweaked key is invalid")
		return nil, protocol.NewError(protocol.KindVerification, protocol.TweakKey,
			errors.WithMessage(ErrInvalidKey, err.Error()))
	}
	l.Debug().Msg("tweak applied")
	return out, nil
}

// Derive derives key along path, which must only contain non-hardened indices.
// The tweaks of all levels are summed and applied once.
func Derive(id party.ID, key *config.LocalKey, chainCode []byte, path bip32.Path) (*Tweaked, error) {
	if key == nil {
		return nil, protocol.NewError(protocol.KindMalformed, protocol.TweakKey, errors.WithStack(ErrMissingKey))
	}
	il, child, childChainCode, err := bip32.DerivePath(key.PublicKey(), chainCode, path)
	if err != nil {
		return nil, protocol.NewError(protocol.KindMalformed, protocol.TweakKey, errors.WithMessage(err, path.String()))
	}
	derived, err := Apply(id, key, il)
	if err != nil {
		return nil, err
	}
	if !derived.PublicKey().Equal(child) {
		return nil, protocol.NewError(protocol.KindVerification, protocol.TweakKey,
			errors.WithMessage(ErrInvalidKey, "derived public key differs from the bip32 child"))
	}
	l := logger(id)
	l.Debug().Str("path", path.String()).Msg("key derived")
	return &Tweaked{key: derived, chainCode: childChainCode}, nil
}
