// Package gg20 exposes every stage of key generation, signing and tweaking
// behind a single serialized entry point.
//
// Call takes the name of a stage and its CBOR-encoded input, and returns the
// CBOR-encoded output. The caller owns all state between stages, and is
// responsible for transporting messages between parties.
package gg20

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/pool"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	"github.com/nguyenkha/demo-mpc/pkg/vss"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/keygen"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/reconstruct"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/sign"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/tweak"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var ErrUnknownStage = errors.New("unknown stage")

// KeyGenStage4Input verifies the Schnorr proofs of all parties.
// When Assemble is set, the LocalKey of the caller is also built.
type KeyGenStage4Input struct {
	keygen.Stage4Input
	Assemble *keygen.AssembleInput
}

type KeyGenStage4Output struct {
	LocalKey *config.LocalKey `cbor:",omitempty"`
}

// ConstructPrivateKeyInput holds at least t+1 shares, and the IDs of the parties holding them.
type ConstructPrivateKeyInput struct {
	Scheme  *vss.Scheme
	Parties []party.ID
	Shares  []*curve.Scalar
}

type ConstructPrivateKeyOutput struct {
	Secret *curve.Scalar
}

// SignStage8Output returns the offline stage along with the signature shares.
// Its SignKeys are marked as consumed and it must replace the stored copy.
type SignStage8Output struct {
	sign.Stage8Output
	Offline *sign.CompletedOfflineStage
}

type TweakKeyInput struct {
	Index    party.ID
	LocalKey *config.LocalKey
	IL       *curve.Scalar
}

type TweakKeyOutput struct {
	NewLocalKey *config.LocalKey
}

type handler func(c *Caller, input []byte) ([]byte, error)

// stage decodes the input of a stage, runs it, and encodes its output.
func stage[I, O any](name protocol.Stage, run func(c *Caller, in *I) (*O, error)) handler {
	return func(c *Caller, input []byte) ([]byte, error) {
		in := new(I)
		if err := cbor.Unmarshal(input, in); err != nil {
			return nil, protocol.NewError(protocol.KindMalformed, name, errors.Wrap(err, "decode input"))
		}
		out, err := run(c, in)
		if err != nil {
			return nil, err
		}
		data, err := cbor.Marshal(out)
		if err != nil {
			return nil, protocol.NewError(protocol.KindMalformed, name, errors.Wrap(err, "encode output"))
		}
		return data, nil
	}
}

// pure adapts a stage that needs no resources from the Caller.
func pure[I, O any](f func(in *I) (*O, error)) func(*Caller, *I) (*O, error) {
	return func(_ *Caller, in *I) (*O, error) { return f(in) }
}

var handlers = map[protocol.Stage]handler{
	protocol.KeyGenStage1: stage(protocol.KeyGenStage1, func(c *Caller, in *keygen.Stage1Input) (*keygen.Stage1Output, error) {
		in.Pool = c.Pool
		return keygen.Stage1(in)
	}),
	protocol.KeyGenStage2: stage(protocol.KeyGenStage2, func(c *Caller, in *keygen.Stage2Input) (*keygen.Stage2Output, error) {
		in.Pool = c.Pool
		return keygen.Stage2(in)
	}),
	protocol.KeyGenStage3:        stage(protocol.KeyGenStage3, pure(keygen.Stage3)),
	protocol.KeyGenStage4:        stage(protocol.KeyGenStage4, pure(keygenStage4)),
	protocol.ConstructPrivateKey: stage(protocol.ConstructPrivateKey, pure(constructPrivateKey)),
	protocol.SignStage1:          stage(protocol.SignStage1, pure(sign.Stage1)),
	protocol.SignStage2:          stage(protocol.SignStage2, pure(sign.Stage2)),
	protocol.SignStage3:          stage(protocol.SignStage3, pure(sign.Stage3)),
	protocol.SignStage4:          stage(protocol.SignStage4, pure(sign.Stage4)),
	protocol.SignStage5:          stage(protocol.SignStage5, pure(sign.Stage5)),
	protocol.SignStage6:          stage(protocol.SignStage6, pure(sign.Stage6)),
	protocol.SignStage7:          stage(protocol.SignStage7, pure(sign.Stage7)),
	protocol.SignStage8:          stage(protocol.SignStage8, pure(signStage8)),
	protocol.SignStage9:          stage(protocol.SignStage9, pure(sign.Stage9)),
	protocol.TweakKey:            stage(protocol.TweakKey, pure(tweakKey)),
}

func keygenStage4(in *KeyGenStage4Input) (*KeyGenStage4Output, error) {
	if _, err := keygen.Stage4(&in.Stage4Input); err != nil {
		return nil, err
	}
	if in.Assemble == nil {
		return &KeyGenStage4Output{}, nil
	}
	key, err := keygen.Assemble(in.Assemble)
	if err != nil {
		return nil, err
	}
	return &KeyGenStage4Output{LocalKey: key}, nil
}

func constructPrivateKey(in *ConstructPrivateKeyInput) (*ConstructPrivateKeyOutput, error) {
	secret, err := reconstruct.Secret(in.Scheme, in.Parties, in.Shares)
	if err != nil {
		return nil, err
	}
	return &ConstructPrivateKeyOutput{Secret: secret}, nil
}

func signStage8(in *sign.Stage8Input) (*SignStage8Output, error) {
	out, err := sign.Stage8(in)
	if err != nil {
		return nil, err
	}
	return &SignStage8Output{Stage8Output: *out, Offline: in.Offline}, nil
}

func tweakKey(in *TweakKeyInput) (*TweakKeyOutput, error) {
	key, err := tweak.Apply(in.Index, in.LocalKey, in.IL)
	if err != nil {
		return nil, err
	}
	return &TweakKeyOutput{NewLocalKey: key}, nil
}

// Caller runs stages by name.
type Caller struct {
	// Pool parallelizes the Paillier key generation and the proofs of key generation.
	// A nil Pool runs them on the calling goroutine.
	Pool *pool.Pool
}

// Call runs the stage name on the CBOR-encoded input.
// Errors are *protocol.Error values, and name the culprit when one is known.
func (c *Caller) Call(name string, input []byte) ([]byte, error) {
	s := protocol.Stage(name)
	h, ok := handlers[s]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownStage, "%q", name)
	}
	l := log.With().Str("component", "gg20").Str("stage", name).Logger()
	l.Trace().Int("input", len(input)).Msg("call")
	out, err := h(c, input)
	if err != nil {
		l.Debug().Err(err).Msg("stage failed")
		return nil, err
	}
	return out, nil
}

// Call runs the stage name on the CBOR-encoded input, without a worker pool.
func Call(name string, input []byte) ([]byte, error) {
	return (&Caller{}).Call(name, input)
}
