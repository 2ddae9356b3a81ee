// Package keygen implements the four stages of GG20 distributed key generation.
//
// Every stage is a pure function of its input. Vectors with one entry per party
// are indexed by party.ID.Index, and the orchestrator is responsible for
// delivering the outputs of one stage to the inputs of the next.
package keygen

import (
	"crypto/rand"

	"github.com/nguyenkha/demo-mpc/internal/params"
	"github.com/nguyenkha/demo-mpc/pkg/hash"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
	"github.com/nguyenkha/demo-mpc/pkg/paillier"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/pool"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	zkmod "github.com/nguyenkha/demo-mpc/pkg/zk/mod"
	zkprm "github.com/nguyenkha/demo-mpc/pkg/zk/prm"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const protocolID = "gg20/keygen"

func logger(stage protocol.Stage, id party.ID) zerolog.Logger {
	return log.With().
		Str("component", protocolID).
		Str("stage", stage.String()).
		Uint16("party", uint16(id)).
		Logger()
}

// transcript returns the hash used by party id for its commitments and proofs.
func transcript(id party.ID) *hash.Hash {
	return hash.New(&hash.BytesWithDomain{TheDomain: "Protocol ID", Bytes: []byte(protocolID)}, id)
}

type Stage1Input struct {
	ID party.ID
	// SafePrimes selects safe primes for the Paillier modulus, which is much slower.
	SafePrimes bool
	// Pool parallelizes prime generation and the mod and prm proofs. It may be nil.
	Pool *pool.Pool `cbor:"-"`
}

type Stage1Output struct {
	Keys      *Keys
	Broadcast *BroadcastMessage1
	Decommit  *DecommitMessage1
}

// Stage1 samples uᵢ, generates a Paillier key with ring-Pedersen parameters over the same modulus,
// commits to yᵢ = uᵢ⋅G and proves that the modulus and the parameters are well formed.
func Stage1(in *Stage1Input) (*Stage1Output, error) {
	const stage = protocol.KeyGenStage1
	if in == nil {
		return nil, protocol.NewError(protocol.KindMalformed, stage, ErrMissingMessage)
	}
	if err := in.ID.Validate(params.MaxParties); err != nil {
		return nil, protocol.NewError(protocol.KindShape, stage, errors.WithMessage(ErrInvalidParty, err.Error()))
	}
	l := logger(stage, in.ID)
	l.Debug().Bool("safe_primes", in.SafePrimes).Msg("start")

	u, Y := sample.ScalarPointPair(rand.Reader)
	pk, sk := paillier.KeyGen(rand.Reader, in.Pool, in.SafePrimes)
	ped, lambda := sk.GeneratePedersen(rand.Reader)

	h := transcript(in.ID)
	commitment, decommitment, err := h.Commit(Y)
	if err != nil {
		return nil, protocol.NewError(protocol.KindMalformed, stage, errors.WithMessage(ErrStage1Commit, err.Error()))
	}

	modProof := zkmod.NewProof(h.Clone(), zkmod.Public{N: pk.N()}, zkmod.Private{
		P:   sk.P(),
		Q:   sk.Q(),
		Phi: sk.Phi(),
	}, in.Pool)
	prmProof := zkprm.NewProof(h.Clone(), zkprm.Public{Aux: ped}, zkprm.Private{
		Lambda: lambda,
		Phi:    sk.Phi(),
		P:      sk.P(),
		Q:      sk.Q(),
	}, in.Pool)

	l.Debug().Msg("done")
	return &Stage1Output{
		Keys: &Keys{
			ID:             in.ID,
			U:              u,
			Y:              Y,
			PaillierSecret: sk,
			Pedersen:       ped,
			Lambda:         lambda,
			SafePrimes:     in.SafePrimes,
		},
		Broadcast: &BroadcastMessage1{
			ID:          in.ID,
			Commitment:  commitment,
			PaillierKey: pk,
			Pedersen:    ped,
			ModProof:    modProof,
			PrmProof:    prmProof,
		},
		Decommit: &DecommitMessage1{
			ID:           in.ID,
			Y:            Y,
			Decommitment: decommitment,
		},
	}, nil
}

// validateKeys checks the ephemeral state of the caller against the session parameters.
func validateKeys(stage protocol.Stage, keys *Keys, parameters config.Parameters) error {
	if err := parameters.Validate(); err != nil {
		return protocol.NewError(protocol.KindShape, stage, err)
	}
	if keys == nil || keys.U == nil || keys.Y == nil || keys.PaillierSecret == nil || keys.Pedersen == nil {
		return protocol.NewError(protocol.KindMalformed, stage, errors.New("keys: one or more field is empty"))
	}
	if err := keys.ID.Validate(parameters.ShareCount); err != nil {
		return protocol.NewError(protocol.KindShape, stage, errors.WithMessage(ErrInvalidParty, err.Error()))
	}
	return nil
}

// checkLength returns a shape error if length is not n.
func checkLength(stage protocol.Stage, name string, length, n int) error {
	if length != n {
		return protocol.NewError(protocol.KindShape, stage,
			errors.Wrapf(ErrVectorLength, "%s: got %d, expected %d", name, length, n))
	}
	return nil
}

func sumPoints(points []*curve.Point) *curve.Point {
	sum := curve.NewIdentityPoint()
	for _, p := range points {
		sum.Add(sum, p)
	}
	return sum
}
