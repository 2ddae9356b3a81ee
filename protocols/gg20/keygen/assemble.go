package keygen

import (
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/paillier"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/pedersen"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	"github.com/nguyenkha/demo-mpc/pkg/vss"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
	"github.com/pkg/errors"
)

// AssembleInput gathers the outputs accumulated by a party over the four stages.
type AssembleInput struct {
	Keys       *Keys
	Parameters config.Parameters
	Broadcasts []*BroadcastMessage1
	// Scheme is the one this party dealt in Stage2.
	Scheme     *vss.Scheme
	SharedKeys config.SharedKeys
	Proofs     []*DLogProof
}

// Assemble builds the durable LocalKey once Stage4 succeeded.
// The public shares are taken from the DLog proofs, and the Paillier keys and Pedersen parameters
// from the first broadcasts.
func Assemble(in *AssembleInput) (*config.LocalKey, error) {
	const stage = protocol.KeyGenStage4
	if in == nil {
		return nil, protocol.NewError(protocol.KindMalformed, stage, ErrMissingMessage)
	}
	if err := validateKeys(stage, in.Keys, in.Parameters); err != nil {
		return nil, err
	}
	n := in.Parameters.ShareCount
	if err := checkLength(stage, "broadcasts", len(in.Broadcasts), n); err != nil {
		return nil, err
	}
	if err := checkLength(stage, "proofs", len(in.Proofs), n); err != nil {
		return nil, err
	}
	if in.Scheme == nil || in.SharedKeys.XI == nil || in.SharedKeys.Y == nil {
		return nil, protocol.NewError(protocol.KindMalformed, stage, ErrMissingMessage)
	}

	key := &config.LocalKey{
		ID:         in.Keys.ID,
		Parameters: in.Parameters,
		SharedKeys: config.SharedKeys{
			XI: curve.NewScalar().Set(in.SharedKeys.XI),
			Y:  curve.NewIdentityPoint().Set(in.SharedKeys.Y),
		},
		VSS:            in.Scheme.Clone(),
		PaillierSecret: in.Keys.PaillierSecret,
		PaillierKeys:   make([]*paillier.PublicKey, n),
		Pedersen:       make([]*pedersen.Parameters, n),
		PublicShares:   make([]*curve.Point, n),
		YSum:           curve.NewIdentityPoint().Set(in.SharedKeys.Y),
		Tweak:          curve.NewScalar(),
	}
	for i := 0; i < n; i++ {
		j := party.FromIndex(i)
		bc, proof := in.Broadcasts[i], in.Proofs[i]
		if bc == nil || proof == nil || proof.PK == nil {
			return nil, protocol.Blame(protocol.KindMalformed, stage, j, ErrMissingMessage)
		}
		key.PaillierKeys[i] = bc.PaillierKey
		key.Pedersen[i] = bc.Pedersen
		key.PublicShares[i] = curve.NewIdentityPoint().Set(proof.PK)
	}

	if err := key.Validate(); err != nil {
		return nil, protocol.NewError(protocol.KindShape, stage, errors.WithMessage(ErrInconsistentOutput, err.Error()))
	}
	return key, nil
}
