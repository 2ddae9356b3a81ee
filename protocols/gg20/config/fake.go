package config

import (
	"io"

	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
	"github.com/nguyenkha/demo-mpc/pkg/paillier"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/pedersen"
	"github.com/nguyenkha/demo-mpc/pkg/pool"
	"github.com/nguyenkha/demo-mpc/pkg/vss"
)

// FakeData returns the LocalKey of every party of a session, as if they had run key generation,
// but with a single dealer. It is only meant for tests and demos.
func FakeData(parameters Parameters, source io.Reader, pl *pool.Pool) ([]*LocalKey, error) {
	if err := parameters.Validate(); err != nil {
		return nil, err
	}
	n := parameters.ShareCount
	secret := sample.Scalar(source)
	scheme, shares, err := vss.Share(source, parameters.Threshold, n, secret)
	if err != nil {
		return nil, err
	}

	secrets := make([]*paillier.SecretKey, n)
	paillierKeys := make([]*paillier.PublicKey, n)
	peds := make([]*pedersen.Parameters, n)
	publicShares := make([]*curve.Point, n)
	for i := 0; i < n; i++ {
		pk, sk := paillier.KeyGen(source, pl, false)
		ped, _ := sk.GeneratePedersen(source)
		secrets[i], paillierKeys[i], peds[i] = sk, pk, ped
		publicShares[i] = shares[i].ActOnBase()
	}

	Y := secret.ActOnBase()
	keys := make([]*LocalKey, n)
	for i := 0; i < n; i++ {
		keys[i] = &LocalKey{
			ID:         party.FromIndex(i),
			Parameters: parameters,
			SharedKeys: SharedKeys{
				XI: shares[i],
				Y:  Y,
			},
			VSS:            scheme,
			PaillierSecret: secrets[i],
			PaillierKeys:   paillierKeys,
			Pedersen:       peds,
			PublicShares:   publicShares,
			YSum:           Y,
			Tweak:          curve.NewScalar(),
		}
		keys[i] = keys[i].Clone()
	}
	return keys, nil
}
