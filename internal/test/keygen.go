package test

import (
	"github.com/nguyenkha/demo-mpc/internal/parallel"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/pool"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	"github.com/nguyenkha/demo-mpc/pkg/vss"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/keygen"
)

// Keygen runs key generation between all parties of parameters, and returns their keys indexed by party.ID.Index.
func Keygen(parameters config.Parameters, safePrimes bool, pl *pool.Pool, rule Rule) ([]*config.LocalKey, error) {
	if err := parameters.Validate(); err != nil {
		return nil, err
	}
	n := parameters.ShareCount
	parties := party.NewIDSlice(n)

	round1 := make([]*keygen.Round1, n)
	if err := parallel.ForEach(n, func(i int) (err error) {
		round1[i], err = keygen.Start(parties[i], parameters, safePrimes, pl)
		return
	}); err != nil {
		return nil, err
	}

	round2 := make([]*keygen.Round2, n)
	if err := parallel.ForEach(n, func(i int) error {
		to := parties[i]
		broadcasts, err := gather(rule, protocol.KeyGenStage1, parties, to, func(j int) *keygen.BroadcastMessage1 {
			return round1[j].Broadcast()
		})
		if err != nil {
			return err
		}
		decommits, err := gather(rule, protocol.KeyGenStage1, parties, to, func(j int) *keygen.DecommitMessage1 {
			return round1[j].Decommit()
		})
		if err != nil {
			return err
		}
		round2[i], err = round1[i].Next(broadcasts, decommits)
		return err
	}); err != nil {
		return nil, err
	}

	round3 := make([]*keygen.Round3, n)
	if err := parallel.ForEach(n, func(i int) error {
		to := parties[i]
		schemes, err := gather(rule, protocol.KeyGenStage2, parties, to, func(j int) *vss.Scheme {
			return round2[j].Scheme()
		})
		if err != nil {
			return err
		}
		shares, err := gather(rule, protocol.KeyGenStage2, parties, to, func(j int) *curve.Scalar {
			return round2[j].Share(to)
		})
		if err != nil {
			return err
		}
		round3[i], err = round2[i].Next(schemes, shares)
		return err
	}); err != nil {
		return nil, err
	}

	keys := make([]*config.LocalKey, n)
	if err := parallel.ForEach(n, func(i int) error {
		proofs, err := gather(rule, protocol.KeyGenStage3, parties, parties[i], func(j int) *keygen.DLogProof {
			return round3[j].DLogProof()
		})
		if err != nil {
			return err
		}
		round4, err := round3[i].Next(proofs)
		if err != nil {
			return err
		}
		keys[i] = round4.LocalKey()
		return nil
	}); err != nil {
		return nil, err
	}
	return keys, nil
}
