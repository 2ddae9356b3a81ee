package keygen

import (
	"crypto/rand"

	"github.com/nguyenkha/demo-mpc/internal/parallel"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/paillier"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/pool"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	"github.com/nguyenkha/demo-mpc/pkg/vss"
	zkmod "github.com/nguyenkha/demo-mpc/pkg/zk/mod"
	zkprm "github.com/nguyenkha/demo-mpc/pkg/zk/prm"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
	"github.com/pkg/errors"
)

type Stage2Input struct {
	Keys       *Keys
	Broadcasts []*BroadcastMessage1
	Decommits  []*DecommitMessage1
	Parameters config.Parameters
	// Pool parallelizes the verification of the mod and prm proofs. It may be nil.
	Pool *pool.Pool `cbor:"-"`
}

type Stage2Output struct {
	ID     party.ID
	Scheme *vss.Scheme
	// Shares[j] = fᵢ(j+1) must be sent privately to party j+1.
	Shares []*curve.Scalar
}

// Validate checks the shape of the input, before any cryptographic work.
func (in *Stage2Input) Validate() error {
	const stage = protocol.KeyGenStage2
	if in == nil {
		return protocol.NewError(protocol.KindMalformed, stage, ErrMissingMessage)
	}
	if err := validateKeys(stage, in.Keys, in.Parameters); err != nil {
		return err
	}
	n := in.Parameters.ShareCount
	if err := checkLength(stage, "broadcasts", len(in.Broadcasts), n); err != nil {
		return err
	}
	if err := checkLength(stage, "decommits", len(in.Decommits), n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		j := party.FromIndex(i)
		bc, dc := in.Broadcasts[i], in.Decommits[i]
		if bc == nil || dc == nil {
			return protocol.Blame(protocol.KindMalformed, stage, j, ErrMissingMessage)
		}
		if bc.ID != j || dc.ID != j {
			return protocol.Blame(protocol.KindShape, stage, j, ErrWrongSender)
		}
		if bc.Commitment.Validate() != nil || bc.PaillierKey == nil || bc.Pedersen == nil ||
			bc.ModProof == nil || bc.PrmProof == nil {
			return protocol.Blame(protocol.KindMalformed, stage, j, errors.New("broadcast: one or more field is empty"))
		}
		if dc.Y == nil || dc.Y.IsIdentity() || dc.Decommitment.Validate() != nil {
			return protocol.Blame(protocol.KindMalformed, stage, j, errors.New("decommitment: one or more field is invalid"))
		}
	}
	return nil
}

// Stage2 opens every commitment, checks every Paillier modulus and Pedersen parameters with their proofs,
// and deals a Feldman sharing of uᵢ.
//
// Parties are verified concurrently, and the error reported is the one of the lowest ID.
func Stage2(in *Stage2Input) (*Stage2Output, error) {
	const stage = protocol.KeyGenStage2
	if err := in.Validate(); err != nil {
		return nil, err
	}
	self := in.Keys.ID
	l := logger(stage, self)
	l.Debug().Msg("start")

	err := parallel.ForEach(in.Parameters.ShareCount, func(i int) error {
		return verifyParty(in.Keys, in.Broadcasts[i], in.Decommits[i], in.Pool)
	})
	if err != nil {
		l.Warn().Err(err).Msg("verification failed")
		return nil, err
	}

	scheme, shares, err := vss.Share(rand.Reader, in.Parameters.Threshold, in.Parameters.ShareCount, in.Keys.U)
	if err != nil {
		return nil, protocol.NewError(protocol.KindShape, stage, err)
	}

	l.Debug().Msg("done")
	return &Stage2Output{
		ID:     self,
		Scheme: scheme,
		Shares: shares,
	}, nil
}

func verifyParty(keys *Keys, bc *BroadcastMessage1, dc *DecommitMessage1, pl *pool.Pool) error {
	const stage = protocol.KeyGenStage2
	j := bc.ID
	h := transcript(j)

	if !h.Decommit(bc.Commitment, dc.Decommitment, dc.Y) {
		return protocol.Blame(protocol.KindVerification, stage, j, errors.WithStack(ErrStage2Decommit))
	}

	if j == keys.ID {
		if !bc.PaillierKey.Equal(keys.PaillierSecret.PublicKey) || !dc.Y.Equal(keys.Y) {
			return protocol.Blame(protocol.KindVerification, stage, j, errors.New("own broadcast differs from keys"))
		}
		return nil
	}

	if err := paillier.ValidateN(bc.PaillierKey.N()); err != nil {
		return protocol.Blame(protocol.KindVerification, stage, j, errors.WithMessage(ErrStage2PaillierN, err.Error()))
	}
	if !bc.ModProof.Verify(h.Clone(), zkmod.Public{N: bc.PaillierKey.N()}, pl) {
		return protocol.Blame(protocol.KindVerification, stage, j, errors.WithStack(ErrStage2ZKMod))
	}

	if err := bc.Pedersen.Validate(); err != nil {
		return protocol.Blame(protocol.KindVerification, stage, j, errors.WithMessage(ErrStage2Pedersen, err.Error()))
	}
	if bc.Pedersen.N().Nat().Eq(bc.PaillierKey.N().Nat()) != 1 {
		return protocol.Blame(protocol.KindVerification, stage, j, errors.WithMessage(ErrStage2Pedersen, "modulus differs from Paillier key"))
	}
	if !bc.PrmProof.Verify(h.Clone(), zkprm.Public{Aux: bc.Pedersen}, pl) {
		return protocol.Blame(protocol.KindVerification, stage, j, errors.WithStack(ErrStage2ZKPrm))
	}
	return nil
}
