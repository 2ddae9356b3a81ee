package keygen

import (
	"crypto/rand"
	"errors"
	"sync"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/math/polynomial"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/pool"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	"github.com/nguyenkha/demo-mpc/pkg/vss"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var parameters = config.Parameters{Threshold: 1, ShareCount: 3}

// session records every message of a honest run, so that tests can replay stages with tampered inputs.
type session struct {
	round1     []*Round1
	round2     []*Round2
	round3     []*Round3
	broadcasts []*BroadcastMessage1
	decommits  []*DecommitMessage1
	schemes    []*vss.Scheme
	// shares[i][j] is the share dealt by j+1 to i+1
	shares [][]*curve.Scalar
	proofs []*DLogProof
	keys   []*config.LocalKey
}

var (
	sessionOnce sync.Once
	honest      *session
	sessionErr  error
)

func run(pl *pool.Pool) (*session, error) {
	n := parameters.ShareCount
	s := &session{
		round1:     make([]*Round1, n),
		round2:     make([]*Round2, n),
		round3:     make([]*Round3, n),
		broadcasts: make([]*BroadcastMessage1, n),
		decommits:  make([]*DecommitMessage1, n),
		schemes:    make([]*vss.Scheme, n),
		shares:     make([][]*curve.Scalar, n),
		proofs:     make([]*DLogProof, n),
		keys:       make([]*config.LocalKey, n),
	}
	var err error
	for i := 0; i < n; i++ {
		if s.round1[i], err = Start(party.FromIndex(i), parameters, false, pl); err != nil {
			return nil, err
		}
		s.broadcasts[i] = s.round1[i].Broadcast()
		s.decommits[i] = s.round1[i].Decommit()
	}
	for i := 0; i < n; i++ {
		if s.round2[i], err = s.round1[i].Next(s.broadcasts, s.decommits); err != nil {
			return nil, err
		}
		s.schemes[i] = s.round2[i].Scheme()
	}
	for i := 0; i < n; i++ {
		s.shares[i] = make([]*curve.Scalar, n)
		for j := 0; j < n; j++ {
			s.shares[i][j] = s.round2[j].Share(party.FromIndex(i))
		}
		if s.round3[i], err = s.round2[i].Next(s.schemes, s.shares[i]); err != nil {
			return nil, err
		}
		s.proofs[i] = s.round3[i].DLogProof()
	}
	for i := 0; i < n; i++ {
		r4, err := s.round3[i].Next(s.proofs)
		if err != nil {
			return nil, err
		}
		s.keys[i] = r4.LocalKey()
	}
	return s, nil
}

func getSession(t *testing.T) *session {
	sessionOnce.Do(func() {
		pl := pool.NewPool(0)
		defer pl.TearDown()
		honest, sessionErr = run(pl)
	})
	require.NoError(t, sessionErr)
	return honest
}

func requireBlame(t *testing.T, err error, kind error, culprit party.ID, cause error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
	assert.ErrorIs(t, err, cause)
	id, ok := protocol.Culprit(err)
	require.True(t, ok, "error should name a culprit")
	assert.Equal(t, culprit, id)
}

func TestKeygen(t *testing.T) {
	s := getSession(t)

	first := s.keys[0]
	for i, key := range s.keys {
		require.NoError(t, key.Validate())
		assert.Equal(t, party.FromIndex(i), key.ID)
		assert.True(t, first.PublicKey().Equal(key.PublicKey()), "public keys differ")
		assert.True(t, key.Tweak.IsZero())
		for j := range first.PublicShares {
			assert.True(t, first.PublicShares[j].Equal(key.PublicShares[j]))
			assert.True(t, first.PaillierKeys[j].Equal(key.PaillierKeys[j]))
		}
	}

	// every pair of parties interpolates the secret key
	for _, signers := range []party.IDSlice{{1, 2}, {1, 3}, {3, 2}} {
		lagrange := polynomial.Lagrange(signers)
		x := curve.NewScalar()
		for _, j := range signers {
			x.MultiplyAdd(lagrange[j], s.keys[j.Index()].SharedKeys.XI, x)
		}
		assert.True(t, x.ActOnBase().Equal(first.PublicKey()), "signers %v", signers)
	}

	for _, key := range s.keys {
		data, err := cbor.Marshal(key)
		require.NoError(t, err)
		decoded := &config.LocalKey{}
		require.NoError(t, cbor.Unmarshal(data, decoded))
		assert.True(t, decoded.SharedKeys.XI.Equal(key.SharedKeys.XI))
		assert.True(t, decoded.PublicKey().Equal(key.PublicKey()))
	}
}

func TestRoundStages(t *testing.T) {
	s := getSession(t)
	assert.Equal(t, protocol.KeyGenStage1, s.round1[0].Stage())
	assert.Equal(t, protocol.KeyGenStage2, s.round2[0].Stage())
	assert.Equal(t, protocol.KeyGenStage3, s.round3[0].Stage())
}

func TestStage2(t *testing.T) {
	s := getSession(t)
	keys := s.round1[0].out.Keys

	t.Run("bad decommitment", func(t *testing.T) {
		decommits := append([]*DecommitMessage1(nil), s.decommits...)
		tampered := *decommits[1]
		_, tampered.Y = sample.ScalarPointPair(rand.Reader)
		decommits[1] = &tampered
		_, err := Stage2(&Stage2Input{Keys: keys, Broadcasts: s.broadcasts, Decommits: decommits, Parameters: parameters})
		requireBlame(t, err, protocol.ErrVerification, 2, ErrStage2Decommit)
	})

	t.Run("swapped mod proof", func(t *testing.T) {
		broadcasts := append([]*BroadcastMessage1(nil), s.broadcasts...)
		tampered := *broadcasts[2]
		tampered.ModProof = broadcasts[1].ModProof
		broadcasts[2] = &tampered
		_, err := Stage2(&Stage2Input{Keys: keys, Broadcasts: broadcasts, Decommits: s.decommits, Parameters: parameters})
		requireBlame(t, err, protocol.ErrVerification, 3, ErrStage2ZKMod)
	})

	t.Run("lowest culprit wins", func(t *testing.T) {
		broadcasts := append([]*BroadcastMessage1(nil), s.broadcasts...)
		for _, i := range []int{2, 1} {
			tampered := *broadcasts[i]
			tampered.PrmProof = s.broadcasts[0].PrmProof
			broadcasts[i] = &tampered
		}
		_, err := Stage2(&Stage2Input{Keys: keys, Broadcasts: broadcasts, Decommits: s.decommits, Parameters: parameters})
		requireBlame(t, err, protocol.ErrVerification, 2, ErrStage2ZKPrm)
	})

	t.Run("missing message", func(t *testing.T) {
		broadcasts := append([]*BroadcastMessage1(nil), s.broadcasts...)
		broadcasts[1] = nil
		_, err := Stage2(&Stage2Input{Keys: keys, Broadcasts: broadcasts, Decommits: s.decommits, Parameters: parameters})
		requireBlame(t, err, protocol.ErrMalformed, 2, ErrMissingMessage)
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := Stage2(&Stage2Input{Keys: keys, Broadcasts: s.broadcasts[:2], Decommits: s.decommits, Parameters: parameters})
		require.Error(t, err)
		assert.ErrorIs(t, err, protocol.ErrShape)
		assert.ErrorIs(t, err, ErrVectorLength)
		_, ok := protocol.Culprit(err)
		assert.False(t, ok)
	})
}

func TestStage3(t *testing.T) {
	s := getSession(t)
	r2 := s.round2[0]
	input := func() *Stage3Input {
		return &Stage3Input{
			Keys:       r2.keys,
			Ys:         r2.ys,
			Schemes:    append([]*vss.Scheme(nil), s.schemes...),
			Shares:     append([]*curve.Scalar(nil), s.shares[0]...),
			Parameters: parameters,
		}
	}

	t.Run("honest", func(t *testing.T) {
		out, err := Stage3(input())
		require.NoError(t, err)
		assert.True(t, out.SharedKeys.XI.Equal(s.keys[0].SharedKeys.XI))
	})

	t.Run("bad share", func(t *testing.T) {
		in := input()
		in.Shares[2] = curve.NewScalar().Add(in.Shares[2], curve.NewScalarUInt32(1))
		_, err := Stage3(in)
		requireBlame(t, err, protocol.ErrVerification, 3, ErrStage3VSSShare)
	})

	t.Run("scheme of another secret", func(t *testing.T) {
		in := input()
		other, _, err := vss.Share(rand.Reader, parameters.Threshold, parameters.ShareCount, sample.Scalar(rand.Reader))
		require.NoError(t, err)
		in.Schemes[1] = other
		_, err = Stage3(in)
		requireBlame(t, err, protocol.ErrVerification, 2, ErrStage3VSSConstant)
	})

	t.Run("wrong degree", func(t *testing.T) {
		in := input()
		scheme, _, err := vss.Share(rand.Reader, 2, parameters.ShareCount, sample.Scalar(rand.Reader))
		require.NoError(t, err)
		in.Schemes[1] = scheme
		_, err = Stage3(in)
		requireBlame(t, err, protocol.ErrVerification, 2, ErrStage3VSSDegree)
	})
}

func TestStage4(t *testing.T) {
	s := getSession(t)
	r3 := s.round3[0]
	input := func() *Stage4Input {
		return &Stage4Input{
			Ys:         r3.ys,
			Schemes:    s.schemes,
			Proofs:     append([]*DLogProof(nil), s.proofs...),
			Parameters: parameters,
		}
	}

	_, err := Stage4(input())
	require.NoError(t, err)

	in := input()
	in.Proofs[1] = &DLogProof{PK: s.proofs[1].PK, Proof: s.proofs[2].Proof}
	_, err = Stage4(in)
	requireBlame(t, err, protocol.ErrVerification, 2, ErrStage4ZKSch)

	in = input()
	in.Proofs[2] = &DLogProof{PK: s.proofs[1].PK, Proof: s.proofs[1].Proof}
	_, err = Stage4(in)
	requireBlame(t, err, protocol.ErrVerification, 3, ErrStage4PublicShare)
}

func TestAssemble(t *testing.T) {
	s := getSession(t)
	r3 := s.round3[1]
	in := &AssembleInput{
		Keys:       r3.keys,
		Parameters: parameters,
		Broadcasts: s.broadcasts,
		Scheme:     r3.scheme,
		SharedKeys: r3.out.SharedKeys,
		Proofs:     s.proofs,
	}
	key, err := Assemble(in)
	require.NoError(t, err)
	assert.True(t, key.PublicKey().Equal(s.keys[1].PublicKey()))

	// proofs listed in the wrong order cannot be assembled
	in.Proofs = []*DLogProof{s.proofs[1], s.proofs[0], s.proofs[2]}
	_, err = Assemble(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInconsistentOutput))
}

func TestStart(t *testing.T) {
	_, err := Start(4, parameters, false, nil)
	assert.ErrorIs(t, err, protocol.ErrShape)
	_, err = Start(1, config.Parameters{Threshold: 3, ShareCount: 3}, false, nil)
	assert.ErrorIs(t, err, protocol.ErrShape)
	assert.ErrorIs(t, err, config.ErrInvalidThreshold)
}

func TestMessagesMarshal(t *testing.T) {
	s := getSession(t)

	data, err := cbor.Marshal(s.broadcasts[0])
	require.NoError(t, err)
	var bc BroadcastMessage1
	require.NoError(t, cbor.Unmarshal(data, &bc))

	data, err = cbor.Marshal(s.decommits[0])
	require.NoError(t, err)
	var dc DecommitMessage1
	require.NoError(t, cbor.Unmarshal(data, &dc))

	data, err = cbor.Marshal(s.round1[0].out.Keys)
	require.NoError(t, err)
	var keys Keys
	require.NoError(t, cbor.Unmarshal(data, &keys))
	assert.True(t, keys.U.Equal(s.round1[0].out.Keys.U))

	// the decoded messages still verify
	broadcasts := append([]*BroadcastMessage1(nil), s.broadcasts...)
	decommits := append([]*DecommitMessage1(nil), s.decommits...)
	broadcasts[0], decommits[0] = &bc, &dc
	_, err = Stage2(&Stage2Input{Keys: &keys, Broadcasts: broadcasts, Decommits: decommits, Parameters: parameters})
	assert.NoError(t, err)
}
