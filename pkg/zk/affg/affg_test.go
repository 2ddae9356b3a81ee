package zkaffg

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/hash"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
	"github.com/nguyenkha/demo-mpc/pkg/zk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type affgFixture struct {
	public  Public
	private Private
}

func newFixture(t *testing.T) affgFixture {
	t.Helper()
	verifierPaillier := zk.VerifierPaillierPublic
	verifierPedersen := zk.Pedersen
	prover := zk.ProverPaillierPublic

	c := new(saferith.Int).SetNat(new(saferith.Nat).SetUint64(12))
	C, _ := verifierPaillier.Enc(rand.Reader, c)

	x := sample.IntervalL(rand.Reader)
	X := curve.NewScalar().SetInt(x).ActOnBase()

	y := sample.IntervalLPrime(rand.Reader)
	Y, rhoY := prover.Enc(rand.Reader, y)

	tmp := C.Clone().Mul(verifierPaillier, x)
	D, rho := verifierPaillier.Enc(rand.Reader, y)
	D.Add(verifierPaillier, tmp)

	return affgFixture{
		public: Public{
			Kv:       C,
			Dv:       D,
			Fp:       Y,
			Xp:       X,
			Prover:   prover,
			Verifier: verifierPaillier,
			Aux:      verifierPedersen,
		},
		private: Private{
			X: x,
			Y: y,
			S: rho,
			R: rhoY,
		},
	}
}

func TestAffG(t *testing.T) {
	f := newFixture(t)

	proof := NewProof(hash.New(), f.public, f.private)
	assert.True(t, proof.Verify(hash.New(), f.public))

	out, err := cbor.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := &Proof{}
	require.NoError(t, cbor.Unmarshal(out, proof2), "failed to unmarshal proof")
	out2, err := cbor.Marshal(proof2)
	require.NoError(t, err, "failed to marshal 2nd proof")
	proof3 := &Proof{}
	require.NoError(t, cbor.Unmarshal(out2, proof3), "failed to unmarshal 2nd proof")

	assert.True(t, proof3.Verify(hash.New(), f.public))
}

func TestAffGTampered(t *testing.T) {
	f := newFixture(t)
	proof := NewProof(hash.New(), f.public, f.private)

	// X does not match the multiplier hidden in D
	public := f.public
	public.Xp = sample.Scalar(rand.Reader).ActOnBase()
	assert.False(t, proof.Verify(hash.New(), public))

	// D is re-randomized
	public = f.public
	public.Dv = f.public.Dv.Clone()
	public.Dv.Randomize(rand.Reader, f.public.Verifier, nil)
	assert.False(t, proof.Verify(hash.New(), public))

	// F encrypts a different value
	public = f.public
	other, _ := f.public.Prover.Enc(rand.Reader, sample.IntervalL(rand.Reader))
	public.Fp = other
	assert.False(t, proof.Verify(hash.New(), public))

	var empty *Proof
	assert.False(t, empty.Verify(hash.New(), f.public))
	assert.False(t, (&Proof{}).Verify(hash.New(), f.public))
}
