package sample

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/nguyenkha/demo-mpc/internal/params"
	"github.com/nguyenkha/demo-mpc/pkg/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModN(t *testing.T) {
	n := saferith.ModulusFromUint64(3 * 11 * 65519)
	x := ModN(rand.Reader, n)
	_, _, lt := x.CmpMod(n)
	assert.Equal(t, saferith.Choice(1), lt, "ModN generated a number >= %v: %v", n, x)
}

func TestUnitModN(t *testing.T) {
	n := saferith.ModulusFromUint64(3 * 5)
	for i := 0; i < 20; i++ {
		assert.Equal(t, saferith.Choice(1), UnitModN(rand.Reader, n).IsUnit(n))
	}
}

func TestQNR(t *testing.T) {
	n := saferith.ModulusFromUint64(7 * 11)
	w := QNR(rand.Reader, n)
	assert.Equal(t, -1, big.Jacobi(w.Big(), n.Big()))
}

const blumPrimeProbabilityIterations = 20

func TestBlumPrime(t *testing.T) {
	if testing.Short() {
		t.Skip("safe prime generation is slow")
	}
	p := BlumPrime(rand.Reader).Big()
	assert.True(t, p.ProbablyPrime(blumPrimeProbabilityIterations), "BlumPrime generated a non prime number: %v", p)
	q := new(big.Int).Sub(p, new(big.Int).SetUint64(1))
	q.Rsh(q, 1)
	assert.True(t, q.ProbablyPrime(blumPrimeProbabilityIterations), "p isn't safe because (p - 1) / 2 isn't prime")
}

func TestPaillierFast(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	p, q := Paillier(rand.Reader, pl, false)
	for _, x := range []*saferith.Nat{p, q} {
		b := x.Big()
		require.True(t, b.ProbablyPrime(blumPrimeProbabilityIterations))
		assert.Equal(t, params.BitsBlumPrime, b.BitLen())
		assert.Equal(t, uint(1), b.Bit(0))
		assert.Equal(t, uint(1), b.Bit(1), "p must be 3 mod 4")
	}
	assert.NotEqual(t, 1, int(p.Eq(q)))
}

func TestIntervals(t *testing.T) {
	r := mrand.New(mrand.NewSource(0))
	for i := 0; i < 20; i++ {
		assert.LessOrEqual(t, IntervalL(r).Abs().TrueLen(), params.L)
		assert.LessOrEqual(t, IntervalLEps(r).Abs().TrueLen(), params.LPlusEpsilon)
		assert.LessOrEqual(t, IntervalLPrime(r).Abs().TrueLen(), params.LPrime)
		assert.LessOrEqual(t, IntervalScalar(r).Abs().TrueLen(), params.SecParam)
	}
}

func TestPedersen(t *testing.T) {
	// p = 23, q = 11 are safe primes
	phi := new(saferith.Nat).SetUint64(22 * 10)
	n := saferith.ModulusFromUint64(23 * 11)
	s, tt, lambda := Pedersen(rand.Reader, phi, n)
	assert.True(t, s.Eq(new(saferith.Nat).Exp(tt, lambda, n)) == 1)
}

func TestScalar(t *testing.T) {
	x := ScalarUnit(rand.Reader)
	assert.False(t, x.IsZero())
	y, Y := ScalarPointPair(rand.Reader)
	assert.True(t, y.ActOnBase().Equal(Y))
}

// This exists to save the results of functions we want to benchmark, to avoid
// having them optimized away.
var resultNat *saferith.Nat

func BenchmarkBlumPrime(b *testing.B) {
	for i := 0; i < b.N; i++ {
		resultNat = BlumPrime(rand.Reader)
	}
}

func BenchmarkModN(b *testing.B) {
	b.StopTimer()
	nBytes := make([]byte, (params.BitsPaillier+7)/8)
	_, _ = rand.Read(nBytes)
	n := saferith.ModulusFromBytes(nBytes)
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		resultNat = ModN(rand.Reader, n)
	}
}
