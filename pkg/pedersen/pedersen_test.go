package pedersen

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/math/arith"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toy parameters over N = 23⋅11, which are large enough for the algebra
func toyParameters(t *testing.T) *Parameters {
	p := new(saferith.Nat).SetUint64(23)
	q := new(saferith.Nat).SetUint64(11)
	n := arith.ModulusFromFactors(p, q)
	phi := new(saferith.Nat).SetUint64(22 * 10)
	s, tt, _ := sample.Pedersen(rand.Reader, phi, n.Modulus)
	if s.Eq(tt) == 1 {
		return toyParameters(t)
	}
	params := New(n, s, tt)
	require.NoError(t, params.Validate())
	return params
}

func TestParameters_Verify(t *testing.T) {
	ped := toyParameters(t)

	x := sample.IntervalL(rand.Reader)
	y := sample.IntervalL(rand.Reader)
	alpha := sample.IntervalL(rand.Reader)
	beta := sample.IntervalL(rand.Reader)
	e := sample.IntervalScalar(rand.Reader)

	S := ped.Commit(x, y)
	A := ped.Commit(alpha, beta)
	if !arith.IsValidNatModN(ped.N(), S, A) {
		t.Skip("toy modulus produced a non unit commitment")
	}

	// a = α + e⋅x, b = β + e⋅y
	a := new(saferith.Int).Mul(e, x, -1)
	a.Add(a, alpha, -1)
	b := new(saferith.Int).Mul(e, y, -1)
	b.Add(b, beta, -1)

	assert.True(t, ped.Verify(a, b, e, A, S))
	assert.False(t, ped.Verify(b, a, e, A, S))
	assert.False(t, ped.Verify(a, b, e, nil, S))
}

func TestValidateParameters(t *testing.T) {
	n := saferith.ModulusFromUint64(23 * 11)
	s := new(saferith.Nat).SetUint64(4)
	assert.Error(t, ValidateParameters(n, s, s), "s = t")
	assert.Error(t, ValidateParameters(n, s, new(saferith.Nat).SetUint64(11)), "not a unit")
	assert.Error(t, ValidateParameters(nil, s, s))
	assert.NoError(t, ValidateParameters(n, s, new(saferith.Nat).SetUint64(9)))
}

func TestParameters_Marshal(t *testing.T) {
	ped := toyParameters(t)
	data, err := cbor.Marshal(ped)
	require.NoError(t, err)
	var decoded Parameters
	require.NoError(t, cbor.Unmarshal(data, &decoded))
	assert.NoError(t, decoded.Validate())
	assert.True(t, decoded.N().Nat().Eq(ped.N().Nat()) == 1)
	assert.True(t, decoded.S().Eq(ped.S()) == 1)
	assert.True(t, decoded.T().Eq(ped.T()) == 1)
}
