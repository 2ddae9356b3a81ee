package curve

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomScalar(t *testing.T) *Scalar {
	buf := make([]byte, 32)
	_, err := rand.Read(buf)
	require.NoError(t, err)
	return NewScalar().SetBytes(buf)
}

type marshalTester struct {
	S *Scalar
	P *Point
}

func TestMarshal(t *testing.T) {
	s := marshalTester{
		S: NewScalar().SetNat(new(saferith.Nat).SetUint64(0xED)),
		P: NewBasePoint(),
	}
	data, err := cbor.Marshal(s)
	require.NoError(t, err)
	var s2 marshalTester
	err = cbor.Unmarshal(data, &s2)
	require.NoError(t, err)
	assert.True(t, s.S.Equal(s2.S))
	assert.True(t, s.P.Equal(s2.P))

	_, err = NewIdentityPoint().MarshalBinary()
	assert.Error(t, err, "identity has no encoding")
}

func TestPoint_UnmarshalBinary(t *testing.T) {
	data, err := NewBasePoint().MarshalBinary()
	require.NoError(t, err)

	bad := append([]byte{}, data...)
	bad[0] = 0x04
	assert.Error(t, new(Point).UnmarshalBinary(bad), "uncompressed prefix")
	assert.Error(t, new(Point).UnmarshalBinary(data[:32]), "short")

	var p Point
	require.NoError(t, p.UnmarshalBinary(data))
	assert.True(t, p.Equal(NewBasePoint()))
}

func TestScalar_UnmarshalBinary(t *testing.T) {
	assert.Error(t, new(Scalar).UnmarshalBinary(Order().Bytes()), "q is not canonical")
	assert.Error(t, new(Scalar).UnmarshalBinary([]byte{1}))

	x := randomScalar(t)
	data, err := x.MarshalBinary()
	require.NoError(t, err)
	var y Scalar
	require.NoError(t, y.UnmarshalBinary(data))
	assert.True(t, x.Equal(&y))
}

func TestScalarArithmetic(t *testing.T) {
	x, y, z := randomScalar(t), randomScalar(t), randomScalar(t)

	// (x + y) - y = x
	sum := NewScalar().Add(x, y)
	assert.True(t, x.Equal(NewScalar().Subtract(sum, y)))

	// x⋅x⁻¹ = 1
	inv := NewScalar().Invert(x)
	assert.True(t, NewScalar().Multiply(x, inv).Equal(NewScalarUInt32(1)))

	// x⋅y + z
	expected := NewScalar().Add(NewScalar().Multiply(x, y), z)
	assert.True(t, expected.Equal(NewScalar().MultiplyAdd(x, y, z)))

	// x + (-x) = 0
	assert.True(t, NewScalar().Add(x, NewScalar().Negate(x)).IsZero())
}

func TestScalar_SetInt(t *testing.T) {
	x := randomScalar(t)
	neg := new(saferith.Int).SetNat(x.Nat())
	neg.Neg(1)
	assert.True(t, NewScalar().SetInt(neg).Equal(NewScalar().Negate(x)))
	assert.True(t, NewScalar().SetInt(x.Int()).Equal(x))

	// values larger than q are reduced
	qPlusOne := new(saferith.Nat).Add(Order().Nat(), new(saferith.Nat).SetUint64(1), -1)
	assert.True(t, NewScalar().SetNat(qPlusOne).Equal(NewScalarUInt32(1)))
}

func TestPointArithmetic(t *testing.T) {
	x, y := randomScalar(t), randomScalar(t)
	X, Y := x.ActOnBase(), y.ActOnBase()

	// x⋅G + y⋅G = (x+y)⋅G
	lhs := NewIdentityPoint().Add(X, Y)
	rhs := NewScalar().Add(x, y).ActOnBase()
	assert.True(t, lhs.Equal(rhs))

	// X - X = ∞
	assert.True(t, NewIdentityPoint().Subtract(X, X).IsIdentity())

	// y⋅(x⋅G) = (x⋅y)⋅G
	assert.True(t, y.Act(X).Equal(NewScalar().Multiply(x, y).ActOnBase()))

	// identity is neutral
	assert.True(t, NewIdentityPoint().Add(X, NewIdentityPoint()).Equal(X))
	assert.False(t, X.Equal(NewIdentityPoint()))
}

func TestH(t *testing.T) {
	gen := H()
	assert.False(t, gen.IsIdentity())
	assert.False(t, gen.Equal(NewBasePoint()))
	assert.True(t, gen.HasEvenY())
	assert.True(t, gen.Equal(H()), "H must be deterministic")
}

func TestOrder(t *testing.T) {
	want, ok := new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)
	require.True(t, ok)
	assert.Equal(t, 0, want.Cmp(Order().Big()))
	assert.Equal(t, 256, Order().BitLen())

	// q reduces to zero
	assert.True(t, NewScalar().SetNat(Order().Nat()).IsZero())
}

func TestFromHash(t *testing.T) {
	digest := make([]byte, 64)
	digest[31] = 7
	assert.True(t, FromHash(digest).Equal(NewScalarUInt32(7)), "only the first 32 bytes are used")
}
