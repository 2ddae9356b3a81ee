package curve

import (
	"io"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/nguyenkha/demo-mpc/internal/params"
)

// Scalar is an integer modulo the group order q.
type Scalar struct {
	s secp256k1.ModNScalar
}

// NewScalar returns a new zero Scalar.
func NewScalar() *Scalar {
	return &Scalar{}
}

// NewScalarUInt32 returns a new Scalar set to x.
func NewScalarUInt32(x uint32) *Scalar {
	var s Scalar
	s.s.SetInt(x)
	return &s
}

// MultiplyAdd sets s = x * y + z mod q, and returns s.
func (s *Scalar) MultiplyAdd(x, y, z *Scalar) *Scalar {
	var r secp256k1.ModNScalar
	r.Mul2(&x.s, &y.s).Add(&z.s)
	s.s.Set(&r)
	return s
}

// Add sets s = x + y mod q, and returns s.
func (s *Scalar) Add(x, y *Scalar) *Scalar {
	s.s.Add2(&x.s, &y.s)
	return s
}

// Subtract sets s = x - y mod q, and returns s.
func (s *Scalar) Subtract(x, y *Scalar) *Scalar {
	var yNeg secp256k1.ModNScalar
	yNeg.NegateVal(&y.s)
	s.s.Add2(&x.s, &yNeg)
	return s
}

// Negate sets s = -x mod q, and returns s.
func (s *Scalar) Negate(x *Scalar) *Scalar {
	s.s.NegateVal(&x.s)
	return s
}

// Multiply sets s = x * y mod q, and returns s.
func (s *Scalar) Multiply(x, y *Scalar) *Scalar {
	s.s.Mul2(&x.s, &y.s)
	return s
}

// Invert sets s to the inverse of a nonzero scalar x, and returns s.
//
// The inverse of zero is zero.
func (s *Scalar) Invert(x *Scalar) *Scalar {
	s.s.InverseValNonConst(&x.s)
	return s
}

// Set sets s = x, and returns s.
func (s *Scalar) Set(x *Scalar) *Scalar {
	s.s.Set(&x.s)
	return s
}

// SetUInt32 sets s = i, and returns s.
func (s *Scalar) SetUInt32(i uint32) *Scalar {
	s.s.SetInt(i)
	return s
}

// SetBytes interprets in as a big-endian integer, reduces it mod q, and returns s.
// Inputs longer than 32 bytes are truncated to their first 32 bytes.
func (s *Scalar) SetBytes(in []byte) *Scalar {
	s.s.SetByteSlice(in)
	return s
}

// SetCanonicalBytes sets s to the 32 byte big-endian integer in,
// and reports whether in was a canonical encoding, i.e. smaller than q.
func (s *Scalar) SetCanonicalBytes(in []byte) (*Scalar, bool) {
	if len(in) != params.BytesScalar {
		return s, false
	}
	overflow := s.s.SetByteSlice(in)
	return s, !overflow
}

// SetHash sets s to the hash value interpreted as in ECDSA, and returns s.
func (s *Scalar) SetHash(hash []byte) *Scalar {
	s.s.SetByteSlice(hash)
	return s
}

// SetNat sets s = x mod q, and returns s.
func (s *Scalar) SetNat(x *saferith.Nat) *Scalar {
	reduced := new(saferith.Nat).Mod(x, q)
	s.s.SetByteSlice(reduced.Bytes())
	return s
}

// SetInt sets s = x mod q, where x may be negative, and returns s.
func (s *Scalar) SetInt(x *saferith.Int) *Scalar {
	s.SetNat(x.Abs())
	if x.IsNegative() == 1 {
		s.s.Negate()
	}
	return s
}

// Nat returns s as a natural number in [0, q).
func (s *Scalar) Nat() *saferith.Nat {
	b := s.s.Bytes()
	return new(saferith.Nat).SetBytes(b[:])
}

// Int returns s as an integer in [0, q).
func (s *Scalar) Int() *saferith.Int {
	return new(saferith.Int).SetNat(s.Nat())
}

// Bytes returns the canonical 32 bytes big-endian encoding of s.
func (s *Scalar) Bytes() []byte {
	b := s.s.Bytes()
	return b[:]
}

// Equal returns true if s and t are equal.
func (s *Scalar) Equal(t *Scalar) bool {
	return s.s.Equals(&t.s)
}

// IsZero returns true if s = 0.
func (s *Scalar) IsZero() bool {
	return s.s.IsZero()
}

// IsOverHalfOrder returns true if s > q/2.
func (s *Scalar) IsOverHalfOrder() bool {
	return s.s.IsOverHalfOrder()
}

// ActOnBase returns s⋅G.
func (s *Scalar) ActOnBase() *Point {
	return NewIdentityPoint().ScalarBaseMult(s)
}

// Act returns s⋅p.
func (s *Scalar) Act(p *Point) *Point {
	return NewIdentityPoint().ScalarMult(s, p)
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (s *Scalar) WriteTo(w io.Writer) (int64, error) {
	b := s.s.Bytes()
	n, err := w.Write(b[:])
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (*Scalar) Domain() string {
	return "Scalar"
}
