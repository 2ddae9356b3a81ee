package curve

import (
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/nguyenkha/demo-mpc/internal/params"
)

// Point is an element of the secp256k1 group, stored in Jacobian coordinates.
//
// The zero value is the identity.
type Point struct {
	p secp256k1.JacobianPoint
}

// NewIdentityPoint returns the identity element.
func NewIdentityPoint() *Point {
	return &Point{}
}

// NewBasePoint returns a point initialized to the base point G.
func NewBasePoint() *Point {
	var v Point
	secp256k1.ScalarBaseMultNonConst(new(secp256k1.ModNScalar).SetInt(1), &v.p)
	return &v
}

// Set sets v = u, and returns v.
func (v *Point) Set(u *Point) *Point {
	v.p.Set(&u.p)
	return v
}

// Add sets v = p + q, and returns v.
func (v *Point) Add(p, q *Point) *Point {
	var r secp256k1.JacobianPoint
	secp256k1.AddNonConst(&p.p, &q.p, &r)
	v.p.Set(&r)
	return v
}

// Subtract sets v = p - q, and returns v.
func (v *Point) Subtract(p, q *Point) *Point {
	var qNeg Point
	qNeg.Negate(q)
	return v.Add(p, &qNeg)
}

// Negate sets v = -p, and returns v.
func (v *Point) Negate(p *Point) *Point {
	v.Set(p)
	v.p.Y.Normalize()
	v.p.Y.Negate(1)
	v.p.Y.Normalize()
	return v
}

// ScalarBaseMult sets v = x⋅G, and returns v.
func (v *Point) ScalarBaseMult(x *Scalar) *Point {
	var r secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&x.s, &r)
	v.p.Set(&r)
	return v
}

// ScalarMult sets v = x⋅q, and returns v.
func (v *Point) ScalarMult(x *Scalar, q *Point) *Point {
	var r secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&x.s, &q.p, &r)
	v.p.Set(&r)
	return v
}

// IsIdentity returns true if the point is ∞.
func (v *Point) IsIdentity() bool {
	return (v.p.X.IsZero() && v.p.Y.IsZero()) || v.p.Z.IsZero()
}

// Equal returns true if v and u represent the same group element.
func (v *Point) Equal(u *Point) bool {
	if v.IsIdentity() || u.IsIdentity() {
		return v.IsIdentity() && u.IsIdentity()
	}
	a, b := v.affine(), u.affine()
	return a.X.Equals(&b.X) && a.Y.Equals(&b.Y)
}

// XScalar returns the x coordinate of v reduced mod q.
func (v *Point) XScalar() *Scalar {
	a := v.affine()
	var s Scalar
	s.s.SetByteSlice(a.X.Bytes()[:])
	return &s
}

// XBytes returns the 32 byte big-endian x coordinate of v.
func (v *Point) XBytes() []byte {
	a := v.affine()
	b := a.X.Bytes()
	return b[:]
}

// HasEvenY returns true if the affine y coordinate of v is even.
func (v *Point) HasEvenY() bool {
	a := v.affine()
	return !a.Y.IsOdd()
}

// XOverflowsOrder returns true if the affine x coordinate of v is at least q.
//
// This can only happen with negligible probability, but it matters for public key recovery.
func (v *Point) XOverflowsOrder() bool {
	a := v.affine()
	var x secp256k1.ModNScalar
	return x.SetByteSlice(a.X.Bytes()[:])
}

// ToPublicKey returns the point as a public key usable with secp256k1/v4/ecdsa.
func (v *Point) ToPublicKey() *secp256k1.PublicKey {
	a := v.affine()
	return secp256k1.NewPublicKey(&a.X, &a.Y)
}

// FromPublicKey returns a new Point from a secp256k1 public key.
func FromPublicKey(pk *secp256k1.PublicKey) *Point {
	var v Point
	pk.AsJacobian(&v.p)
	return &v
}

// affine returns a normalized copy of v, leaving v untouched so that
// points may be shared between goroutines.
func (v *Point) affine() secp256k1.JacobianPoint {
	var a secp256k1.JacobianPoint
	a.Set(&v.p)
	a.ToAffine()
	return a
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
// It writes the compressed point, or 33 zero bytes for the identity.
func (v *Point) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, params.BytesPoint)
	if !v.IsIdentity() {
		v.putCompressed(buf)
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (*Point) Domain() string {
	return "Point"
}
