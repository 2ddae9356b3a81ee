// Package curve implements scalar and point arithmetic on secp256k1.
//
// Scalars and points follow the math/big calling convention: the receiver is
// set to the result of the operation and returned, so that
//
//	z := curve.NewScalar().Add(x, y)
//
// allocates a single value. Arguments are never modified.
package curve

import (
	"encoding/binary"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/zeebo/blake3"
)

var (
	// q is the order of the secp256k1 group.
	q *saferith.Modulus

	h *Point
)

func init() {
	q = saferith.ModulusFromBytes(secp256k1.Params().N.Bytes())
	h = deriveH()
}

// Order returns the order q of the group.
func Order() *saferith.Modulus {
	return q
}

// H returns a second generator of the group, whose discrete logarithm with respect
// to the base point is unknown.
//
// It is the first point obtained by hashing the label together with an increasing counter
// into an x coordinate on the curve, with even y.
func H() *Point {
	return NewIdentityPoint().Set(h)
}

func deriveH() *Point {
	const label = "gg20/curve: second generator"
	var ctr [4]byte
	for i := uint32(0); ; i++ {
		binary.BigEndian.PutUint32(ctr[:], i)
		digest := blake3.Sum256(append([]byte(label), ctr[:]...))

		var x, y secp256k1.FieldVal
		if overflow := x.SetByteSlice(digest[:]); overflow {
			continue
		}
		if !secp256k1.DecompressY(&x, false, &y) {
			continue
		}
		y.Normalize()
		var p Point
		p.p.X.Set(&x)
		p.p.Y.Set(&y)
		p.p.Z.SetInt(1)
		return &p
	}
}

// FromHash converts a hash value to a Scalar.
//
// There is some disagreement about how this should be done.
// [NSA] suggests that this is done in the obvious
// manner, but [SECG] truncates the hash to the bit-length of the curve order
// first. We follow [SECG] because that's what OpenSSL does.
// The order of secp256k1 is exactly 256 bits long, so truncation
// keeps the leftmost 32 bytes and no shift is needed.
func FromHash(hash []byte) *Scalar {
	return NewScalar().SetHash(hash)
}
