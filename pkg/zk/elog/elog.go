package zkelog

import (
	"crypto/rand"

	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/internal/elgamal"
	"github.com/nguyenkha/demo-mpc/pkg/hash"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
)

type Public struct {
	// E = (L=λ⋅G, M=y⋅G+λ⋅X)
	E *elgamal.Ciphertext

	// ElGamalPublic = X
	ElGamalPublic *elgamal.PublicKey

	// Base = H
	Base *curve.Point

	// Y = y⋅H
	Y *curve.Point
}

type Private struct {
	// Y = y
	Y *curve.Scalar

	// Lambda = λ
	Lambda *curve.Scalar
}

type Commitment struct {
	// A = α⋅G
	A *curve.Point

	// N = m⋅G+α⋅X
	N *curve.Point

	// B = m⋅H
	B *curve.Point
}

type Proof struct {
	*Commitment

	// Z = α+eλ (mod q)
	Z *curve.Scalar

	// U = m+ey (mod q)
	U *curve.Scalar
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil || p.Commitment == nil || p.A == nil || p.N == nil || p.B == nil || p.Z == nil || p.U == nil {
		return false
	}
	if !public.E.Valid() || public.ElGamalPublic == nil || public.Base == nil || public.Y == nil {
		return false
	}
	if p.A.IsIdentity() || p.N.IsIdentity() || p.B.IsIdentity() {
		return false
	}
	if p.Z.IsZero() || p.U.IsZero() {
		return false
	}
	return true
}

func NewProof(hash *hash.Hash, public Public, private Private) *Proof {
	alpha := sample.Scalar(rand.Reader)
	m := sample.Scalar(rand.Reader)

	commitment := &Commitment{
		A: alpha.ActOnBase(), // A = α⋅G
		N: curve.NewIdentityPoint().Add(m.ActOnBase(), alpha.Act(public.ElGamalPublic)), // N = m⋅G+α⋅X
		B: m.Act(public.Base), // B = m⋅H
	}
	e, _ := challenge(hash, public, commitment)

	return &Proof{
		Commitment: commitment,
		Z:          curve.NewScalar().MultiplyAdd(e, private.Lambda, alpha), // Z = α+eλ (mod q)
		U:          curve.NewScalar().MultiplyAdd(e, private.Y, m),          // U = m+ey (mod q)
	}
}

func (p *Proof) Verify(hash *hash.Hash, public Public) bool {
	if !p.IsValid(public) {
		return false
	}

	e, err := challenge(hash, public, p.Commitment)
	if err != nil {
		return false
	}

	{
		lhs := p.Z.ActOnBase()                                      // lhs = z⋅G
		rhs := curve.NewIdentityPoint().Add(e.Act(public.E.L), p.A) // rhs = A+e⋅L
		if !lhs.Equal(rhs) {
			return false
		}
	}

	{
		lhs := curve.NewIdentityPoint().Add(p.U.ActOnBase(), p.Z.Act(public.ElGamalPublic)) // lhs = u⋅G+z⋅X
		rhs := curve.NewIdentityPoint().Add(e.Act(public.E.M), p.N)                          // rhs = N+e⋅M
		if !lhs.Equal(rhs) {
			return false
		}
	}

	{
		lhs := p.U.Act(public.Base)                                // lhs = u⋅H
		rhs := curve.NewIdentityPoint().Add(e.Act(public.Y), p.B) // rhs = B+e⋅Y
		if !lhs.Equal(rhs) {
			return false
		}
	}

	return true
}

func challenge(hash *hash.Hash, public Public, commitment *Commitment) (*curve.Scalar, error) {
	err := hash.WriteAny(public.E, public.ElGamalPublic, public.Y, public.Base,
		commitment.A, commitment.N, commitment.B)
	return sample.Scalar(hash.Digest()), err
}

type proofWire struct {
	A, N, B *curve.Point
	Z, U    *curve.Scalar
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Proof) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(proofWire{A: p.A, N: p.N, B: p.B, Z: p.Z, U: p.U})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Proof) UnmarshalBinary(data []byte) error {
	var w proofWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	p.Commitment = &Commitment{A: w.A, N: w.N, B: w.B}
	p.Z, p.U = w.Z, w.U
	return nil
}
