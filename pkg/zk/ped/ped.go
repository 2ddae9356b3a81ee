// Package zkped proves knowledge of the opening of a Pedersen commitment over the curve,
// T = σ⋅G + l⋅H, where H is the second generator curve.H().
package zkped

import (
	"crypto/rand"

	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/hash"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
)

type (
	Public struct {
		// T = σ⋅G + l⋅H
		T *curve.Point
	}
	Private struct {
		Sigma, L *curve.Scalar
	}
)

type Commitment struct {
	// Alpha = a⋅G + b⋅H
	Alpha *curve.Point
}

type Proof struct {
	*Commitment
	// T = a + eσ (mod q)
	// U = b + el (mod q)
	T, U *curve.Scalar
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil || p.Commitment == nil || p.Alpha == nil || p.T == nil || p.U == nil {
		return false
	}
	if public.T == nil || public.T.IsIdentity() || p.Alpha.IsIdentity() {
		return false
	}
	return true
}

func NewProof(hash *hash.Hash, public Public, private Private) *Proof {
	a := sample.Scalar(rand.Reader)
	b := sample.Scalar(rand.Reader)
	H := curve.H()

	commitment := &Commitment{
		Alpha: curve.NewIdentityPoint().Add(a.ActOnBase(), b.Act(H)),
	}

	e, _ := challenge(hash, public, commitment)

	return &Proof{
		Commitment: commitment,
		T:          curve.NewScalar().MultiplyAdd(e, private.Sigma, a),
		U:          curve.NewScalar().MultiplyAdd(e, private.L, b),
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

	// lhs = t⋅G + u⋅H
	lhs := curve.NewIdentityPoint().Add(p.T.ActOnBase(), p.U.Act(curve.H()))
	// rhs = Alpha + e⋅T
	rhs := curve.NewIdentityPoint().Add(p.Alpha, e.Act(public.T))
	return lhs.Equal(rhs)
}

func challenge(hash *hash.Hash, public Public, commitment *Commitment) (*curve.Scalar, error) {
	err := hash.WriteAny(curve.H(), public.T, commitment.Alpha)
	return sample.Scalar(hash.Digest()), err
}

type proofWire struct {
	Alpha *curve.Point
	T, U  *curve.Scalar
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Proof) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(proofWire{Alpha: p.Alpha, T: p.T, U: p.U})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Proof) UnmarshalBinary(data []byte) error {
	var w proofWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	p.Commitment = &Commitment{Alpha: w.Alpha}
	p.T, p.U = w.T, w.U
	return nil
}
