package zksch

import (
	"crypto/rand"

	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/hash"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
)

type (
	Public struct {
		// X = x⋅G
		X *curve.Point
	}
	Private struct {
		X *curve.Scalar
	}
)

type Commitment struct {
	// A = a⋅G
	A *curve.Point
}

type Proof struct {
	*Commitment
	// Z = a + ex (mod q)
	Z *curve.Scalar
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil || p.Commitment == nil || p.A == nil || p.Z == nil {
		return false
	}
	if public.X == nil || public.X.IsIdentity() {
		return false
	}
	if p.A.IsIdentity() || p.Z.IsZero() {
		return false
	}
	return true
}

// NewProof generates a Schnorr proof of knowledge of x such that X = x⋅G.
func NewProof(hash *hash.Hash, public Public, private Private) *Proof {
	a, A := sample.ScalarPointPair(rand.Reader)
	commitment := &Commitment{A: A}

	e, _ := challenge(hash, public, commitment)

	return &Proof{
		Commitment: commitment,
		Z:          curve.NewScalar().MultiplyAdd(e, private.X, a),
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

	lhs := p.Z.ActOnBase()                                    // lhs = z⋅G
	rhs := curve.NewIdentityPoint().Add(e.Act(public.X), p.A) // rhs = A + e⋅X
	return lhs.Equal(rhs)
}

func challenge(hash *hash.Hash, public Public, commitment *Commitment) (*curve.Scalar, error) {
	err := hash.WriteAny(public.X, commitment.A)
	return sample.Scalar(hash.Digest()), err
}

type proofWire struct {
	A *curve.Point
	Z *curve.Scalar
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Proof) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(proofWire{A: p.A, Z: p.Z})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Proof) UnmarshalBinary(data []byte) error {
	var w proofWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	p.Commitment = &Commitment{A: w.A}
	p.Z = w.Z
	return nil
}
