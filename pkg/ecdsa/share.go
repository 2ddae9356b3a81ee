package ecdsa

import (
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
)

// SignatureShare represents an individual additive share of the signature's "s" component.
type SignatureShare = curve.Scalar

// NewSignatureShare returns this party's share sᵢ = m⋅kᵢ + r⋅σᵢ, where s = ∑ⱼsⱼ,
// r = R.x mod q and σᵢ is the additive share of k⋅x.
func NewSignatureShare(digest []byte, R *curve.Point, kShare, sigmaShare *curve.Scalar) *SignatureShare {
	m := curve.FromHash(digest)
	r := R.XScalar()
	s := curve.NewScalar().Multiply(m, kShare)
	return s.MultiplyAdd(r, sigmaShare, s)
}

// Combine returns the normalized signature (R, ∑ⱼsⱼ).
func Combine(R *curve.Point, shares ...*SignatureShare) *Signature {
	s := curve.NewScalar()
	for _, share := range shares {
		s.Add(s, share)
	}
	return NewSignature(R, s)
}

// VerifySignatureShare checks sⱼ⋅R = m⋅Rⱼ + r⋅Sⱼ, where Rⱼ = kⱼ⋅R and Sⱼ = σⱼ⋅R.
// It should be called if the combined signature is not valid.
func VerifySignatureShare(digest []byte, R, RShare, SShare *curve.Point, share *SignatureShare) bool {
	if share == nil || RShare == nil || SShare == nil {
		return false
	}
	m := curve.FromHash(digest)
	r := R.XScalar()
	lhs := share.Act(R)
	rhs := curve.NewIdentityPoint().Add(m.Act(RShare), r.Act(SShare))
	return lhs.Equal(rhs)
}
