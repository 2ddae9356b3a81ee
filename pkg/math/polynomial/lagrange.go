package polynomial

import (
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/party"
)

// Lagrange returns the Lagrange coefficients at 0 for all parties in the interpolation domain.
func Lagrange(interpolationDomain []party.ID) map[party.ID]*curve.Scalar {
	coefficients := make(map[party.ID]*curve.Scalar, len(interpolationDomain))
	for _, j := range interpolationDomain {
		coefficients[j] = LagrangeSingle(interpolationDomain, j)
	}
	return coefficients
}

// LagrangeSingle returns the Lagrange coefficient lⱼ(0) of the party j in the interpolation domain.
//
// The following formulas are taken from
// https://en.wikipedia.org/wiki/Lagrange_polynomial
//
//	         x₀ ⋅⋅⋅ xₖ (without xⱼ)
//	lⱼ(0) = -----------------------------
//	         ∏ (xᵢ - xⱼ), for i ≠ j
func LagrangeSingle(interpolationDomain []party.ID, j party.ID) *curve.Scalar {
	xJ := j.Scalar()
	num := curve.NewScalarUInt32(1)
	denom := curve.NewScalarUInt32(1)
	for _, id := range interpolationDomain {
		if id == j {
			continue
		}
		xM := id.Scalar()
		// num = x₀ * … * xₖ
		num.Multiply(num, xM)
		// denom = (x₀ - xⱼ) … (xₖ - xⱼ)
		xM.Subtract(xM, xJ)
		denom.Multiply(denom, xM)
	}
	denom.Invert(denom)
	return num.Multiply(num, denom)
}
