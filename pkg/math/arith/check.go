package arith

import (
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/nguyenkha/demo-mpc/internal/params"
)

// IsValidNatModN checks that ints are all in the range [1,…,N-1] and are co-prime to N.
func IsValidNatModN(N *saferith.Modulus, ints ...*saferith.Nat) bool {
	for _, i := range ints {
		if i == nil {
			return false
		}
		if _, _, lt := i.CmpMod(N); lt != 1 {
			return false
		}
		if i.IsUnit(N) != 1 {
			return false
		}
	}
	return true
}

// IsInIntervalLEps returns true if n ∈ [-2ˡ⁺ᵉ,…,2ˡ⁺ᵉ].
func IsInIntervalLEps(n *saferith.Int) bool {
	if n == nil {
		return false
	}
	return n.Abs().TrueLen() <= params.LPlusEpsilon
}

// IsInIntervalLPrimeEps returns true if n ∈ [-2ˡ'⁺ᵉ,…,2ˡ'⁺ᵉ].
func IsInIntervalLPrimeEps(n *saferith.Int) bool {
	if n == nil {
		return false
	}
	return n.Abs().TrueLen() <= params.LPrimePlusEpsilon
}

// Jacobi returns the Jacobi symbol (x/N), which is 0, 1, or -1.
// N must be odd. Both values are public.
func Jacobi(x *saferith.Nat, N *saferith.Modulus) int {
	return big.Jacobi(x.Big(), N.Big())
}
