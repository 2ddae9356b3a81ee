package sample

import (
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/nguyenkha/demo-mpc/internal/params"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
)

const maxIterations = 255

var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

func mustReadBits(rand io.Reader, buf []byte) {
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err == nil {
			return
		}
	}
	panic(ErrMaxIterations)
}

// ModN samples an element of ℤₙ.
func ModN(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	out := new(saferith.Nat)
	buf := make([]byte, (n.BitLen()+7)/8)
	for {
		mustReadBits(rand, buf)
		out.SetBytes(buf)
		_, _, lt := out.CmpMod(n)
		if lt == 1 {
			break
		}
	}
	return out
}

// UnitModN returns a u ∈ ℤₙˣ.
func UnitModN(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	for i := 0; i < maxIterations; i++ {
		u := ModN(rand, n)
		if u.IsUnit(n) == 1 {
			return u
		}
	}
	panic(ErrMaxIterations)
}

// QNR samples a random quadratic non-residue in ℤₙ, i.e. an element whose Jacobi symbol is -1.
//
// The result is public, so the variable time Jacobi computation of math/big is fine.
func QNR(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	nBig := n.Big()
	for i := 0; i < maxIterations; i++ {
		w := ModN(rand, n)
		if big.Jacobi(w.Big(), nBig) == -1 {
			return w
		}
	}
	panic(ErrMaxIterations)
}

// Pedersen generates the s, t, λ such that s = tˡ.
func Pedersen(rand io.Reader, phi *saferith.Nat, n *saferith.Modulus) (s, t, lambda *saferith.Nat) {
	phiMod := saferith.ModulusFromNat(phi)

	lambda = ModN(rand, phiMod)

	tau := UnitModN(rand, n)
	// t = τ² mod N
	t = tau.ModMul(tau, tau, n)
	// s = tˡ mod N
	s = new(saferith.Nat).Exp(t, lambda, n)

	return
}

// Scalar returns a new uniformly random *curve.Scalar.
//
// 128 extra bits are sampled before reducing mod q, which makes the bias negligible.
func Scalar(rand io.Reader) *curve.Scalar {
	buffer := make([]byte, params.BytesScalar+params.SecBytes/2)
	mustReadBits(rand, buffer)
	return curve.NewScalar().SetNat(new(saferith.Nat).SetBytes(buffer))
}

// ScalarUnit returns a new uniformly random non-zero *curve.Scalar.
func ScalarUnit(rand io.Reader) *curve.Scalar {
	for i := 0; i < maxIterations; i++ {
		s := Scalar(rand)
		if !s.IsZero() {
			return s
		}
	}
	panic(ErrMaxIterations)
}

// ScalarPointPair returns a new *curve.Scalar/*curve.Point tuple (x,X) such that X = x⋅G.
func ScalarPointPair(rand io.Reader) (*curve.Scalar, *curve.Point) {
	s := Scalar(rand)
	return s, s.ActOnBase()
}
