package pedersen

import (
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/math/arith"
)

type Error string

const (
	ErrNilFields    Error = "contains nil field"
	ErrSEqualT      Error = "S cannot be equal to T"
	ErrNotValidModN Error = "S and T must be in [1,…,N-1] and coprime to N"
)

func (e Error) Error() string {
	return fmt.Sprintf("pedersen: %s", string(e))
}

// Parameters are ring-Pedersen parameters (N, s, t), with s, t ∈ ℤₙˣ and s = tˡ for some secret λ.
type Parameters struct {
	n    *arith.Modulus
	s, t *saferith.Nat
}

// New returns a new set of Pedersen parameters.
// Assumes ValidateParameters(n, s, t) returns nil.
func New(n *arith.Modulus, s, t *saferith.Nat) *Parameters {
	return &Parameters{
		s: s,
		t: t,
		n: n,
	}
}

// ValidateParameters check n, s and t, and returns an error if any of the following is true:
// - n, s, or t is nil.
// - s, t are not in [1, …,n-1].
// - s, t are not coprime to N.
// - s = t.
func ValidateParameters(n *saferith.Modulus, s, t *saferith.Nat) error {
	if n == nil || s == nil || t == nil {
		return ErrNilFields
	}
	// s, t ∈ ℤₙˣ
	if !arith.IsValidNatModN(n, s, t) {
		return ErrNotValidModN
	}
	// s ≡ t
	if _, eq, _ := s.Cmp(t); eq == 1 {
		return ErrSEqualT
	}
	return nil
}

// N = p•q, p ≡ q ≡ 3 mod 4.
func (p *Parameters) N() *saferith.Modulus { return p.n.Modulus }

// NArith returns N as an arith.Modulus, which may carry its factorization.
func (p *Parameters) NArith() *arith.Modulus { return p.n }

// S = r² mod N.
func (p *Parameters) S() *saferith.Nat { return p.s }

// T = Sˡ mod N.
func (p *Parameters) T() *saferith.Nat { return p.t }

// Validate checks the parameters with ValidateParameters.
func (p *Parameters) Validate() error {
	if p == nil || p.n == nil {
		return ErrNilFields
	}
	return ValidateParameters(p.n.Modulus, p.s, p.t)
}

// Commit computes sˣ tʸ (mod N)
//
// x and y are taken as saferith.Int, because we want to keep these values in secret,
// in general. The commitment produced, on the other hand, hides their values,
// and can be safely shared.
func (p *Parameters) Commit(x, y *saferith.Int) *saferith.Nat {
	sx := p.n.ExpI(p.s, x)
	ty := p.n.ExpI(p.t, y)

	result := sx.ModMul(sx, ty, p.n.Modulus)

	return result
}

// Verify returns true if sᵃ tᵇ ≡ S Tᵉ (mod N).
func (p *Parameters) Verify(a, b, e *saferith.Int, S, T *saferith.Nat) bool {
	if a == nil || b == nil || S == nil || T == nil || e == nil {
		return false
	}
	nMod := p.n.Modulus
	if !arith.IsValidNatModN(nMod, S, T) {
		return false
	}

	sa := p.n.ExpI(p.s, a)         // sᵃ (mod N)
	tb := p.n.ExpI(p.t, b)         // tᵇ (mod N)
	lhs := sa.ModMul(sa, tb, nMod) // lhs = sᵃ⋅tᵇ (mod N)

	te := p.n.ExpI(T, e)          // Tᵉ (mod N)
	rhs := te.ModMul(te, S, nMod) // rhs = S⋅Tᵉ (mod N)
	return lhs.Eq(rhs) == 1
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (p *Parameters) WriteTo(w io.Writer) (int64, error) {
	if p == nil {
		return 0, io.ErrUnexpectedEOF
	}
	nAll := int64(0)
	// write N, S, T, each prefixed by a two byte length
	for _, i := range []*saferith.Nat{p.n.Nat(), p.s, p.t} {
		b := i.Big().Bytes()
		n, err := w.Write([]byte{byte(len(b) >> 8), byte(len(b))})
		nAll += int64(n)
		if err != nil {
			return nAll, err
		}
		n, err = w.Write(b)
		nAll += int64(n)
		if err != nil {
			return nAll, err
		}
	}
	return nAll, nil
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (*Parameters) Domain() string {
	return "Pedersen Parameters"
}

type parametersWire struct {
	N, S, T []byte
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Parameters) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(parametersWire{
		N: p.n.Big().Bytes(),
		S: arith.NatBytes(p.s),
		T: arith.NatBytes(p.t),
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// The result must still be checked with Validate.
func (p *Parameters) UnmarshalBinary(data []byte) error {
	var w parametersWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	if len(w.N) == 0 || len(w.S) == 0 || len(w.T) == 0 {
		return errors.New("pedersen: missing field")
	}
	p.n = arith.ModulusFromN(saferith.ModulusFromBytes(w.N))
	p.s = new(saferith.Nat).SetBytes(w.S)
	p.t = new(saferith.Nat).SetBytes(w.T)
	return nil
}
