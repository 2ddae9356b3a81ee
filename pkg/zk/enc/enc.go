package zkenc

import (
	"crypto/rand"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/hash"
	"github.com/nguyenkha/demo-mpc/pkg/math/arith"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
	"github.com/nguyenkha/demo-mpc/pkg/paillier"
	"github.com/nguyenkha/demo-mpc/pkg/pedersen"
)

type (
	Public struct {
		// K = Enc₀(k;ρ)
		K *paillier.Ciphertext

		Prover *paillier.PublicKey
		Aux    *pedersen.Parameters
	}
	Private struct {
		// K = k ∈ 2ˡ = Dec₀(K)
		// plaintext of K
		K *saferith.Int

		// Rho = ρ
		// nonce of K
		Rho *saferith.Nat
	}
)

type Commitment struct {
	// S = sᵏtᵘ
	S *saferith.Nat
	// A = Enc₀ (α, r)
	A *paillier.Ciphertext
	// C = sᵃtᵍ
	C *saferith.Nat
}

type Proof struct {
	*Commitment
	// Z₁ = α + e⋅k
	Z1 *saferith.Int
	// Z₂ = r ⋅ ρᵉ mod N₀
	Z2 *saferith.Nat
	// Z₃ = γ + e⋅μ
	Z3 *saferith.Int
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil || p.Commitment == nil || p.Z1 == nil || p.Z2 == nil || p.Z3 == nil {
		return false
	}
	if public.Prover == nil || public.Aux == nil || !public.Prover.ValidateCiphertexts(public.K) {
		return false
	}
	if !public.Prover.ValidateCiphertexts(p.A) {
		return false
	}
	if !arith.IsValidNatModN(public.Prover.N(), p.Z2) {
		return false
	}
	return true
}

// NewProof generates a proof that the plaintext of K lies in ±2ˡ⁺ᵉ.
func NewProof(hash *hash.Hash, public Public, private Private) *Proof {
	N := public.Prover.N()

	alpha := sample.IntervalLEps(rand.Reader)
	r := sample.UnitModN(rand.Reader, N)
	mu := sample.IntervalLN(rand.Reader)
	gamma := sample.IntervalLEpsN(rand.Reader)

	A := public.Prover.EncWithNonce(alpha, r)

	commitment := &Commitment{
		S: public.Aux.Commit(private.K, mu),
		A: A,
		C: public.Aux.Commit(alpha, gamma),
	}

	e, _ := challenge(hash, public, commitment)

	z1 := new(saferith.Int).Mul(e, private.K, -1)
	z1.Add(z1, alpha, -1)

	z2 := new(saferith.Nat).ExpI(private.Rho, e, N)
	z2.ModMul(z2, r, N)

	z3 := new(saferith.Int).Mul(e, mu, -1)
	z3.Add(z3, gamma, -1)

	return &Proof{
		Commitment: commitment,
		Z1:         z1,
		Z2:         z2,
		Z3:         z3,
	}
}

func (p *Proof) Verify(hash *hash.Hash, public Public) bool {
	if !p.IsValid(public) {
		return false
	}

	prover := public.Prover

	if !arith.IsInIntervalLEps(p.Z1) {
		return false
	}

	e, err := challenge(hash, public, p.Commitment)
	if err != nil {
		return false
	}

	if !public.Aux.Verify(p.Z1, p.Z3, e, p.C, p.S) {
		return false
	}

	{
		// lhs = Enc(z₁;z₂)
		lhs := prover.EncWithNonce(p.Z1, p.Z2)

		// rhs = (e ⊙ K) ⊕ A
		rhs := public.K.Clone().Mul(prover, e).Add(prover, p.A)
		if !lhs.Equal(rhs) {
			return false
		}
	}

	return true
}

func challenge(hash *hash.Hash, public Public, commitment *Commitment) (*saferith.Int, error) {
	err := hash.WriteAny(public.Aux, public.Prover, public.K,
		commitment.S, commitment.A, commitment.C)
	return sample.IntervalScalar(hash.Digest()), err
}

type proofWire struct {
	S, C       []byte
	A          *paillier.Ciphertext
	Z1, Z2, Z3 []byte
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Proof) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(proofWire{
		S:  arith.NatBytes(p.S),
		C:  arith.NatBytes(p.C),
		A:  p.A,
		Z1: arith.IntBytes(p.Z1),
		Z2: arith.NatBytes(p.Z2),
		Z3: arith.IntBytes(p.Z3),
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Proof) UnmarshalBinary(data []byte) error {
	var (
		w   proofWire
		err error
	)
	if err = cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	p.Commitment = &Commitment{A: w.A}
	if p.S, err = arith.NatFromBytes(w.S); err != nil {
		return err
	}
	if p.C, err = arith.NatFromBytes(w.C); err != nil {
		return err
	}
	if p.Z1, err = arith.IntFromBytes(w.Z1); err != nil {
		return err
	}
	if p.Z2, err = arith.NatFromBytes(w.Z2); err != nil {
		return err
	}
	if p.Z3, err = arith.IntFromBytes(w.Z3); err != nil {
		return err
	}
	return nil
}
