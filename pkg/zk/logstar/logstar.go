package zklogstar

import (
	"crypto/rand"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/hash"
	"github.com/nguyenkha/demo-mpc/pkg/math/arith"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
	"github.com/nguyenkha/demo-mpc/pkg/paillier"
	"github.com/nguyenkha/demo-mpc/pkg/pedersen"
)

type (
	Public struct {
		// C = Enc₀(x;ρ)
		C *paillier.Ciphertext

		// X = x⋅G
		X *curve.Point

		// G is the base point of the curve.
		// If G = nil, the default base point is used.
		G *curve.Point

		Prover *paillier.PublicKey
		Aux    *pedersen.Parameters
	}
	Private struct {
		// X is the plaintext of C and the discrete log of X.
		X *saferith.Int

		// Rho = ρ is nonce used to encrypt C.
		Rho *saferith.Nat
	}
)

type Commitment struct {
	// S = sˣtᵘ (mod N)
	S *saferith.Nat
	// A = Enc₀(alpha; r)
	A *paillier.Ciphertext
	// Y = α⋅G
	Y *curve.Point
	// D = sᵃtᵍ (mod N)
	D *saferith.Nat
}

type Proof struct {
	*Commitment
	// Z1 = α + e x
	Z1 *saferith.Int
	// Z2 = r ρᵉ mod N
	Z2 *saferith.Nat
	// Z3 = γ + e μ
	Z3 *saferith.Int
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil || p.Commitment == nil || p.Y == nil || p.S == nil || p.D == nil ||
		p.Z1 == nil || p.Z2 == nil || p.Z3 == nil {
		return false
	}
	if public.Prover == nil || public.Aux == nil || public.X == nil {
		return false
	}
	if !public.Prover.ValidateCiphertexts(public.C, p.A) {
		return false
	}
	if !arith.IsValidNatModN(public.Prover.N(), p.Z2) {
		return false
	}
	if p.Y.IsIdentity() {
		return false
	}
	return true
}

// NewProof generates a proof that the plaintext x of C lies in ±2ˡ⁺ᵉ,
// and is the discrete log of X with respect to G.
func NewProof(hash *hash.Hash, public Public, private Private) *Proof {
	N := public.Prover.N()

	if public.G == nil {
		public.G = curve.NewBasePoint()
	}

	alpha := sample.IntervalLEps(rand.Reader)
	r := sample.UnitModN(rand.Reader, N)
	mu := sample.IntervalLN(rand.Reader)
	gamma := sample.IntervalLEpsN(rand.Reader)

	commitment := &Commitment{
		A: public.Prover.EncWithNonce(alpha, r),
		Y: curve.NewScalar().SetInt(alpha).Act(public.G),
		S: public.Aux.Commit(private.X, mu),
		D: public.Aux.Commit(alpha, gamma),
	}

	e, _ := challenge(hash, public, commitment)

	// z1 = α + e x,
	z1 := new(saferith.Int).SetInt(private.X)
	z1.Mul(e, z1, -1)
	z1.Add(z1, alpha, -1)
	// z2 = r ρᵉ mod N,
	z2 := new(saferith.Nat).ExpI(private.Rho, e, N)
	z2.ModMul(z2, r, N)
	// z3 = γ + e μ,
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

	if public.G == nil {
		public.G = curve.NewBasePoint()
	}

	if !arith.IsInIntervalLEps(p.Z1) {
		return false
	}

	e, err := challenge(hash, public, p.Commitment)
	if err != nil {
		return false
	}

	if !public.Aux.Verify(p.Z1, p.Z3, e, p.D, p.S) {
		return false
	}

	{
		// lhs = Enc(z₁;z₂)
		lhs := public.Prover.EncWithNonce(p.Z1, p.Z2)

		// rhs = (e ⊙ C) ⊕ A
		rhs := public.C.Clone().Mul(public.Prover, e).Add(public.Prover, p.A)
		if !lhs.Equal(rhs) {
			return false
		}
	}

	{
		// lhs = [z₁]G
		lhs := curve.NewScalar().SetInt(p.Z1).Act(public.G)

		// rhs = Y + [e]X
		rhs := curve.NewScalar().SetInt(e).Act(public.X)
		rhs.Add(rhs, p.Y)

		if !lhs.Equal(rhs) {
			return false
		}
	}

	return true
}

func challenge(hash *hash.Hash, public Public, commitment *Commitment) (*saferith.Int, error) {
	err := hash.WriteAny(public.Aux, public.Prover, public.C, public.X, public.G,
		commitment.S, commitment.A, commitment.Y, commitment.D)
	return sample.IntervalScalar(hash.Digest()), err
}

type proofWire struct {
	S, D       []byte
	A          *paillier.Ciphertext
	Y          *curve.Point
	Z1, Z2, Z3 []byte
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Proof) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(proofWire{
		S:  arith.NatBytes(p.S),
		D:  arith.NatBytes(p.D),
		A:  p.A,
		Y:  p.Y,
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
	p.Commitment = &Commitment{A: w.A, Y: w.Y}
	if p.S, err = arith.NatFromBytes(w.S); err != nil {
		return err
	}
	if p.D, err = arith.NatFromBytes(w.D); err != nil {
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
