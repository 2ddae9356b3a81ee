package zkaffg

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
		// Kv is a ciphertext encrypted with Nᵥ
		// Original name: C
		Kv *paillier.Ciphertext

		// Dv = (x ⨀ Kv) ⨁ Encᵥ(y;s)
		Dv *paillier.Ciphertext

		// Fp = Encₚ(y;r)
		// Original name: Y
		Fp *paillier.Ciphertext

		// Xp = x⋅G
		Xp *curve.Point

		// Prover = Nₚ
		// Verifier = Nᵥ
		Prover, Verifier *paillier.PublicKey
		Aux              *pedersen.Parameters
	}
	Private struct {
		// X ∈ ± 2ˡ
		X *saferith.Int
		// Y ∈ ± 2ˡº
		Y *saferith.Int
		// S = s
		// Original name: ρ
		S *saferith.Nat
		// R = r
		// Original name: ρy
		R *saferith.Nat
	}
)

type Commitment struct {
	// A = (α ⊙ C) ⊕ Encᵥ(β, ρ)
	A *paillier.Ciphertext
	// Bx = α⋅G
	Bx *curve.Point
	// By = Encₚ(β, ρy)
	By *paillier.Ciphertext
	// E = sᵃ tᵍ (mod N)
	E *saferith.Nat
	// S = sˣ tᵐ (mod N)
	S *saferith.Nat
	// F = sᵇ tᵈ (mod N)
	F *saferith.Nat
	// T = sʸ tᵘ (mod N)
	T *saferith.Nat
}

type Proof struct {
	*Commitment
	// Z1 = Z₁ = α + e⋅x
	Z1 *saferith.Int
	// Z2 = Z₂ = β + e⋅y
	Z2 *saferith.Int
	// Z3 = Z₃ = γ + e⋅m
	Z3 *saferith.Int
	// Z4 = Z₄ = δ + e⋅μ
	Z4 *saferith.Int
	// W = w = ρ⋅sᵉ (mod N₀)
	W *saferith.Nat
	// Wy = wy = ρy⋅rᵉ (mod N₁)
	Wy *saferith.Nat
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil || p.Commitment == nil || p.Bx == nil ||
		p.E == nil || p.S == nil || p.F == nil || p.T == nil ||
		p.Z1 == nil || p.Z2 == nil || p.Z3 == nil || p.Z4 == nil || p.W == nil || p.Wy == nil {
		return false
	}
	if public.Prover == nil || public.Verifier == nil || public.Aux == nil || public.Xp == nil {
		return false
	}
	if !public.Verifier.ValidateCiphertexts(public.Kv, public.Dv, p.A) {
		return false
	}
	if !public.Prover.ValidateCiphertexts(public.Fp, p.By) {
		return false
	}
	if !arith.IsValidNatModN(public.Prover.N(), p.Wy) {
		return false
	}
	if !arith.IsValidNatModN(public.Verifier.N(), p.W) {
		return false
	}
	if p.Bx.IsIdentity() {
		return false
	}
	return true
}

// NewProof generates a proof that Dv = (x ⨀ Kv) ⨁ Encᵥ(y;s), with x the discrete log of Xp,
// and that Fp encrypts the same y under the prover's key.
func NewProof(hash *hash.Hash, public Public, private Private) *Proof {
	N0 := public.Verifier.N()
	N1 := public.Prover.N()

	verifier := public.Verifier
	prover := public.Prover

	alpha := sample.IntervalLEps(rand.Reader)
	beta := sample.IntervalLPrimeEps(rand.Reader)

	rho := sample.UnitModN(rand.Reader, N0)
	rhoY := sample.UnitModN(rand.Reader, N1)

	gamma := sample.IntervalLEpsN(rand.Reader)
	m := sample.IntervalLEpsN(rand.Reader)
	delta := sample.IntervalLEpsN(rand.Reader)
	mu := sample.IntervalLN(rand.Reader)

	cAlpha := public.Kv.Clone().Mul(verifier, alpha)              // = Cᵃ mod N₀ = α ⊙ Kv
	A := verifier.EncWithNonce(beta, rho).Add(verifier, cAlpha) // = Enc₀(β,ρ) ⊕ (α ⊙ Kv)

	commitment := &Commitment{
		A:  A,
		Bx: curve.NewScalar().SetInt(alpha).ActOnBase(),
		By: prover.EncWithNonce(beta, rhoY),
		E:  public.Aux.Commit(alpha, gamma),
		S:  public.Aux.Commit(private.X, m),
		F:  public.Aux.Commit(beta, delta),
		T:  public.Aux.Commit(private.Y, mu),
	}

	e, _ := challenge(hash, public, commitment)

	// e•x+α
	z1 := new(saferith.Int).SetInt(private.X)
	z1.Mul(e, z1, -1)
	z1.Add(z1, alpha, -1)
	// e•y+β
	z2 := new(saferith.Int).SetInt(private.Y)
	z2.Mul(e, z2, -1)
	z2.Add(z2, beta, -1)
	// e•m+γ
	z3 := new(saferith.Int).Mul(e, m, -1)
	z3.Add(z3, gamma, -1)
	// e•μ+δ
	z4 := new(saferith.Int).Mul(e, mu, -1)
	z4.Add(z4, delta, -1)
	// ρ⋅sᵉ mod N₀
	w := new(saferith.Nat).ExpI(private.S, e, N0)
	w.ModMul(w, rho, N0)
	// ρy⋅rᵉ  mod N₁
	wY := new(saferith.Nat).ExpI(private.R, e, N1)
	wY.ModMul(wY, rhoY, N1)

	return &Proof{
		Commitment: commitment,
		Z1:         z1,
		Z2:         z2,
		Z3:         z3,
		Z4:         z4,
		W:          w,
		Wy:         wY,
	}
}

func (p *Proof) Verify(hash *hash.Hash, public Public) bool {
	if !p.IsValid(public) {
		return false
	}

	verifier := public.Verifier
	prover := public.Prover

	if !arith.IsInIntervalLEps(p.Z1) {
		return false
	}
	if !arith.IsInIntervalLPrimeEps(p.Z2) {
		return false
	}

	e, err := challenge(hash, public, p.Commitment)
	if err != nil {
		return false
	}

	if !public.Aux.Verify(p.Z1, p.Z3, e, p.E, p.S) {
		return false
	}

	if !public.Aux.Verify(p.Z2, p.Z4, e, p.F, p.T) {
		return false
	}

	{
		// tmp = z₁ ⊙ Kv
		// lhs = Encᵥ(z₂;w) ⊕ z₁ ⊙ Kv
		tmp := public.Kv.Clone().Mul(verifier, p.Z1)
		lhs := verifier.EncWithNonce(p.Z2, p.W).Add(verifier, tmp)

		// rhs = (e ⊙ Dv) ⊕ A
		rhs := public.Dv.Clone().Mul(verifier, e).Add(verifier, p.A)

		if !lhs.Equal(rhs) {
			return false
		}
	}

	{
		// lhs = [z₁]G
		lhs := curve.NewScalar().SetInt(p.Z1).ActOnBase()

		// rhsPt = Bₓ + [e]Xp
		rhs := curve.NewScalar().SetInt(e).Act(public.Xp)
		rhs.Add(rhs, p.Bx)
		if !lhs.Equal(rhs) {
			return false
		}
	}

	{
		// lhs = Encₚ(z₂; wy)
		lhs := prover.EncWithNonce(p.Z2, p.Wy)

		// rhs = (e ⊙ Fp) ⊕ By
		rhs := public.Fp.Clone().Mul(prover, e).Add(prover, p.By)

		if !lhs.Equal(rhs) {
			return false
		}
	}

	return true
}

func challenge(hash *hash.Hash, public Public, commitment *Commitment) (*saferith.Int, error) {
	err := hash.WriteAny(public.Aux, public.Prover, public.Verifier,
		public.Kv, public.Dv, public.Fp, public.Xp,
		commitment.A, commitment.Bx, commitment.By,
		commitment.E, commitment.S, commitment.F, commitment.T)
	return sample.IntervalScalar(hash.Digest()), err
}

type proofWire struct {
	A, By          *paillier.Ciphertext
	Bx             *curve.Point
	E, S, F, T     []byte
	Z1, Z2, Z3, Z4 []byte
	W, Wy          []byte
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Proof) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(proofWire{
		A:  p.A,
		By: p.By,
		Bx: p.Bx,
		E:  arith.NatBytes(p.E),
		S:  arith.NatBytes(p.S),
		F:  arith.NatBytes(p.F),
		T:  arith.NatBytes(p.T),
		Z1: arith.IntBytes(p.Z1),
		Z2: arith.IntBytes(p.Z2),
		Z3: arith.IntBytes(p.Z3),
		Z4: arith.IntBytes(p.Z4),
		W:  arith.NatBytes(p.W),
		Wy: arith.NatBytes(p.Wy),
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Proof) UnmarshalBinary(data []byte) error {
	var w proofWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	c := &Commitment{A: w.A, By: w.By, Bx: w.Bx}
	nats := []struct {
		dst **saferith.Nat
		src []byte
	}{{&c.E, w.E}, {&c.S, w.S}, {&c.F, w.F}, {&c.T, w.T}, {&p.W, w.W}, {&p.Wy, w.Wy}}
	for _, n := range nats {
		v, err := arith.NatFromBytes(n.src)
		if err != nil {
			return err
		}
		*n.dst = v
	}
	ints := []struct {
		dst **saferith.Int
		src []byte
	}{{&p.Z1, w.Z1}, {&p.Z2, w.Z2}, {&p.Z3, w.Z3}, {&p.Z4, w.Z4}}
	for _, n := range ints {
		v, err := arith.IntFromBytes(n.src)
		if err != nil {
			return err
		}
		*n.dst = v
	}
	p.Commitment = c
	return nil
}
