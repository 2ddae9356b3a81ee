package zkprm

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/internal/params"
	"github.com/nguyenkha/demo-mpc/pkg/hash"
	"github.com/nguyenkha/demo-mpc/pkg/math/arith"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
	"github.com/nguyenkha/demo-mpc/pkg/pedersen"
	"github.com/nguyenkha/demo-mpc/pkg/pool"
)

type (
	Public struct {
		Aux *pedersen.Parameters
	}
	Private struct {
		Lambda, Phi, P, Q *saferith.Nat
	}
)

type Proof struct {
	As, Zs []*saferith.Nat
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil || public.Aux == nil {
		return false
	}
	if len(p.As) != params.ZKPrmIterations || len(p.Zs) != params.ZKPrmIterations {
		return false
	}
	if public.Aux.Validate() != nil {
		return false
	}
	if !arith.IsValidNatModN(public.Aux.N(), p.As...) {
		return false
	}
	for _, z := range p.Zs {
		if z == nil {
			return false
		}
	}
	return true
}

// NewProof generates a proof that:
// s = t^lambda (mod N).
func NewProof(hash *hash.Hash, public Public, private Private, pl *pool.Pool) *Proof {
	lambda := private.Lambda
	phi := saferith.ModulusFromNat(private.Phi)

	n := arith.ModulusFromFactors(private.P, private.Q)

	as := make([]*saferith.Nat, params.ZKPrmIterations)
	As := make([]*saferith.Nat, params.ZKPrmIterations)
	pl.Parallelize(params.ZKPrmIterations, func(i int) interface{} {
		// aᵢ ∈ mod ϕ(N)
		as[i] = sample.ModN(rand.Reader, phi)

		// Aᵢ = tᵃ mod N
		As[i] = n.Exp(public.Aux.T(), as[i])

		return nil
	})

	es, _ := challenge(hash, public, As)
	// Modular addition is not expensive enough to warrant parallelizing
	Zs := make([]*saferith.Nat, params.ZKPrmIterations)
	for i := 0; i < params.ZKPrmIterations; i++ {
		z := as[i]
		// The challenge is public, so branching is ok
		if es[i] {
			z.ModAdd(z, lambda, phi)
		}
		Zs[i] = z
	}

	return &Proof{
		As: As,
		Zs: Zs,
	}
}

func (p *Proof) Verify(hash *hash.Hash, public Public, pl *pool.Pool) bool {
	if !p.IsValid(public) {
		return false
	}

	n, s, t := public.Aux.N().Big(), public.Aux.S().Big(), public.Aux.T().Big()

	es, err := challenge(hash, public, p.As)
	if err != nil {
		return false
	}

	one := big.NewInt(1)
	verifications := pl.Parallelize(params.ZKPrmIterations, func(i int) interface{} {
		var lhs, rhs big.Int
		z := p.Zs[i].Big()
		a := p.As[i].Big()

		if a.Cmp(one) == 0 {
			return false
		}

		lhs.Exp(t, z, n)
		if es[i] {
			rhs.Mul(a, s)
			rhs.Mod(&rhs, n)
		} else {
			rhs.Set(a)
		}

		return lhs.Cmp(&rhs) == 0
	})
	for i := 0; i < len(verifications); i++ {
		if !verifications[i].(bool) {
			return false
		}
	}
	return true
}

func challenge(hash *hash.Hash, public Public, A []*saferith.Nat) ([]bool, error) {
	if err := hash.WriteAny(public.Aux); err != nil {
		return nil, err
	}
	for _, a := range A {
		if err := hash.WriteAny(a); err != nil {
			return nil, err
		}
	}

	tmpBytes := make([]byte, params.ZKPrmIterations)
	_, _ = io.ReadFull(hash.Digest(), tmpBytes)

	out := make([]bool, params.ZKPrmIterations)
	for i := range out {
		b := (tmpBytes[i] & 1) == 1
		out[i] = b
	}

	return out, nil
}

type proofWire struct {
	As, Zs [][]byte
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Proof) MarshalBinary() ([]byte, error) {
	w := proofWire{
		As: make([][]byte, len(p.As)),
		Zs: make([][]byte, len(p.Zs)),
	}
	for i, a := range p.As {
		w.As[i] = arith.NatBytes(a)
	}
	for i, z := range p.Zs {
		w.Zs[i] = arith.NatBytes(z)
	}
	return cbor.Marshal(w)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Proof) UnmarshalBinary(data []byte) error {
	var w proofWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	p.As = make([]*saferith.Nat, len(w.As))
	p.Zs = make([]*saferith.Nat, len(w.Zs))
	for i, a := range w.As {
		v, err := arith.NatFromBytes(a)
		if err != nil {
			return err
		}
		p.As[i] = v
	}
	for i, z := range w.Zs {
		v, err := arith.NatFromBytes(z)
		if err != nil {
			return err
		}
		p.Zs[i] = v
	}
	return nil
}
