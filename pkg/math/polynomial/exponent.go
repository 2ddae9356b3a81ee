package polynomial

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
)

// Exponent represents a polynomial whose coefficients are points on an elliptic curve.
type Exponent struct {
	coefficients []*curve.Point
}

// NewPolynomialExponent generates an Exponent polynomial F(X) = [secret + a₁•X + … + aₜ•Xᵗ]•G,
// with coefficients in G, and degree t.
func NewPolynomialExponent(polynomial *Polynomial) *Exponent {
	var p Exponent

	p.coefficients = make([]*curve.Point, len(polynomial.coefficients))
	for i := range p.coefficients {
		p.coefficients[i] = polynomial.coefficients[i].ActOnBase()
	}

	return &p
}

// Evaluate returns F(index), using Horner's method.
func (p *Exponent) Evaluate(index *curve.Scalar) *curve.Point {
	result := curve.NewIdentityPoint()
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		// Bₙ₋₁ = [x]Bₙ + Aₙ₋₁
		result.ScalarMult(index, result)
		result.Add(result, p.coefficients[i])
	}
	return result
}

// evaluateClassic evaluates the polynomial term by term, and is used to test Evaluate.
func (p *Exponent) evaluateClassic(index *curve.Scalar) *curve.Point {
	x := curve.NewScalarUInt32(1)
	result := curve.NewIdentityPoint()
	for i := 0; i < len(p.coefficients); i++ {
		result.Add(result, x.Act(p.coefficients[i]))
		x.Multiply(x, index)
	}
	return result
}

// Degree returns the degree t of the polynomial.
func (p *Exponent) Degree() int {
	return len(p.coefficients) - 1
}

func (p *Exponent) add(q *Exponent) error {
	if len(p.coefficients) != len(q.coefficients) {
		return errors.New("q is not the same length as p")
	}

	for i := 0; i < len(p.coefficients); i++ {
		p.coefficients[i].Add(p.coefficients[i], q.coefficients[i])
	}

	return nil
}

// Sum creates a new Polynomial in the Exponent, by summing a slice of existing ones.
func Sum(polynomials []*Exponent) (*Exponent, error) {
	if len(polynomials) == 0 {
		return nil, errors.New("polynomial.Sum: no polynomials")
	}
	summed := polynomials[0].Copy()

	// we assume all polynomials have the same degree as the first
	for j := 1; j < len(polynomials); j++ {
		if err := summed.add(polynomials[j]); err != nil {
			return nil, err
		}
	}
	return summed, nil
}

// Copy returns a deep copy of p.
func (p *Exponent) Copy() *Exponent {
	var q Exponent
	q.coefficients = make([]*curve.Point, len(p.coefficients))
	for i := 0; i < len(p.coefficients); i++ {
		q.coefficients[i] = curve.NewIdentityPoint().Set(p.coefficients[i])
	}
	return &q
}

// Equal returns true if both polynomials have the same coefficients.
func (p *Exponent) Equal(other *Exponent) bool {
	if len(p.coefficients) != len(other.coefficients) {
		return false
	}
	for i := 0; i < len(p.coefficients); i++ {
		if !p.coefficients[i].Equal(other.coefficients[i]) {
			return false
		}
	}
	return true
}

// Constant returns the constant coefficient of the polynomial 'in the exponent'.
func (p *Exponent) Constant() *curve.Point {
	return p.coefficients[0]
}

// AddConstant returns a copy of p, whose constant term is increased by c.
func (p *Exponent) AddConstant(c *curve.Point) *Exponent {
	q := p.Copy()
	q.coefficients[0].Add(q.coefficients[0], c)
	return q
}

// Coefficients returns the coefficients of p, which must not be modified.
func (p *Exponent) Coefficients() []*curve.Point {
	return p.coefficients
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (p *Exponent) WriteTo(w io.Writer) (int64, error) {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(p.coefficients)))
	n, err := w.Write(length[:])
	nAll := int64(n)
	if err != nil {
		return nAll, err
	}

	for _, c := range p.coefficients {
		n, err := c.WriteTo(w)
		nAll += n
		if err != nil {
			return nAll, err
		}
	}
	return nAll, nil
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (*Exponent) Domain() string {
	return "Exponent"
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Exponent) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(p.coefficients)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Exponent) UnmarshalBinary(data []byte) error {
	var coefficients []*curve.Point
	if err := cbor.Unmarshal(data, &coefficients); err != nil {
		return err
	}
	if len(coefficients) == 0 {
		return errors.New("polynomial.Exponent: no coefficients")
	}
	for _, c := range coefficients {
		if c == nil {
			return errors.New("polynomial.Exponent: nil coefficient")
		}
	}
	p.coefficients = coefficients
	return nil
}
