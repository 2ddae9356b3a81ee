// Package vss implements Feldman verifiable secret sharing over secp256k1.
package vss

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/math/polynomial"
	"github.com/nguyenkha/demo-mpc/pkg/party"
)

var (
	ErrInvalidShare     = errors.New("vss: share does not match the commitments")
	ErrNotEnoughShares  = errors.New("vss: not enough shares to reconstruct")
	ErrSharesMismatch   = errors.New("vss: number of ids and shares differ")
	ErrInvalidThreshold = errors.New("vss: threshold must satisfy 0 < t < n")
)

// Scheme is the public part of a degree t sharing between n parties.
type Scheme struct {
	Threshold  int
	ShareCount int
	// Commitments[k] = aₖ⋅G, where aₖ is the k-th coefficient of the sharing polynomial.
	Commitments *polynomial.Exponent
}

// Share samples a degree t polynomial with constant term secret, and returns its commitments
// together with the share of every party 1, …, n, indexed by party.ID.Index.
func Share(rand io.Reader, threshold, shareCount int, secret *curve.Scalar) (*Scheme, []*curve.Scalar, error) {
	if threshold <= 0 || threshold >= shareCount {
		return nil, nil, ErrInvalidThreshold
	}
	f := polynomial.NewPolynomial(rand, threshold, secret)
	shares := make([]*curve.Scalar, shareCount)
	for i := range shares {
		shares[i] = f.Evaluate(party.FromIndex(i).Scalar())
	}
	return &Scheme{
		Threshold:   threshold,
		ShareCount:  shareCount,
		Commitments: polynomial.NewPolynomialExponent(f),
	}, shares, nil
}

// Validate checks that the scheme describes a degree t polynomial for n parties.
func (s *Scheme) Validate() error {
	if s == nil || s.Commitments == nil {
		return errors.New("vss: nil scheme")
	}
	if s.Threshold <= 0 || s.Threshold >= s.ShareCount {
		return ErrInvalidThreshold
	}
	if s.Commitments.Degree() != s.Threshold {
		return fmt.Errorf("vss: commitments have degree %d, expected %d", s.Commitments.Degree(), s.Threshold)
	}
	for _, c := range s.Commitments.Coefficients() {
		if c == nil {
			return errors.New("vss: nil commitment")
		}
	}
	return nil
}

// Constant returns a₀⋅G, the public counterpart of the shared secret.
func (s *Scheme) Constant() *curve.Point {
	return s.Commitments.Constant()
}

// Evaluate returns F(id)⋅G, the public counterpart of the share of id.
func (s *Scheme) Evaluate(id party.ID) *curve.Point {
	return s.Commitments.Evaluate(id.Scalar())
}

// ValidateShare checks share⋅G = F(id)⋅G.
func (s *Scheme) ValidateShare(id party.ID, share *curve.Scalar) error {
	if share == nil {
		return ErrInvalidShare
	}
	if !share.ActOnBase().Equal(s.Evaluate(id)) {
		return ErrInvalidShare
	}
	return nil
}

// Reconstruct interpolates the shares held by ids at 0.
// Any t+1 distinct ids yield the same secret.
func (s *Scheme) Reconstruct(ids []party.ID, shares []*curve.Scalar) (*curve.Scalar, error) {
	if len(ids) != len(shares) {
		return nil, ErrSharesMismatch
	}
	if len(ids) <= s.Threshold {
		return nil, ErrNotEnoughShares
	}
	if err := party.IDSlice(ids).Valid(s.ShareCount); err != nil {
		return nil, err
	}
	for _, share := range shares {
		if share == nil {
			return nil, ErrInvalidShare
		}
	}
	lagrange := polynomial.Lagrange(ids)
	secret := curve.NewScalar()
	for i, id := range ids {
		secret.MultiplyAdd(lagrange[id], shares[i], secret)
	}
	return secret, nil
}

// Clone returns a deep copy of s.
func (s *Scheme) Clone() *Scheme {
	return &Scheme{
		Threshold:   s.Threshold,
		ShareCount:  s.ShareCount,
		Commitments: s.Commitments.Copy(),
	}
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (s *Scheme) WriteTo(w io.Writer) (int64, error) {
	return s.Commitments.WriteTo(w)
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (*Scheme) Domain() string {
	return "VSS Scheme"
}

type schemeWire struct {
	Threshold   int
	ShareCount  int
	Commitments *polynomial.Exponent
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *Scheme) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(schemeWire{
		Threshold:   s.Threshold,
		ShareCount:  s.ShareCount,
		Commitments: s.Commitments,
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Scheme) UnmarshalBinary(data []byte) error {
	var w schemeWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	s.Threshold, s.ShareCount, s.Commitments = w.Threshold, w.ShareCount, w.Commitments
	return s.Validate()
}
