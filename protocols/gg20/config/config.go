package config

import (
	"errors"
	"fmt"

	"github.com/nguyenkha/demo-mpc/internal/params"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/math/polynomial"
	"github.com/nguyenkha/demo-mpc/pkg/paillier"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/pedersen"
	"github.com/nguyenkha/demo-mpc/pkg/vss"
)

var (
	ErrInvalidThreshold = errors.New("config: threshold must satisfy 0 < t < n")
	ErrTooManyParties   = fmt.Errorf("config: at most %d parties are supported", params.MaxParties)
	ErrSignerCount      = errors.New("config: signer set must contain exactly t+1 parties")
	ErrNotASigner       = errors.New("config: party is not in the signer set")
)

// Parameters are the threshold t and the number of parties n of a session.
// Any t+1 parties can sign, no t of them learn anything about the key.
type Parameters struct {
	Threshold  int
	ShareCount int
}

// Validate checks 0 < t < n ⩽ params.MaxParties.
func (p Parameters) Validate() error {
	if p.Threshold <= 0 || p.Threshold >= p.ShareCount {
		return fmt.Errorf("%w (t = %d, n = %d)", ErrInvalidThreshold, p.Threshold, p.ShareCount)
	}
	if p.ShareCount > params.MaxParties {
		return ErrTooManyParties
	}
	return nil
}

// ValidateSigners checks that signers is a valid signer set containing self:
// exactly t+1 distinct IDs in 1, …, n.
func (p Parameters) ValidateSigners(signers party.IDSlice, self party.ID) error {
	if len(signers) != p.Threshold+1 {
		return fmt.Errorf("%w (got %d, t = %d)", ErrSignerCount, len(signers), p.Threshold)
	}
	if err := signers.Valid(p.ShareCount); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if !signers.Contains(self) {
		return fmt.Errorf("%w: %d", ErrNotASigner, self)
	}
	return nil
}

// SharedKeys holds the final share xᵢ and the joint public key Y.
type SharedKeys struct {
	XI *curve.Scalar
	Y  *curve.Point
}

// LocalKey is the durable output of key generation for a single party.
//
// Per-party vectors are indexed by party.ID.Index.
type LocalKey struct {
	ID         party.ID
	Parameters Parameters

	SharedKeys SharedKeys

	// VSS is the scheme this party dealt during key generation.
	VSS *vss.Scheme

	PaillierSecret *paillier.SecretKey
	PaillierKeys   []*paillier.PublicKey
	// Pedersen holds the ring-Pedersen parameters (N, s, t) of every party, over its own Paillier modulus.
	Pedersen []*pedersen.Parameters

	// PublicShares[j] = xⱼ⋅G
	PublicShares []*curve.Point
	// YSum = x⋅G is the public key.
	YSum *curve.Point

	// Tweak is the sum of all the tweaks applied to this key.
	// It has been added to the share of party 1, and Tweak⋅G to YSum.
	Tweak *curve.Scalar
}

// PublicKey returns the group's public ECDSA key.
func (k *LocalKey) PublicKey() *curve.Point {
	return k.YSum
}

// PublicShare returns xⱼ⋅G for the party id.
func (k *LocalKey) PublicShare(id party.ID) *curve.Point {
	return k.PublicShares[id.Index()]
}

// PaillierKey returns the Paillier public key of id.
func (k *LocalKey) PaillierKey(id party.ID) *paillier.PublicKey {
	return k.PaillierKeys[id.Index()]
}

// PedersenParameters returns the ring-Pedersen parameters of id.
func (k *LocalKey) PedersenParameters(id party.ID) *pedersen.Parameters {
	return k.Pedersen[id.Index()]
}

// untweakedShare returns x̂ⱼ⋅G, the public share of j before any tweak was applied.
func (k *LocalKey) untweakedShare(id party.ID) *curve.Point {
	X := curve.NewIdentityPoint().Set(k.PublicShare(id))
	if id == 1 {
		X.Subtract(X, k.Tweak.ActOnBase())
	}
	return X
}

// SignShare returns this party's additive share wᵢ of x + Tweak among signers:
//
//	wᵢ = λᵢ⋅x̂ᵢ + [i = signers[0]]⋅Tweak, where x̂ᵢ = xᵢ - [i = 1]⋅Tweak.
//
// Summing over the signers gives ∑ wⱼ = x + Tweak, whatever the signer set.
func (k *LocalKey) SignShare(signers party.IDSlice) *curve.Scalar {
	lambda := polynomial.LagrangeSingle(signers, k.ID)
	x := curve.NewScalar().Set(k.SharedKeys.XI)
	if k.ID == 1 {
		x.Subtract(x, k.Tweak)
	}
	w := curve.NewScalar().Multiply(lambda, x)
	if signers[0] == k.ID {
		w.Add(w, k.Tweak)
	}
	return w
}

// PublicSignShare returns wⱼ⋅G for the signer j, computed from the public shares.
func (k *LocalKey) PublicSignShare(signers party.IDSlice, j party.ID) *curve.Point {
	lambda := polynomial.LagrangeSingle(signers, j)
	W := lambda.Act(k.untweakedShare(j))
	if signers[0] == j {
		W.Add(W, k.Tweak.ActOnBase())
	}
	return W
}

// Validate ensures that the data is consistent. In particular it verifies:
// - 0 < t < n
// - all vectors have one entry per party
// - the secret share corresponds to the public share of this party
// - the Paillier secret key matches the public key of this party
// - the public shares interpolate to YSum
func (k *LocalKey) Validate() error {
	if k == nil {
		return errors.New("config: nil key")
	}
	if err := k.Parameters.Validate(); err != nil {
		return err
	}
	n := k.Parameters.ShareCount
	if err := k.ID.Validate(n); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if k.SharedKeys.XI == nil || k.SharedKeys.Y == nil || k.YSum == nil || k.Tweak == nil ||
		k.VSS == nil || k.PaillierSecret == nil {
		return errors.New("config: one or more field is empty")
	}
	if len(k.PaillierKeys) != n || len(k.Pedersen) != n || len(k.PublicShares) != n {
		return fmt.Errorf("config: expected %d entries per party vector", n)
	}
	for i := 0; i < n; i++ {
		if k.PaillierKeys[i] == nil || k.Pedersen[i] == nil || k.PublicShares[i] == nil {
			return fmt.Errorf("config: party %d: missing public data", party.FromIndex(i))
		}
		if k.PublicShares[i].IsIdentity() {
			return fmt.Errorf("config: party %d: public share is identity", party.FromIndex(i))
		}
		if k.PaillierKeys[i].N().Nat().Eq(k.Pedersen[i].N().Nat()) != 1 {
			return fmt.Errorf("config: party %d: Pedersen modulus differs from Paillier modulus", party.FromIndex(i))
		}
	}
	if err := k.VSS.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if k.VSS.Threshold != k.Parameters.Threshold || k.VSS.ShareCount != n {
		return errors.New("config: VSS scheme does not match parameters")
	}

	if k.SharedKeys.XI.IsZero() {
		return errors.New("config: ECDSA secret key share is zero")
	}
	if !k.SharedKeys.XI.ActOnBase().Equal(k.PublicShare(k.ID)) {
		return errors.New("config: ECDSA secret key share does not correspond to public share")
	}
	if !k.PaillierSecret.PublicKey.Equal(k.PaillierKey(k.ID)) {
		return errors.New("config: Paillier secret key does not correspond to public key")
	}
	if !k.SharedKeys.Y.Equal(k.YSum) {
		return errors.New("config: Y ≠ YSum")
	}
	if k.YSum.IsIdentity() {
		return errors.New("config: public key is the identity")
	}

	// ∑ λⱼ⋅x̂ⱼ⋅G = (YSum - Tweak⋅G) over the first t+1 parties
	domain := party.NewIDSlice(k.Parameters.Threshold + 1)
	lagrange := polynomial.Lagrange(domain)
	sum := curve.NewIdentityPoint()
	for _, j := range domain {
		sum.Add(sum, lagrange[j].Act(k.untweakedShare(j)))
	}
	expected := curve.NewIdentityPoint().Subtract(k.YSum, k.Tweak.ActOnBase())
	if !sum.Equal(expected) {
		return errors.New("config: public shares do not interpolate to the public key")
	}
	return nil
}

// Clone returns a deep copy of the key.
// Paillier keys and Pedersen parameters are immutable and shared.
func (k *LocalKey) Clone() *LocalKey {
	c := &LocalKey{
		ID:         k.ID,
		Parameters: k.Parameters,
		SharedKeys: SharedKeys{
			XI: curve.NewScalar().Set(k.SharedKeys.XI),
			Y:  curve.NewIdentityPoint().Set(k.SharedKeys.Y),
		},
		VSS:            k.VSS.Clone(),
		PaillierSecret: k.PaillierSecret,
		PaillierKeys:   append([]*paillier.PublicKey(nil), k.PaillierKeys...),
		Pedersen:       append([]*pedersen.Parameters(nil), k.Pedersen...),
		PublicShares:   make([]*curve.Point, len(k.PublicShares)),
		YSum:           curve.NewIdentityPoint().Set(k.YSum),
		Tweak:          curve.NewScalar().Set(k.Tweak),
	}
	for i, X := range k.PublicShares {
		c.PublicShares[i] = curve.NewIdentityPoint().Set(X)
	}
	return c
}
