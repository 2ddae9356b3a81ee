package ecdsa

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	decred "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/internal/params"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"golang.org/x/crypto/sha3"
)

// compactMagic is the header offset of a compact signature, for a compressed public key.
const compactMagic = 27 + 4

// CompactLength is the length of the output of ToCompact and SigEthereum.
const CompactLength = 1 + 2*params.BytesScalar

var (
	ErrInvalidSignature = errors.New("ecdsa: invalid signature")
	ErrHighS            = errors.New("ecdsa: s is not normalized")
)

// Signature is an ECDSA signature (r, s), where r is the x coordinate of R mod q.
type Signature struct {
	R *curve.Point
	S *curve.Scalar
	// RecoveryID is the parity of R.y, plus 2 if R.x ≥ q.
	RecoveryID byte
}

// NewSignature returns the signature (R, s), normalized so that s ≤ q/2.
// The recovery ID is computed from R and flipped together with s.
func NewSignature(R *curve.Point, s *curve.Scalar) *Signature {
	sig := &Signature{
		R: curve.NewIdentityPoint().Set(R),
		S: curve.NewScalar().Set(s),
	}
	if !R.HasEvenY() {
		sig.RecoveryID |= 1
	}
	if R.XOverflowsOrder() {
		sig.RecoveryID |= 2
	}
	// (r, -s) is the signature of the same message for the point -R
	if sig.S.IsOverHalfOrder() {
		sig.S.Negate(sig.S)
		sig.RecoveryID ^= 1
	}
	return sig
}

// r returns R.x mod q.
func (sig *Signature) r() *curve.Scalar {
	return sig.R.XScalar()
}

func (sig *Signature) decred() *decred.Signature {
	var r, s secp256k1.ModNScalar
	r.SetByteSlice(sig.r().Bytes())
	s.SetByteSlice(sig.S.Bytes())
	return decred.NewSignature(&r, &s)
}

// Validate checks that r and s are both non-zero.
func (sig *Signature) Validate() error {
	if sig == nil || sig.R == nil || sig.S == nil {
		return ErrInvalidSignature
	}
	if sig.R.IsIdentity() || sig.S.IsZero() || sig.r().IsZero() || sig.RecoveryID > 3 {
		return ErrInvalidSignature
	}
	return nil
}

// Verify is a custom signature format using curve data.
// It checks the signature of the 32 byte digest under the public key.
func (sig *Signature) Verify(public *curve.Point, digest []byte) bool {
	if sig.Validate() != nil || public == nil || public.IsIdentity() {
		return false
	}
	return sig.decred().Verify(digest, public.ToPublicKey())
}

// ToCompact returns the 65 byte encoding [27 + 4 + recid] ‖ r ‖ s,
// accepted by secp256k1/v4/ecdsa.RecoverCompact.
func (sig *Signature) ToCompact() []byte {
	out := make([]byte, 0, CompactLength)
	out = append(out, compactMagic+sig.RecoveryID)
	out = append(out, sig.r().Bytes()...)
	out = append(out, sig.S.Bytes()...)
	return out
}

// RecoverPublicKey returns the public key that produced the signature over digest.
func (sig *Signature) RecoverPublicKey(digest []byte) (*curve.Point, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	pk, _, err := decred.RecoverCompact(sig.ToCompact(), digest)
	if err != nil {
		return nil, err
	}
	return curve.FromPublicKey(pk), nil
}

// SigEthereum returns the 65 byte encoding r ‖ s ‖ v expected by Ethereum's ecrecover precompile,
// where v ∈ {0, 1}. The signature must be normalized.
func (sig *Signature) SigEthereum() ([]byte, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	if sig.S.IsOverHalfOrder() {
		return nil, ErrHighS
	}
	if sig.RecoveryID > 1 {
		return nil, ErrInvalidSignature
	}
	out := make([]byte, 0, CompactLength)
	out = append(out, sig.r().Bytes()...)
	out = append(out, sig.S.Bytes()...)
	out = append(out, sig.RecoveryID)
	return out, nil
}

// Keccak256 returns the legacy Keccak-256 digest of data, as used by Ethereum.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		_, _ = h.Write(d)
	}
	return h.Sum(nil)
}

// EthereumAddress returns the last 20 bytes of the Keccak-256 digest of the uncompressed public key.
func EthereumAddress(public *curve.Point) []byte {
	uncompressed := public.ToPublicKey().SerializeUncompressed()
	return Keccak256(uncompressed[1:])[12:]
}

type signatureWire struct {
	R          *curve.Point
	S          *curve.Scalar
	RecoveryID byte
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (sig *Signature) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(signatureWire{R: sig.R, S: sig.S, RecoveryID: sig.RecoveryID})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (sig *Signature) UnmarshalBinary(data []byte) error {
	var w signatureWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	sig.R, sig.S, sig.RecoveryID = w.R, w.S, w.RecoveryID
	return sig.Validate()
}
