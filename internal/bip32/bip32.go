// Package bip32 implements non-hardened BIP32 derivation of public keys.
//
// Derivation only needs the parent public key, so a threshold key can be derived
// without interaction: every party applies the same tweak IL to its share.
//
// See: https://github.com/bitcoin/bips/blob/master/bip-0032.mediawiki
package bip32

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/pkg/errors"
)

// ChainCodeLength is the length in bytes of a chain code.
const ChainCodeLength = 32

var masterKey = []byte("Bitcoin seed")

var (
	ErrHardenedIndex    = errors.New("bip32: hardened index cannot be derived from a public key")
	ErrInvalidIndex     = errors.New("bip32: index yields an invalid key")
	ErrInvalidChainCode = errors.New("bip32: chain code must be 32 bytes")
	ErrInvalidSeed      = errors.New("bip32: seed yields an invalid master key")
)

func compressPoint(p *curve.Point) []byte {
	out := make([]byte, 33)
	out[0] = 3
	if p.HasEvenY() {
		out[0] = 2
	}
	copy(out[1:], p.XBytes())
	return out
}

// DeriveMaster returns the master secret key and chain code of a seed.
func DeriveMaster(seed []byte) (*curve.Scalar, []byte, error) {
	h := hmac.New(sha512.New, masterKey)
	_, _ = h.Write(seed)
	out := h.Sum(nil)

	secret, ok := curve.NewScalar().SetCanonicalBytes(out[:32])
	if !ok || secret.IsZero() {
		return nil, nil, ErrInvalidSeed
	}
	return secret, out[32:], nil
}

// DeriveIL uses a public point, chain code, and index, to derive the tweak IL and the child chain code.
//
// IL should be added to the secret key, and IL⋅G to the public key.
//
// If ErrInvalidIndex is returned, this index is not useable, and the next index should be used instead.
func DeriveIL(parent *curve.Point, chainCode []byte, index uint32) (*curve.Scalar, []byte, error) {
	if index&HardenedBit != 0 {
		return nil, nil, errors.Wrapf(ErrHardenedIndex, "index %d", index)
	}
	if len(chainCode) != ChainCodeLength {
		return nil, nil, ErrInvalidChainCode
	}
	if parent == nil || parent.IsIdentity() {
		return nil, nil, errors.New("bip32: parent key is the identity")
	}
	parentKey, err := btcec.ParsePubKey(compressPoint(parent))
	if err != nil {
		return nil, nil, errors.Wrap(err, "bip32: parse parent key")
	}

	h := hmac.New(sha512.New, chainCode)
	_, _ = h.Write(parentKey.SerializeCompressed())
	var iBytes [4]byte
	binary.BigEndian.PutUint32(iBytes[:], index)
	_, _ = h.Write(iBytes[:])
	out := h.Sum(nil)

	if new(big.Int).SetBytes(out[:32]).Cmp(btcec.S256().N) >= 0 {
		return nil, nil, errors.Wrapf(ErrInvalidIndex, "index %d", index)
	}
	il, _ := curve.NewScalar().SetCanonicalBytes(out[:32])

	child := curve.NewIdentityPoint().Add(parent, il.ActOnBase())
	if child.IsIdentity() {
		return nil, nil, errors.Wrapf(ErrInvalidIndex, "index %d", index)
	}
	return il, out[32:], nil
}

// DerivePath derives every level of path from parent, and returns the sum of the tweaks,
// the child public key parent + IL⋅G, and the final chain code.
func DerivePath(parent *curve.Point, chainCode []byte, path Path) (*curve.Scalar, *curve.Point, []byte, error) {
	sum := curve.NewScalar()
	current := curve.NewIdentityPoint().Set(parent)
	for _, index := range path.indices {
		il, next, err := DeriveIL(current, chainCode, index)
		if err != nil {
			return nil, nil, nil, err
		}
		sum.Add(sum, il)
		current.Add(current, il.ActOnBase())
		chainCode = next
	}
	return sum, current, chainCode, nil
}
