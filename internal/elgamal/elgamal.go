package elgamal

import (
	"crypto/rand"
	"errors"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
)

type (
	PublicKey = curve.Point
	Nonce     = curve.Scalar
)

// Ciphertext is an ElGamal encryption "in the exponent".
//
// With public key H = curve.H(), M is the Pedersen commitment message⋅G + nonce⋅H.
type Ciphertext struct {
	// L = nonce⋅G
	L *curve.Point
	// M = message⋅G + nonce⋅public
	M *curve.Point
}

func (c *Ciphertext) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, p := range []*curve.Point{c.L, c.M} {
		n, err := p.WriteTo(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (Ciphertext) Domain() string {
	return "ElGamal Ciphertext"
}

// Encrypt returns the encryption of message under public, and the nonce used.
func Encrypt(public *PublicKey, message *curve.Scalar) (*Ciphertext, *Nonce) {
	nonce := sample.Scalar(rand.Reader)
	return EncryptWithNonce(public, message, nonce), nonce
}

// EncryptWithNonce returns (nonce⋅G, message⋅G + nonce⋅public).
func EncryptWithNonce(public *PublicKey, message, nonce *curve.Scalar) *Ciphertext {
	L := nonce.ActOnBase()
	M := curve.NewIdentityPoint().Add(message.ActOnBase(), nonce.Act(public))
	return &Ciphertext{
		L: L,
		M: M,
	}
}

func (c *Ciphertext) Valid() bool {
	if c == nil || c.L == nil || c.L.IsIdentity() ||
		c.M == nil || c.M.IsIdentity() {
		return false
	}
	return true
}

type ciphertextWire struct {
	L, M *curve.Point
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (c *Ciphertext) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(ciphertextWire{L: c.L, M: c.M})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (c *Ciphertext) UnmarshalBinary(data []byte) error {
	var w ciphertextWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.L == nil || w.M == nil {
		return errors.New("elgamal: missing point")
	}
	c.L, c.M = w.L, w.M
	return nil
}
