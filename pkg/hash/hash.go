package hash

import (
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/nguyenkha/demo-mpc/internal/params"
	"github.com/zeebo/blake3"
)

const DigestLengthBytes = params.SecBytes * 2 // 64

// Hash is the hash function we use for generating commitments, Fiat-Shamir challenges, etc.
//
// Internally, this is a wrapper around blake3.Hasher, whose output can be extended
// to any length.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash struct where the internal hash function is initialized with "GG20",
// followed by each of the init values.
func New(init ...interface{}) *Hash {
	hash := &Hash{h: blake3.New()}
	_ = hash.WriteAny(&BytesWithDomain{TheDomain: "Protocol", Bytes: []byte("GG20")})
	if err := hash.WriteAny(init...); err != nil {
		panic(fmt.Sprintf("hash.New: %v", err))
	}
	return hash
}

// Digest returns a reader for the current output of the function.
//
// This finalizes the current state of the hash, and returns what's
// essentially a stream of random bytes.
// Successive reads from the same reader return fresh output, so a single
// reader must be used when several independent values are derived.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a slice of length DigestLengthBytes resulting from the current hash state.
// If a different length is required, use io.ReadFull(hash.Digest(), out) instead.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// WriteAny takes many different data types and writes them to the hash state.
//
// Currently supported types:
//
//   - []byte
//   - *saferith.Nat
//   - *saferith.Int
//   - *saferith.Modulus
//   - hash.WriterToWithDomain
//
// This function will apply its own domain separation for the first four types.
// The last type already suggests which domain to use, and this function respects it.
//
// Numbers are written in their minimal big-endian form, so that the result does not
// depend on the announced size of a saferith value.
func (hash *Hash) WriteAny(data ...interface{}) error {
	var toBeWritten WriterToWithDomain
	for _, d := range data {
		switch t := d.(type) {
		case []byte:
			toBeWritten = &BytesWithDomain{"[]byte", t}
		case *saferith.Nat:
			if t == nil {
				return fmt.Errorf("hash.Hash: write *saferith.Nat: nil")
			}
			toBeWritten = &BytesWithDomain{"saferith.Nat", t.Big().Bytes()}
		case *saferith.Int:
			if t == nil {
				return fmt.Errorf("hash.Hash: write *saferith.Int: nil")
			}
			abs := t.Abs().Big().Bytes()
			buf := make([]byte, 1+len(abs))
			if t.IsNegative() == 1 {
				buf[0] = 1
			}
			copy(buf[1:], abs)
			toBeWritten = &BytesWithDomain{"saferith.Int", buf}
		case *saferith.Modulus:
			if t == nil {
				return fmt.Errorf("hash.Hash: write *saferith.Modulus: nil")
			}
			toBeWritten = &BytesWithDomain{"saferith.Modulus", t.Big().Bytes()}
		case WriterToWithDomain:
			toBeWritten = t
		default:
			return fmt.Errorf("hash.Hash: unsupported type %T", d)
		}
		if err := writeWithDomain(hash.h, toBeWritten); err != nil {
			return fmt.Errorf("hash.Hash: write %s: %w", toBeWritten.Domain(), err)
		}
	}
	return nil
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}

// Fork returns a copy of the Hash, with data appended to the copy's state.
// The receiver is left untouched.
func (hash *Hash) Fork(data ...interface{}) *Hash {
	h := hash.Clone()
	if err := h.WriteAny(data...); err != nil {
		panic(fmt.Sprintf("hash.Fork: %v", err))
	}
	return h
}
