package arith

import (
	"errors"

	"github.com/cronokirby/saferith"
)

// IntBytes encodes x as a sign byte (0 or 1) followed by |x| in big-endian form.
func IntBytes(x *saferith.Int) []byte {
	abs := x.Abs().Big().Bytes()
	out := make([]byte, 1+len(abs))
	if x.IsNegative() == 1 {
		out[0] = 1
	}
	copy(out[1:], abs)
	return out
}

// IntFromBytes decodes the output of IntBytes.
func IntFromBytes(data []byte) (*saferith.Int, error) {
	if len(data) == 0 {
		return nil, errors.New("arith: empty integer encoding")
	}
	if data[0] > 1 {
		return nil, errors.New("arith: invalid integer sign")
	}
	abs := new(saferith.Nat).SetBytes(data[1:])
	out := new(saferith.Int).SetNat(abs)
	out.Neg(saferith.Choice(data[0]))
	return out, nil
}

// NatBytes returns the minimal big-endian encoding of x.
func NatBytes(x *saferith.Nat) []byte {
	return x.Big().Bytes()
}

// NatFromBytes decodes a big-endian natural number, rejecting empty input.
func NatFromBytes(data []byte) (*saferith.Nat, error) {
	if len(data) == 0 {
		return nil, errors.New("arith: empty natural number encoding")
	}
	return new(saferith.Nat).SetBytes(data), nil
}
