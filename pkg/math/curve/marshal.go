package curve

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/nguyenkha/demo-mpc/internal/params"
)

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *Scalar) MarshalBinary() ([]byte, error) {
	data := make([]byte, params.BytesScalar)
	s.s.PutBytesUnchecked(data)
	return data, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != params.BytesScalar {
		return fmt.Errorf("curve.Scalar.Unmarshal: invalid length %d", len(data))
	}
	var scalar secp256k1.ModNScalar
	if scalar.SetByteSlice(data) {
		return errors.New("curve.Scalar.Unmarshal: scalar was >= q")
	}
	s.s.Set(&scalar)
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
//
// Points are encoded in the 33 byte compressed SEC1 format.
// The identity has no encoding.
func (v *Point) MarshalBinary() ([]byte, error) {
	if v == nil {
		return nil, errors.New("curve.Point.Marshal: point is nil")
	}
	if v.IsIdentity() {
		return nil, errors.New("curve.Point.Marshal: tried to marshal identity")
	}
	data := make([]byte, params.BytesPoint)
	v.putCompressed(data)
	return data, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (v *Point) UnmarshalBinary(data []byte) error {
	if len(data) != params.BytesPoint {
		return fmt.Errorf("curve.Point.Unmarshal: invalid length %d", len(data))
	}
	format := data[0]
	if !(format == secp256k1.PubKeyFormatCompressedOdd || format == secp256k1.PubKeyFormatCompressedEven) {
		return errors.New("curve.Point.Unmarshal: incorrect format")
	}

	var x, y secp256k1.FieldVal
	if overflow := x.SetByteSlice(data[1:]); overflow {
		return errors.New("curve.Point.Unmarshal: invalid point: x >= field prime")
	}

	wantOddY := format == secp256k1.PubKeyFormatCompressedOdd
	if !secp256k1.DecompressY(&x, wantOddY, &y) {
		return fmt.Errorf("curve.Point.Unmarshal: invalid point: x coordinate %v is not on the secp256k1 curve", x)
	}
	y.Normalize()
	v.p.X.Set(&x)
	v.p.Y.Set(&y)
	v.p.Z.SetInt(1)
	return nil
}

// 0x02 or 0x03 ∥ 32-byte x coordinate
func (v *Point) putCompressed(data []byte) {
	a := v.affine()
	format := secp256k1.PubKeyFormatCompressedEven
	if a.Y.IsOdd() {
		format = secp256k1.PubKeyFormatCompressedOdd
	}
	data[0] = format
	a.X.PutBytesUnchecked(data[1:33])
}

// String implements fmt.Stringer.
func (v *Point) String() string {
	if v == nil {
		return "nil"
	}
	if v.IsIdentity() {
		return "Point{Identity}"
	}
	data, _ := v.MarshalBinary()
	return fmt.Sprintf("Point{%x}", data)
}

// String implements fmt.Stringer.
func (s *Scalar) String() string {
	if s == nil {
		return "nil"
	}
	return s.s.String()
}
