package party

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"

	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
)

// ByteSize is the number of bytes required to store an ID.
const ByteSize = 2

// MAX is the largest value an ID can take.
const MAX = (1 << (ByteSize * 8)) - 1

// ID represents the identifier of a particular party.
//
// IDs are 1-based: in a session of n parties, the valid IDs are 1, …, n.
// The 0-based position used to index per-party vectors is obtained with Index,
// and nothing else should subtract 1 from an ID.
type ID uint16

// FromIndex returns the ID stored at 0-based position i.
func FromIndex(i int) ID {
	return ID(i + 1)
}

// Index returns the 0-based array position of the party, id - 1.
func (id ID) Index() int {
	return int(id) - 1
}

// Validate returns an error if id is not in 1, …, n.
func (id ID) Validate(n int) error {
	if id == 0 || int(id) > n {
		return fmt.Errorf("party: id %d is outside of 1..%d", id, n)
	}
	return nil
}

// Scalar returns the x-coordinate of the party in Shamir secret sharing.
func (id ID) Scalar() *curve.Scalar {
	return curve.NewScalarUInt32(uint32(id))
}

// Bytes returns a []byte slice of length party.ByteSize.
func (id ID) Bytes() []byte {
	bytes := make([]byte, ByteSize)
	binary.BigEndian.PutUint16(bytes, uint16(id))
	return bytes
}

// String returns a base 10 representation of ID.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// IDFromString reads a base 10 string and attempts to generate an ID from it.
func IDFromString(str string) (ID, error) {
	p, err := strconv.ParseUint(str, 10, 16)
	if err != nil {
		return 0, err
	}
	if p == 0 {
		return 0, fmt.Errorf("party: id must be positive")
	}
	return ID(p), nil
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (id ID) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(id.Bytes())
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (ID) Domain() string {
	return "ID"
}
