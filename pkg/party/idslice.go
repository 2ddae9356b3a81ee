package party

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
)

// IDSlice is an ordered list of distinct IDs.
//
// A signer set keeps the order chosen by the caller, and every per-party vector
// exchanged during signing follows that order.
type IDSlice []ID

var ErrDuplicateID = errors.New("party: duplicate id")

func (partyIDs IDSlice) Len() int           { return len(partyIDs) }
func (partyIDs IDSlice) Less(i, j int) bool { return partyIDs[i] < partyIDs[j] }
func (partyIDs IDSlice) Swap(i, j int)      { partyIDs[i], partyIDs[j] = partyIDs[j], partyIDs[i] }

// NewIDSlice returns the IDs 1, …, n.
func NewIDSlice(n int) IDSlice {
	ids := make(IDSlice, n)
	for i := range ids {
		ids[i] = FromIndex(i)
	}
	return ids
}

// Sort is a convenience method: x.Sort() calls Sort(x).
func (partyIDs IDSlice) Sort() { sort.Sort(partyIDs) }

// Contains returns true if partyIDs contains id.
func (partyIDs IDSlice) Contains(id ID) bool {
	return partyIDs.Position(id) >= 0
}

// Position returns the position of id in partyIDs, or -1 if it is absent.
func (partyIDs IDSlice) Position(id ID) int {
	for i, other := range partyIDs {
		if other == id {
			return i
		}
	}
	return -1
}

// Valid returns an error if an ID repeats or lies outside 1, …, n.
func (partyIDs IDSlice) Valid(n int) error {
	seen := make(map[ID]bool, len(partyIDs))
	for _, id := range partyIDs {
		if err := id.Validate(n); err != nil {
			return err
		}
		if seen[id] {
			return fmt.Errorf("%w: %d", ErrDuplicateID, id)
		}
		seen[id] = true
	}
	return nil
}

// Copy returns an identical copy of the receiver, in the same order.
func (partyIDs IDSlice) Copy() IDSlice {
	a := make(IDSlice, len(partyIDs))
	copy(a, partyIDs)
	return a
}

// Peers returns the view of partyIDs seen by self, which must be a member.
func (partyIDs IDSlice) Peers(self ID) (Peers, error) {
	pos := partyIDs.Position(self)
	if pos < 0 {
		return Peers{}, fmt.Errorf("party: %d is not a member of %v", self, partyIDs)
	}
	return Peers{all: partyIDs, self: self, selfPos: pos}, nil
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (partyIDs IDSlice) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 8+ByteSize*len(partyIDs))
	binary.BigEndian.PutUint64(buf, uint64(len(partyIDs)))
	for i, id := range partyIDs {
		binary.BigEndian.PutUint16(buf[8+ByteSize*i:], uint16(id))
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (IDSlice) Domain() string {
	return "IDSlice"
}
