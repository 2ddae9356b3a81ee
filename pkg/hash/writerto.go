package hash

import (
	"bytes"
	"encoding/binary"
	"io"
)

// WriterToWithDomain represents a type writing itself, and knowing its domain.
//
// Providing a domain string lets us distinguish the output of different types
// implementing this same interface.
type WriterToWithDomain interface {
	io.WriterTo

	// Domain returns a context string, which should be unique for each implementor
	Domain() string
}

// writeWithDomain writes out a piece of data, using its domain.
//
// The layout is len(domain) ∥ domain ∥ len(data) ∥ data, with 8 byte big-endian lengths,
// so that distinct sequences of writes never collide.
func writeWithDomain(w io.Writer, object WriterToWithDomain) error {
	var buf bytes.Buffer
	if _, err := object.WriteTo(&buf); err != nil {
		return err
	}
	domain := []byte(object.Domain())

	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(domain)))
	if _, err := w.Write(length[:]); err != nil {
		return err
	}
	if _, err := w.Write(domain); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(length[:], uint64(buf.Len()))
	if _, err := w.Write(length[:]); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// BytesWithDomain is a useful wrapper to annotate some chunk of data with a domain.
//
// The intention is to wrap some data using this struct, and then call WriteAny,
// or use this struct as a WriterToWithDomain somewhere else.
type BytesWithDomain struct {
	TheDomain string
	Bytes     []byte
}

// WriteTo implements io.WriterTo.
func (b BytesWithDomain) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.Bytes)
	return int64(n), err
}

// Domain implements WriterToWithDomain.
func (b BytesWithDomain) Domain() string {
	return b.TheDomain
}
