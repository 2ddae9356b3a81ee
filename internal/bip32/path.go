package bip32

import (
	"fmt"
	"strconv"
	"strings"
)

// HardenedBit is set in the index of hardened children.
const HardenedBit = uint32(1 << 31)

// Path is a sequence of child indices.
type Path struct {
	indices []uint32
}

// NewPath returns the path made of indices.
func NewPath(indices ...uint32) Path {
	return Path{indices: append([]uint32(nil), indices...)}
}

// Indices returns a copy of the indices of p.
func (p Path) Indices() []uint32 {
	return append([]uint32(nil), p.indices...)
}

// Hardened returns true if one of the indices is hardened.
func (p Path) Hardened() bool {
	for _, i := range p.indices {
		if i&HardenedBit != 0 {
			return true
		}
	}
	return false
}

func (p Path) String() string {
	parts := make([]string, 0, len(p.indices)+1)
	parts = append(parts, "m")
	for _, i := range p.indices {
		if i&HardenedBit != 0 {
			parts = append(parts, strconv.FormatUint(uint64(i&^HardenedBit), 10)+"'")
		} else {
			parts = append(parts, strconv.FormatUint(uint64(i), 10))
		}
	}
	return strings.Join(parts, "/")
}

func newIndex(relativeIndex uint32, hardened bool) uint32 {
	if relativeIndex&HardenedBit != 0 {
		panic(fmt.Sprintf("Expected index less than 2^31, found %d", relativeIndex))
	}

	if hardened {
		return HardenedBit | relativeIndex
	}
	return relativeIndex
}

func indexFrom(spec string) (uint32, error) {
	hardened := false
	for _, suffix := range []string{"'", "h", "H"} {
		if strings.HasSuffix(spec, suffix) {
			hardened = true
			spec = strings.TrimSuffix(spec, suffix)
			break
		}
	}

	index, err := strconv.ParseUint(spec, 10, 31)
	if err != nil {
		return 0, fmt.Errorf("bip32: invalid index %q: %w", spec, err)
	}

	return newIndex(uint32(index), hardened), nil
}

// PathFrom parses a path such as "m/0/0/123" or "44'/0".
func PathFrom(spec string) (Path, error) {
	spec = strings.TrimPrefix(strings.TrimPrefix(spec, "m"), "/")
	if len(spec) == 0 {
		return Path{}, nil
	}

	var indices []uint32
	for _, s := range strings.Split(spec, "/") {
		h, err := indexFrom(s)
		if err != nil {
			return Path{}, err
		}
		indices = append(indices, h)
	}

	return Path{indices: indices}, nil
}
