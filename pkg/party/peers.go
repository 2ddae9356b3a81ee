package party

// Peers is the view of an ordered set of parties from one of its members.
//
// Position j ∈ [0, Len()) refers to the j-th party of the set, skipping the owner:
// it maps to set position j if j < selfPos, and to j+1 otherwise.
// Every vector with one entry per peer is indexed this way.
type Peers struct {
	all     IDSlice
	self    ID
	selfPos int
}

// Len returns the number of peers, one less than the size of the set.
func (p Peers) Len() int {
	return len(p.all) - 1
}

// Self returns the owner of the view.
func (p Peers) Self() ID {
	return p.self
}

// SelfPosition returns the position of the owner in the full set.
func (p Peers) SelfPosition() int {
	return p.selfPos
}

// All returns the full set, including the owner.
func (p Peers) All() IDSlice {
	return p.all
}

// SetPosition converts a peer position into a position in the full set.
func (p Peers) SetPosition(j int) int {
	if j < p.selfPos {
		return j
	}
	return j + 1
}

// At returns the ID of the j-th peer.
func (p Peers) At(j int) ID {
	return p.all[p.SetPosition(j)]
}

// Position returns the peer position of id, or false if id is the owner or absent.
func (p Peers) Position(id ID) (int, bool) {
	pos := p.all.Position(id)
	switch {
	case pos < 0 || pos == p.selfPos:
		return 0, false
	case pos < p.selfPos:
		return pos, true
	default:
		return pos - 1, true
	}
}

// IDs returns the peers, in order.
func (p Peers) IDs() IDSlice {
	ids := make(IDSlice, 0, p.Len())
	for j := 0; j < p.Len(); j++ {
		ids = append(ids, p.At(j))
	}
	return ids
}
