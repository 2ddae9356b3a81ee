package party

import (
	"testing"

	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_Index(t *testing.T) {
	for i := 0; i < 10; i++ {
		id := FromIndex(i)
		assert.Equal(t, ID(i+1), id)
		assert.Equal(t, i, id.Index())
	}
	assert.True(t, ID(3).Scalar().Equal(curve.NewScalarUInt32(3)))
}

func TestID_Validate(t *testing.T) {
	assert.Error(t, ID(0).Validate(3))
	assert.NoError(t, ID(1).Validate(3))
	assert.NoError(t, ID(3).Validate(3))
	assert.Error(t, ID(4).Validate(3))
}

func TestIDFromString(t *testing.T) {
	id, err := IDFromString("42")
	require.NoError(t, err)
	assert.Equal(t, ID(42), id)
	_, err = IDFromString("0")
	assert.Error(t, err)
	_, err = IDFromString("70000")
	assert.Error(t, err)
}

func TestIDSlice_Valid(t *testing.T) {
	tests := []struct {
		name    string
		ids     IDSlice
		n       int
		wantErr bool
	}{
		{"ok", IDSlice{2, 1}, 3, false},
		{"duplicate", IDSlice{1, 2, 1}, 3, true},
		{"zero", IDSlice{0, 2}, 3, true},
		{"too large", IDSlice{1, 4}, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ids.Valid(tt.n)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIDSlice_Position(t *testing.T) {
	ids := IDSlice{3, 1, 5}
	assert.Equal(t, 0, ids.Position(3))
	assert.Equal(t, 2, ids.Position(5))
	assert.Equal(t, -1, ids.Position(2))
	assert.True(t, ids.Contains(1))
	assert.False(t, ids.Contains(4))

	c := ids.Copy()
	c.Sort()
	assert.Equal(t, IDSlice{1, 3, 5}, c)
	assert.Equal(t, IDSlice{3, 1, 5}, ids, "copy must not alias")
}

func TestPeers(t *testing.T) {
	all := IDSlice{4, 2, 7, 1}
	for selfPos, self := range all {
		peers, err := all.Peers(self)
		require.NoError(t, err)
		require.Equal(t, len(all)-1, peers.Len())
		assert.Equal(t, selfPos, peers.SelfPosition())
		assert.Equal(t, self, peers.Self())

		seen := map[ID]bool{}
		for j := 0; j < peers.Len(); j++ {
			id := peers.At(j)
			assert.NotEqual(t, self, id)
			seen[id] = true

			pos, ok := peers.Position(id)
			require.True(t, ok)
			assert.Equal(t, j, pos, "Position must invert At")
			assert.Equal(t, all.Position(id), peers.SetPosition(j))
		}
		assert.Len(t, seen, peers.Len())
		_, ok := peers.Position(self)
		assert.False(t, ok)
		_, ok = peers.Position(9)
		assert.False(t, ok)
	}

	_, err := all.Peers(3)
	assert.Error(t, err)

	peers, _ := IDSlice{1, 2, 3}.Peers(2)
	assert.Equal(t, IDSlice{1, 3}, peers.IDs())
}
