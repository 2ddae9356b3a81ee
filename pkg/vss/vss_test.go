package vss

import (
	"crypto/rand"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheme_Reconstruct(t *testing.T) {
	threshold, n := 2, 5
	secret := sample.Scalar(rand.Reader)
	scheme, shares, err := Share(rand.Reader, threshold, n, secret)
	require.NoError(t, err)
	require.NoError(t, scheme.Validate())
	assert.True(t, scheme.Constant().Equal(secret.ActOnBase()))

	for i, share := range shares {
		assert.NoError(t, scheme.ValidateShare(party.FromIndex(i), share))
	}

	subsets := []party.IDSlice{{1, 2, 3}, {5, 3, 1}, {2, 4, 5}, {1, 2, 3, 4, 5}}
	for _, ids := range subsets {
		sub := make([]*curve.Scalar, len(ids))
		for i, id := range ids {
			sub[i] = shares[id.Index()]
		}
		got, err := scheme.Reconstruct(ids, sub)
		require.NoError(t, err)
		assert.True(t, got.Equal(secret), "subset %v", ids)
	}

	_, err = scheme.Reconstruct(party.IDSlice{1, 2}, shares[:2])
	assert.ErrorIs(t, err, ErrNotEnoughShares)
	_, err = scheme.Reconstruct(party.IDSlice{1, 2, 3}, shares[:2])
	assert.ErrorIs(t, err, ErrSharesMismatch)
	_, err = scheme.Reconstruct(party.IDSlice{1, 1, 3}, shares[:3])
	assert.ErrorIs(t, err, party.ErrDuplicateID)
}

func TestScheme_ValidateShare(t *testing.T) {
	scheme, shares, err := Share(rand.Reader, 1, 3, sample.Scalar(rand.Reader))
	require.NoError(t, err)

	bad := curve.NewScalar().Add(shares[0], curve.NewScalarUInt32(1))
	assert.ErrorIs(t, scheme.ValidateShare(1, bad), ErrInvalidShare)
	assert.ErrorIs(t, scheme.ValidateShare(2, shares[0]), ErrInvalidShare)
	assert.ErrorIs(t, scheme.ValidateShare(1, nil), ErrInvalidShare)
}

func TestShare_Threshold(t *testing.T) {
	_, _, err := Share(rand.Reader, 0, 3, nil)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
	_, _, err = Share(rand.Reader, 3, 3, nil)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestScheme_Marshal(t *testing.T) {
	scheme, shares, err := Share(rand.Reader, 2, 4, sample.Scalar(rand.Reader))
	require.NoError(t, err)

	data, err := cbor.Marshal(scheme)
	require.NoError(t, err)
	var decoded Scheme
	require.NoError(t, cbor.Unmarshal(data, &decoded))
	assert.Equal(t, scheme.Threshold, decoded.Threshold)
	assert.True(t, scheme.Commitments.Equal(decoded.Commitments))
	assert.NoError(t, decoded.ValidateShare(4, shares[3]))

	clone := scheme.Clone()
	clone.Commitments = clone.Commitments.AddConstant(curve.NewBasePoint())
	assert.False(t, clone.Commitments.Equal(scheme.Commitments), "clone must not alias")
}
