package tweak_test

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"sync"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/internal/bip32"
	"github.com/nguyenkha/demo-mpc/internal/test"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/pool"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/tweak"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	keysOnce sync.Once
	fakeKeys []*config.LocalKey
	keysErr  error
)

func getKeys(t *testing.T) []*config.LocalKey {
	keysOnce.Do(func() {
		pl := pool.NewPool(0)
		defer pl.TearDown()
		fakeKeys, keysErr = config.FakeData(config.Parameters{Threshold: 1, ShareCount: 3}, rand.Reader, pl)
	})
	require.NoError(t, keysErr)
	return fakeKeys
}

func applyAll(t *testing.T, keys []*config.LocalKey, il *curve.Scalar) []*config.LocalKey {
	out := make([]*config.LocalKey, len(keys))
	for i, key := range keys {
		var err error
		out[i], err = tweak.Apply(key.ID, key, il)
		require.NoError(t, err)
	}
	return out
}

func TestApply(t *testing.T) {
	keys := getKeys(t)
	il := sample.Scalar(rand.Reader)
	tweaked := applyAll(t, keys, il)

	expected := curve.NewIdentityPoint().Add(keys[0].PublicKey(), il.ActOnBase())
	for i, key := range tweaked {
		assert.True(t, expected.Equal(key.PublicKey()), "YSum should shift by il⋅G")
		assert.True(t, expected.Equal(key.SharedKeys.Y))
		assert.True(t, il.Equal(key.Tweak))

		original := keys[i]
		if key.ID == 1 {
			assert.True(t, curve.NewScalar().Add(original.SharedKeys.XI, il).Equal(key.SharedKeys.XI))
		} else {
			assert.True(t, original.SharedKeys.XI.Equal(key.SharedKeys.XI), "only party 1 changes its share")
		}
		shifted := curve.NewIdentityPoint().Add(original.VSS.Constant(), il.ActOnBase())
		assert.True(t, shifted.Equal(key.VSS.Constant()))
		assert.True(t, key.PublicShares[1].Equal(original.PublicShares[1]))
		assert.True(t, key.PublicShares[2].Equal(original.PublicShares[2]))
	}
}

func TestApplyDoesNotMutate(t *testing.T) {
	keys := getKeys(t)
	before, err := cbor.Marshal(keys[0])
	require.NoError(t, err)

	_, err = tweak.Apply(1, keys[0], sample.Scalar(rand.Reader))
	require.NoError(t, err)

	after, err := cbor.Marshal(keys[0])
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.True(t, keys[0].Tweak.IsZero())
}

func TestApplyRejects(t *testing.T) {
	keys := getKeys(t)
	il := sample.Scalar(rand.Reader)

	_, err := tweak.Apply(2, keys[0], il)
	assert.ErrorIs(t, err, protocol.ErrShape)
	assert.ErrorIs(t, err, tweak.ErrWrongParty)

	_, err = tweak.Apply(1, keys[0], nil)
	assert.ErrorIs(t, err, protocol.ErrMalformed)
	assert.ErrorIs(t, err, tweak.ErrMissingTweak)

	_, err = tweak.Apply(1, nil, il)
	assert.ErrorIs(t, err, tweak.ErrMissingKey)

	// il = -x sends the public key to the identity
	secret, err := keys[0].VSS.Reconstruct([]party.ID{1, 2}, []*curve.Scalar{keys[0].SharedKeys.XI, keys[1].SharedKeys.XI})
	require.NoError(t, err)
	_, err = tweak.Apply(1, keys[0], curve.NewScalar().Negate(secret))
	assert.ErrorIs(t, err, tweak.ErrInvalidKey)
}

func TestSignAfterTweak(t *testing.T) {
	keys := getKeys(t)
	tweaked := applyAll(t, keys, sample.Scalar(rand.Reader))
	tweaked = applyAll(t, tweaked, sample.Scalar(rand.Reader))

	digest := sha256.Sum256([]byte("tweaked"))
	for _, signers := range []party.IDSlice{{2, 3}, {2, 1}, {1, 3}} {
		sigs, err := test.Sign(tweaked, signers, digest[:], nil)
		require.NoError(t, err, "signers %v", signers)
		for _, sig := range sigs {
			assert.True(t, sig.Verify(tweaked[0].PublicKey(), digest[:]), "signers %v", signers)
			assert.False(t, sig.Verify(keys[0].PublicKey(), digest[:]))
		}
	}
}

func TestDerive(t *testing.T) {
	keys := getKeys(t)
	chainCode := make([]byte, bip32.ChainCodeLength)
	_, _ = rand.Read(chainCode)
	path, err := bip32.PathFrom("m/0/7/123")
	require.NoError(t, err)

	_, child, childChainCode, err := bip32.DerivePath(keys[0].PublicKey(), chainCode, path)
	require.NoError(t, err)

	derived := make([]*config.LocalKey, len(keys))
	for i, key := range keys {
		state, err := tweak.Derive(key.ID, key, chainCode, path)
		require.NoError(t, err)
		assert.Equal(t, protocol.TweakKey, state.Stage())
		assert.True(t, child.Equal(state.LocalKey().PublicKey()))
		assert.True(t, bytes.Equal(childChainCode, state.ChainCode()))
		derived[i] = state.LocalKey()
	}

	digest := sha256.Sum256([]byte("derived"))
	sigs, err := test.Sign(derived, party.IDSlice{3, 2}, digest[:], nil)
	require.NoError(t, err)
	assert.True(t, sigs[0].Verify(child, digest[:]))

	hardened, err := bip32.PathFrom("m/0'")
	require.NoError(t, err)
	_, err = tweak.Derive(1, keys[0], chainCode, hardened)
	assert.ErrorIs(t, err, bip32.ErrHardenedIndex)
	assert.ErrorIs(t, err, protocol.ErrMalformed)
}
