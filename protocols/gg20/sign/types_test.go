package sign

import (
	"crypto/rand"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/zk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSignKeys() *SignKeys {
	k := sample.Scalar(rand.Reader)
	gamma, Gamma := sample.ScalarPointPair(rand.Reader)
	w, W := sample.ScalarPointPair(rand.Reader)
	K, rho := zk.ProverPaillierPublic.Enc(rand.Reader, k.Int())
	return &SignKeys{
		ID:          1,
		K:           k,
		Gamma:       gamma,
		W:           w,
		GW:          W,
		GGamma:      Gamma,
		KCiphertext: K,
		KNonce:      rho,
	}
}

func TestSignKeys_Consume(t *testing.T) {
	keys := newSignKeys()
	var wg sync.WaitGroup
	var successes atomic.Int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if keys.Consume() == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, successes.Load(), "keys must be consumed exactly once")
	assert.ErrorIs(t, keys.Consume(), ErrSignKeysConsumed)
}

func TestSignKeys_Marshal(t *testing.T) {
	keys := newSignKeys()
	data, err := cbor.Marshal(keys)
	require.NoError(t, err)
	decoded := &SignKeys{}
	require.NoError(t, cbor.Unmarshal(data, decoded))
	assert.True(t, decoded.K.Equal(keys.K))
	assert.True(t, decoded.GW.Equal(keys.GW))
	assert.True(t, decoded.KCiphertext.Equal(keys.KCiphertext))
	assert.EqualValues(t, 1, decoded.KNonce.Eq(keys.KNonce))
	assert.False(t, decoded.Consumed())

	require.NoError(t, keys.Consume())
	data, err = cbor.Marshal(keys)
	require.NoError(t, err)
	decoded = &SignKeys{}
	require.NoError(t, cbor.Unmarshal(data, decoded))
	assert.True(t, decoded.Consumed(), "consumed keys stay consumed once stored")
}

func TestWithSelf(t *testing.T) {
	signers := party.IDSlice{3, 1, 2}
	peers, err := signers.Peers(1)
	require.NoError(t, err)
	all := withSelf(peers, party.ID(1), []party.ID{3, 2})
	assert.Equal(t, []party.ID{3, 1, 2}, all)

	peers, err = signers.Peers(3)
	require.NoError(t, err)
	assert.Equal(t, []party.ID{3, 1, 2}, withSelf(peers, party.ID(3), []party.ID{1, 2}))
}
