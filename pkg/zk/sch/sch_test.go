package zksch

import (
	"crypto/rand"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/hash"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchPass(t *testing.T) {
	x, X := sample.ScalarPointPair(rand.Reader)
	public := Public{X: X}

	proof := NewProof(hash.New(), public, Private{X: x})
	assert.True(t, proof.Verify(hash.New(), public), "failed passing test")

	out, err := cbor.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := &Proof{}
	require.NoError(t, cbor.Unmarshal(out, proof2), "failed to unmarshal proof")
	assert.True(t, proof2.Verify(hash.New(), public))
}

func TestSchFail(t *testing.T) {
	x, X := curve.NewScalar(), curve.NewIdentityPoint()
	public := Public{X: X}

	proof := NewProof(hash.New(), public, Private{X: x})
	assert.False(t, proof.Verify(hash.New(), public), "proof should not accept identity point")
}

func TestSchWrongContext(t *testing.T) {
	x, X := sample.ScalarPointPair(rand.Reader)
	public := Public{X: X}

	proof := NewProof(hash.New([]byte("session 1")), public, Private{X: x})
	assert.False(t, proof.Verify(hash.New([]byte("session 2")), public))

	_, Y := sample.ScalarPointPair(rand.Reader)
	assert.False(t, proof.Verify(hash.New([]byte("session 1")), Public{X: Y}))
}
