package zkped

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

func TestPed(t *testing.T) {
	sigma := sample.Scalar(rand.Reader)
	l := sample.Scalar(rand.Reader)
	T := curve.NewIdentityPoint().Add(sigma.ActOnBase(), l.Act(curve.H()))
	public := Public{T: T}

	proof := NewProof(hash.New(), public, Private{Sigma: sigma, L: l})
	assert.True(t, proof.Verify(hash.New(), public))

	out, err := cbor.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := &Proof{}
	require.NoError(t, cbor.Unmarshal(out, proof2), "failed to unmarshal proof")
	assert.True(t, proof2.Verify(hash.New(), public))

	// σ⋅G alone does not open T
	assert.False(t, proof.Verify(hash.New(), Public{T: sigma.ActOnBase()}))
}

func TestPedWrongWitness(t *testing.T) {
	sigma := sample.Scalar(rand.Reader)
	l := sample.Scalar(rand.Reader)
	T := curve.NewIdentityPoint().Add(sigma.ActOnBase(), l.Act(curve.H()))
	public := Public{T: T}

	proof := NewProof(hash.New(), public, Private{Sigma: sigma, L: sample.Scalar(rand.Reader)})
	assert.False(t, proof.Verify(hash.New(), public))
}
