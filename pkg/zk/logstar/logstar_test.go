package zklogstar

import (
	"crypto/rand"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/hash"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
	"github.com/nguyenkha/demo-mpc/pkg/zk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogStar(t *testing.T) {
	verifier := zk.Pedersen
	prover := zk.ProverPaillierPublic

	G := sample.Scalar(rand.Reader).ActOnBase()

	x := sample.IntervalL(rand.Reader)
	C, rho := prover.Enc(rand.Reader, x)
	X := curve.NewScalar().SetInt(x).Act(G)
	public := Public{
		C:      C,
		X:      X,
		G:      G,
		Prover: prover,
		Aux:    verifier,
	}

	proof := NewProof(hash.New(), public, Private{
		X:   x,
		Rho: rho,
	})
	assert.True(t, proof.Verify(hash.New(), public))

	out, err := cbor.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := &Proof{}
	require.NoError(t, cbor.Unmarshal(out, proof2), "failed to unmarshal proof")
	assert.True(t, proof2.Verify(hash.New(), public))
}

func TestLogStarDefaultBase(t *testing.T) {
	prover := zk.ProverPaillierPublic

	x := sample.IntervalL(rand.Reader)
	C, rho := prover.Enc(rand.Reader, x)
	public := Public{
		C:      C,
		X:      curve.NewScalar().SetInt(x).ActOnBase(),
		Prover: prover,
		Aux:    zk.Pedersen,
	}

	proof := NewProof(hash.New(), public, Private{X: x, Rho: rho})
	assert.True(t, proof.Verify(hash.New(), public))

	// a different base point changes the statement
	public.G = sample.Scalar(rand.Reader).ActOnBase()
	assert.False(t, proof.Verify(hash.New(), public))
}

func TestLogStarWrongPoint(t *testing.T) {
	prover := zk.ProverPaillierPublic

	x := sample.IntervalL(rand.Reader)
	C, rho := prover.Enc(rand.Reader, x)
	public := Public{
		C:      C,
		X:      sample.Scalar(rand.Reader).ActOnBase(),
		Prover: prover,
		Aux:    zk.Pedersen,
	}

	proof := NewProof(hash.New(), public, Private{X: x, Rho: rho})
	assert.False(t, proof.Verify(hash.New(), public))
}
