package zkprm

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/hash"
	"github.com/nguyenkha/demo-mpc/pkg/pedersen"
	"github.com/nguyenkha/demo-mpc/pkg/pool"
	"github.com/nguyenkha/demo-mpc/pkg/zk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrm(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	sk := zk.VerifierPaillierSecret
	ped, lambda := sk.GeneratePedersen(rand.Reader)

	public := Public{Aux: ped}

	proof := NewProof(hash.New(), public, Private{
		Lambda: lambda,
		Phi:    sk.Phi(),
		P:      sk.P(),
		Q:      sk.Q(),
	}, pl)
	assert.True(t, proof.Verify(hash.New(), public, pl))

	out, err := cbor.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := &Proof{}
	require.NoError(t, cbor.Unmarshal(out, proof2), "failed to unmarshal proof")
	out2, err := cbor.Marshal(proof2)
	require.NoError(t, err, "failed to marshal 2nd proof")
	proof3 := &Proof{}
	require.NoError(t, cbor.Unmarshal(out2, proof3), "failed to unmarshal 2nd proof")

	assert.True(t, proof3.Verify(hash.New(), public, pl))
}

func TestPrmWrongLambda(t *testing.T) {
	sk := zk.VerifierPaillierSecret
	ped, lambda := sk.GeneratePedersen(rand.Reader)
	public := Public{Aux: ped}

	wrong := new(saferith.Nat).Add(lambda, new(saferith.Nat).SetUint64(1), -1)
	proof := NewProof(hash.New(), public, Private{
		Lambda: wrong,
		Phi:    sk.Phi(),
		P:      sk.P(),
		Q:      sk.Q(),
	}, nil)
	assert.False(t, proof.Verify(hash.New(), public, nil))

	// swapping s and t breaks the statement
	swapped := pedersen.New(ped.NArith(), ped.T(), ped.S())
	proof = NewProof(hash.New(), public, Private{Lambda: lambda, Phi: sk.Phi(), P: sk.P(), Q: sk.Q()}, nil)
	assert.False(t, proof.Verify(hash.New(), Public{Aux: swapped}, nil))
}
