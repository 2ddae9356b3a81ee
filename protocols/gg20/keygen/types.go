package keygen

import (
	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/hash"
	"github.com/nguyenkha/demo-mpc/pkg/math/arith"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/paillier"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/pedersen"
	zkmod "github.com/nguyenkha/demo-mpc/pkg/zk/mod"
	zkprm "github.com/nguyenkha/demo-mpc/pkg/zk/prm"
	zksch "github.com/nguyenkha/demo-mpc/pkg/zk/sch"
)

// Keys is the ephemeral secret state of a party during key generation.
type Keys struct {
	ID party.ID

	// U = uᵢ is the contribution of this party to the secret key
	U *curve.Scalar
	// Y = yᵢ = uᵢ⋅G
	Y *curve.Point

	PaillierSecret *paillier.SecretKey

	// Pedersen = (Nᵢ, sᵢ, tᵢ), over the Paillier modulus
	Pedersen *pedersen.Parameters
	// Lambda = λᵢ such that sᵢ = tᵢ^λᵢ, only used to prove the Pedersen parameters
	Lambda *saferith.Nat

	// SafePrimes records whether the Paillier primes are safe primes.
	SafePrimes bool
}

// BroadcastMessage1 is sent to all parties in the first stage.
type BroadcastMessage1 struct {
	ID party.ID
	// Commitment = H(ID, Y, decommitment)
	Commitment  hash.Commitment
	PaillierKey *paillier.PublicKey
	Pedersen    *pedersen.Parameters
	// ModProof proves that N is a Paillier-Blum modulus.
	ModProof *zkmod.Proof
	// PrmProof proves that s and t generate the same group.
	PrmProof *zkprm.Proof
}

// DecommitMessage1 opens BroadcastMessage1.Commitment.
type DecommitMessage1 struct {
	ID           party.ID
	Y            *curve.Point
	Decommitment hash.Decommitment
}

// DLogProof proves knowledge of the final share xᵢ of PK = xᵢ⋅G.
type DLogProof struct {
	PK    *curve.Point
	Proof *zksch.Proof
}

type keysMarshal struct {
	ID             party.ID
	U              *curve.Scalar
	Y              *curve.Point
	PaillierSecret *paillier.SecretKey
	Pedersen       *pedersen.Parameters
	Lambda         []byte
	SafePrimes     bool
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (k *Keys) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(keysMarshal{
		ID:             k.ID,
		U:              k.U,
		Y:              k.Y,
		PaillierSecret: k.PaillierSecret,
		Pedersen:       k.Pedersen,
		Lambda:         arith.NatBytes(k.Lambda),
		SafePrimes:     k.SafePrimes,
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (k *Keys) UnmarshalBinary(data []byte) error {
	var m keysMarshal
	if err := cbor.Unmarshal(data, &m); err != nil {
		return err
	}
	lambda, err := arith.NatFromBytes(m.Lambda)
	if err != nil {
		return err
	}
	*k = Keys{
		ID:             m.ID,
		U:              m.U,
		Y:              m.Y,
		PaillierSecret: m.PaillierSecret,
		Pedersen:       m.Pedersen,
		Lambda:         lambda,
		SafePrimes:     m.SafePrimes,
	}
	return nil
}
