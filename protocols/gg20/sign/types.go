package sign

import (
	"sync/atomic"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/hash"
	"github.com/nguyenkha/demo-mpc/pkg/math/arith"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/paillier"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	zkenc "github.com/nguyenkha/demo-mpc/pkg/zk/enc"
	zkelog "github.com/nguyenkha/demo-mpc/pkg/zk/elog"
	zklogstar "github.com/nguyenkha/demo-mpc/pkg/zk/logstar"
	zkped "github.com/nguyenkha/demo-mpc/pkg/zk/ped"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
)

// SignKeys are the ephemeral secrets of one signing session.
// They may produce a single partial signature: reusing kᵢ leaks the key share.
type SignKeys struct {
	ID party.ID

	// K = kᵢ
	K *curve.Scalar
	// Gamma = γᵢ
	Gamma *curve.Scalar
	// W = wᵢ, the additive share of the key among the signers
	W *curve.Scalar
	// GW = wᵢ⋅G
	GW *curve.Point
	// GGamma = Γᵢ = γᵢ⋅G
	GGamma *curve.Point

	// KCiphertext = Kᵢ = Encᵢ(kᵢ; ρᵢ)
	KCiphertext *paillier.Ciphertext
	// KNonce = ρᵢ
	KNonce *saferith.Nat

	consumed atomic.Bool
}

// Consume marks the keys as used, and fails if they already were.
func (k *SignKeys) Consume() error {
	if !k.consumed.CompareAndSwap(false, true) {
		return ErrSignKeysConsumed
	}
	return nil
}

// Consumed reports whether Consume was called.
func (k *SignKeys) Consumed() bool {
	return k.consumed.Load()
}

func (k *SignKeys) valid() bool {
	return k != nil && k.K != nil && k.Gamma != nil && k.W != nil && k.GW != nil && k.GGamma != nil &&
		k.KCiphertext != nil && k.KNonce != nil
}

type signKeysWire struct {
	ID          party.ID
	K           *curve.Scalar
	Gamma       *curve.Scalar
	W           *curve.Scalar
	GW          *curve.Point
	GGamma      *curve.Point
	KCiphertext *paillier.Ciphertext
	KNonce      []byte
	Consumed    bool
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (k *SignKeys) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(signKeysWire{
		ID:          k.ID,
		K:           k.K,
		Gamma:       k.Gamma,
		W:           k.W,
		GW:          k.GW,
		GGamma:      k.GGamma,
		KCiphertext: k.KCiphertext,
		KNonce:      arith.NatBytes(k.KNonce),
		Consumed:    k.Consumed(),
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (k *SignKeys) UnmarshalBinary(data []byte) error {
	var w signKeysWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	nonce, err := arith.NatFromBytes(w.KNonce)
	if err != nil {
		return err
	}
	k.ID = w.ID
	k.K, k.Gamma, k.W = w.K, w.Gamma, w.W
	k.GW, k.GGamma = w.GW, w.GGamma
	k.KCiphertext, k.KNonce = w.KCiphertext, nonce
	k.consumed.Store(w.Consumed)
	return nil
}

// BroadcastMessage commits to Γᵢ.
type BroadcastMessage struct {
	ID         party.ID
	Commitment hash.Commitment
}

// DecommitMessage opens BroadcastMessage.Commitment.
type DecommitMessage struct {
	ID           party.ID
	GGamma       *curve.Point
	Decommitment hash.Decommitment
}

// MessageA is the encryption of kᵢ under the sender's Paillier key.
type MessageA struct {
	ID party.ID
	// K = Encᵢ(kᵢ)
	K *paillier.Ciphertext
	// Proofs[j] proves that K is in range to the j-th peer of the sender, with that peer's Pedersen parameters.
	Proofs []*zkenc.Proof
}

// TProof binds Tᵢ = σᵢ⋅G + lᵢ⋅H to a proof of knowledge of its opening.
type TProof struct {
	T     *curve.Point
	Proof *zkped.Proof
}

// HEGProof proves that Sᵢ = σᵢ⋅R and Tᵢ share the same σᵢ.
type HEGProof struct {
	// L = lᵢ⋅G
	L     *curve.Point
	Proof *zkelog.Proof
}

// LogStarProofs are the proofs sent by one signer in Stage5, indexed by its peers.
type LogStarProofs = []*zklogstar.Proof

// CompletedOfflineStage is the state of a signer once the presignature is verified.
// Only the message digest is missing to produce a partial signature.
type CompletedOfflineStage struct {
	ID       party.ID
	Signers  party.IDSlice
	LocalKey *config.LocalKey
	SignKeys *SignKeys

	// Ts[j] = Tⱼ, indexed by signer position
	Ts []*curve.Point
	// R = k⁻¹⋅G
	R *curve.Point
	// RDashes[j] = R'ⱼ = kⱼ⋅R
	RDashes []*curve.Point
	// Ss[j] = Sⱼ = σⱼ⋅R, set once Stage7 succeeded
	Ss []*curve.Point

	// SigmaI = σᵢ, the additive share of k⋅(x + Tweak)
	SigmaI *curve.Scalar
}

// PartialSignature is the share sᵢ sent to every other signer.
type PartialSignature struct {
	ID party.ID
	S  *curve.Scalar
}

// LocalSignature is the state of a signer after Stage8.
type LocalSignature struct {
	ID party.ID
	R  *curve.Point
	// LittleR = r = R.x mod q
	LittleR *curve.Scalar
	// SI = sᵢ
	SI *curve.Scalar
	// M is the digest as a scalar.
	M      *curve.Scalar
	Digest []byte
	// Y is the public key the signature must verify against.
	Y *curve.Point

	// Signers, RDashes and Ss identify the signer of an invalid partial signature.
	Signers party.IDSlice
	RDashes []*curve.Point
	Ss      []*curve.Point
}
