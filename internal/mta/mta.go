package mta

import (
	"crypto/rand"
	"errors"

	"github.com/cronokirby/saferith"
	"github.com/nguyenkha/demo-mpc/pkg/hash"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
	"github.com/nguyenkha/demo-mpc/pkg/paillier"
	"github.com/nguyenkha/demo-mpc/pkg/pedersen"
	zkaffg "github.com/nguyenkha/demo-mpc/pkg/zk/affg"
)

var (
	ErrMessageBMalformed = errors.New("mta: message B is malformed")
	ErrAffGProof         = errors.New("mta: affine operation proof failed to verify")
	ErrDecrypt           = errors.New("mta: failed to decrypt D")
)

// MessageB is the response of the multiplicative share holder to an encrypted share Kⱼ.
type MessageB struct {
	// D = (b ⊙ Kⱼ) ⊕ Encⱼ(β';s)
	D *paillier.Ciphertext
	// F = Encᵢ(β';r)
	F *paillier.Ciphertext
	// X = b⋅G
	X *curve.Point
	// Proof binds D, F and X.
	Proof *zkaffg.Proof
}

// Validate checks that every field is set.
func (m *MessageB) Validate() error {
	if m == nil || m.D == nil || m.F == nil || m.X == nil || m.Proof == nil {
		return ErrMessageBMalformed
	}
	if m.D.Nat() == nil || m.F.Nat() == nil || m.X.IsIdentity() {
		return ErrMessageBMalformed
	}
	return nil
}

// ProveAffG returns the necessary messages for the receiver of the multiplication.
// h is a hash function initialized with the sender's ID.
// - senderSecretShare = b
// - senderSecretSharePoint = b⋅G
// - receiverEncryptedShare = Kⱼ = Encⱼ(kⱼ)
// The elements returned are :
// - MessageB{D, F, X, Proof}
// - Beta = β = -β' (mod q), the sender's additive share
func ProveAffG(h *hash.Hash,
	senderSecretShare *curve.Scalar, senderSecretSharePoint *curve.Point, receiverEncryptedShare *paillier.Ciphertext,
	sender *paillier.PublicKey, receiver *paillier.PublicKey, verifier *pedersen.Parameters) (*MessageB, *curve.Scalar) {
	x := senderSecretShare.Int()
	D, F, S, R, betaPrime := newMta(x, receiverEncryptedShare, sender, receiver)
	proof := zkaffg.NewProof(h, zkaffg.Public{
		Kv:       receiverEncryptedShare,
		Dv:       D,
		Fp:       F,
		Xp:       senderSecretSharePoint,
		Prover:   sender,
		Verifier: receiver,
		Aux:      verifier,
	}, zkaffg.Private{
		X: x,
		Y: betaPrime,
		S: S,
		R: R,
	})
	beta := curve.NewScalar().SetInt(betaPrime)
	beta.Negate(beta)
	return &MessageB{
		D:     D,
		F:     F,
		X:     senderSecretSharePoint,
		Proof: proof,
	}, beta
}

// AlphaFrom verifies the proof attached to msg and decrypts D into the receiver's additive share α.
// h must be initialized the same way as the sender's.
// - ownEncryptedShare = Kᵢ, the ciphertext the sender responded to
// - receiver is the Paillier key of the caller, Aux its Pedersen parameters
// - sender is the Paillier key of the party that produced msg
func AlphaFrom(h *hash.Hash, msg *MessageB, ownEncryptedShare *paillier.Ciphertext,
	receiver *paillier.SecretKey, sender *paillier.PublicKey, aux *pedersen.Parameters) (*curve.Scalar, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	public := zkaffg.Public{
		Kv:       ownEncryptedShare,
		Dv:       msg.D,
		Fp:       msg.F,
		Xp:       msg.X,
		Prover:   sender,
		Verifier: receiver.PublicKey,
		Aux:      aux,
	}
	if !msg.Proof.Verify(h, public) {
		return nil, ErrAffGProof
	}
	alpha, err := receiver.Dec(msg.D)
	if err != nil {
		return nil, ErrDecrypt
	}
	return curve.NewScalar().SetInt(alpha), nil
}

func newMta(senderSecretShare *saferith.Int, receiverEncryptedShare *paillier.Ciphertext,
	sender *paillier.PublicKey, receiver *paillier.PublicKey) (D, F *paillier.Ciphertext, S, R *saferith.Nat, BetaPrime *saferith.Int) {
	BetaPrime = sample.IntervalLPrime(rand.Reader)

	F, R = sender.Enc(rand.Reader, BetaPrime) // F = encᵢ(β', r)

	D, S = receiver.Enc(rand.Reader, BetaPrime)
	tmp := receiverEncryptedShare.Clone().Mul(receiver, senderSecretShare) // tmp = b ⊙ Kⱼ
	D.Add(receiver, tmp)                                                   // D = encⱼ(β';s) ⊕ (b ⊙ Kⱼ) = encⱼ(b•kⱼ+β')

	return
}
