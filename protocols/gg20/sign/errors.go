package sign

import "errors"

var (
	ErrStage1Commit             = errors.New("failed to commit to Γ")
	ErrStage2ZKEnc              = errors.New("failed to validate enc proof for K")
	ErrStage3MtA                = errors.New("failed to validate MtA response")
	ErrStage3WShareMismatch     = errors.New("MtA response is not bound to the public share of the sender")
	ErrStage4TBinding           = errors.New("Pedersen proof is not bound to T")
	ErrStage4ZKPed              = errors.New("failed to validate Pedersen proof for T")
	ErrStage4ZeroDelta          = errors.New("δ = ∑ δⱼ is zero")
	ErrStage5Decommit           = errors.New("failed to decommit Γ")
	ErrStage5GammaMismatch      = errors.New("MtA response is not bound to the decommitted Γ")
	ErrStage5IdentityR          = errors.New("R is the identity point")
	ErrStage6ZKLogStar          = errors.New("failed to validate log* proof for R'")
	ErrStage6RDashSum           = errors.New("∑ R'ⱼ ≠ G")
	ErrStage7ZKElog             = errors.New("failed to validate homomorphic ElGamal proof for S")
	ErrStage7SSum               = errors.New("∑ Sⱼ ≠ Y")
	ErrStage8DigestLength       = errors.New("digest must be 32 bytes")
	ErrStage9PartialSignature   = errors.New("partial signature does not match R' and S")
	ErrStage9InvalidSignature   = errors.New("combined signature is invalid")
	ErrSignKeysConsumed         = errors.New("sign keys were already used to sign")
	ErrMissingMessage           = errors.New("missing message")
	ErrWrongSender              = errors.New("message is attributed to another party")
	ErrVectorLength             = errors.New("vector length differs from the signer set")
	ErrInvalidSigners           = errors.New("invalid signer set")
	ErrInconsistentOfflineStage = errors.New("offline stage is inconsistent")
)
