package keygen

import "errors"

var (
	ErrStage1Commit       = errors.New("failed to commit")
	ErrStage2Decommit     = errors.New("failed to decommit")
	ErrStage2PaillierN    = errors.New("invalid Paillier modulus")
	ErrStage2ZKMod        = errors.New("failed to validate mod proof")
	ErrStage2Pedersen     = errors.New("invalid Pedersen parameters")
	ErrStage2ZKPrm        = errors.New("failed to validate prm proof")
	ErrStage3VSSConstant  = errors.New("vss polynomial has incorrect constant")
	ErrStage3VSSDegree    = errors.New("vss polynomial has incorrect degree")
	ErrStage3VSSShare     = errors.New("failed to validate VSS share")
	ErrStage4PublicShare  = errors.New("public share differs from the VSS evaluation")
	ErrStage4ZKSch        = errors.New("failed to validate schnorr proof for public share")
	ErrMissingMessage     = errors.New("missing message")
	ErrWrongSender        = errors.New("message is attributed to another party")
	ErrVectorLength       = errors.New("vector length differs from the number of parties")
	ErrInvalidParty       = errors.New("party is not part of the session")
	ErrInconsistentOutput = errors.New("stage outputs are inconsistent")
)
