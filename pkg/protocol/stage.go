package protocol

// Stage names a party-local computation step.
// The values are the names under which stages are exposed at the serialized boundary.
type Stage string

const (
	KeyGenStage1        Stage = "keygen_stage1"
	KeyGenStage2        Stage = "keygen_stage2"
	KeyGenStage3        Stage = "keygen_stage3"
	KeyGenStage4        Stage = "keygen_stage4"
	ConstructPrivateKey Stage = "construct_private_key"
	SignStage1          Stage = "sign_stage1"
	SignStage2          Stage = "sign_stage2"
	SignStage3          Stage = "sign_stage3"
	SignStage4          Stage = "sign_stage4"
	SignStage5          Stage = "sign_stage5"
	SignStage6          Stage = "sign_stage6"
	SignStage7          Stage = "sign_stage7"
	SignStage8          Stage = "sign_stage8"
	SignStage9          Stage = "sign_stage9"
	TweakKey            Stage = "tweak_key"
)

// Stages lists every stage in execution order.
var Stages = []Stage{
	KeyGenStage1, KeyGenStage2, KeyGenStage3, KeyGenStage4,
	ConstructPrivateKey,
	SignStage1, SignStage2, SignStage3, SignStage4, SignStage5, SignStage6, SignStage7, SignStage8, SignStage9,
	TweakKey,
}

func (s Stage) String() string {
	return string(s)
}

// Valid returns true if s is one of Stages.
func (s Stage) Valid() bool {
	for _, other := range Stages {
		if s == other {
			return true
		}
	}
	return false
}

// State is a value of the protocol state machine.
//
// Each concrete state only exposes the transition that is legal from it,
// so that stages cannot be executed out of order.
type State interface {
	// Stage returns the stage that produced this state.
	Stage() Stage
}
