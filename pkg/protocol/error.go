package protocol

import (
	"errors"
	"fmt"

	"github.com/nguyenkha/demo-mpc/pkg/party"
)

var (
	// ErrMalformed is matched by every error of KindMalformed.
	ErrMalformed = errors.New("malformed input")
	// ErrVerification is matched by every error of KindVerification.
	ErrVerification = errors.New("verification failed")
	// ErrShape is matched by every error of KindShape.
	ErrShape = errors.New("inconsistent input shape")
)

// Kind classifies a failed stage.
type Kind uint8

const (
	// KindMalformed means some value could not be decoded or is missing.
	KindMalformed Kind = iota + 1
	// KindVerification means a commitment, share or proof was rejected.
	KindVerification
	// KindShape means the input vectors do not match the session parameters.
	KindShape
)

func (k Kind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindVerification:
		return "verification"
	case KindShape:
		return "shape"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindMalformed:
		return ErrMalformed
	case KindVerification:
		return ErrVerification
	case KindShape:
		return ErrShape
	}
	return nil
}

// Error is a custom error for protocols which contains information about the stage in which it occurred,
// and the party responsible.
type Error struct {
	Kind Kind
	// Stage where the error occurred
	Stage Stage
	// Culprit is 0 if the identity of the misbehaving party cannot be known
	Culprit party.ID
	// Err is the underlying error
	Err error
}

// NewError returns an *Error without a culprit.
func NewError(kind Kind, stage Stage, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Err: err}
}

// Blame returns an *Error naming culprit as the party responsible.
func Blame(kind Kind, stage Stage, culprit party.ID, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Culprit: culprit, Err: err}
}

func (e *Error) Error() string {
	if e.Culprit == 0 {
		return fmt.Sprintf("%s: %s: %s", e.Stage, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: party %d: %s", e.Stage, e.Kind, e.Culprit, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// Culprit returns the party blamed by err, if err wraps an *Error naming one.
func Culprit(err error) (party.ID, bool) {
	var protocolErr *Error
	if errors.As(err, &protocolErr) && protocolErr.Culprit != 0 {
		return protocolErr.Culprit, true
	}
	return 0, false
}
