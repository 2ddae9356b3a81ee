package protocol

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	cause := errors.New("bad proof")
	err := fmt.Errorf("wrapped: %w", Blame(KindVerification, SignStage3, 2, cause))

	assert.ErrorIs(t, err, ErrVerification)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrMalformed)
	assert.NotErrorIs(t, err, ErrShape)

	id, ok := Culprit(err)
	assert.True(t, ok)
	assert.Equal(t, party.ID(2), id)
	assert.Contains(t, err.Error(), "sign_stage3")
	assert.Contains(t, err.Error(), "party 2")

	err = NewError(KindShape, KeyGenStage2, cause)
	assert.ErrorIs(t, err, ErrShape)
	_, ok = Culprit(err)
	assert.False(t, ok)
}

func TestStage_Valid(t *testing.T) {
	assert.Len(t, Stages, 15)
	for _, s := range Stages {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Stage("sign_stage10").Valid())
}
