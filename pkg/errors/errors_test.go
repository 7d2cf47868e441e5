package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneKeepsIdentity(t *testing.T) {
	err := Clonef(ErrInfeasible, "student %s overbooked", "S1")
	require.Error(t, err)
	assert.Equal(t, "student S1 overbooked", err.Error())
	assert.True(t, errors.Is(err, ErrInfeasible))
	assert.False(t, errors.Is(err, ErrTimedOut))
	assert.Equal(t, 5, err.ExitCode)
}

func TestFromErrorWrapsForeignErrors(t *testing.T) {
	base := fmt.Errorf("disk full")
	e := FromError(base)
	require.NotNil(t, e)
	assert.Equal(t, ErrInternal.Code, e.Code)
	assert.ErrorIs(t, e, base)

	wrapped := fmt.Errorf("stage assign: %w", Clone(ErrDataValidation, "missing column"))
	e = FromError(wrapped)
	assert.Equal(t, ErrDataValidation.Code, e.Code)
	assert.Equal(t, "missing column", e.Message)
}

func TestNilError(t *testing.T) {
	var e *Error
	assert.Equal(t, "<nil>", e.Error())
	assert.Nil(t, e.Unwrap())
	assert.Nil(t, FromError(nil))
	assert.Nil(t, Clone(nil, "x"))
}
