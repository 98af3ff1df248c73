package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClonedErrorsMatchSentinel(t *testing.T) {
	err := fmt.Errorf("update: %w", Clone(ErrLocked, "approved tuitions cannot be edited"))

	assert.True(t, errors.Is(err, ErrLocked))
	assert.False(t, errors.Is(err, ErrBusy))
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(errors.New("boom"))

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, ErrInternal.Status, appErr.Status)
}

func TestValidationCarriesFields(t *testing.T) {
	appErr := Validation("", map[string]string{"budget": "Budget must be at least 1000"})

	assert.Equal(t, ErrValidation.Message, appErr.Message)
	assert.Equal(t, "Budget must be at least 1000", appErr.Fields["budget"])
	assert.Nil(t, ErrValidation.Fields)
}
