package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesByStatus(t *testing.T) {
	err := fmt.Errorf("loading quote: %w", NewNotFoundError("Quote"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
}

func TestGetAppError_HidesInternalCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	appErr := GetAppError(cause)

	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.Equal(t, ErrInternalServer.Message, appErr.Message)
	assert.ErrorIs(t, appErr, cause)
}

func TestNewFieldValidationError_SortsFields(t *testing.T) {
	err := NewFieldValidationError(map[string]string{"phone": "bad", "email": "bad"})
	assert.Equal(t, http.StatusUnprocessableEntity, err.Code)
	assert.Equal(t, "email", err.Errors[0].Field)
	assert.Equal(t, map[string]string{"phone": "bad", "email": "bad"}, err.Fields())
}
