package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError_PassesThroughWrapped(t *testing.T) {
	base := NewValidationError("invalid payload", map[string]any{"username": "cannot be blank"})
	wrapped := fmt.Errorf("login: %w", base)

	de := ToDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Equal(t, "cannot be blank", de.Details["username"])
}

func TestToDomainError_WrapsUnknownAsInternal(t *testing.T) {
	cause := errors.New("boom")

	de := ToDomainError(cause)
	require.NotNil(t, de)
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.ErrorIs(t, de, cause)
	assert.Nil(t, ToDomainError(nil))
}

func TestNewUnauthorized_HasEmptyBody(t *testing.T) {
	de := ToDomainError(NewUnauthorized("invalid credentials"))
	assert.Equal(t, http.StatusUnauthorized, de.HTTPStatus)
	assert.True(t, de.EmptyBody)
}

func TestNewTooManyRequests_RoundsRetryAfterUp(t *testing.T) {
	de := ToDomainError(NewTooManyRequests(1500 * time.Millisecond))
	assert.Equal(t, http.StatusTooManyRequests, de.HTTPStatus)
	assert.Equal(t, "2", de.Headers["Retry-After"])

	de = ToDomainError(NewTooManyRequests(0))
	assert.Empty(t, de.Headers)
}
