package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("invalid input", ValidationDetail{Field: "keys", Message: "required"})

	assert.Equal(t, "invalid input", err.Error())
	require.Len(t, err.Details, 1)
	assert.Equal(t, "keys", err.Details[0].Field)

	ve, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Same(t, err, ve)

	_, ok = IsValidationError(stderrors.New("other"))
	assert.False(t, ok)
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("session not found")

	assert.Equal(t, "session not found", err.Error())
	_, ok := IsNotFoundError(err)
	assert.True(t, ok)
	_, ok = IsNotFoundError(stderrors.New("other"))
	assert.False(t, ok)
}

func TestInternalErrorWrapsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewInternalError("failed to load locations", cause)

	assert.Equal(t, "failed to load locations: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewInternalError("oops", nil)
	assert.Equal(t, "oops", bare.Error())
}

func TestFetchExhaustedError(t *testing.T) {
	cause := stderrors.New("status 502")
	err := NewFetchExhaustedError("loc-1", 3, cause)

	assert.Contains(t, err.Error(), "loc-1")
	assert.Contains(t, err.Error(), "3 consecutive errors")
	assert.ErrorIs(t, err, cause)

	fee, ok := IsFetchExhaustedError(err)
	require.True(t, ok)
	assert.Equal(t, "loc-1", fee.LocationID)
	assert.Equal(t, 3, fee.ConsecutiveErrors)

	// Detection survives wrapping.
	wrapped := fmt.Errorf("location loc-1: %w", err)
	var target *FetchExhaustedError
	assert.True(t, stderrors.As(wrapped, &target))
}

func TestUnavailableError(t *testing.T) {
	cause := stderrors.New("circuit breaker is open")
	err := NewUnavailableError("inventory API unavailable", cause)

	assert.Contains(t, err.Error(), "inventory API unavailable")
	assert.ErrorIs(t, err, cause)
	_, ok := IsUnavailableError(err)
	assert.True(t, ok)
}
