package errors

import "fmt"

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	if ve, ok := err.(*ValidationError); ok {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	if nfe, ok := err.(*NotFoundError); ok {
		return nfe, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

// FetchExhaustedError means the paginated fetcher gave up after too many
// consecutive page errors. It marks a location-level failure: the caller
// records it against the location and moves on to the next one.
type FetchExhaustedError struct {
	LocationID        string
	ConsecutiveErrors int
	LastCause         error
}

func (e *FetchExhaustedError) Error() string {
	return fmt.Sprintf("failed to load inventory for location %s after %d consecutive errors", e.LocationID, e.ConsecutiveErrors)
}

func (e *FetchExhaustedError) Unwrap() error {
	return e.LastCause
}

func NewFetchExhaustedError(locationID string, consecutiveErrors int, lastCause error) *FetchExhaustedError {
	return &FetchExhaustedError{
		LocationID:        locationID,
		ConsecutiveErrors: consecutiveErrors,
		LastCause:         lastCause,
	}
}

func IsFetchExhaustedError(err error) (*FetchExhaustedError, bool) {
	if fee, ok := err.(*FetchExhaustedError); ok {
		return fee, true
	}
	return nil, false
}

// UnavailableError means the inventory API cannot be reached at all,
// typically because the circuit breaker is open.
type UnavailableError struct {
	Message string
	Cause   error
}

func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

func NewUnavailableError(message string, cause error) *UnavailableError {
	return &UnavailableError{
		Message: message,
		Cause:   cause,
	}
}

func IsUnavailableError(err error) (*UnavailableError, bool) {
	if ue, ok := err.(*UnavailableError); ok {
		return ue, true
	}
	return nil, false
}
