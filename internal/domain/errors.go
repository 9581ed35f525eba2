package domain

import (
	"errors"
	"fmt"
)

// Application errors
var (
	// ErrValidation missing or malformed input
	ErrValidation = errors.New("validation failed")

	// ErrBusiness the remote system rejected the mutation
	ErrBusiness = errors.New("business rule violation")

	// ErrAuthContext no installed or authenticated shop context
	ErrAuthContext = errors.New("shop context unavailable")

	// ErrRouteNotFound unknown sub-route
	ErrRouteNotFound = errors.New("unknown route")

	// ErrUpstream transport or unexpected upstream failure
	ErrUpstream = errors.New("upstream failure")

	// ErrCustomerNotFound customer could not be resolved
	ErrCustomerNotFound = errors.New("customer not found")
)

// ValidationError carries the offending field alongside the message
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
}

// Is matches the ErrValidation sentinel
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// BusinessError wraps the userErrors a mutation came back with. It is a
// rejection by the remote system, not a transport failure.
type BusinessError struct {
	Operation string
	Errors    []FieldError
}

// Error implements the error interface
func (e *BusinessError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("%s rejected", e.Operation)
	}
	return fmt.Sprintf("%s rejected: %s", e.Operation, e.Errors[0].Message)
}

// Is matches the ErrBusiness sentinel
func (e *BusinessError) Is(target error) bool {
	return target == ErrBusiness
}

// First returns the first reported message, the one surfaced to the caller
func (e *BusinessError) First() string {
	if len(e.Errors) == 0 {
		return "request rejected"
	}
	return e.Errors[0].Message
}

// NewBusinessError creates a new business error
func NewBusinessError(operation string, fieldErrors []FieldError) *BusinessError {
	return &BusinessError{Operation: operation, Errors: fieldErrors}
}

// UpstreamError represents a transport-level failure of an Admin API call
type UpstreamError struct {
	Operation   string
	StatusCode  int
	OriginalErr error
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("upstream error during %s: %v", e.Operation, e.OriginalErr)
	}
	return fmt.Sprintf("upstream error during %s (status %d)", e.Operation, e.StatusCode)
}

// Unwrap returns the original error
func (e *UpstreamError) Unwrap() error {
	return e.OriginalErr
}

// Is matches the ErrUpstream sentinel
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// NewUpstreamError creates a new upstream error
func NewUpstreamError(operation string, statusCode int, err error) *UpstreamError {
	return &UpstreamError{Operation: operation, StatusCode: statusCode, OriginalErr: err}
}
