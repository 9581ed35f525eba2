package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := NewValidationError("email", "email is required")

	if !errors.Is(err, ErrValidation) {
		t.Error("validation error must match ErrValidation")
	}
	if errors.Is(err, ErrBusiness) {
		t.Error("validation error must not match ErrBusiness")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "email" {
		t.Errorf("errors.As lost the field: %+v", ve)
	}
}

func TestBusinessErrorFirstMessage(t *testing.T) {
	err := NewBusinessError("customerCreate", []FieldError{
		{Field: "input.email", Message: "Email has already been taken"},
		{Field: "input.email", Message: "Email is invalid"},
	})

	if !errors.Is(err, ErrBusiness) {
		t.Error("business error must match ErrBusiness")
	}
	if got := err.First(); got != "Email has already been taken" {
		t.Errorf("First() = %q", got)
	}

	empty := NewBusinessError("customerCreate", nil)
	if got := empty.First(); got != "request rejected" {
		t.Errorf("First() on empty userErrors = %q", got)
	}
}

func TestUpstreamErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewUpstreamError("FindCustomer", 0, cause)

	if !errors.Is(err, ErrUpstream) {
		t.Error("upstream error must match ErrUpstream")
	}
	if !errors.Is(err, cause) {
		t.Error("upstream error must unwrap to its cause")
	}

	wrapped := fmt.Errorf("workflow failed: %w", NewUpstreamError("FindCustomer", 502, nil))
	if !errors.Is(wrapped, ErrUpstream) {
		t.Error("wrapped upstream error must still match ErrUpstream")
	}
}
