package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/colabah/style-dna-service/internal/domain"
)

// respondOutcome maps a workflow outcome to the caller-facing JSON envelope.
// Business rejections (non-empty remote userErrors) are 400s, not 500s.
func respondOutcome(c *gin.Context, outcome domain.WorkflowOutcome) {
	if outcome.Guest {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"guest":   true,
			"message": outcome.Message,
		})
		return
	}

	if !outcome.Succeeded {
		message := "request rejected"
		if len(outcome.Errors) > 0 {
			message = outcome.Errors[0].Message
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   message,
			"errors":  outcome.Errors,
		})
		return
	}

	body := gin.H{
		"success":    true,
		"customerId": outcome.CustomerID,
	}
	if outcome.SavedValue != "" {
		body["value"] = outcome.SavedValue
	}
	if outcome.Email != "" {
		body["email"] = outcome.Email
	}
	if outcome.ExistingAccount {
		body["existing"] = true
	}
	if outcome.Message != "" {
		body["message"] = outcome.Message
	}

	c.JSON(http.StatusOK, body)
}

// respondError maps the error taxonomy to HTTP statuses: validation 400,
// missing shop context 401, everything else an upstream 500.
func respondError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   validationErr.Message,
			"errors":  []domain.FieldError{{Field: validationErr.Field, Message: validationErr.Message}},
		})
		return
	}

	if errors.Is(err, domain.ErrAuthContext) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "App is not installed on this store. Please install the app first.",
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

// bindingFieldErrors converts a gin form binding failure into field errors
func bindingFieldErrors(err error) []domain.FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]domain.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			message := "is invalid"
			switch fe.Tag() {
			case "required":
				message = "is required"
			case "email":
				message = "must be a valid email address"
			}
			out = append(out, domain.FieldError{
				Field:   strings.ToLower(fe.Field()),
				Message: message,
			})
		}
		return out
	}
	return []domain.FieldError{{Field: "form", Message: err.Error()}}
}

// respondBindingError turns a binding failure into the 400 envelope
func respondBindingError(c *gin.Context, err error) {
	fieldErrs := bindingFieldErrors(err)

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field+" "+fe.Message)
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   strings.Join(fields, "; "),
		"errors":  fieldErrs,
	})
}
