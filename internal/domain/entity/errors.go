package entity

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")
)

// Validation error codes. Clients switch on these rather than on messages.
const (
	CodeRequired        = "REQUIRED"
	CodeMinLength       = "MIN_LENGTH"
	CodeMaxLength       = "MAX_LENGTH"
	CodeInvalidEmail    = "INVALID_EMAIL"
	CodeInvalidURL      = "INVALID_URL"
	CodeInvalidImageURL = "INVALID_IMAGE_URL"
	CodeInvalidOption   = "INVALID_OPTION"
	CodeInvalidPhone    = "INVALID_PHONE"
	CodeTooManyTags     = "TOO_MANY_TAGS"
	CodeCustom          = "CUSTOM"
)

// ValidationError describes one violated rule on one field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ValidationErrors is the full list of violations found for one input.
// Use errors.As to recover it from a wrapped error.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, e := range ve {
		msgs = append(msgs, e.Field+": "+e.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is(err, ErrValidationFailed) match.
func (ve ValidationErrors) Unwrap() error {
	return ErrValidationFailed
}
