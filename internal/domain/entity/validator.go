package entity

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// emailPattern is intentionally loose: one @, no spaces, a dot in the domain.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationResult is the outcome of a Validator chain.
type ValidationResult struct {
	IsValid bool              `json:"isValid"`
	Errors  []ValidationError `json:"errors"`
}

// Err returns the violations as a ValidationErrors error, or nil when valid.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return ValidationErrors(r.Errors)
}

// Validator accumulates ValidationErrors across chained rule calls.
//
// Every rule runs; none stops the chain, so callers get all violations at
// once. Apart from Required, rules ignore empty values so that an optional
// field is only checked when present.
//
//	res := entity.NewValidator().
//		Required("title", in.Title).
//		MinLength("title", in.Title, 5).
//		MaxLength("title", in.Title, 200).
//		Result()
type Validator struct {
	errors []ValidationError
}

// NewValidator returns an empty Validator.
func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) add(field, code, message string) *Validator {
	v.errors = append(v.errors, ValidationError{Field: field, Message: message, Code: code})
	return v
}

// Required fails when value is empty or only whitespace.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		return v.add(field, CodeRequired, fmt.Sprintf("%s is required", field))
	}
	return v
}

// MinLength fails when a non-empty value has fewer than min characters.
func (v *Validator) MinLength(field, value string, min int) *Validator {
	if value != "" && utf8.RuneCountInString(value) < min {
		return v.add(field, CodeMinLength, fmt.Sprintf("%s must be at least %d characters", field, min))
	}
	return v
}

// MaxLength fails when value has more than max characters.
func (v *Validator) MaxLength(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		return v.add(field, CodeMaxLength, fmt.Sprintf("%s must not exceed %d characters", field, max))
	}
	return v
}

// Email fails when a non-empty value is not an email address.
func (v *Validator) Email(field, value string) *Validator {
	if value != "" && !emailPattern.MatchString(value) {
		return v.add(field, CodeInvalidEmail, fmt.Sprintf("%s must be a valid email address", field))
	}
	return v
}

// URL fails when a non-empty value is not an absolute http(s) URL.
func (v *Validator) URL(field, value string) *Validator {
	if value != "" && !isAbsoluteHTTPURL(value) {
		return v.add(field, CodeInvalidURL, fmt.Sprintf("%s must be a valid URL", field))
	}
	return v
}

// ImageURL accepts an absolute http(s) URL, a root-relative path ("/uploads/a.png")
// or an image data URI. The empty string means "no image" and is accepted.
func (v *Validator) ImageURL(field, value string) *Validator {
	if value == "" || isImageURL(value) {
		return v
	}
	return v.add(field, CodeInvalidImageURL,
		fmt.Sprintf("%s must be an absolute URL, a path starting with /, or a data URI", field))
}

// OneOf fails when a non-empty value is not one of options.
func (v *Validator) OneOf(field, value string, options []string) *Validator {
	if value != "" && !slices.Contains(options, value) {
		return v.add(field, CodeInvalidOption,
			fmt.Sprintf("%s must be one of: %s", field, strings.Join(options, ", ")))
	}
	return v
}

// Custom fails with message when valid reports false for value.
func (v *Validator) Custom(field, value string, valid func(string) bool, message string) *Validator {
	if !valid(value) {
		return v.add(field, CodeCustom, message)
	}
	return v
}

// CustomCode is Custom with a caller-chosen error code.
func (v *Validator) CustomCode(field, value string, valid func(string) bool, code, message string) *Validator {
	if !valid(value) {
		return v.add(field, code, message)
	}
	return v
}

// Result returns the collected outcome. The returned slice is a copy, so the
// Validator may keep being used without affecting earlier results.
func (v *Validator) Result() ValidationResult {
	errs := make([]ValidationError, len(v.errors))
	copy(errs, v.errors)
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isImageURL(raw string) bool {
	switch {
	case strings.HasPrefix(raw, "data:image/"):
		return strings.Contains(raw, ",")
	case strings.HasPrefix(raw, "//"):
		return false
	case strings.HasPrefix(raw, "/"):
		return !strings.ContainsAny(raw, " \t\r\n")
	default:
		return isAbsoluteHTTPURL(raw)
	}
}
