package entity

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_CollectsAllViolations(t *testing.T) {
	res := NewValidator().
		Required("name", "").
		MinLength("title", "abc", 5).
		MaxLength("title", "abc", 2).
		Email("email", "nope").
		URL("site", "ftp://example.com").
		OneOf("kind", "other", []string{"course", "demo"}).
		Custom("agree", "no", func(s string) bool { return s == "yes" }, "must agree").
		Result()

	require.False(t, res.IsValid)
	codes := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		codes = append(codes, e.Code)
	}
	want := []string{CodeRequired, CodeMinLength, CodeMaxLength, CodeInvalidEmail, CodeInvalidURL, CodeInvalidOption, CodeCustom}
	if diff := cmp.Diff(want, codes); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestValidator_OptionalRulesIgnoreEmpty(t *testing.T) {
	res := NewValidator().
		MinLength("f", "", 5).
		Email("f", "").
		URL("f", "").
		ImageURL("f", "").
		OneOf("f", "", []string{"a"}).
		Result()

	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
	assert.NoError(t, res.Err())
}

func TestValidator_RequiredRejectsWhitespace(t *testing.T) {
	res := NewValidator().Required("name", "  \t").Result()
	require.Len(t, res.Errors, 1)
	assert.Equal(t, ValidationError{Field: "name", Message: "name is required", Code: CodeRequired}, res.Errors[0])
}

func TestValidator_LengthCountsCharacters(t *testing.T) {
	// five characters, more than five bytes
	res := NewValidator().MinLength("t", "héllo", 5).MaxLength("t", "héllo", 5).Result()
	assert.True(t, res.IsValid)
}

func TestValidator_ImageURL(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{name: "absolute https", value: "https://example.com/a.png", valid: true},
		{name: "absolute http", value: "http://cdn.example.com/img/a.jpg", valid: true},
		{name: "root relative", value: "/uploads/a.png", valid: true},
		{name: "data uri", value: "data:image/png;base64,AAAA", valid: true},
		{name: "empty is optional", value: "", valid: true},
		{name: "plain text", value: "not a url", valid: false},
		{name: "whitespace only", value: "   ", valid: false},
		{name: "relative without slash", value: "uploads/a.png", valid: false},
		{name: "protocol relative", value: "//evil.example/a.png", valid: false},
		{name: "javascript scheme", value: "javascript:alert(1)", valid: false},
		{name: "non image data uri", value: "data:text/html,<script>", valid: false},
		{name: "data uri without payload", value: "data:image/png", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := NewValidator().ImageURL("imageUrl", tt.value).Result()
			assert.Equal(t, tt.valid, res.IsValid)
			if !tt.valid {
				require.Len(t, res.Errors, 1)
				assert.Equal(t, CodeInvalidImageURL, res.Errors[0].Code)
			}
		})
	}
}

func TestValidator_Email(t *testing.T) {
	valid := []string{"a@b.co", "jane.doe+course@example.com"}
	invalid := []string{"jane", "jane@", "@example.com", "jane doe@example.com", "jane@example"}

	for _, e := range valid {
		assert.True(t, NewValidator().Email("email", e).Result().IsValid, e)
	}
	for _, e := range invalid {
		assert.False(t, NewValidator().Email("email", e).Result().IsValid, e)
	}
}

func TestValidationResult_Err(t *testing.T) {
	res := NewValidator().Required("title", "").Required("author", "").Result()

	err := res.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidationFailed))

	var ve ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve, 2)
	assert.True(t, strings.Contains(err.Error(), "title: title is required"))
}

func TestValidator_ResultIsSnapshot(t *testing.T) {
	v := NewValidator().Required("a", "")
	first := v.Result()
	v.Required("b", "")

	assert.Len(t, first.Errors, 1)
	assert.Len(t, v.Result().Errors, 2)
}
