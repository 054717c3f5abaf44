// Package respond writes JSON responses and keeps internal error details out
// of them.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
)

// ValidationFailedMessage is the "error" value of every validation response.
const ValidationFailedMessage = "validation failed"

// ValidationBody is the 400 response for rejected input.
type ValidationBody struct {
	Error  string                  `json:"error"`
	Errors entity.ValidationErrors `json:"errors"`
}

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// headers are gone; nothing left to tell the client
		slog.Default().Error("failed to encode JSON response",
			slog.Int("status_code", code),
			slog.Any("error", err))
	}
}

// Error writes {"error": err.Error()}. Only use it with messages that are
// safe to show; SafeError decides that for arbitrary errors.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// ValidationFailed writes 400 with every violation so a form can mark all
// bad fields at once.
func ValidationFailed(w http.ResponseWriter, errs entity.ValidationErrors) {
	if errs == nil {
		errs = entity.ValidationErrors{}
	}
	JSON(w, http.StatusBadRequest, ValidationBody{Error: ValidationFailedMessage, Errors: errs})
}

// safePhrases mark messages written for users (sentinel errors, input
// checks). Anything else may carry driver or network detail.
var safePhrases = []string{
	"required",
	"invalid",
	"not found",
	"already exists",
	"must be",
	"cannot be",
	"too long",
	"too short",
	"too large",
}

// SafeError writes err for the client when its message is recognisably
// user-facing and code is below 500. Otherwise it logs the masked error and
// writes "internal server error". entity.ValidationErrors anywhere in the
// chain becomes a ValidationFailed response regardless of code.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	var verrs entity.ValidationErrors
	if errors.As(err, &verrs) {
		ValidationFailed(w, verrs)
		return
	}

	msg := err.Error()
	if code < http.StatusInternalServerError && isSafe(msg) {
		JSON(w, code, map[string]string{"error": msg})
		return
	}

	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": "internal server error"})
}

func isSafe(msg string) bool {
	lower := strings.ToLower(msg)
	for _, p := range safePhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
