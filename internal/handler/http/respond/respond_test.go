package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]any{"id": 7, "slug": "learn-go"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":7,"slug":"learn-go"}`, rec.Body.String())
}

func TestJSON_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusNoContent, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestJSON_EncodingError(t *testing.T) {
	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() { JSON(rec, http.StatusOK, math.Inf(1)) })
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusUnauthorized, errors.New("Unauthorized"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestValidationFailed(t *testing.T) {
	rec := httptest.NewRecorder()
	errs := entity.ValidationErrors{
		{Field: "title", Message: "title is required", Code: entity.CodeRequired},
		{Field: "imageUrl", Message: "imageUrl must be an image URL", Code: entity.CodeInvalidImageURL},
	}
	ValidationFailed(rec, errs)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body ValidationBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Error)
	if diff := cmp.Diff(errs, body.Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidationFailed_NilIsEmptyList(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationFailed(rec, nil)
	assert.JSONEq(t, `{"error":"validation failed","errors":[]}`, rec.Body.String())
}

func TestSafeError(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		err     error
		wantMsg string
	}{
		{name: "not found", code: http.StatusNotFound, err: errors.New("blog not found"), wantMsg: "blog not found"},
		{name: "duplicate", code: http.StatusConflict, err: errors.New("blog with this slug already exists"), wantMsg: "blog with this slug already exists"},
		{name: "invalid id", code: http.StatusBadRequest, err: errors.New("invalid blog ID"), wantMsg: "invalid blog ID"},
		{name: "driver error hidden", code: http.StatusBadRequest, err: errors.New("pq: relation \"blogs\" does not exist"), wantMsg: "internal server error"},
		{name: "5xx always hidden", code: http.StatusInternalServerError, err: errors.New("blog not found"), wantMsg: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			SafeError(rec, tt.code, tt.err)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.wantMsg, decode(t, rec)["error"])
		})
	}
}

func TestSafeError_WrappedValidationErrors(t *testing.T) {
	verrs := entity.ValidationErrors{{Field: "email", Message: "email must be a valid email address", Code: entity.CodeInvalidEmail}}
	rec := httptest.NewRecorder()
	SafeError(rec, http.StatusInternalServerError, fmt.Errorf("create enrollment: %w", verrs))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "validation failed", body["error"])
	assert.Len(t, body["errors"], 1)
}

func TestSafeError_Nil(t *testing.T) {
	rec := httptest.NewRecorder()
	SafeError(rec, http.StatusBadRequest, nil)
	assert.Empty(t, rec.Body.String())
}
