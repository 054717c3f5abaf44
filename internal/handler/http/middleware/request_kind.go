package middleware

import (
	"mime"
	"net/http"
	"strings"
)

// RequestKind classifies a request for the sanitization stage.
type RequestKind int

const (
	// NoBody covers every method other than POST and PUT. Not sanitized.
	NoBody RequestKind = iota
	// JSONBody is a POST or PUT whose body is not multipart form data. The
	// body is decoded as JSON and every string is sanitized.
	JSONBody
	// MultipartBody is a POST or PUT with multipart/form-data. Not sanitized.
	MultipartBody
)

// String returns the kind name used in logs.
func (k RequestKind) String() string {
	switch k {
	case JSONBody:
		return "json"
	case MultipartBody:
		return "multipart"
	default:
		return "none"
	}
}

// ClassifyRequest computes the RequestKind of r from its method and
// Content-Type.
func ClassifyRequest(r *http.Request) RequestKind {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		return NoBody
	}
	if isMultipart(r.Header.Get("Content-Type")) {
		return MultipartBody
	}
	return JSONBody
}

func isMultipart(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "multipart/form-data")
	}
	return mediaType == "multipart/form-data"
}
