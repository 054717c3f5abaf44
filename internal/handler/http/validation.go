package http

import (
	"net/http"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/respond"
)

// Header and path ceilings enforced by InputValidation.
const (
	MaxAuthorizationHeaderBytes = 8 << 10
	MaxPathBytes                = 2 << 10
)

// InputValidation rejects oversized Authorization headers (400) and paths
// (414) before routing. Body size is LimitRequestBody's job.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.Header.Get("Authorization")) > MaxAuthorizationHeaderBytes {
				respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "authorization header too large"})
				return
			}
			if len(r.URL.Path) > MaxPathBytes {
				respond.JSON(w, http.StatusRequestURITooLong, map[string]string{"error": "URI too long"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
