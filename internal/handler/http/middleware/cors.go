package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds the configuration for the CORS middleware.
type CORSConfig struct {
	// AllowedOrigins is the raw origin list the Validator was built from.
	AllowedOrigins []string

	// AllowedMethods is sent as Access-Control-Allow-Methods on preflight.
	AllowedMethods []string

	// AllowedHeaders is sent as Access-Control-Allow-Headers on preflight.
	AllowedHeaders []string

	// AllowCredentials must be true for the admin Bearer token to be sent
	// cross-origin.
	AllowCredentials bool

	// MaxAge is how long, in seconds, browsers may cache a preflight result.
	MaxAge int

	Validator OriginValidator
	Logger    CORSLogger
}

// CORS returns a middleware that emits CORS response headers for allowed
// origins and answers preflight requests.
//
// It never rejects: a disallowed origin gets no CORS headers and the browser
// blocks the response. Hard 403 rejection of foreign origins is done per route
// by SecureAPI.
//
// Behavior:
//   - no Origin header: pass through
//   - disallowed origin: log, pass through without CORS headers
//   - allowed origin, OPTIONS: preflight headers and 204
//   - allowed origin, other methods: Allow-Origin (+ Credentials) and pass through
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")

			if !config.Validator.IsAllowed(origin) {
				if config.Logger != nil {
					config.Logger.Warn("CORS: origin not allowed", map[string]interface{}{
						"origin":      origin,
						"path":        r.URL.Path,
						"method":      r.Method,
						"remote_addr": r.RemoteAddr,
					})
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			if config.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", maxAge)

				if config.Logger != nil {
					config.Logger.Debug("CORS: preflight request", map[string]interface{}{
						"origin":            origin,
						"requested_method":  r.Header.Get("Access-Control-Request-Method"),
						"requested_headers": r.Header.Get("Access-Control-Request-Headers"),
					})
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
