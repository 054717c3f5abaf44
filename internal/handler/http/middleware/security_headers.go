package middleware

import (
	"net/http"
	"strings"

	"github.com/yashchoube/rajeshwari-tech-sub000/pkg/config"
	"github.com/yashchoube/rajeshwari-tech-sub000/pkg/security/csp"
)

const hstsValue = "max-age=31536000; includeSubDomains"

// SecurityHeadersOptions configures SecurityHeaders.
type SecurityHeadersOptions struct {
	config.SecurityHeadersConfig

	// DefaultPolicy applies when no PathPolicies prefix matches.
	DefaultPolicy *csp.Builder

	// PathPolicies maps path prefixes to policies; the longest prefix wins.
	PathPolicies map[string]*csp.Builder
}

// DefaultSecurityHeadersOptions returns the API policy everywhere except
// the Swagger UI.
func DefaultSecurityHeadersOptions(cfg config.SecurityHeadersConfig) SecurityHeadersOptions {
	return SecurityHeadersOptions{
		SecurityHeadersConfig: cfg,
		DefaultPolicy:         csp.APIPolicy(),
		PathPolicies: map[string]*csp.Builder{
			"/swagger/": csp.SwaggerUIPolicy(),
		},
	}
}

type renderedPolicy struct {
	prefix string
	header string
	value  string
}

// SecurityHeaders sets X-Content-Type-Options, X-Frame-Options,
// Referrer-Policy, a Content-Security-Policy and, when configured,
// Strict-Transport-Security on every response.
func SecurityHeaders(opts SecurityHeadersOptions) func(http.Handler) http.Handler {
	if !opts.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}

	// Policies are rendered once; the builders are not touched per request.
	var def *renderedPolicy
	if opts.DefaultPolicy != nil {
		def = &renderedPolicy{header: opts.DefaultPolicy.HeaderName(), value: opts.DefaultPolicy.Build()}
	}
	paths := make([]renderedPolicy, 0, len(opts.PathPolicies))
	for prefix, b := range opts.PathPolicies {
		if b == nil {
			continue
		}
		paths = append(paths, renderedPolicy{prefix: prefix, header: b.HeaderName(), value: b.Build()})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if opts.HSTS {
				h.Set("Strict-Transport-Security", hstsValue)
			}
			if p := selectPolicy(r.URL.Path, paths, def); p != nil && p.value != "" {
				h.Set(p.header, p.value)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func selectPolicy(path string, paths []renderedPolicy, def *renderedPolicy) *renderedPolicy {
	var best *renderedPolicy
	for i := range paths {
		if !strings.HasPrefix(path, paths[i].prefix) {
			continue
		}
		if best == nil || len(paths[i].prefix) > len(best.prefix) {
			best = &paths[i]
		}
	}
	if best != nil {
		return best
	}
	return def
}
