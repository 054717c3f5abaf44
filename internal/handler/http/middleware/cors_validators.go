package middleware

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// WhitelistValidator implements exact-match origin validation.
//
// Example usage:
//
//	validator := NewWhitelistValidator([]string{
//	    "https://www.rajeshwaritech.com",
//	    "https://rajeshwaritech.com",
//	})
//	allowed := validator.IsAllowed("https://www.rajeshwaritech.com") // true
//	allowed = validator.IsAllowed("https://evil.example")            // false
type WhitelistValidator struct {
	allowedOrigins []string
}

// NewWhitelistValidator creates a WhitelistValidator. Origins are normalized:
// trimmed, lowercased, trailing slash removed; empty entries are dropped.
func NewWhitelistValidator(origins []string) *WhitelistValidator {
	normalized := make([]string, 0, len(origins))
	for _, origin := range origins {
		if origin = normalizeOrigin(origin); origin != "" {
			normalized = append(normalized, origin)
		}
	}
	return &WhitelistValidator{allowedOrigins: normalized}
}

// IsAllowed checks if origin is in the whitelist. Comparison is
// case-insensitive and ignores a trailing slash.
func (v *WhitelistValidator) IsAllowed(origin string) bool {
	origin = normalizeOrigin(origin)
	if origin == "" {
		return false
	}
	for _, allowed := range v.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// GetAllowedOrigins returns a copy of the normalized whitelist.
func (v *WhitelistValidator) GetAllowedOrigins() []string {
	out := make([]string, len(v.allowedOrigins))
	copy(out, v.allowedOrigins)
	return out
}

// PatternValidator matches origins against exact entries and wildcard host
// patterns such as "https://*.vercel.app" or "https://app-*.example.com".
//
// A "*" in the host matches one or more characters other than ".", so
// "https://*.example.com" admits "https://a.example.com" but neither
// "https://example.com" nor "https://a.b.example.com". Scheme and port must
// match exactly. The single entry "*" admits every origin.
type PatternValidator struct {
	patterns []string
	exact    *WhitelistValidator
	globs    []originGlob
	any      bool
}

type originGlob struct {
	scheme string
	port   string
	host   *regexp.Regexp
}

// NewPatternValidator compiles the given origins and patterns.
func NewPatternValidator(patterns []string) (*PatternValidator, error) {
	v := &PatternValidator{}
	var exact []string
	for _, p := range patterns {
		p = normalizeOrigin(p)
		switch {
		case p == "":
			continue
		case p == "*":
			v.any = true
		case strings.Contains(p, "*"):
			g, err := compileOriginGlob(p)
			if err != nil {
				return nil, err
			}
			v.globs = append(v.globs, g)
		default:
			exact = append(exact, p)
		}
		v.patterns = append(v.patterns, p)
	}
	v.exact = NewWhitelistValidator(exact)
	return v, nil
}

// IsAllowed reports whether origin matches any configured entry.
func (v *PatternValidator) IsAllowed(origin string) bool {
	origin = normalizeOrigin(origin)
	if origin == "" {
		return false
	}
	if v.any || v.exact.IsAllowed(origin) {
		return true
	}
	if len(v.globs) == 0 {
		return false
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	for _, g := range v.globs {
		if u.Scheme == g.scheme && u.Port() == g.port && g.host.MatchString(u.Hostname()) {
			return true
		}
	}
	return false
}

// GetAllowedOrigins returns the configured entries, patterns included.
func (v *PatternValidator) GetAllowedOrigins() []string {
	out := make([]string, len(v.patterns))
	copy(out, v.patterns)
	return out
}

func compileOriginGlob(pattern string) (originGlob, error) {
	scheme, rest, ok := strings.Cut(pattern, "://")
	if !ok || (scheme != "http" && scheme != "https") {
		return originGlob{}, fmt.Errorf("origin pattern must use http or https scheme: %s", pattern)
	}
	if strings.ContainsAny(rest, "/?#") {
		return originGlob{}, fmt.Errorf("origin pattern must not include path, query or fragment: %s", pattern)
	}

	host, port := rest, ""
	if i := strings.LastIndex(rest, ":"); i >= 0 {
		host, port = rest[:i], rest[i+1:]
	}
	if host == "" || strings.Contains(host, "**") {
		return originGlob{}, fmt.Errorf("invalid origin pattern: %s", pattern)
	}

	expr := "^" + strings.ReplaceAll(regexp.QuoteMeta(host), `\*`, `[^.]+`) + "$"
	re, err := regexp.Compile(expr)
	if err != nil {
		return originGlob{}, fmt.Errorf("compile origin pattern %s: %w", pattern, err)
	}
	return originGlob{scheme: scheme, port: port, host: re}, nil
}

func normalizeOrigin(origin string) string {
	origin = strings.ToLower(strings.TrimSpace(origin))
	return strings.TrimSuffix(origin, "/")
}
