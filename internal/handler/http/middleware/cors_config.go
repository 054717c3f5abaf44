package middleware

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/yashchoube/rajeshwari-tech-sub000/pkg/config"
)

// DefaultSiteOrigins are the marketing site origins allowed when
// SITE_ALLOWED_ORIGINS is not set.
var DefaultSiteOrigins = []string{
	"https://www.rajeshwaritech.com",
	"https://rajeshwaritech.com",
}

var (
	defaultCORSMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	defaultCORSHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	validCORSMethods   = map[string]bool{
		"GET": true, "POST": true, "PUT": true, "DELETE": true, "PATCH": true, "OPTIONS": true,
	}
)

// EnvConfigSource loads CORS configuration from environment variables.
//
// Environment Variables:
//   - SITE_ALLOWED_ORIGINS: comma-separated origins or wildcard patterns
//     (default: DefaultSiteOrigins)
//   - CORS_ALLOWED_METHODS: comma-separated methods (default: GET,POST,PUT,DELETE,OPTIONS)
//   - CORS_ALLOWED_HEADERS: comma-separated headers (default: Content-Type,Authorization,X-Request-ID)
//   - CORS_MAX_AGE: preflight cache seconds (default: 86400)
type EnvConfigSource struct{}

// LoadOrigins validates every entry of SITE_ALLOWED_ORIGINS.
func (s *EnvConfigSource) LoadOrigins() ([]string, error) {
	origins := config.GetEnvStringList("SITE_ALLOWED_ORIGINS", DefaultSiteOrigins)
	for _, origin := range origins {
		if err := ValidateOrigin(origin); err != nil {
			return nil, err
		}
	}
	return origins, nil
}

// LoadMethods returns CORS_ALLOWED_METHODS upper-cased.
func (s *EnvConfigSource) LoadMethods() ([]string, error) {
	raw := config.GetEnvStringList("CORS_ALLOWED_METHODS", defaultCORSMethods)
	methods := make([]string, 0, len(raw))
	for _, m := range raw {
		m = strings.ToUpper(m)
		if !validCORSMethods[m] {
			return nil, fmt.Errorf("invalid HTTP method '%s': must be one of GET, POST, PUT, DELETE, PATCH, OPTIONS", m)
		}
		methods = append(methods, m)
	}
	return methods, nil
}

// LoadHeaders returns CORS_ALLOWED_HEADERS.
func (s *EnvConfigSource) LoadHeaders() ([]string, error) {
	return config.GetEnvStringList("CORS_ALLOWED_HEADERS", defaultCORSHeaders), nil
}

// LoadMaxAge returns CORS_MAX_AGE.
func (s *EnvConfigSource) LoadMaxAge() (int, error) {
	maxAge := config.GetEnvInt("CORS_MAX_AGE", 86400)
	if maxAge < 0 {
		return 0, fmt.Errorf("CORS_MAX_AGE must be non-negative, got: %d", maxAge)
	}
	return maxAge, nil
}

// ValidateOrigin checks that origin is "*", or a scheme://host[:port] origin
// (the host may contain "*") with no path, query, fragment or trailing slash.
func ValidateOrigin(origin string) error {
	if origin == "*" {
		return nil
	}
	if strings.HasSuffix(origin, "/") {
		return fmt.Errorf("origin must not have trailing slash: %s", origin)
	}
	u, err := url.Parse(strings.ReplaceAll(origin, "*", "wildcard"))
	if err != nil {
		return fmt.Errorf("invalid origin URL '%s': %w", origin, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("origin must use http or https scheme: %s", origin)
	}
	if u.Host == "" {
		return fmt.Errorf("origin must include a host: %s", origin)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("origin must not include path, query or fragment: %s", origin)
	}
	return nil
}

// LoadCORSConfig loads CORS configuration from the environment.
//
// Usage:
//
//	cfg, err := middleware.LoadCORSConfig()
//	if err != nil {
//	    return err
//	}
//	cfg.Logger = &middleware.SlogAdapter{Logger: logger}
//	handler = middleware.CORS(*cfg)(handler)
func LoadCORSConfig() (*CORSConfig, error) {
	return LoadCORSConfigFromSource(&EnvConfigSource{}, nil)
}

// LoadCORSConfigFromSource loads CORS configuration from source. logger may be
// nil and injected later.
func LoadCORSConfigFromSource(source ConfigSource, logger CORSLogger) (*CORSConfig, error) {
	origins, err := source.LoadOrigins()
	if err != nil {
		return nil, fmt.Errorf("failed to load allowed origins: %w", err)
	}
	if len(origins) == 0 {
		return nil, fmt.Errorf("at least one allowed origin must be configured")
	}
	methods, err := source.LoadMethods()
	if err != nil {
		return nil, fmt.Errorf("failed to load allowed methods: %w", err)
	}
	headers, err := source.LoadHeaders()
	if err != nil {
		return nil, fmt.Errorf("failed to load allowed headers: %w", err)
	}
	maxAge, err := source.LoadMaxAge()
	if err != nil {
		return nil, fmt.Errorf("failed to load max age: %w", err)
	}

	validator, err := NewPatternValidator(origins)
	if err != nil {
		return nil, fmt.Errorf("failed to compile allowed origins: %w", err)
	}

	return &CORSConfig{
		AllowedOrigins:   origins,
		AllowedMethods:   methods,
		AllowedHeaders:   headers,
		AllowCredentials: true,
		MaxAge:           maxAge,
		Validator:        validator,
		Logger:           logger,
	}, nil
}
