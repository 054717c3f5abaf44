package middleware

// OriginValidator decides whether a browser Origin may call the API.
//
// Implementations:
//   - WhitelistValidator: exact, case-insensitive match
//   - PatternValidator: exact entries plus wildcard host patterns
//     ("https://*.vercel.app", "https://app-*.rajeshwaritech.com")
type OriginValidator interface {
	// IsAllowed reports whether origin is permitted. Empty origins are not.
	IsAllowed(origin string) bool

	// GetAllowedOrigins returns a copy of the configured entries for logging.
	GetAllowedOrigins() []string
}

// ConfigSource loads CORS settings.
//
// EnvConfigSource reads the process environment; tests substitute their own.
type ConfigSource interface {
	// LoadOrigins returns the allowed origins and patterns. At least one
	// entry is required.
	LoadOrigins() ([]string, error)

	// LoadMethods returns the allowed methods, or the defaults when unset.
	LoadMethods() ([]string, error)

	// LoadHeaders returns the allowed request headers, or the defaults when unset.
	LoadHeaders() ([]string, error)

	// LoadMaxAge returns the preflight cache duration in seconds.
	LoadMaxAge() (int, error)
}

// CORSLogger is the logging surface used by the CORS middleware.
//
// Example usage:
//
//	logger := &SlogAdapter{Logger: slog.Default()}
//	logger.Warn("CORS: origin not allowed", map[string]interface{}{
//	    "origin": "https://evil.example",
//	    "path":   "/api/enrollments",
//	})
type CORSLogger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})
}
