// Package pagination holds the offset pagination shared by the blog and
// enrollment listings: query parsing, offset math and the response envelope.
package pagination

import (
	pkgconfig "github.com/yashchoube/rajeshwari-tech-sub000/pkg/config"
)

// Config holds pagination limits.
type Config struct {
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig returns page=1, limit=12, max=100. Twelve posts fill the
// three-column blog grid.
func DefaultConfig() Config {
	return Config{
		DefaultPage:  1,
		DefaultLimit: 12,
		MaxLimit:     100,
	}
}

// LoadFromEnv reads PAGINATION_DEFAULT_LIMIT and PAGINATION_MAX_LIMIT,
// falling back to DefaultConfig for unset or invalid values.
func LoadFromEnv() Config {
	def := DefaultConfig()
	cfg := Config{
		DefaultPage:  def.DefaultPage,
		DefaultLimit: pkgconfig.GetEnvInt("PAGINATION_DEFAULT_LIMIT", def.DefaultLimit),
		MaxLimit:     pkgconfig.GetEnvInt("PAGINATION_MAX_LIMIT", def.MaxLimit),
	}
	if cfg.MaxLimit < 1 {
		cfg.MaxLimit = def.MaxLimit
	}
	if cfg.DefaultLimit < 1 || cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = min(def.DefaultLimit, cfg.MaxLimit)
	}
	return cfg
}
