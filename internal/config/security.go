// Package config loads the optional security YAML file (SECURITY_PROFILES_FILE)
// that overrides admission profiles and admin authentication settings.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile names accepted under security.profiles.
const (
	ProfilePublicForm = "public_form"
	ProfileLogin      = "login"
	ProfileAdmin      = "admin"
	ProfileBlogRead   = "blog_read"
)

// Defaults applied when the file omits a value.
const (
	DefaultMinPasswordLength = 12
	DefaultJWTExpiryHours    = 24
)

// SecurityConfig represents the security YAML file.
//
// Example:
//
//	security:
//	  site_origins:
//	    - "https://www.rajeshwaritech.com"
//	    - "https://app-*.rajeshwaritech.com"
//	  profiles:
//	    public_form:
//	      max_requests: 10
//	      window: 30m
//	    blog_read:
//	      algorithm: token_bucket
//	  auth:
//	    min_password_length: 12
//	    weak_passwords: ["admin", "password"]
//	  jwt:
//	    expiry_hours: 12
type SecurityConfig struct {
	Security struct {
		SiteOrigins []string                   `yaml:"site_origins"`
		Profiles    map[string]ProfileOverride `yaml:"profiles"`
		Auth        struct {
			MinPasswordLength int      `yaml:"min_password_length"`
			WeakPasswords     []string `yaml:"weak_passwords"`
		} `yaml:"auth"`
		JWT struct {
			ExpiryHours int `yaml:"expiry_hours"`
		} `yaml:"jwt"`
	} `yaml:"security"`
}

// ProfileOverride replaces individual settings of a named profile. Nil fields
// keep the built-in value; an explicit empty allowed_origins list removes the
// origin check.
type ProfileOverride struct {
	MaxRequests         *int           `yaml:"max_requests"`
	Window              *time.Duration `yaml:"window"`
	Algorithm           string         `yaml:"algorithm"`
	RequireAuth         *bool          `yaml:"require_auth"`
	AllowedOrigins      []string       `yaml:"allowed_origins"`
	RejectMalformedJSON *bool          `yaml:"reject_malformed_json"`
	Disabled            bool           `yaml:"disable_rate_limit"`
}

// LoadSecurityConfig loads security configuration from a YAML file.
// The path parameter is expected to come from a trusted source (environment or hardcoded default).
func LoadSecurityConfig(path string) (*SecurityConfig, error) {
	// #nosec G304 -- path is provided by the operator, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config SecurityConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateSecurityConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// LoadSecurityConfigFromEnv loads the file named by SECURITY_PROFILES_FILE.
// It returns nil, nil when the variable is unset.
func LoadSecurityConfigFromEnv() (*SecurityConfig, error) {
	path := os.Getenv("SECURITY_PROFILES_FILE")
	if path == "" {
		return nil, nil
	}
	return LoadSecurityConfig(path)
}

func validateSecurityConfig(config *SecurityConfig) error {
	for name, p := range config.Security.Profiles {
		switch name {
		case ProfilePublicForm, ProfileLogin, ProfileAdmin, ProfileBlogRead:
		default:
			return fmt.Errorf("unknown profile %q", name)
		}
		if p.MaxRequests != nil && *p.MaxRequests <= 0 {
			return fmt.Errorf("profile %s: max_requests must be positive", name)
		}
		if p.Window != nil && *p.Window <= 0 {
			return fmt.Errorf("profile %s: window must be positive", name)
		}
		switch p.Algorithm {
		case "", "fixed_window", "token_bucket":
		default:
			return fmt.Errorf("profile %s: algorithm must be fixed_window or token_bucket", name)
		}
	}

	if n := config.Security.Auth.MinPasswordLength; n != 0 && n < 8 {
		return fmt.Errorf("min_password_length must be at least 8")
	}
	if config.Security.JWT.ExpiryHours < 0 {
		return fmt.Errorf("jwt expiry_hours must be positive")
	}
	return nil
}

// Profile returns the override for name and whether one exists.
func (c *SecurityConfig) Profile(name string) (ProfileOverride, bool) {
	if c == nil {
		return ProfileOverride{}, false
	}
	p, ok := c.Security.Profiles[name]
	return p, ok
}

// GetSiteOrigins returns the configured site origins, or nil.
func (c *SecurityConfig) GetSiteOrigins() []string {
	if c == nil {
		return nil
	}
	return c.Security.SiteOrigins
}

// GetMinPasswordLength returns the minimum admin password length.
func (c *SecurityConfig) GetMinPasswordLength() int {
	if c == nil || c.Security.Auth.MinPasswordLength == 0 {
		return DefaultMinPasswordLength
	}
	return c.Security.Auth.MinPasswordLength
}

// GetWeakPasswords returns the extra weak passwords to reject.
func (c *SecurityConfig) GetWeakPasswords() []string {
	if c == nil {
		return nil
	}
	return c.Security.Auth.WeakPasswords
}

// GetJWTExpiry returns the admin token lifetime.
func (c *SecurityConfig) GetJWTExpiry() time.Duration {
	if c == nil || c.Security.JWT.ExpiryHours == 0 {
		return DefaultJWTExpiryHours * time.Hour
	}
	return time.Duration(c.Security.JWT.ExpiryHours) * time.Hour
}
