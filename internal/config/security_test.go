package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "security.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadSecurityConfig(t *testing.T) {
	tests := []struct {
		name        string
		configYAML  string
		expectError bool
		validate    func(*testing.T, *SecurityConfig)
	}{
		{
			name: "full config",
			configYAML: `security:
  site_origins:
    - "https://www.rajeshwaritech.com"
    - "https://app-*.rajeshwaritech.com"
  profiles:
    public_form:
      max_requests: 10
      window: 30m
      reject_malformed_json: true
    blog_read:
      algorithm: token_bucket
      allowed_origins: []
  auth:
    min_password_length: 14
    weak_passwords: ["rajeshwari123"]
  jwt:
    expiry_hours: 12
`,
			validate: func(t *testing.T, c *SecurityConfig) {
				assert.Len(t, c.GetSiteOrigins(), 2)

				pf, ok := c.Profile(ProfilePublicForm)
				require.True(t, ok)
				require.NotNil(t, pf.MaxRequests)
				assert.Equal(t, 10, *pf.MaxRequests)
				require.NotNil(t, pf.Window)
				assert.Equal(t, 30*time.Minute, *pf.Window)
				require.NotNil(t, pf.RejectMalformedJSON)
				assert.True(t, *pf.RejectMalformedJSON)
				assert.Nil(t, pf.RequireAuth)
				assert.Nil(t, pf.AllowedOrigins)

				br, ok := c.Profile(ProfileBlogRead)
				require.True(t, ok)
				assert.Equal(t, "token_bucket", br.Algorithm)
				assert.NotNil(t, br.AllowedOrigins)
				assert.Empty(t, br.AllowedOrigins)

				_, ok = c.Profile(ProfileAdmin)
				assert.False(t, ok)

				assert.Equal(t, 14, c.GetMinPasswordLength())
				assert.Equal(t, []string{"rajeshwari123"}, c.GetWeakPasswords())
				assert.Equal(t, 12*time.Hour, c.GetJWTExpiry())
			},
		},
		{
			name:       "empty file uses defaults",
			configYAML: "security: {}\n",
			validate: func(t *testing.T, c *SecurityConfig) {
				assert.Equal(t, DefaultMinPasswordLength, c.GetMinPasswordLength())
				assert.Equal(t, 24*time.Hour, c.GetJWTExpiry())
				assert.Nil(t, c.GetSiteOrigins())
			},
		},
		{
			name: "unknown profile",
			configYAML: `security:
  profiles:
    checkout:
      max_requests: 1
`,
			expectError: true,
		},
		{
			name: "non-positive max requests",
			configYAML: `security:
  profiles:
    admin:
      max_requests: 0
`,
			expectError: true,
		},
		{
			name: "bad window",
			configYAML: `security:
  profiles:
    admin:
      window: soon
`,
			expectError: true,
		},
		{
			name: "unknown algorithm",
			configYAML: `security:
  profiles:
    admin:
      algorithm: leaky_bucket
`,
			expectError: true,
		},
		{
			name: "short password length",
			configYAML: `security:
  auth:
    min_password_length: 4
`,
			expectError: true,
		},
		{
			name:        "invalid yaml",
			configYAML:  "security: [\n",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadSecurityConfig(writeConfig(t, tt.configYAML))
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadSecurityConfig_MissingFile(t *testing.T) {
	_, err := LoadSecurityConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadSecurityConfigFromEnv(t *testing.T) {
	t.Setenv("SECURITY_PROFILES_FILE", "")
	cfg, err := LoadSecurityConfigFromEnv()
	require.NoError(t, err)
	assert.Nil(t, cfg)

	// nil receiver getters fall back to defaults
	assert.Equal(t, DefaultMinPasswordLength, cfg.GetMinPasswordLength())
	_, ok := cfg.Profile(ProfileAdmin)
	assert.False(t, ok)

	t.Setenv("SECURITY_PROFILES_FILE", writeConfig(t, "security:\n  jwt:\n    expiry_hours: 2\n"))
	cfg, err = LoadSecurityConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.GetJWTExpiry())
}
