package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	appconfig "github.com/yashchoube/rajeshwari-tech-sub000/internal/config"
)

// ErrInvalidCredentials is returned for any username/password mismatch.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CredentialVerifier checks a username/password pair.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) error
}

// AdminProvider verifies the single back-office account configured through
// the environment. A bcrypt hash takes precedence over a plain password.
type AdminProvider struct {
	User         string
	PasswordHash []byte
	Password     string
}

// LoadAdminProvider reads ADMIN_USER with ADMIN_PASSWORD_HASH (bcrypt) or
// ADMIN_USER_PASSWORD (plain, checked against the password policy from sec).
func LoadAdminProvider(sec *appconfig.SecurityConfig) (*AdminProvider, error) {
	p := &AdminProvider{
		User:     os.Getenv("ADMIN_USER"),
		Password: os.Getenv("ADMIN_USER_PASSWORD"),
	}
	if hash := os.Getenv("ADMIN_PASSWORD_HASH"); hash != "" {
		p.PasswordHash = []byte(hash)
	}
	if err := p.Validate(sec.GetMinPasswordLength(), sec.GetWeakPasswords()); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the configured account at startup.
func (p *AdminProvider) Validate(minLen int, extraWeak []string) error {
	if p.User == "" {
		return errors.New("admin credentials: ADMIN_USER must not be empty")
	}
	if len(p.PasswordHash) > 0 {
		if _, err := bcrypt.Cost(p.PasswordHash); err != nil {
			return fmt.Errorf("admin credentials: ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err)
		}
		return nil
	}
	if err := ValidatePassword(p.Password, minLen, extraWeak); err != nil {
		return fmt.Errorf("admin credentials: ADMIN_USER_PASSWORD: %w", err)
	}
	return nil
}

// Verify compares in constant time (plain) or through bcrypt (hash). The
// username is always compared so a wrong user costs the same as a wrong
// password.
func (p *AdminProvider) Verify(_ context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(p.User)) == 1

	var passOK bool
	if len(p.PasswordHash) > 0 {
		passOK = bcrypt.CompareHashAndPassword(p.PasswordHash, []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(p.Password)) == 1
	}

	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}
