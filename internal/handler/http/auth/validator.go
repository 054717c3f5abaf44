package auth

import (
	"errors"
	"fmt"
	"strings"
)

// MinJWTSecretLength is the minimum accepted HS256 secret length in bytes.
const MinJWTSecretLength = 32

// weakPasswordList is always rejected, on top of any configured extras.
var weakPasswordList = []string{
	"admin",
	"password",
	"123456",
	"secret",
	"admin123",
	"password123",
	"12345678",
	"qwerty",
	"letmein",
	"welcome",
	"changeme",
	"default",
	"root",
	"test",
	"rajeshwari",
}

var keyboardPatterns = []string{
	"qwertyuiop",
	"asdfghjkl",
	"zxcvbnm",
	"qwerty",
	"asdfgh",
	"zxcvb",
}

// ErrWeakSecret is wrapped by every ValidateJWTSecret failure.
var ErrWeakSecret = errors.New("weak JWT secret")

// ValidatePassword checks a plain admin password against the startup policy:
// at least minLen bytes, no single repeated character or digit run, no
// keyboard walk, and not based on a known weak password.
func ValidatePassword(pass string, minLen int, extraWeak []string) error {
	if pass == "" {
		return errors.New("password must not be empty")
	}
	if len(pass) < minLen {
		return fmt.Errorf("password must be at least %d characters", minLen)
	}
	if isRepeatedChar(pass) || isDigitRun(pass) {
		return errors.New("password must not be a simple repeated or sequential pattern")
	}
	if isKeyboardPattern(pass) {
		return errors.New("password must not be a keyboard pattern")
	}

	lower := strings.ToLower(pass)
	for _, weak := range append(weakPasswordList, extraWeak...) {
		weak = strings.ToLower(weak)
		if weak == "" {
			continue
		}
		// "admin2024!!" style variations are short enough to guess
		if lower == weak || (strings.HasPrefix(lower, weak) && len(pass) < minLen+5) {
			return errors.New("password must not be based on a common weak password")
		}
	}
	return nil
}

// ValidateJWTSecret rejects secrets shorter than MinJWTSecretLength or made of
// a weak word or a single repeated character.
func ValidateJWTSecret(secret string) error {
	if len(secret) < MinJWTSecretLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakSecret, MinJWTSecretLength)
	}
	if isRepeatedChar(secret) {
		return fmt.Errorf("%w: repeated character", ErrWeakSecret)
	}
	lower := strings.ToLower(secret)
	for _, weak := range weakPasswordList {
		if strings.ReplaceAll(lower, weak, "") == "" {
			return fmt.Errorf("%w: built from a common word", ErrWeakSecret)
		}
	}
	return nil
}

func isRepeatedChar(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return len(s) > 0
}

// isDigitRun reports digits-only strings that ascend or descend by one,
// wrapping 9->0.
func isDigitRun(s string) bool {
	if len(s) < 2 {
		return false
	}
	asc, desc := true, true
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
		if i == 0 {
			continue
		}
		diff := int(s[i]) - int(s[i-1])
		if diff != 1 && diff != -9 {
			asc = false
		}
		if diff != -1 && diff != 9 {
			desc = false
		}
	}
	return asc || desc
}

func isKeyboardPattern(pass string) bool {
	lower := strings.ToLower(pass)
	for _, p := range keyboardPatterns {
		if strings.Contains(lower, p) || strings.Contains(lower, reverse(p)) {
			return true
		}
	}
	return false
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
