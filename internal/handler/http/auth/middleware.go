// Package auth issues and verifies the HS256 tokens that guard the admin
// back-office.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/middleware"
)

// RoleAdmin is the only role issued today.
const RoleAdmin = "admin"

// Claims is the token payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuthenticator implements middleware.Authenticator over bearer tokens.
type JWTAuthenticator struct {
	Secret []byte
	// RequiredRole, when set, turns tokens of any other role into "no user".
	RequiredRole string
	Now          func() time.Time
}

var _ middleware.Authenticator = (*JWTAuthenticator)(nil)

// CurrentUser returns the token's subject and role, or nil when the request
// has no valid token.
func (a *JWTAuthenticator) CurrentUser(r *http.Request) *middleware.User {
	claims, err := a.Parse(r.Header.Get("Authorization"))
	if err != nil {
		RecordTokenValidation("invalid")
		return nil
	}
	if a.RequiredRole != "" && claims.Role != a.RequiredRole {
		RecordTokenValidation("wrong_role")
		return nil
	}
	RecordTokenValidation("valid")
	return &middleware.User{Subject: claims.Subject, Role: claims.Role}
}

// Parse validates an "Authorization: Bearer <jwt>" value. Only HS256 is
// accepted and exp is mandatory.
func (a *JWTAuthenticator) Parse(header string) (*Claims, error) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return nil, errors.New("missing bearer token")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(a.Now))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(header[len(prefix):]), claims, func(*jwt.Token) (any, error) {
		return a.Secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
