package middleware

import (
	"context"
	"net/http"
)

// User is the authenticated caller handed to business handlers.
type User struct {
	Subject string `json:"sub"`
	Role    string `json:"role"`
}

// Authenticator resolves the current user of a request. CurrentUser returns
// nil when the request carries no valid credentials.
type Authenticator interface {
	CurrentUser(r *http.Request) *User
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(r *http.Request) *User

// CurrentUser calls f(r).
func (f AuthenticatorFunc) CurrentUser(r *http.Request) *User { return f(r) }

type userCtxKey struct{}

// WithUser stores u in ctx.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext returns the user stored by SecureAPI, if any.
func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*User)
	return u, ok && u != nil
}
