package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/middleware"
)

var testSecret = []byte("f3Z9q-K2mX7v_Lp0Rt8wYb4Nc6Hd1Js5Ge2Ua9Wk3Qo7Vi0")

func fixedNow() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

func requestWith(header string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	return r
}

func TestJWTAuthenticator_CurrentUser(t *testing.T) {
	issuer := &Issuer{Secret: testSecret, Expiry: time.Hour, Now: fixedNow}
	adminToken, _, err := issuer.Issue("admin@rajeshwaritech.com", RoleAdmin)
	require.NoError(t, err)
	editorToken, _, err := issuer.Issue("editor@rajeshwaritech.com", "editor")
	require.NoError(t, err)

	otherSecret := &Issuer{Secret: []byte("another-secret-that-is-long-enough-000"), Expiry: time.Hour, Now: fixedNow}
	forged, _, err := otherSecret.Issue("admin@rajeshwaritech.com", RoleAdmin)
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "admin"},
	})
	noExpToken, err := noExp.SignedString(testSecret)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(fixedNow().Add(time.Hour)),
		},
	})
	noneToken, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	a := &JWTAuthenticator{Secret: testSecret, RequiredRole: RoleAdmin, Now: fixedNow}

	tests := []struct {
		name   string
		header string
		want   *middleware.User
	}{
		{name: "valid admin", header: "Bearer " + adminToken, want: &middleware.User{Subject: "admin@rajeshwaritech.com", Role: RoleAdmin}},
		{name: "lowercase scheme", header: "bearer " + adminToken, want: &middleware.User{Subject: "admin@rajeshwaritech.com", Role: RoleAdmin}},
		{name: "missing header", header: ""},
		{name: "basic scheme", header: "Basic YWRtaW46cGFzcw=="},
		{name: "garbage token", header: "Bearer not.a.jwt"},
		{name: "wrong role", header: "Bearer " + editorToken},
		{name: "wrong secret", header: "Bearer " + forged},
		{name: "no expiry", header: "Bearer " + noExpToken},
		{name: "alg none", header: "Bearer " + noneToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.CurrentUser(requestWith(tt.header)))
		})
	}
}

func TestJWTAuthenticator_Expired(t *testing.T) {
	issuer := &Issuer{Secret: testSecret, Expiry: time.Hour, Now: fixedNow}
	token, _, err := issuer.Issue("admin", RoleAdmin)
	require.NoError(t, err)

	later := func() time.Time { return fixedNow().Add(2 * time.Hour) }
	a := &JWTAuthenticator{Secret: testSecret, Now: later}
	assert.Nil(t, a.CurrentUser(requestWith("Bearer "+token)))
}

func TestJWTAuthenticator_AnyRole(t *testing.T) {
	issuer := &Issuer{Secret: testSecret, Expiry: time.Hour, Now: fixedNow}
	token, _, err := issuer.Issue("editor", "editor")
	require.NoError(t, err)

	a := &JWTAuthenticator{Secret: testSecret, Now: fixedNow}
	u := a.CurrentUser(requestWith("Bearer " + token))
	require.NotNil(t, u)
	assert.Equal(t, "editor", u.Role)
}
