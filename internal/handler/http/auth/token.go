package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/respond"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/observability/logging"
)

// Issuer signs admin tokens.
type Issuer struct {
	Secret []byte
	Expiry time.Duration
	Now    func() time.Time
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

// Issue returns a signed HS256 token for subject and its expiry time.
func (i *Issuer) Issue(subject, role string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.Expiry)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

type tokenRequest struct {
	Username string `json:"username" example:"admin@rajeshwaritech.com"`
	Password string `json:"password" example:"correct-horse-battery"`
}

type tokenResponse struct {
	Token     string    `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenHandler exchanges admin credentials for a bearer token.
//
// @Summary      Issue admin token
// @Description  Verifies the admin username and password and returns an HS256 JWT.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body tokenRequest true "Admin credentials"
// @Success      200 {object} tokenResponse
// @Failure      400 {object} map[string]string "Malformed request"
// @Failure      401 {object} map[string]string "Invalid credentials"
// @Failure      403 {object} map[string]string "CORS policy violation"
// @Failure      429 {object} map[string]any "Too many requests"
// @Header       429 {integer} Retry-After "Seconds until the window resets"
// @Router       /auth/token [post]
func TokenHandler(verifier CredentialVerifier, issuer *Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := logging.ForRequest(r.Context(), slog.Default())
		done := func(result string) {
			RecordTokenRequest(result, time.Since(start).Seconds())
		}

		var req tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			done("bad_request")
			respond.Error(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}

		if err := verifier.Verify(r.Context(), req.Username, req.Password); err != nil {
			done("invalid_credentials")
			logger.Warn("admin authentication failed",
				slog.String("reason", "invalid_credentials"),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()))
			respond.Error(w, http.StatusUnauthorized, ErrInvalidCredentials)
			return
		}

		signed, exp, err := issuer.Issue(req.Username, RoleAdmin)
		if err != nil {
			done("error")
			respond.SafeError(w, http.StatusInternalServerError, err)
			return
		}

		done("issued")
		logger.Info("admin token issued",
			slog.String("user", req.Username),
			slog.Time("expires_at", exp))
		respond.JSON(w, http.StatusOK, tokenResponse{Token: signed, ExpiresAt: exp})
	}
}
