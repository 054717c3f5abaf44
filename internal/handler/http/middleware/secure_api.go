package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/requestid"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/respond"
	"github.com/yashchoube/rajeshwari-tech-sub000/pkg/config"
	"github.com/yashchoube/rajeshwari-tech-sub000/pkg/ratelimit"
)

// Admission stages, used as the "stage" label of rejections.
const (
	StageCORS      = "cors"
	StageRateLimit = "rate_limit"
	StageAuth      = "auth"
	StageSanitize  = "sanitize"
	StageInternal  = "internal"
)

// Response bodies of rejected requests.
const (
	msgCORSViolation    = "CORS policy violation"
	msgTooManyRequests  = "Too many requests, please try again later"
	msgUnauthorized     = "Unauthorized"
	msgValidationFailed = "Security validation failed"
	msgMalformedJSON    = "invalid JSON body"
	msgBodyTooLarge     = "request body too large"
)

// RateLimitRule is the ceiling of a profile.
type RateLimitRule struct {
	MaxRequests int
	Window      time.Duration
	// Algorithm is "fixed_window" (default) or "token_bucket".
	Algorithm string
}

// SecurityConfig describes what SecureAPI enforces on a route. It is built once
// per route and never mutated afterwards.
type SecurityConfig struct {
	// Name labels logs and metrics ("public_form", "login", "admin", "blog_read").
	Name string

	// RateLimit enables rate limiting when non-nil.
	RateLimit *RateLimitRule

	// RequireAuth rejects requests without a current user.
	RequireAuth bool

	// AllowedOrigins enables the origin check when non-empty. Entries may be
	// wildcard patterns (see PatternValidator).
	AllowedOrigins []string

	// RejectMalformedJSON answers 400 to a JSON request whose non-empty body
	// does not parse. By default such bodies are forwarded unsanitized.
	RejectMalformedJSON bool

	// RawFields names top-level JSON object fields that are forwarded
	// without sanitizing, such as a password compared against a stored hash.
	RawFields []string
}

// Deps are the collaborators of SecureAPI. Nil fields get defaults: a
// process-local fixed-window Limiter, HeaderResolver, no-op metrics, the
// system clock and slog.Default.
type Deps struct {
	Limiter     ratelimit.Checker
	TokenBucket ratelimit.Checker
	Identity    IdentityResolver
	Auth        Authenticator
	Metrics     ratelimit.Metrics
	Clock       ratelimit.Clock
	Logger      *slog.Logger

	// OnReject is called once per rejected request.
	OnReject func(profile, stage string)
}

// errInternalFault marks failures of the admission pipeline itself.
var errInternalFault = errors.New("security middleware fault")

type secureAPI struct {
	cfg     SecurityConfig
	deps    Deps
	origins OriginValidator
	checker ratelimit.Checker
}

// SecureAPI returns a middleware that admits a request through these stages,
// stopping at the first rejection:
//
//  1. CORS: a present Origin outside AllowedOrigins → 403 {"error":"CORS policy violation"}
//  2. Rate limit: over the ceiling → 429 with Retry-After and {"error", "retryAfter"}
//  3. Auth: RequireAuth and no current user → 401
//  4. Sanitize: JSON bodies of POST/PUT have every string sanitized; bodies that
//     do not parse are forwarded as received
//  5. the wrapped handler
//
// A panic or unexpected error inside stages 1-4 answers 400 {"error":"Security
// validation failed"}. The wrapped handler runs outside that boundary.
//
// Example:
//
//	mux.Handle("POST /api/enrollments",
//	    middleware.SecureAPI(profiles.PublicForm, deps)(enrollmentHandler))
func SecureAPI(cfg SecurityConfig, deps Deps) func(http.Handler) http.Handler {
	s := newSecureAPI(cfg, deps)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req, ok := s.admit(w, r)
			if !ok {
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func newSecureAPI(cfg SecurityConfig, deps Deps) *secureAPI {
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = ratelimit.SystemClock{}
	}
	if deps.Identity == nil {
		deps.Identity = HeaderResolver{}
	}
	if deps.Metrics == nil {
		deps.Metrics = ratelimit.NewNoOpMetrics()
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.NewLimiter(nil, ratelimit.WithClock(deps.Clock))
	}

	s := &secureAPI{cfg: cfg, deps: deps, checker: deps.Limiter}

	if cfg.RateLimit != nil && cfg.RateLimit.Algorithm == config.AlgorithmTokenBucket {
		if deps.TokenBucket != nil {
			s.checker = deps.TokenBucket
		} else {
			s.checker = ratelimit.NewTokenBucket(deps.Clock)
		}
	}

	if len(cfg.AllowedOrigins) > 0 {
		v, err := NewPatternValidator(cfg.AllowedOrigins)
		if err != nil {
			// Patterns that do not compile never match; exact entries still do.
			deps.Logger.Error("invalid origin pattern, falling back to exact matching",
				slog.String("profile", cfg.Name),
				slog.Any("error", err))
			s.origins = NewWhitelistValidator(cfg.AllowedOrigins)
		} else {
			s.origins = v
		}
	}
	return s
}

// admit runs the admission stages. It returns the request to forward and
// whether the request was admitted; a rejected request has been answered.
func (s *secureAPI) admit(w http.ResponseWriter, r *http.Request) (req *http.Request, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			s.fault(w, r, fmt.Errorf("%w: panic: %v", errInternalFault, rec), debug.Stack())
			req, ok = nil, false
		}
	}()

	if !s.checkOrigin(w, r) {
		return nil, false
	}

	admitted, err := s.checkRateLimit(w, r)
	if err != nil {
		s.fault(w, r, err, nil)
		return nil, false
	}
	if !admitted {
		return nil, false
	}

	r, admitted = s.checkAuth(w, r)
	if !admitted {
		return nil, false
	}

	return s.sanitize(w, r)
}

func (s *secureAPI) checkOrigin(w http.ResponseWriter, r *http.Request) bool {
	if s.origins == nil {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || s.origins.IsAllowed(origin) {
		return true
	}
	s.reject(w, r, StageCORS, http.StatusForbidden,
		map[string]any{"error": msgCORSViolation},
		slog.String("origin", origin))
	return false
}

func (s *secureAPI) checkRateLimit(w http.ResponseWriter, r *http.Request) (bool, error) {
	rule := s.cfg.RateLimit
	if rule == nil {
		return true, nil
	}

	identity := s.deps.Identity.Resolve(r)
	start := time.Now()
	res, err := s.checker.RateLimit(r.Context(), s.cfg.Name+":"+identity, rule.MaxRequests, rule.Window)
	s.deps.Metrics.RecordCheckDuration(s.cfg.Name, time.Since(start))

	if err != nil {
		s.deps.Metrics.RecordStoreError(s.cfg.Name)
		if errors.Is(err, ratelimit.ErrStoreUnavailable) {
			s.logger(r).Warn("rate limit store unavailable, allowing request",
				slog.String("profile", s.cfg.Name),
				slog.String("client", identity),
				slog.Any("error", err))
			return true, nil
		}
		return false, fmt.Errorf("%w: rate limit: %v", errInternalFault, err)
	}

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetUnix(), 10))

	if res.Allowed {
		s.deps.Metrics.RecordAllowed(s.cfg.Name)
		return true, nil
	}

	s.deps.Metrics.RecordDenied(s.cfg.Name)
	retryAfter := res.RetryAfterSeconds(s.deps.Clock.Now())
	h.Set("Retry-After", strconv.FormatInt(retryAfter, 10))
	s.reject(w, r, StageRateLimit, http.StatusTooManyRequests,
		map[string]any{"error": msgTooManyRequests, "retryAfter": retryAfter},
		slog.String("client", identity),
		slog.Int("limit", res.Limit),
		slog.Int64("retry_after", retryAfter))
	return false, nil
}

func (s *secureAPI) checkAuth(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	if !s.cfg.RequireAuth {
		return r, true
	}
	var user *User
	if s.deps.Auth != nil {
		user = s.deps.Auth.CurrentUser(r)
	} else {
		s.logger(r).Error("profile requires auth but no authenticator is configured",
			slog.String("profile", s.cfg.Name))
	}
	if user == nil {
		s.reject(w, r, StageAuth, http.StatusUnauthorized, map[string]any{"error": msgUnauthorized})
		return nil, false
	}
	return r.WithContext(WithUser(r.Context(), user)), true
}

func (s *secureAPI) sanitize(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	switch ClassifyRequest(r) {
	case NoBody, MultipartBody:
		return r, true
	case JSONBody:
		return s.sanitizeJSON(w, r)
	default:
		panic("unreachable request kind")
	}
}

func (s *secureAPI) sanitizeJSON(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	if r.Body == nil || r.Body == http.NoBody {
		return r, true
	}

	raw, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.reject(w, r, StageSanitize, http.StatusRequestEntityTooLarge, map[string]any{"error": msgBodyTooLarge})
			return nil, false
		}
		s.fault(w, r, fmt.Errorf("%w: read body: %v", errInternalFault, err), nil)
		return nil, false
	}

	value, err := decodeJSON(raw)
	if err != nil {
		if s.cfg.RejectMalformedJSON && len(bytes.TrimSpace(raw)) > 0 {
			s.reject(w, r, StageSanitize, http.StatusBadRequest, map[string]any{"error": msgMalformedJSON})
			return nil, false
		}
		s.logger(r).Debug("request body is not JSON, forwarding unsanitized",
			slog.String("profile", s.cfg.Name),
			slog.Int("bytes", len(raw)))
		return withBody(r, raw), true
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s.sanitizeValue(value)); err != nil {
		s.fault(w, r, fmt.Errorf("%w: encode body: %v", errInternalFault, err), nil)
		return nil, false
	}
	return withBody(r, bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), true
}

// sanitizeValue sanitizes a decoded body, leaving the profile's RawFields
// of a top-level object untouched.
func (s *secureAPI) sanitizeValue(v any) any {
	obj, ok := v.(map[string]any)
	if !ok || len(s.cfg.RawFields) == 0 {
		return SanitizeValue(v)
	}
	out := make(map[string]any, len(obj))
	for k, item := range obj {
		if slices.Contains(s.cfg.RawFields, k) {
			out[k] = item
			continue
		}
		out[k] = SanitizeValue(item)
	}
	return out
}

// decodeJSON decodes exactly one JSON value, keeping numbers verbatim.
func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

// withBody returns a shallow clone of r whose body is b.
func withBody(r *http.Request, b []byte) *http.Request {
	clone := r.Clone(r.Context())
	clone.Body = io.NopCloser(bytes.NewReader(b))
	clone.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(b)), nil
	}
	clone.ContentLength = int64(len(b))
	clone.Header.Set("Content-Length", strconv.Itoa(len(b)))
	return clone
}

// reject answers a refused request. Rejections are expected traffic and are
// logged at warn level, never as errors.
func (s *secureAPI) reject(w http.ResponseWriter, r *http.Request, stage string, status int, body map[string]any, attrs ...slog.Attr) {
	if s.deps.OnReject != nil {
		s.deps.OnReject(s.cfg.Name, stage)
	}

	args := []any{
		slog.String("profile", s.cfg.Name),
		slog.String("stage", stage),
		slog.Int("status", status),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	}
	for _, a := range attrs {
		args = append(args, a)
	}
	s.logger(r).Warn("request rejected", args...)

	respond.JSON(w, status, body)
}

// fault answers 400 without exposing err to the client.
func (s *secureAPI) fault(w http.ResponseWriter, r *http.Request, err error, stack []byte) {
	if s.deps.OnReject != nil {
		s.deps.OnReject(s.cfg.Name, StageInternal)
	}

	args := []any{
		slog.String("profile", s.cfg.Name),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", respond.SanitizeError(err)),
	}
	if len(stack) > 0 {
		args = append(args, slog.String("stack", string(stack)))
	}
	s.logger(r).Error("security middleware failure", args...)

	respond.JSON(w, http.StatusBadRequest, map[string]any{"error": msgValidationFailed})
}

func (s *secureAPI) logger(r *http.Request) *slog.Logger {
	if id := requestid.FromContext(r.Context()); id != "" {
		return s.deps.Logger.With(slog.String("request_id", id))
	}
	return s.deps.Logger
}

// String describes the configuration for startup logs.
func (c SecurityConfig) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	if c.RateLimit != nil {
		algo := c.RateLimit.Algorithm
		if algo == "" {
			algo = config.AlgorithmFixedWindow
		}
		fmt.Fprintf(&b, " limit=%d/%s (%s)", c.RateLimit.MaxRequests, c.RateLimit.Window, algo)
	}
	if c.RequireAuth {
		b.WriteString(" auth")
	}
	if len(c.AllowedOrigins) > 0 {
		fmt.Fprintf(&b, " origins=%s", strings.Join(c.AllowedOrigins, ","))
	}
	return b.String()
}
