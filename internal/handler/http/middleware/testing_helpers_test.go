package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yashchoube/rajeshwari-tech-sub000/pkg/ratelimit"
)

// fakeClock is a settable ratelimit.Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// failingChecker returns err from every check.
type failingChecker struct {
	err error
}

func (f failingChecker) RateLimit(context.Context, string, int, time.Duration) (ratelimit.Result, error) {
	return ratelimit.Result{}, f.err
}

// panickingChecker panics on every check.
type panickingChecker struct{}

func (panickingChecker) RateLimit(context.Context, string, int, time.Duration) (ratelimit.Result, error) {
	panic("store exploded")
}

// spyHandler records calls and the body it received.
type spyHandler struct {
	mu    sync.Mutex
	calls int
	body  []byte
	req   *http.Request
}

func (h *spyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	h.req = r
	if r.Body != nil {
		h.body, _ = io.ReadAll(r.Body)
	}
	w.WriteHeader(http.StatusOK)
}

func (h *spyHandler) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

// rejection is one OnReject call.
type rejection struct {
	profile string
	stage   string
}

type rejectionRecorder struct {
	mu   sync.Mutex
	seen []rejection
}

func (r *rejectionRecorder) record(profile, stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, rejection{profile, stage})
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func staticUser(u *User) Authenticator {
	return AuthenticatorFunc(func(*http.Request) *User { return u })
}
