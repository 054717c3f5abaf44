package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveWithTimeout(d time.Duration, h http.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	Timeout(d)(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/blogs", nil))
	return rec
}

func TestTimeout_Success(t *testing.T) {
	rec := serveWithTimeout(time.Second, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("first "))
		_, _ = w.Write([]byte("second"))
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "first second", rec.Body.String())
}

func TestTimeout_ImplicitOK(t *testing.T) {
	rec := serveWithTimeout(time.Second, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("data"))
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "data", rec.Body.String())
}

func TestTimeout_Expires(t *testing.T) {
	writeErr := make(chan error, 1)
	rec := serveWithTimeout(50*time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("too late"))
		writeErr <- err
	})

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"request timeout"}`, rec.Body.String())

	select {
	case err := <-writeErr:
		assert.ErrorIs(t, err, http.ErrHandlerTimeout)
	case <-time.After(time.Second):
		t.Fatal("handler did not observe cancellation")
	}
}

func TestTimeout_ContextCarriesDeadline(t *testing.T) {
	type ctxKey struct{}
	var (
		hasDeadline bool
		value       any
	)
	h := Timeout(time.Second)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
		value = r.Context().Value(ctxKey{})
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), ctxKey{}, "kept"))
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, hasDeadline)
	assert.Equal(t, "kept", value)
}

func TestTimeout_ParentCancelled(t *testing.T) {
	cancelled := make(chan error, 1)
	h := Timeout(time.Minute)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		cancelled <- r.Context().Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	h.ServeHTTP(httptest.NewRecorder(), req)

	select {
	case err := <-cancelled:
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("handler context was not cancelled")
	}
}
