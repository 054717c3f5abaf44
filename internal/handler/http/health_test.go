package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/notify"
	"github.com/yashchoube/rajeshwari-tech-sub000/pkg/ratelimit"
)

type stubStore struct {
	keys    int
	err     error
	breaker string
}

func (s stubStore) KeyCount(context.Context) (int, error) { return s.keys, s.err }

type breakerStore struct {
	stubStore
}

func (s breakerStore) BreakerState() string { return s.breaker }

type stubNotifier []notify.ChannelHealthStatus

func (n stubNotifier) GetChannelHealth() []notify.ChannelHealthStatus { return n }

func newPingDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func getHealth(t *testing.T, h *HealthHandler) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestHealthHandler_Database(t *testing.T) {
	tests := []struct {
		name       string
		maxConns   int
		pingErr    error
		wantCode   int
		wantStatus string
		wantCheck  string
	}{
		{"pool configured", 10, nil, http.StatusOK, "healthy", "healthy"},
		{"unbounded pool", 0, nil, http.StatusOK, "healthy", "degraded"},
		{"ping fails", 10, sql.ErrConnDone, http.StatusServiceUnavailable, "unhealthy", "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newPingDB(t)
			db.SetMaxOpenConns(tt.maxConns)
			mock.ExpectPing().WillReturnError(tt.pingErr)

			code, resp := getHealth(t, &HealthHandler{DB: db, Version: "1.4.0"})

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantCheck, resp.Checks["database"].Status)
			assert.Equal(t, "1.4.0", resp.Version)
			assert.NotEmpty(t, resp.Timestamp)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHealthHandler_PoolDetails(t *testing.T) {
	db, mock := newPingDB(t)
	db.SetMaxOpenConns(4)
	mock.ExpectPing()

	_, resp := getHealth(t, &HealthHandler{DB: db})

	details := resp.Checks["database"].Details
	assert.Equal(t, float64(4), details["max_open_connections"])
	assert.Equal(t, float64(0), details["utilization_percent"])
	assert.Contains(t, details, "wait_duration_ms")
}

func TestHealthHandler_NoDatabase(t *testing.T) {
	code, resp := getHealth(t, &HealthHandler{})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not configured", resp.Checks["database"].Message)
}

func TestHealthHandler_Headers(t *testing.T) {
	db, mock := newPingDB(t)
	mock.ExpectPing()

	rec := httptest.NewRecorder()
	(&HealthHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestHealthHandler_PingErrorNotLeaked(t *testing.T) {
	db, mock := newPingDB(t)
	mock.ExpectPing().WillReturnError(errors.New("dial tcp db.internal:5432: password=hunter2 refused"))

	rec := httptest.NewRecorder()
	(&HealthHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.Contains(t, rec.Body.String(), "database unreachable")
}

func TestHealthHandler_RateLimiterMemoryStore(t *testing.T) {
	store := ratelimit.NewMemoryStore(ratelimit.MemoryStoreConfig{})
	require.NoError(t, store.Set(context.Background(), "public_form:1.2.3.4",
		ratelimit.Entry{Count: 1, ResetTime: time.Now().Add(time.Minute)}))

	db, mock := newPingDB(t)
	mock.ExpectPing()
	code, resp := getHealth(t, &HealthHandler{DB: db, RateLimitStore: store})
	require.Equal(t, http.StatusOK, code)

	check := resp.Checks["rate_limiter"]
	assert.Equal(t, "healthy", check.Status)
	assert.Equal(t, "memory", check.Details["backend"])
	assert.Equal(t, float64(1), check.Details["active_keys"])
	assert.NotContains(t, check.Details, "circuit_breaker")
}

func TestHealthHandler_RateLimiterStoreDown(t *testing.T) {
	db, mock := newPingDB(t)
	mock.ExpectPing()
	code, resp := getHealth(t, &HealthHandler{
		DB:               db,
		RateLimitBackend: "redis",
		RateLimitStore:   breakerStore{stubStore{err: ratelimit.ErrStoreUnavailable, breaker: "open"}},
	})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", resp.Status, "limiter failures never fail the instance")
	check := resp.Checks["rate_limiter"]
	assert.Equal(t, "degraded", check.Status)
	assert.Equal(t, "redis", check.Details["backend"])
	assert.Equal(t, "open", check.Details["circuit_breaker"])
}

func TestHealthHandler_Notifier(t *testing.T) {
	db, mock := newPingDB(t)
	mock.ExpectPing()
	_, resp := getHealth(t, &HealthHandler{DB: db, Notifier: stubNotifier{
		{Name: "slack", Enabled: true, CircuitBreakerOpen: true},
		{Name: "discord", Enabled: false},
	}})

	check := resp.Checks["notifier"]
	assert.Equal(t, "degraded", check.Status)
	assert.Len(t, check.Details["channels"], 2)
}

func TestReadyHandler(t *testing.T) {
	tests := []struct {
		name     string
		pingErr  error
		delay    time.Duration
		wantCode int
		wantBody string
	}{
		{"ready", nil, 0, http.StatusOK, "ready"},
		{"ping fails", sql.ErrConnDone, 0, http.StatusServiceUnavailable, "database not ready\n"},
		{"ping exceeds budget", nil, 3 * time.Second, http.StatusServiceUnavailable, "database not ready\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newPingDB(t)
			mock.ExpectPing().WillReturnError(tt.pingErr).WillDelayFor(tt.delay)

			rec := httptest.NewRecorder()
			(&ReadyHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}

	rec := httptest.NewRecorder()
	(&ReadyHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LiveHandler{}.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}
