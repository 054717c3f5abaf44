package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockOriginValidator is a mock implementation of OriginValidator for testing
type mockOriginValidator struct {
	allowed bool
	origins []string
}

func (m *mockOriginValidator) IsAllowed(origin string) bool {
	return m.allowed
}

func (m *mockOriginValidator) GetAllowedOrigins() []string {
	return m.origins
}

// mockCORSLogger counts log calls
type mockCORSLogger struct {
	infoCount  int
	warnCount  int
	debugCount int
	lastMsg    string
	lastFields map[string]interface{}
}

func (m *mockCORSLogger) Info(msg string, fields map[string]interface{}) {
	m.infoCount++
	m.lastMsg = msg
	m.lastFields = fields
}

func (m *mockCORSLogger) Warn(msg string, fields map[string]interface{}) {
	m.warnCount++
	m.lastMsg = msg
	m.lastFields = fields
}

func (m *mockCORSLogger) Debug(msg string, fields map[string]interface{}) {
	m.debugCount++
	m.lastMsg = msg
	m.lastFields = fields
}

func newTestCORSConfig(allowed bool, logger CORSLogger) CORSConfig {
	return CORSConfig{
		AllowedMethods:   []string{"GET", "POST", "PUT"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           3600,
		Validator: &mockOriginValidator{
			allowed: allowed,
			origins: []string{"https://www.rajeshwaritech.com"},
		},
		Logger: logger,
	}
}

func TestCORS_PreflightRequest_AllowedOrigin(t *testing.T) {
	logger := &mockCORSLogger{}
	nextCalled := false
	handler := CORS(newTestCORSConfig(true, logger))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/enrollments", nil)
	req.Header.Set("Origin", "https://www.rajeshwaritech.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if nextCalled {
		t.Error("next handler must not run for preflight")
	}

	want := map[string]string{
		"Access-Control-Allow-Origin":      "https://www.rajeshwaritech.com",
		"Access-Control-Allow-Credentials": "true",
		"Access-Control-Allow-Methods":     "GET, POST, PUT",
		"Access-Control-Allow-Headers":     "Content-Type, Authorization",
		"Access-Control-Max-Age":           "3600",
		"Vary":                             "Origin",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if logger.debugCount != 1 {
		t.Errorf("debug logs = %d, want 1", logger.debugCount)
	}
}

func TestCORS_ActualRequest_AllowedOrigin(t *testing.T) {
	nextCalled := false
	handler := CORS(newTestCORSConfig(true, nil))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/enrollments", nil)
	req.Header.Set("Origin", "https://www.rajeshwaritech.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !nextCalled {
		t.Fatal("next handler was not called")
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://www.rajeshwaritech.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "" {
		t.Errorf("Access-Control-Allow-Methods must only be set on preflight, got %q", got)
	}
}

func TestCORS_DisallowedOrigin_PassesThroughWithoutHeaders(t *testing.T) {
	logger := &mockCORSLogger{}
	nextCalled := false
	handler := CORS(newTestCORSConfig(false, logger))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	for _, method := range []string{http.MethodGet, http.MethodOptions} {
		nextCalled = false
		req := httptest.NewRequest(method, "/api/blogs", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if !nextCalled {
			t.Errorf("%s: next handler was not called", method)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("%s: Access-Control-Allow-Origin = %q, want empty", method, got)
		}
	}

	if logger.warnCount != 2 {
		t.Errorf("warn logs = %d, want 2", logger.warnCount)
	}
	if logger.lastFields["origin"] != "https://evil.example" {
		t.Errorf("logged origin = %v", logger.lastFields["origin"])
	}
}

func TestCORS_NoOriginHeader(t *testing.T) {
	nextCalled := false
	handler := CORS(newTestCORSConfig(false, &NoOpLogger{}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if !nextCalled {
		t.Error("next handler was not called")
	}
	if len(rec.Header()) != 0 {
		t.Errorf("expected no headers, got %v", rec.Header())
	}
}

func TestCORS_WithoutCredentials(t *testing.T) {
	cfg := newTestCORSConfig(true, nil)
	cfg.AllowCredentials = false
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/blogs", nil)
	req.Header.Set("Origin", "https://www.rajeshwaritech.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want empty", got)
	}
}
