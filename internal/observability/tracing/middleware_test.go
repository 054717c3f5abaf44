package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// withRecorder installs an in-memory exporter for the duration of the test.
func withRecorder(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
	return exporter
}

func serve(status int) http.Handler {
	return Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !trace.SpanContextFromContext(r.Context()).IsValid() {
			panic("span context missing")
		}
		w.WriteHeader(status)
	}))
}

func attr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestMiddleware_SpanPerRequest(t *testing.T) {
	exporter := withRecorder(t)

	rec := httptest.NewRecorder()
	serve(http.StatusOK).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/blogs/42", nil))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "GET /api/admin/blogs/:id", s.Name)
	assert.Equal(t, trace.SpanKindServer, s.SpanKind)
	assert.Equal(t, s.SpanContext.TraceID().String(), rec.Header().Get(TraceIDHeader))

	v, ok := attr(s.Attributes, "http.response.status_code")
	require.True(t, ok)
	assert.Equal(t, int64(200), v.AsInt64())
	assert.Equal(t, codes.Unset, s.Status.Code)
}

func TestMiddleware_ContinuesIncomingTrace(t *testing.T) {
	exporter := withRecorder(t)

	req := httptest.NewRequest(http.MethodPost, "/api/enrollments", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	serve(http.StatusCreated).ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext.TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", spans[0].Parent.SpanID().String())
}

func TestMiddleware_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   codes.Code
	}{
		{http.StatusTooManyRequests, codes.Unset},
		{http.StatusForbidden, codes.Unset},
		{http.StatusInternalServerError, codes.Error},
		{http.StatusServiceUnavailable, codes.Error},
	}
	for _, tt := range tests {
		exporter := withRecorder(t)
		serve(tt.status).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/blogs", nil))

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, tt.want, spans[0].Status.Code, "status %d", tt.status)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("TRACING_SAMPLE_PERCENT", "25")
	cfg := LoadConfig("rajeshwari-tech-api")
	assert.Equal(t, "rajeshwari-tech-api", cfg.ServiceName)
	assert.InDelta(t, 0.25, cfg.SampleRatio, 1e-9)

	t.Setenv("TRACING_SAMPLE_PERCENT", "250")
	assert.InDelta(t, 1.0, LoadConfig("x").SampleRatio, 1e-9)
}

func TestSetup(t *testing.T) {
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	tp := Setup(Config{ServiceName: "test", SampleRatio: 1})
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := GetTracer().Start(context.Background(), "op")
	defer span.End()
	assert.True(t, span.SpanContext().IsSampled())
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
}
