package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/yashchoube/rajeshwari-tech-sub000/pkg/config"
)

// InstrumentationName names the tracer used by this service.
const InstrumentationName = "github.com/yashchoube/rajeshwari-tech-sub000"

// Config controls the tracer provider.
type Config struct {
	ServiceName string
	// SampleRatio is the fraction of new root traces sampled, 0..1. Child
	// spans follow their parent's decision.
	SampleRatio float64
}

// LoadConfig reads OTEL_SERVICE_NAME and TRACING_SAMPLE_PERCENT (0-100,
// default 100).
func LoadConfig(defaultService string) Config {
	pct := config.GetEnvInt("TRACING_SAMPLE_PERCENT", 100)
	if pct < 0 || pct > 100 {
		pct = 100
	}
	return Config{
		ServiceName: config.GetEnvString("OTEL_SERVICE_NAME", defaultService),
		SampleRatio: float64(pct) / 100,
	}
}

// Setup installs a tracer provider and the W3C trace-context propagator as
// the globals. Callers shut the provider down on exit.
func Setup(cfg Config) *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp
}

// GetTracer returns the service tracer from the current global provider.
func GetTracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(InstrumentationName)
}
