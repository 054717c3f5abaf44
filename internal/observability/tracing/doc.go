// Package tracing starts an OpenTelemetry server span for every HTTP request
// and installs the process-wide tracer provider.
//
// No exporter is configured; spans exist so trace and span IDs can be
// propagated (W3C traceparent) and attached to log lines.
//
//	tp := tracing.Setup(tracing.Config{ServiceName: "rajeshwari-tech-api", SampleRatio: 1})
//	defer tp.Shutdown(context.Background())
//	handler = tracing.Middleware(handler)
package tracing
