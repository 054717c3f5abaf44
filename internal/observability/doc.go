// Package observability groups logging, Prometheus metrics and OpenTelemetry
// tracing helpers shared by the API server and the worker.
//
// Subpackages:
//   - logging: slog setup and request-scoped loggers
//   - metrics: business counters (leads, blog posts, security rejections)
//   - tracing: server spans per HTTP request
package observability
