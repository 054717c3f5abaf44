package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/pathutil"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/responsewriter"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/observability/metrics"
)

// MetricsMiddleware records request count, latency, sizes and in-flight
// requests. Paths are normalized (/api/blogs/:slug) to bound label
// cardinality.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		path := pathutil.NormalizePath(r.URL.Path)
		wrapped := responsewriter.Wrap(w)

		start := time.Now()
		next.ServeHTTP(wrapped, r)

		metrics.RecordHTTPRequest(
			r.Method,
			path,
			strconv.Itoa(wrapped.StatusCode()),
			time.Since(start),
			r.ContentLength,
			wrapped.BytesWritten(),
		)
	})
}

// MetricsHandler serves the default registry plus any extra gatherers, such
// as the rate limiter's own registry.
func MetricsHandler(extra ...prometheus.Gatherer) http.Handler {
	if len(extra) == 0 {
		return promhttp.Handler()
	}
	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer}
	gatherers = append(gatherers, extra...)
	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
}
