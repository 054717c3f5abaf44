package metrics

import (
	"database/sql"
	"time"
)

// RecordLeadCreated counts a stored lead; kind is "course" or "demo".
func RecordLeadCreated(kind string) {
	LeadsCreatedTotal.WithLabelValues(kind).Inc()
}

// RecordBlogPostCreated counts a created blog post.
func RecordBlogPostCreated() {
	BlogPostsCreatedTotal.Inc()
}

// RecordSecurityRejection counts a request refused by the admission
// pipeline. Its signature matches middleware.Deps.OnReject.
func RecordSecurityRejection(profile, stage string) {
	SecurityRejectionsTotal.WithLabelValues(profile, stage).Inc()
}

// RecordDBQuery records the duration of a database operation such as
// "list_blogs" or "create_enrollment".
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats copies pool statistics into the connection gauges.
func UpdateDBConnectionStats(stats sql.DBStats) {
	DBConnectionsOpen.Set(float64(stats.OpenConnections))
	DBConnectionsIdle.Set(float64(stats.Idle))
}
