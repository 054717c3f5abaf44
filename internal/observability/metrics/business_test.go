package metrics

import (
	"database/sql"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordLeadCreated(t *testing.T) {
	before := testutil.ToFloat64(LeadsCreatedTotal.WithLabelValues("demo"))
	RecordLeadCreated("demo")
	RecordLeadCreated("demo")
	assert.Equal(t, before+2, testutil.ToFloat64(LeadsCreatedTotal.WithLabelValues("demo")))
}

func TestRecordBlogPostCreated(t *testing.T) {
	before := testutil.ToFloat64(BlogPostsCreatedTotal)
	RecordBlogPostCreated()
	assert.Equal(t, before+1, testutil.ToFloat64(BlogPostsCreatedTotal))
}

func TestRecordSecurityRejection(t *testing.T) {
	tests := []struct {
		profile string
		stage   string
	}{
		{"public_form", "cors"},
		{"public_form", "rate_limit"},
		{"admin", "auth"},
		{"blog_read", "internal"},
	}
	for _, tt := range tests {
		c := SecurityRejectionsTotal.WithLabelValues(tt.profile, tt.stage)
		before := testutil.ToFloat64(c)
		RecordSecurityRejection(tt.profile, tt.stage)
		assert.Equal(t, before+1, testutil.ToFloat64(c), "%s/%s", tt.profile, tt.stage)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	c := HTTPRequestsTotal.WithLabelValues("GET", "/api/blogs", "200")
	before := testutil.ToFloat64(c)

	assert.NotPanics(t, func() {
		RecordHTTPRequest("GET", "/api/blogs", "200", 12*time.Millisecond, 0, 512)
		RecordHTTPRequest("GET", "/api/blogs", "200", time.Millisecond, 128, 0)
	})
	assert.Equal(t, before+2, testutil.ToFloat64(c))
}

func TestDBMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordDBQuery("list_blogs", 3*time.Millisecond)
	})

	UpdateDBConnectionStats(sql.DBStats{OpenConnections: 7, Idle: 3})
	assert.Equal(t, 7.0, testutil.ToFloat64(DBConnectionsOpen))
	assert.Equal(t, 3.0, testutil.ToFloat64(DBConnectionsIdle))
}
