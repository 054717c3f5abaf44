package pagination

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts paginated listing requests.
	// Labels: resource (blogs, enrollments), status, page_range
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_pagination_requests_total",
			Help: "Total number of paginated listing requests",
		},
		[]string{"resource", "status", "page_range"},
	)

	// TotalCount is the last total reported by a listing COUNT query.
	TotalCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "listing_total_count",
			Help: "Total number of items seen by the last listing query",
		},
		[]string{"resource"},
	)
)

// RecordRequest counts one listing request.
func RecordRequest(resource string, statusCode int, page int) {
	RequestsTotal.WithLabelValues(resource, strconv.Itoa(statusCode), pageRangeBucket(page)).Inc()
}

// UpdateTotalCount sets the total gauge for resource.
func UpdateTotalCount(resource string, count int64) {
	TotalCount.WithLabelValues(resource).Set(float64(count))
}

func pageRangeBucket(page int) string {
	switch {
	case page <= 10:
		return "1-10"
	case page <= 50:
		return "11-50"
	default:
		return "50+"
	}
}
