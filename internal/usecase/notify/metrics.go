package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notificationDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_notification_dispatched_total",
			Help: "Total number of lead notifications dispatched",
		},
		[]string{"channel", "kind"}, // kind: lead|digest
	)

	notificationSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_notification_sent_total",
			Help: "Total number of lead notifications sent",
		},
		[]string{"channel", "status"}, // status: success|failure
	)

	notificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lead_notification_duration_seconds",
			Help:    "Lead notification send duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"channel"},
	)

	notificationDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_notification_dropped_total",
			Help: "Total number of dropped lead notifications",
		},
		[]string{"channel", "reason"}, // reason: pool_full|circuit_open|shutdown
	)

	activeNotifications = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lead_notification_active_goroutines",
			Help: "Number of active notification goroutines",
		},
	)

	channelsEnabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lead_notification_channels_enabled",
			Help: "Number of enabled notification channels",
		},
	)
)

func recordDispatch(channel, kind string) {
	notificationDispatchedTotal.WithLabelValues(channel, kind).Inc()
}

func recordResult(channel string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	notificationSentTotal.WithLabelValues(channel, status).Inc()
	notificationDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

func recordDropped(channel, reason string) {
	notificationDroppedTotal.WithLabelValues(channel, reason).Inc()
}
