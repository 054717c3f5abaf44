package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job names used as metric labels.
const (
	JobLeadDigest   = "lead_digest"
	JobHousekeeping = "ratelimit_housekeeping"
)

// Job run statuses.
const (
	StatusStarted = "started"
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// WorkerMetrics holds the worker's Prometheus collectors.
type WorkerMetrics struct {
	ConfigLoadTimestamp  prometheus.Gauge
	ConfigFallbacksTotal *prometheus.CounterVec
	JobRunsTotal         *prometheus.CounterVec
	JobDurationSeconds   *prometheus.HistogramVec
	JobLastSuccess       *prometheus.GaugeVec
	DigestLeadsTotal     prometheus.Counter
	RateLimitActiveKeys  prometheus.Gauge
}

// NewWorkerMetrics registers the worker collectors with reg. A nil reg uses
// the default registerer.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &WorkerMetrics{
		ConfigLoadTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_config_load_timestamp",
			Help: "Unix timestamp of the last worker configuration load",
		}),
		ConfigFallbacksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_config_fallbacks_total",
			Help: "Invalid worker settings replaced by their default, by field",
		}, []string{"field"}),
		JobRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Scheduled job runs by job and status",
		}, []string{"job", "status"}),
		JobDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of scheduled job runs",
			Buckets: []float64{0.1, 0.5, 1, 5, 30, 60, 300},
		}, []string{"job"}),
		JobLastSuccess: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful run per job",
		}, []string{"job"}),
		DigestLeadsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "worker_digest_leads_total",
			Help: "Leads included across all digests sent",
		}),
		RateLimitActiveKeys: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_ratelimit_active_keys",
			Help: "Rate-limit keys observed in the shared store at the last housekeeping run",
		}),
	}
}

func (m *WorkerMetrics) RecordConfigLoaded() {
	m.ConfigLoadTimestamp.SetToCurrentTime()
}

func (m *WorkerMetrics) RecordFallback(field string) {
	m.ConfigFallbacksTotal.WithLabelValues(field).Inc()
}

// RecordJobRun counts a run of job with the given status.
func (m *WorkerMetrics) RecordJobRun(job, status string) {
	m.JobRunsTotal.WithLabelValues(job, status).Inc()
}

func (m *WorkerMetrics) RecordJobDuration(job string, seconds float64) {
	m.JobDurationSeconds.WithLabelValues(job).Observe(seconds)
}

func (m *WorkerMetrics) RecordLastSuccess(job string) {
	m.JobLastSuccess.WithLabelValues(job).SetToCurrentTime()
}

func (m *WorkerMetrics) RecordDigestLeads(n int) {
	m.DigestLeadsTotal.Add(float64(n))
}

func (m *WorkerMetrics) SetActiveKeys(n int) {
	m.RateLimitActiveKeys.Set(float64(n))
}
