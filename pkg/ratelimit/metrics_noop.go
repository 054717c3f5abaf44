package ratelimit

import "time"

// NoOpMetrics implements Metrics and discards every observation.
// Useful in tests and when metrics collection is disabled.
type NoOpMetrics struct{}

// NewNoOpMetrics creates a new NoOpMetrics instance.
func NewNoOpMetrics() *NoOpMetrics {
	return &NoOpMetrics{}
}

func (*NoOpMetrics) RecordAllowed(string)                      {}
func (*NoOpMetrics) RecordDenied(string)                       {}
func (*NoOpMetrics) RecordCheckDuration(string, time.Duration) {}
func (*NoOpMetrics) RecordStoreError(string)                   {}
func (*NoOpMetrics) SetActiveKeys(string, int)                 {}
