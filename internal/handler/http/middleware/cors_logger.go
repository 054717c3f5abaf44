package middleware

import (
	"log/slog"
)

// SlogAdapter adapts a *slog.Logger to CORSLogger.
type SlogAdapter struct {
	Logger *slog.Logger
}

// Info logs at info level.
func (a *SlogAdapter) Info(msg string, fields map[string]interface{}) {
	a.Logger.Info(msg, fieldArgs(fields)...)
}

// Warn logs at warn level.
func (a *SlogAdapter) Warn(msg string, fields map[string]interface{}) {
	a.Logger.Warn(msg, fieldArgs(fields)...)
}

// Debug logs at debug level.
func (a *SlogAdapter) Debug(msg string, fields map[string]interface{}) {
	a.Logger.Debug(msg, fieldArgs(fields)...)
}

func fieldArgs(fields map[string]interface{}) []any {
	args := make([]any, 0, len(fields))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return args
}

// NoOpLogger discards everything. Used in tests.
type NoOpLogger struct{}

// Info does nothing.
func (l *NoOpLogger) Info(msg string, fields map[string]interface{}) {}

// Warn does nothing.
func (l *NoOpLogger) Warn(msg string, fields map[string]interface{}) {}

// Debug does nothing.
func (l *NoOpLogger) Debug(msg string, fields map[string]interface{}) {}
