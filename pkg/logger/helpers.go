package logger

import (
	"time"
)

// LogRequest logs a finished MediaWiki API request. Failed requests are
// logged by the caller together with the error.
func LogRequest(log Logger, endpoint string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"endpoint":    endpoint,
		"status_code": statusCode,
		"duration":    duration,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		log.DebugWithFields("API request completed", fields)
	case statusCode >= 500:
		log.ErrorWithFields("API request server error", fields)
	default:
		log.WarnWithFields("API request client error", fields)
	}
}

// LogItemOutcome logs the final state of one catalog item
func LogItemOutcome(log Logger, name, status string, succeeded bool, download bool) {
	fields := map[string]interface{}{
		"item":   name,
		"status": status,
	}

	switch {
	case succeeded && download:
		log.InfoWithFields("Item processed", fields)
	case succeeded:
		log.InfoWithFields("Item info collected", fields)
	default:
		log.WarnWithFields("Failed to process item", fields)
	}
}

// LogRunSummary logs the totals of a run
func LogRunSummary(log Logger, total, succeeded, failed int, download bool, duration time.Duration) {
	label := "processed"
	if download {
		label = "downloaded"
	}
	log.InfoWithFields("Run summary", map[string]interface{}{
		"total":    total,
		label:      succeeded,
		"failed":   failed,
		"duration": duration,
	})
}

// NewNopLogger creates a no-operation logger
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
