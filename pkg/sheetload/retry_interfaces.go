package sheetload

import "time"

// ErrorClassifier decides which failures are worth another attempt.
// Insert workers use a narrow classifier (connection limit only),
// the DDL connector a broad one.
type ErrorClassifier interface {
	IsTransient(err error) bool
}

// BackoffStrategy spaces out attempts.
type BackoffStrategy interface {
	// NextDelay is the wait before retry number attempt (0-based).
	NextDelay(attempt int) time.Duration

	// MaxAttempts is the number of retries after the first try; -1 is unlimited.
	MaxAttempts() int
}
