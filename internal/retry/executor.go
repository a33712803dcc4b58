package retry

import (
	"context"
	"time"

	"github.com/vvka-141/sheetload/pkg/sheetload"
)

// WaitFunc blocks for d or until ctx is done, whichever comes first.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Executor orchestrates retry attempts with backoff and error classification.
type Executor struct {
	classifier sheetload.ErrorClassifier
	strategy   sheetload.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
	wait       WaitFunc
}

// NewExecutor creates a new retry executor with the given configuration.
// Panics if classifier or strategy is nil.
func NewExecutor(
	classifier sheetload.ErrorClassifier,
	strategy sheetload.BackoffStrategy,
) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{
		classifier: classifier,
		strategy:   strategy,
		wait:       timerWait,
	}
}

// WithOnRetry returns a new Executor with the specified retry callback.
// The callback runs before each backoff wait. The receiver is not modified.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// WithWait returns a new Executor that waits between attempts using wait.
// Tests use it to observe delays without sleeping.
func (e *Executor) WithWait(wait WaitFunc) *Executor {
	clone := *e
	if wait == nil {
		wait = timerWait
	}
	clone.wait = wait
	return &clone
}

// MaxAttempts returns the total number of attempts Execute may make,
// or -1 when retries are unlimited.
func (e *Executor) MaxAttempts() int {
	retries := e.strategy.MaxAttempts()
	if retries < 0 {
		return -1
	}
	return retries + 1
}

// Execute runs the operation until it succeeds, fails with a non-transient
// error, or the strategy runs out of retries. It returns the last error.
// No wait follows the final failed attempt.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	maxRetries := e.strategy.MaxAttempts()

	err := operation(ctx)
	for retry := 0; err != nil; retry++ {
		if !e.classifier.IsTransient(err) {
			return err
		}
		if maxRetries >= 0 && retry >= maxRetries {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		delay := e.strategy.NextDelay(retry)
		if e.onRetry != nil {
			e.onRetry(retry, err, delay)
		}
		if waitErr := e.wait(ctx, delay); waitErr != nil {
			return waitErr
		}

		err = operation(ctx)
	}
	return nil
}

func timerWait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
