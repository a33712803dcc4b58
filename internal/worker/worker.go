// Package worker inserts one batch per task on its own database session.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/sheetload/internal/retry"
	"github.com/vvka-141/sheetload/pkg/sheetload"
)

// Worker executes insert tasks. It holds no connection between tasks and is
// safe for concurrent use.
type Worker struct {
	open     sheetload.StoreFactory
	logger   sheetload.Logger
	executor *retry.Executor
}

// Option configures a Worker.
type Option func(*Worker)

// WithWait replaces the wait between attempts.
func WithWait(wait retry.WaitFunc) Option {
	return func(w *Worker) { w.executor = w.executor.WithWait(wait) }
}

// New creates a Worker that opens a session per attempt with open.
// Only connection-limit errors are retried: InsertRetryAttempts retries,
// waiting InsertRetryInitialDelay and doubling each time.
func New(open sheetload.StoreFactory, logger sheetload.Logger, opts ...Option) *Worker {
	if open == nil {
		panic("store factory cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	strategy := retry.NewExponentialBackoff(sheetload.InsertRetryAttempts,
		retry.WithInitialDelay(sheetload.InsertRetryInitialDelay),
		retry.WithJitter(0),
	)
	w := &Worker{
		open:     open,
		logger:   logger,
		executor: retry.NewExecutor(retry.NewConnectionLimitClassifier(), strategy),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Execute inserts task.Batch into task.Table. Each attempt opens its own
// session and closes it before returning.
func (w *Worker) Execute(ctx context.Context, task sheetload.WorkTask) sheetload.Outcome {
	start := time.Now()
	outcome := sheetload.Outcome{Seq: task.Batch.Seq, WorkerID: task.WorkerID}

	executor := w.executor.WithOnRetry(func(retry int, err error, delay time.Duration) {
		w.logger.Verbose("worker[%s] batch %d hit the connection limit, retrying in %v (attempt %d/%d): %v",
			task.WorkerID, task.Batch.Seq, delay, retry+2, w.executor.MaxAttempts(), err)
	})
	err := executor.Execute(ctx, func(ctx context.Context) error {
		outcome.Attempts++
		n, err := w.insert(ctx, task)
		if err != nil {
			return err
		}
		outcome.Inserted = n
		return nil
	})

	outcome.Duration = time.Since(start)
	if err != nil {
		outcome.Err = fmt.Errorf("batch %d (worker[%s], %d attempt(s)): %w", task.Batch.Seq, task.WorkerID, outcome.Attempts, err)
		return outcome
	}

	w.logger.Verbose("%d record(s) inserted by worker[%s]", outcome.Inserted, task.WorkerID)
	return outcome
}

func (w *Worker) insert(ctx context.Context, task sheetload.WorkTask) (int64, error) {
	store, err := w.open(ctx, task.Target)
	if err != nil {
		return 0, err
	}
	defer store.Close()
	return store.InsertBatch(ctx, task.Table, task.Batch)
}
