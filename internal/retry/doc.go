// Package retry provides retry logic with exponential backoff for
// transient database failures.
//
// Two classifiers are provided. PostgreSQLErrorClassifier is broad and used
// while establishing the schema session: any connection exception, resource
// shortage or network hiccup is retried. ConnectionLimitClassifier is narrow
// and used by insert workers: only a refused connection due to the server's
// connection limit (or a busy embedded database) is retried, everything else
// fails the batch immediately.
//
// # Example Usage
//
//	classifier := retry.NewConnectionLimitClassifier()
//	strategy := retry.NewExponentialBackoff(4, retry.WithJitter(0))
//	executor := retry.NewExecutor(classifier, strategy)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return insertBatch(ctx)
//	})
//
// # Thread Safety
//
// Executor instances are safe for concurrent use. WithOnRetry and WithWait
// return copies, so each goroutine can carry its own callbacks.
package retry
