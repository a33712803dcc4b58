package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/sheetload/internal/retry"
	"github.com/vvka-141/sheetload/pkg/sheetload"
)

// Connector opens single PostgreSQL connections, optionally retrying
// transient failures while the connection is established.
type Connector struct {
	config        *sheetload.ConnectionConfig
	retryExecutor *retry.Executor
}

// NewConnector creates a Connector that does not retry. Insert workers use it
// because they retry the whole task under their own policy.
func NewConnector(config *sheetload.ConnectionConfig) *Connector {
	return newConnector(config, retry.NewExponentialBackoff(0))
}

// NewRetryingConnector creates a Connector with the default connection retry policy:
// DefaultRetryMaxAttempts retries, exponential backoff from DefaultRetryInitialDelay
// up to DefaultRetryMaxDelay.
func NewRetryingConnector(config *sheetload.ConnectionConfig) *Connector {
	return newConnector(config, retry.NewExponentialBackoff(sheetload.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(sheetload.DefaultRetryInitialDelay),
		retry.WithMaxDelay(sheetload.DefaultRetryMaxDelay),
	))
}

func newConnector(config *sheetload.ConnectionConfig, strategy sheetload.BackoffStrategy) *Connector {
	if config == nil {
		panic("config cannot be nil")
	}
	return &Connector{
		config:        config,
		retryExecutor: retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), strategy),
	}
}

// Connect establishes and pings a connection. The caller owns the connection.
func (c *Connector) Connect(ctx context.Context) (*pgx.Conn, error) {
	var conn *pgx.Conn
	connStr := BuildConnectionString(c.config)

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		connConfig, err := pgx.ParseConfig(connStr)
		if err != nil {
			return fmt.Errorf("failed to parse connection config: %v: %w", err, sheetload.ErrInvalidConfig)
		}

		conn, err = pgx.ConnectConfig(ctx, connConfig)
		if err != nil {
			return wrapConnectionError(err, c.config.Host, c.config.Port, c.config.Database)
		}

		if err := conn.Ping(ctx); err != nil {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			conn.Close(closeCtx)
			return wrapConnectionError(err, c.config.Host, c.config.Port, c.config.Database)
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, sheetload.ErrInvalidConfig) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", sheetload.ErrConnectionFailed, err)
	}
	return conn, nil
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
// The original error stays in the chain so SQLSTATE classification still works.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port
  - Firewall blocking the connection

Original error: %w`, addr, host, port, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable

Original error: %w`, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password (check --password or $SHEETLOAD_PASSWORD)
  - Wrong user
  - User does not have access to the database

Original error: %w`, database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

To create it:
  createdb %s

Original error: %w`, database, database, err)

	case strings.Contains(errStr, "too many connections") || strings.Contains(errStr, "too many clients"):
		return fmt.Errorf(`too many connections to database "%s"

Possible causes:
  - max_connections limit reached in postgresql.conf
  - --thread or --concurrent set higher than the server allows

Original error: %w`, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets
  - Wrong host/port (server not listening)

Original error: %w`, addr, err)

	default:
		return fmt.Errorf("failed to connect to database: %w", err)
	}
}
