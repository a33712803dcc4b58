// Package store opens destination sessions for a sheetload.Target.
package store

import (
	"context"
	"fmt"

	"github.com/vvka-141/sheetload/internal/db"
	"github.com/vvka-141/sheetload/internal/store/postgres"
	"github.com/vvka-141/sheetload/internal/store/sqlite"
	"github.com/vvka-141/sheetload/pkg/sheetload"
)

// Factory opens one Store per call.
type Factory struct {
	retryConnect bool
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithConnectRetries makes PostgreSQL sessions retry transient connection
// failures with the default backoff. Used for schema management; insert
// workers leave it off and apply their own retry policy per task.
func WithConnectRetries() FactoryOption {
	return func(f *Factory) { f.retryConnect = true }
}

// NewFactory creates a Factory.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open returns a new session for target. It satisfies sheetload.StoreFactory.
func (f *Factory) Open(ctx context.Context, target sheetload.Target) (sheetload.Store, error) {
	switch target.Backend {
	case sheetload.BackendSQLite:
		return sqlite.Open(ctx, target.SQLitePath)
	case sheetload.BackendPostgres:
		if target.Postgres == nil {
			return nil, fmt.Errorf("missing PostgreSQL connection settings: %w", sheetload.ErrInvalidConfig)
		}
		connector := db.NewConnector(target.Postgres)
		if f.retryConnect {
			connector = db.NewRetryingConnector(target.Postgres)
		}
		return postgres.Open(ctx, connector)
	default:
		return nil, fmt.Errorf("unknown backend %v: %w", target.Backend, sheetload.ErrInvalidConfig)
	}
}
