package sheetload

import "context"

// Store is one session against the destination database.
// A Store is owned by a single goroutine and must be closed by it.
type Store interface {
	// Columns reports whether table exists and, if so, its column names.
	Columns(ctx context.Context, table string) (exists bool, columns []string, err error)

	// CreateTable creates table with the generated id key and one text column per name.
	CreateTable(ctx context.Context, table string, columns []string) error

	// AddColumns adds the named text columns to an existing table in one step.
	AddColumns(ctx context.Context, table string, columns []string) error

	// InsertBatch writes every record of batch and returns the number of rows inserted.
	InsertBatch(ctx context.Context, table string, batch Batch) (int64, error)

	// Close releases the session.
	Close() error
}

// StoreFactory opens a new Store session for target.
type StoreFactory func(ctx context.Context, target Target) (Store, error)
