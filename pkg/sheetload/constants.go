package sheetload

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Import completed
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or empty header
	ExitConnectionError = 11 // Failed to connect to database
	ExitSchemaError     = 12 // Table could not be created or altered
	ExitInsertFailed    = 13 // One or more batches failed (policy fail or abort)
	ExitInputError      = 14 // Input missing, empty or unreadable
)

const (
	// DefaultBatchSize is the number of records sealed into one batch.
	DefaultBatchSize = 100

	// DefaultConcurrentTasks is the default in-flight task ceiling.
	DefaultConcurrentTasks = 4

	// MinWorkers is the lower bound of the worker pool, whatever the host offers.
	MinWorkers = 2

	// DefaultTable is the destination table name.
	DefaultTable = "people"

	// ReservedIDColumn is the generated primary key. It is never sourced from input.
	ReservedIDColumn = "id"

	// TextColumnLength caps every discovered column.
	TextColumnLength = 254

	// MaxIdentifierLength is the PostgreSQL identifier limit (NAMEDATALEN - 1).
	MaxIdentifierLength = 63

	// InsertRetryAttempts is the number of retries after the first insert attempt.
	// Five attempts in total.
	InsertRetryAttempts = 4

	// InsertRetryInitialDelay is the wait before the first insert retry; it doubles each time.
	InsertRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryInitialDelay is the default initial delay before the first connection retry.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between connection retries.
	DefaultRetryMaxDelay = 10 * time.Second

	// DefaultRetryMaxAttempts is the default maximum number of connection retries.
	DefaultRetryMaxAttempts = 3

	// DefaultSQLiteDir and DefaultSQLiteFile locate the embedded database under os.TempDir().
	DefaultSQLiteDir  = "sheetload"
	DefaultSQLiteFile = "db.sqlite3"

	// EnvPrefix prefixes every environment variable read by the CLI.
	EnvPrefix = "SHEETLOAD_"
)
