package sheetload

import (
	"errors"
	"fmt"
	"time"
)

// Backend selects the destination database engine.
type Backend int

const (
	BackendSQLite   Backend = iota // Embedded file-backed database
	BackendPostgres                // Client/server database
)

// String returns a human-readable string representation of the Backend.
func (b Backend) String() string {
	switch b {
	case BackendSQLite:
		return "SQLite"
	case BackendPostgres:
		return "PostgreSQL"
	default:
		return fmt.Sprintf("Unknown(%d)", b)
	}
}

// IsValid returns true if the Backend is a valid, defined value.
func (b Backend) IsValid() bool {
	return b == BackendSQLite || b == BackendPostgres
}

// ConnectionConfig represents parsed PostgreSQL connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string
}

// IsEmpty reports whether none of the five identifying fields is set.
func (c *ConnectionConfig) IsEmpty() bool {
	return c == nil || (c.Host == "" && c.Port == 0 && c.Database == "" && c.Username == "" && c.Password == "")
}

// Validate requires all five identifying fields. Fields are checked in the
// order database, user, password, host, port and the first missing one is named.
func (c *ConnectionConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("missing PostgreSQL connection settings: %w", ErrInvalidConfig)
	}
	required := []struct {
		name    string
		missing bool
	}{
		{"database", c.Database == ""},
		{"user", c.Username == ""},
		{"password", c.Password == ""},
		{"host", c.Host == ""},
		{"port", c.Port == 0},
	}
	for _, field := range required {
		if field.missing {
			return fmt.Errorf("missing required option %q for PostgreSQL destination: %w", field.name, ErrInvalidConfig)
		}
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range: %w", c.Port, ErrInvalidConfig)
	}
	return nil
}

// Target describes where records are written. Exactly one backend is active.
type Target struct {
	Backend Backend

	// SQLitePath is the database file, used when Backend is BackendSQLite.
	SQLitePath string

	// Postgres holds the server parameters, used when Backend is BackendPostgres.
	Postgres *ConnectionConfig
}

// Validate checks that the fields required by the selected backend are present.
func (t Target) Validate() error {
	switch t.Backend {
	case BackendSQLite:
		if t.SQLitePath == "" {
			return fmt.Errorf("SQLite location is required: %w", ErrInvalidConfig)
		}
		return nil
	case BackendPostgres:
		return t.Postgres.Validate()
	default:
		return fmt.Errorf("unknown backend %v: %w", t.Backend, ErrInvalidConfig)
	}
}

// String renders the target without credentials.
func (t Target) String() string {
	if t.Backend == BackendPostgres && t.Postgres != nil {
		return fmt.Sprintf("postgres://%s@%s:%d/%s", t.Postgres.Username, t.Postgres.Host, t.Postgres.Port, t.Postgres.Database)
	}
	return "sqlite://" + t.SQLitePath
}

// FailurePolicy decides what a failed batch does to the rest of the run.
type FailurePolicy string

const (
	// FailureContinue logs failed batches and still reports success.
	FailureContinue FailurePolicy = "continue"

	// FailureFail runs every batch, then reports failure if any batch failed.
	FailureFail FailurePolicy = "fail"

	// FailureAbort discards queued batches on the first failure and reports failure.
	FailureAbort FailurePolicy = "abort"
)

// ParseFailurePolicy converts a flag value into a FailurePolicy.
// An empty string selects FailureFail.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case "":
		return FailureFail, nil
	case FailureContinue, FailureFail, FailureAbort:
		return FailurePolicy(s), nil
	}
	return "", fmt.Errorf("unknown failure policy %q (want continue, fail or abort): %w", s, ErrInvalidConfig)
}

// IngestConfig contains all parameters needed for one import run.
type IngestConfig struct {
	// Target is the destination database.
	Target Target

	// Table is the destination table name.
	Table string

	// Sheet names the worksheet to read. Empty selects the first one.
	Sheet string

	// BatchSize is the number of records per insert.
	BatchSize int

	// MaxWorkers is the requested worker pool size. Zero selects the host default.
	MaxWorkers int

	// MaxConcurrentTasks is the requested in-flight task ceiling. Zero selects the default.
	MaxConcurrentTasks int

	// NormalizeDates rewrites recognised date cells to YYYY-MM-DD.
	NormalizeDates bool

	// OnFailure decides how failed batches affect the run.
	OnFailure FailurePolicy

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the IngestConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *IngestConfig) Validate() error {
	var errs []error

	if err := c.Target.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Table == "" {
		errs = append(errs, fmt.Errorf("Table is required: %w", ErrInvalidConfig))
	} else if len(c.Table) > MaxIdentifierLength {
		errs = append(errs, fmt.Errorf("table name %q exceeds %d bytes: %w", c.Table, MaxIdentifierLength, ErrInvalidConfig))
	}

	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch size must be positive, got %d: %w", c.BatchSize, ErrInvalidConfig))
	}

	if c.MaxWorkers < 0 {
		errs = append(errs, fmt.Errorf("worker count cannot be negative: %w", ErrInvalidConfig))
	}

	if c.MaxConcurrentTasks < 0 {
		errs = append(errs, fmt.Errorf("concurrent task count cannot be negative: %w", ErrInvalidConfig))
	}

	switch c.OnFailure {
	case FailureContinue, FailureFail, FailureAbort:
	default:
		errs = append(errs, fmt.Errorf("unknown failure policy %q: %w", c.OnFailure, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}
