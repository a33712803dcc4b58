package sheetload

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	summary, err := ingester.Run(ctx, cfg, input)
//	if errors.Is(err, sheetload.ErrSchema) {
//	    // table could not be created or migrated, nothing was inserted
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyHeader indicates the header row produced no usable column.
	ErrEmptyHeader = errors.New("header row has no usable column")

	// ErrNoInput indicates there was nothing to read: no file, empty stdin or an empty sheet.
	ErrNoInput = errors.New("no input")

	// ErrInputFailed indicates the input could not be opened or decoded.
	ErrInputFailed = errors.New("input failed")

	// ErrSchema indicates the destination table could not be created or migrated.
	ErrSchema = errors.New("schema error")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrInsertFailed indicates at least one batch could not be inserted.
	ErrInsertFailed = errors.New("insert failed")
)

// usagePatterns are the error prefixes cobra produces for command line misuse.
var usagePatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"required flag",
	"invalid argument",
	"flag needs an argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrEmptyHeader):
		return ExitConfigError
	case errors.Is(err, ErrSchema):
		return ExitSchemaError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrInsertFailed):
		return ExitInsertFailed
	case errors.Is(err, ErrNoInput), errors.Is(err, ErrInputFailed):
		return ExitInputError
	}

	errStr := err.Error()
	for _, pattern := range usagePatterns {
		if strings.HasPrefix(errStr, pattern) {
			return ExitUsageError
		}
	}

	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

// MissingFieldError reports a data row that lacks a value for one of the columns.
// The row is dropped; the error carries enough context for a diagnostic.
type MissingFieldError struct {
	Column string
	Row    []string
}

func (e *MissingFieldError) Error() string {
	return "missing value for column \"" + e.Column + "\" in [" + strings.Join(e.Row, ", ") + "]"
}
