package retry

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestPostgreSQLErrorClassifier_IsTransient(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()

	tests := []struct {
		name        string
		err         error
		isTransient bool
	}{
		{"nil", nil, false},
		{"connection_failure (08006)", &pgconn.PgError{Code: "08006"}, true},
		{"too_many_connections (53300)", &pgconn.PgError{Code: "53300"}, true},
		{"disk_full (53100)", &pgconn.PgError{Code: "53100"}, true},
		{"cannot_connect_now (57P03)", &pgconn.PgError{Code: "57P03"}, true},
		{"serialization_failure (40001)", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock_detected (40P01)", &pgconn.PgError{Code: "40P01"}, true},
		{"lock_not_available (55P03)", &pgconn.PgError{Code: "55P03"}, true},
		{"syntax_error (42601)", &pgconn.PgError{Code: "42601"}, false},
		{"unique_violation (23505)", &pgconn.PgError{Code: "23505"}, false},
		{"string_data_right_truncation (22001)", &pgconn.PgError{Code: "22001"}, false},
		{"wrapped pg error", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "08001"}), true},
		{"connection refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, true},
		{"message pattern", errors.New("server closed the connection unexpectedly"), true},
		{"generic error", errors.New("something else"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.IsTransient(tt.err); got != tt.isTransient {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.isTransient)
			}
		})
	}
}

func TestConnectionLimitClassifier_IsTransient(t *testing.T) {
	classifier := NewConnectionLimitClassifier()

	tests := []struct {
		name        string
		err         error
		isTransient bool
	}{
		{"nil", nil, false},
		{"too_many_connections (53300)", &pgconn.PgError{Code: "53300", Message: "sorry, too many clients already"}, true},
		{"wrapped 53300", fmt.Errorf("connect: %w", &pgconn.PgError{Code: "53300"}), true},
		{"other insufficient resources (53100)", &pgconn.PgError{Code: "53100"}, false},
		{"connection_failure (08006)", &pgconn.PgError{Code: "08006"}, false},
		{"syntax error", &pgconn.PgError{Code: "42601"}, false},
		{"connection refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, false},
		{"too many clients message", errors.New("FATAL: sorry, too many clients already"), true},
		{"sqlite busy message", errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{"generic error", errors.New("no such table: people"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.IsTransient(tt.err); got != tt.isTransient {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.isTransient)
			}
		})
	}
}
