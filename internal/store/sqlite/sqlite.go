// Package sqlite implements sheetload.Store on an embedded SQLite file
// using the pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vvka-141/sheetload/pkg/sheetload"
	_ "modernc.org/sqlite"
)

// busyTimeoutMillis is how long a connection waits on another writer's lock
// before the driver reports SQLITE_BUSY.
const busyTimeoutMillis = 5000

var _ sheetload.Store = (*Store)(nil)

// Store is one session against a SQLite database file.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at path. Missing parent directories are created.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %v: %w", err, sheetload.ErrConnectionFailed)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, busyTimeoutMillis)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %v: %w", path, err, sheetload.ErrConnectionFailed)
	}
	// A session is a single connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w: %w", path, sheetload.ErrConnectionFailed, err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Columns(ctx context.Context, table string) (bool, []string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return false, nil, fmt.Errorf("inspect table %s: %w", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, nil, fmt.Errorf("inspect table %s: %w", table, err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return false, nil, fmt.Errorf("inspect table %s: %w", table, err)
	}
	return len(columns) > 0, columns, nil
}

func (s *Store) CreateTable(ctx context.Context, table string, columns []string) error {
	defs := make([]string, 0, len(columns)+1)
	defs = append(defs, quoteIdent(sheetload.ReservedIDColumn)+" INTEGER PRIMARY KEY AUTOINCREMENT")
	for _, c := range columns {
		defs = append(defs, fmt.Sprintf("%s VARCHAR(%d) NOT NULL", quoteIdent(c), sheetload.TextColumnLength))
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// AddColumns runs one ADD COLUMN per column (SQLite accepts no list) inside one transaction.
func (s *Store) AddColumns(ctx context.Context, table string, columns []string) error {
	if len(columns) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("alter table %s: %w", table, err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, c := range columns {
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s VARCHAR(%d) NOT NULL DEFAULT ''",
			quoteIdent(table), quoteIdent(c), sheetload.TextColumnLength)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("alter table %s add column %s: %w", table, c, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("alter table %s: %w", table, err)
	}
	return nil
}

func (s *Store) InsertBatch(ctx context.Context, table string, batch sheetload.Batch) (int64, error) {
	if batch.Len() == 0 {
		return 0, nil
	}
	names := sheetload.ColumnNames(batch.Columns)
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(table), strings.Join(quoted, ", "), placeholders)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("insert batch %d: %w", batch.Seq, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("insert batch %d: %w", batch.Seq, err)
	}
	defer stmt.Close()

	args := make([]any, len(names))
	for _, row := range batch.Rows() {
		for i, v := range row {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert batch %d: %w", batch.Seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("insert batch %d: %w", batch.Seq, err)
	}
	return int64(batch.Len()), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
