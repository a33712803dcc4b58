// Package postgres implements sheetload.Store on a single pgx connection.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/sheetload/internal/db"
	"github.com/vvka-141/sheetload/pkg/sheetload"
)

const closeTimeout = 5 * time.Second

var _ sheetload.Store = (*Store)(nil)

// Store is one session on its own PostgreSQL connection.
type Store struct {
	conn *pgx.Conn
}

// Open connects through connector. The returned Store owns the connection.
func Open(ctx context.Context, connector *db.Connector) (*Store, error) {
	conn, err := connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return &Store{conn: conn}, nil
}

// New wraps an existing connection.
func New(conn *pgx.Conn) *Store {
	if conn == nil {
		panic("conn cannot be nil")
	}
	return &Store{conn: conn}
}

const columnsQuery = `
SELECT a.attname
FROM pg_catalog.pg_attribute a
WHERE a.attrelid = to_regclass($1)
  AND a.attnum > 0
  AND NOT a.attisdropped
ORDER BY a.attnum`

func (s *Store) Columns(ctx context.Context, table string) (bool, []string, error) {
	var exists bool
	ident := pgx.Identifier{table}.Sanitize()
	if err := s.conn.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, ident).Scan(&exists); err != nil {
		return false, nil, fmt.Errorf("inspect table %s: %w", table, err)
	}
	if !exists {
		return false, nil, nil
	}

	rows, err := s.conn.Query(ctx, columnsQuery, ident)
	if err != nil {
		return false, nil, fmt.Errorf("inspect table %s: %w", table, err)
	}
	columns, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return false, nil, fmt.Errorf("inspect table %s: %w", table, err)
	}
	return true, columns, nil
}

func (s *Store) CreateTable(ctx context.Context, table string, columns []string) error {
	defs := make([]string, 0, len(columns)+1)
	defs = append(defs, pgx.Identifier{sheetload.ReservedIDColumn}.Sanitize()+" BIGSERIAL PRIMARY KEY")
	for _, c := range columns {
		defs = append(defs, fmt.Sprintf("%s VARCHAR(%d) NOT NULL", pgx.Identifier{c}.Sanitize(), sheetload.TextColumnLength))
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", pgx.Identifier{table}.Sanitize(), strings.Join(defs, ", "))
	if _, err := s.conn.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// AddColumns adds every column in a single ALTER TABLE statement.
func (s *Store) AddColumns(ctx context.Context, table string, columns []string) error {
	if len(columns) == 0 {
		return nil
	}
	clauses := make([]string, len(columns))
	for i, c := range columns {
		clauses[i] = fmt.Sprintf("ADD COLUMN IF NOT EXISTS %s VARCHAR(%d) NOT NULL DEFAULT ''",
			pgx.Identifier{c}.Sanitize(), sheetload.TextColumnLength)
	}
	stmt := fmt.Sprintf("ALTER TABLE %s %s", pgx.Identifier{table}.Sanitize(), strings.Join(clauses, ", "))
	if _, err := s.conn.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("alter table %s: %w", table, err)
	}
	return nil
}

// InsertBatch streams the batch with COPY FROM STDIN.
func (s *Store) InsertBatch(ctx context.Context, table string, batch sheetload.Batch) (int64, error) {
	if batch.Len() == 0 {
		return 0, nil
	}
	rows := make([][]any, 0, batch.Len())
	for _, row := range batch.Rows() {
		values := make([]any, len(row))
		for i, v := range row {
			values[i] = v
		}
		rows = append(rows, values)
	}

	n, err := s.conn.CopyFrom(ctx, pgx.Identifier{table}, sheetload.ColumnNames(batch.Columns), pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("insert batch %d: %w", batch.Seq, err)
	}
	return n, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return s.conn.Close(ctx)
}
