// Package table brings the destination table in line with the discovered columns.
//
// The table is only ever created or widened with new columns; existing
// columns are never dropped, renamed or retyped.
package table

import (
	"context"
	"fmt"
	"strings"

	"github.com/vvka-141/sheetload/pkg/sheetload"
)

// Plan is the DDL needed to make a table hold the desired columns.
type Plan struct {
	// Create is set when the table does not exist yet.
	Create bool

	// Add lists desired columns missing from an existing table, in header order.
	Add []string

	// States records, for each desired column, whether the table already had it.
	States []sheetload.ColumnState
}

// Empty reports whether the plan requires no DDL.
func (p Plan) Empty() bool {
	return !p.Create && len(p.Add) == 0
}

// Diff compares the desired columns against what was observed on the table.
func Diff(desired []string, exists bool, observed []string) Plan {
	plan := Plan{States: make([]sheetload.ColumnState, len(desired))}
	if !exists {
		plan.Create = true
		for i, name := range desired {
			plan.States[i] = sheetload.ColumnState{Name: name}
		}
		return plan
	}

	have := make(map[string]struct{}, len(observed))
	for _, name := range observed {
		have[name] = struct{}{}
	}
	for i, name := range desired {
		_, ok := have[name]
		plan.States[i] = sheetload.ColumnState{Name: name, Exists: ok}
		if !ok {
			plan.Add = append(plan.Add, name)
		}
	}
	return plan
}

// Manager ensures the destination table exists with every discovered column.
type Manager struct {
	open   sheetload.StoreFactory
	logger sheetload.Logger
}

// NewManager creates a Manager that opens sessions with open.
func NewManager(open sheetload.StoreFactory, logger sheetload.Logger) *Manager {
	if open == nil {
		panic("store factory cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Manager{open: open, logger: logger}
}

// Ensure observes table on target and applies the plan that makes it hold columns.
// Running it twice with the same columns issues no DDL the second time.
// Inspection and DDL failures wrap sheetload.ErrSchema; connection failures are returned as is.
func (m *Manager) Ensure(ctx context.Context, target sheetload.Target, table string, columns []sheetload.Column) (Plan, error) {
	store, err := m.open(ctx, target)
	if err != nil {
		return Plan{}, err
	}
	defer store.Close()

	exists, observed, err := store.Columns(ctx, table)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %w", sheetload.ErrSchema, err)
	}

	plan := Diff(sheetload.ColumnNames(columns), exists, observed)
	switch {
	case plan.Create:
		if err := store.CreateTable(ctx, table, sheetload.ColumnNames(columns)); err != nil {
			return Plan{}, fmt.Errorf("%w: %w", sheetload.ErrSchema, err)
		}
		m.logger.Verbose("Created table %s (%s)", table, strings.Join(sheetload.ColumnNames(columns), ", "))
	case len(plan.Add) > 0:
		if err := store.AddColumns(ctx, table, plan.Add); err != nil {
			return Plan{}, fmt.Errorf("%w: %w", sheetload.ErrSchema, err)
		}
		m.logger.Verbose("Added column(s) %s to table %s", strings.Join(plan.Add, ", "), table)
	default:
		m.logger.Verbose("Table %s is up to date", table)
	}
	return plan, nil
}
