// Package fixtures builds spreadsheet inputs for tests.
package fixtures

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the worksheet excelize creates for a new file.
const DefaultSheet = "Sheet1"

// WorkbookBuilder provides a fluent API for building workbook fixtures.
// Empty strings leave the cell unset, the way a blank cell is stored.
//
// Example usage:
//
//	data := fixtures.NewWorkbook().
//	    Header("name", "email").
//	    People(250).
//	    Row("Bob", "").
//	    Bytes(t)
type WorkbookBuilder struct {
	order  []string
	sheets map[string][][]string
	active string
}

// NewWorkbook creates a builder positioned on the default sheet.
func NewWorkbook() *WorkbookBuilder {
	return &WorkbookBuilder{
		order:  []string{DefaultSheet},
		sheets: map[string][][]string{DefaultSheet: nil},
		active: DefaultSheet,
	}
}

// Sheet switches to the named sheet, creating it after the existing ones.
func (b *WorkbookBuilder) Sheet(name string) *WorkbookBuilder {
	if _, ok := b.sheets[name]; !ok {
		b.order = append(b.order, name)
		b.sheets[name] = nil
	}
	b.active = name
	return b
}

// Header appends the header row to the active sheet.
func (b *WorkbookBuilder) Header(cells ...string) *WorkbookBuilder {
	return b.Row(cells...)
}

// Row appends a row to the active sheet.
func (b *WorkbookBuilder) Row(cells ...string) *WorkbookBuilder {
	b.sheets[b.active] = append(b.sheets[b.active], cells)
	return b
}

// People appends n complete (name, email) rows.
func (b *WorkbookBuilder) People(n int) *WorkbookBuilder {
	for i := 1; i <= n; i++ {
		b.Row(fmt.Sprintf("Person %d", i), fmt.Sprintf("person%d@example.com", i))
	}
	return b
}

// Bytes renders the workbook as xlsx.
func (b *WorkbookBuilder) Bytes(t testing.TB) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range b.order {
		if i > 0 {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("create sheet %s: %v", name, err)
			}
		}
		for r, row := range b.sheets[name] {
			for c, value := range row {
				if value == "" {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				if err := f.SetCellValue(name, cell, value); err != nil {
					t.Fatalf("set %s!%s: %v", name, cell, err)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// WriteFile renders the workbook into dir/name and returns the path.
func (b *WorkbookBuilder) WriteFile(t testing.TB, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b.Bytes(t), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
