package sheetload

import (
	"strings"
	"time"
)

// Column is a normalized destination column and the header position it is read from.
type Column struct {
	Name  string
	Index int
}

// ColumnNames returns the names of columns in order.
func ColumnNames(columns []Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

// ColumnState records whether a desired column was found on the existing table.
// It only exists while an alter is being planned.
type ColumnState struct {
	Name   string
	Exists bool
}

// Record is one validated data row, with a value for every column.
// Construct it with NewRecord; the zero value has no columns.
type Record struct {
	columns []Column
	values  []string
}

// NewRecord zips row against columns by header position.
// It fails with *MissingFieldError when a cell is absent or blank.
func NewRecord(columns []Column, row []string) (Record, error) {
	values := make([]string, len(columns))
	for i, col := range columns {
		if col.Index >= len(row) || strings.TrimSpace(row[col.Index]) == "" {
			return Record{}, &MissingFieldError{Column: col.Name, Row: row}
		}
		values[i] = row[col.Index]
	}
	return Record{columns: columns, values: values}, nil
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.values)
}

// Values returns the field values in column order. The slice must not be modified.
func (r Record) Values() []string {
	return r.values
}

// Get returns the value stored for the named column.
func (r Record) Get(name string) (string, bool) {
	for i, c := range r.columns {
		if c.Name == name {
			return r.values[i], true
		}
	}
	return "", false
}

// String renders the record as {name: value, ...}.
func (r Record) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.Name)
		b.WriteString(": ")
		b.WriteString(r.values[i])
	}
	b.WriteByte('}')
	return b.String()
}

// Batch is an ordered group of records inserted together.
type Batch struct {
	// Seq is the 1-based order in which the batch was sealed.
	Seq     int
	Columns []Column
	Records []Record
}

// Len returns the number of records in the batch.
func (b Batch) Len() int {
	return len(b.Records)
}

// Rows returns the record values as a slice of rows, in column order.
func (b Batch) Rows() [][]string {
	rows := make([][]string, len(b.Records))
	for i, r := range b.Records {
		rows[i] = r.values
	}
	return rows
}

// WorkTask binds a batch to its destination. It is immutable once enqueued.
type WorkTask struct {
	Batch    Batch
	Target   Target
	Table    string
	WorkerID string
}

// Outcome is the result of executing one WorkTask.
type Outcome struct {
	Seq      int
	WorkerID string
	Inserted int64
	Attempts int
	Duration time.Duration
	Err      error
}

// Failed reports whether the task ended in error.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// RunState is a snapshot of the dispatcher counters.
type RunState struct {
	Active       int
	Queued       int
	PeakActive   int
	Submitted    int
	Succeeded    int
	Failed       int
	Discarded    int
	RowsInserted int64
}

// Summary describes a finished import.
type Summary struct {
	Table          string
	Columns        []string
	TableCreated   bool
	ColumnsAdded   []string
	RowsRead       int
	RowsRejected   int
	Batches        int
	RowsInserted   int64
	FailedBatches  int
	DiscardedTasks int
	PeakActive     int
	Duration       time.Duration
}
