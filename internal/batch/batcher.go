// Package batch validates data rows and groups them into fixed-size batches.
package batch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vvka-141/sheetload/pkg/sheetload"
)

// Sink receives each sealed batch. An error stops the batcher.
type Sink func(sheetload.Batch) error

// Stats counts what the batcher has seen so far.
type Stats struct {
	Rows     int
	Accepted int
	Rejected int
	Batches  int
}

// Option configures a Batcher.
type Option func(*Batcher)

// WithDateNormalization rewrites values in a recognised date layout to YYYY-MM-DD.
func WithDateNormalization() Option {
	return func(b *Batcher) { b.normalizeDates = true }
}

// Batcher zips rows against frozen columns and seals full batches into a Sink.
// It is used from a single goroutine.
type Batcher struct {
	columns        []sheetload.Column
	size           int
	sink           Sink
	logger         sheetload.Logger
	normalizeDates bool

	pending []sheetload.Record
	stats   Stats
}

// New creates a Batcher. size must be positive.
func New(columns []sheetload.Column, size int, sink Sink, logger sheetload.Logger, opts ...Option) *Batcher {
	if size <= 0 {
		panic(fmt.Sprintf("batch size must be positive, got %d", size))
	}
	if sink == nil {
		panic("sink cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	b := &Batcher{
		columns: columns,
		size:    size,
		sink:    sink,
		logger:  logger,
		pending: make([]sheetload.Record, 0, size),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add validates one data row. A row with a missing value is logged and
// dropped without error; only a sink failure is returned.
func (b *Batcher) Add(rowNumber int, row []string) error {
	b.stats.Rows++

	if b.normalizeDates {
		row = normalizeRow(row)
	}

	rec, err := sheetload.NewRecord(b.columns, row)
	if err != nil {
		var missing *sheetload.MissingFieldError
		if errors.As(err, &missing) {
			b.stats.Rejected++
			b.logger.Warn("Row %d skipped, the following occurrence has one or more invalid properties: %s", rowNumber, describe(b.columns, row))
			return nil
		}
		return err
	}

	b.stats.Accepted++
	b.pending = append(b.pending, rec)
	if len(b.pending) >= b.size {
		return b.seal()
	}
	return nil
}

// Flush seals the partial final batch, if any.
func (b *Batcher) Flush() error {
	if len(b.pending) == 0 {
		return nil
	}
	return b.seal()
}

// Stats returns the counters so far.
func (b *Batcher) Stats() Stats {
	return b.stats
}

func (b *Batcher) seal() error {
	b.stats.Batches++
	batch := sheetload.Batch{
		Seq:     b.stats.Batches,
		Columns: b.columns,
		Records: b.pending,
	}
	b.pending = make([]sheetload.Record, 0, b.size)
	return b.sink(batch)
}

// describe renders the row against the columns, including blank fields,
// as {name: value, email: }.
func describe(columns []sheetload.Column, row []string) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, c := range columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.Name)
		sb.WriteString(": ")
		if c.Index < len(row) {
			sb.WriteString(row[c.Index])
		}
	}
	sb.WriteByte('}')
	return sb.String()
}

var dateLayouts = []string{"02-01-2006", "2006-01-02", "2006/01/02", "02/01/2006"}

// NormalizeDate returns s as YYYY-MM-DD when it parses under one of the
// accepted layouts, tried in order: dd-MM-yyyy, yyyy-MM-dd, yyyy/MM/dd, dd/MM/yyyy.
func NormalizeDate(s string) (string, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly), true
		}
	}
	return s, false
}

// normalizeRow returns row with dates rewritten. The input slice is not modified.
func normalizeRow(row []string) []string {
	var out []string
	for i, v := range row {
		d, ok := NormalizeDate(v)
		if !ok || d == v {
			continue
		}
		if out == nil {
			out = append([]string(nil), row...)
		}
		out[i] = d
	}
	if out == nil {
		return row
	}
	return out
}
