// Package source reads the header and data rows of a spreadsheet lazily.
//
// The input is either a file path or a byte stream (typically stdin). A stream
// is spooled to a temporary file first, because the workbook format is a zip
// archive that needs random access. Compressed inputs are decompressed while
// spooling. The temporary file lives until Sheet.Close.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vvka-141/sheetload/pkg/sheetload"
	"github.com/xuri/excelize/v2"
)

// Input names where the workbook comes from. Path wins over Stream.
type Input struct {
	// Path is a workbook file, absolute or relative to Dir.
	Path string

	// Dir is the invocation directory. Empty means the process working directory.
	Dir string

	// Stream is read when Path is empty.
	Stream io.Reader
}

// Options tune how the workbook is read.
type Options struct {
	// Sheet selects a worksheet by name. Empty selects the first one.
	Sheet string

	// TempDir receives spooled input. Empty means os.TempDir().
	TempDir string
}

// Sheet iterates the rows of one worksheet. Header must be called before Next.
// A Sheet is not safe for concurrent use.
type Sheet struct {
	ctx     context.Context
	file    *excelize.File
	rows    *excelize.Rows
	name    string
	spooled string

	header     []string
	headerRead bool
	row        []string
	rowNumber  int
	err        error
}

// ResolvePath makes path absolute relative to dir (or the working directory).
func ResolvePath(path, dir string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = wd
	}
	return filepath.Join(dir, path), nil
}

// Open prepares the input and positions the reader on the selected worksheet.
func Open(ctx context.Context, in Input, opts Options) (*Sheet, error) {
	var (
		workbook string
		spooled  string
		err      error
	)

	switch {
	case in.Path != "":
		workbook, err = ResolvePath(in.Path, in.Dir)
		if err != nil {
			return nil, fmt.Errorf("resolve input path: %w", err)
		}
		if _, statErr := os.Stat(workbook); statErr != nil {
			if errors.Is(statErr, os.ErrNotExist) {
				return nil, fmt.Errorf("file %s does not exist: %w", workbook, sheetload.ErrNoInput)
			}
			return nil, fmt.Errorf("stat %s: %v: %w", workbook, statErr, sheetload.ErrInputFailed)
		}
		if c := CompressionFromPath(workbook); c != CompressionNone {
			spooled, err = spoolFile(workbook, c, opts.TempDir)
			if err != nil {
				return nil, err
			}
			workbook = spooled
		}
	case in.Stream != nil:
		spooled, err = spoolStream(in.Stream, opts.TempDir)
		if err != nil {
			return nil, err
		}
		workbook = spooled
	default:
		return nil, fmt.Errorf("no file and no stream given: %w", sheetload.ErrNoInput)
	}

	s, err := openWorkbook(ctx, workbook, opts.Sheet)
	if err != nil {
		removeQuietly(spooled)
		return nil, err
	}
	s.spooled = spooled
	return s, nil
}

func openWorkbook(ctx context.Context, path, sheet string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %v: %w", err, sheetload.ErrInputFailed)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("workbook has no sheet: %w", sheetload.ErrNoInput)
	}

	name := sheets[0]
	if sheet != "" {
		name = ""
		for _, candidate := range sheets {
			if candidate == sheet {
				name = candidate
				break
			}
		}
		if name == "" {
			f.Close()
			return nil, fmt.Errorf("sheet %q not found (available: %s): %w",
				sheet, strings.Join(sheets, ", "), sheetload.ErrInputFailed)
		}
	}

	rows, err := f.Rows(name)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read sheet %s: %v: %w", name, err, sheetload.ErrInputFailed)
	}

	return &Sheet{ctx: ctx, file: f, rows: rows, name: name}, nil
}

// Name returns the worksheet being read.
func (s *Sheet) Name() string {
	return s.name
}

// Header returns the first non-empty row. It fails with sheetload.ErrNoInput
// when the worksheet has no row at all.
func (s *Sheet) Header() ([]string, error) {
	if s.headerRead {
		return s.header, nil
	}
	s.headerRead = true

	if !s.advance() {
		if s.err != nil {
			return nil, s.err
		}
		return nil, fmt.Errorf("sheet %s is empty: %w", s.name, sheetload.ErrNoInput)
	}
	s.header = s.row
	s.row = nil
	return s.header, nil
}

// Next moves to the next non-empty data row.
func (s *Sheet) Next() bool {
	if !s.headerRead {
		if _, err := s.Header(); err != nil {
			s.err = err
			return false
		}
	}
	return s.advance()
}

func (s *Sheet) advance() bool {
	if s.err != nil {
		return false
	}
	for s.rows.Next() {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return false
		}
		s.rowNumber++
		cells, err := s.rows.Columns()
		if err != nil {
			s.err = fmt.Errorf("read row %d: %v: %w", s.rowNumber, err, sheetload.ErrInputFailed)
			return false
		}
		if isBlank(cells) {
			continue
		}
		s.row = cells
		return true
	}
	if err := s.rows.Error(); err != nil {
		s.err = fmt.Errorf("read sheet %s: %v: %w", s.name, err, sheetload.ErrInputFailed)
	}
	s.row = nil
	return false
}

// Row returns the current data row. Trailing empty cells may be absent.
func (s *Sheet) Row() []string {
	return s.row
}

// RowNumber returns the 1-based worksheet row of the current row.
func (s *Sheet) RowNumber() int {
	return s.rowNumber
}

// Err returns the first error met while iterating.
func (s *Sheet) Err() error {
	return s.err
}

// Close releases the workbook and removes any spooled temporary file.
func (s *Sheet) Close() error {
	var errs []error
	if s.rows != nil {
		errs = append(errs, s.rows.Close())
	}
	if s.file != nil {
		errs = append(errs, s.file.Close())
	}
	if s.spooled != "" {
		if err := os.Remove(s.spooled); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
		s.spooled = ""
	}
	return errors.Join(errs...)
}

// SpooledPath returns the temporary copy of the input, if one was made.
func (s *Sheet) SpooledPath() string {
	return s.spooled
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
