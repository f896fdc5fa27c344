// Package loader reads CSV and XLSX exports into raw tables. Loading is the
// pipeline's only file I/O; everything downstream is a pure in-memory
// transformation.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ledgerlens-dev/ledgerlens/internal/table"
)

// ErrUnsupportedFile is returned for file extensions the loader cannot read.
var ErrUnsupportedFile = errors.New("unsupported file type: use .csv or .xlsx")

// Load reads a tabular file into a raw table, dispatching on extension.
func Load(path string) (*table.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("source file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		return LoadCSV(f)
	case ".xlsx":
		return LoadXLSX(path)
	default:
		return nil, ErrUnsupportedFile
	}
}

// LoadCSV reads CSV data. The first record is the header; records may have
// ragged lengths and are padded or truncated to the header width.
func LoadCSV(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return table.New(), nil
	}
	return table.FromRecords(records[0], records[1:]), nil
}

// LoadXLSX reads the first sheet of an XLSX workbook.
func LoadXLSX(path string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return table.New(), nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return table.New(), nil
	}
	return table.FromRecords(rows[0], rows[1:]), nil
}
