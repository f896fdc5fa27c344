// Package table provides the in-memory tabular structure shared by all
// pipeline stages. Tables are column-ordered with per-cell typed values;
// every transforming stage returns a new table and leaves its input intact.
package table

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNilTable is returned when a stage receives a nil table.
var ErrNilTable = errors.New("table is nil")

// Table is an ordered set of named columns with aligned rows.
type Table struct {
	cols []string
	rows [][]Value
}

// New creates an empty table with the given column labels.
func New(cols ...string) *Table {
	t := &Table{cols: make([]string, len(cols))}
	copy(t.cols, cols)
	return t
}

// FromRecords builds a table from a header and string records, as produced by
// CSV or spreadsheet readers. Every cell becomes text; empty cells become
// missing. Short records are padded with missing values, long ones truncated.
func FromRecords(header []string, records [][]string) *Table {
	t := New(header...)
	for _, rec := range records {
		row := make([]Value, len(header))
		for i := range header {
			if i < len(rec) && rec[i] != "" {
				row[i] = Text(rec[i])
			}
		}
		t.rows = append(t.rows, row)
	}
	return t
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return len(t.rows) }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns a copy of the ordered column labels.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// HasColumn reports whether the table has a column with the given label.
func (t *Table) HasColumn(name string) bool { return t.index(name) >= 0 }

func (t *Table) index(name string) int {
	for i, c := range t.cols {
		if c == name {
			return i
		}
	}
	return -1
}

// Get returns the value at (row, column label), or missing if the column
// does not exist.
func (t *Table) Get(row int, name string) Value {
	i := t.index(name)
	if i < 0 {
		return Missing()
	}
	return t.rows[row][i]
}

// Set replaces the value at (row, column label). Unknown columns are ignored.
func (t *Table) Set(row int, name string, v Value) {
	if i := t.index(name); i >= 0 {
		t.rows[row][i] = v
	}
}

// AppendRow adds a row. It must have exactly one value per column.
func (t *Table) AppendRow(row ...Value) error {
	if len(row) != len(t.cols) {
		return fmt.Errorf("row has %d values, table has %d columns", len(row), len(t.cols))
	}
	r := make([]Value, len(row))
	copy(r, row)
	t.rows = append(t.rows, r)
	return nil
}

// MustAppendRow is AppendRow for construction sites where the arity is static.
func (t *Table) MustAppendRow(row ...Value) {
	if err := t.AppendRow(row...); err != nil {
		panic(err)
	}
}

// Column returns a copy of the named column's values, or nil if absent.
func (t *Table) Column(name string) []Value {
	i := t.index(name)
	if i < 0 {
		return nil
	}
	out := make([]Value, len(t.rows))
	for r := range t.rows {
		out[r] = t.rows[r][i]
	}
	return out
}

// SetColumn replaces the named column's values, or appends a new column when
// the label is unknown. vals must match the row count.
func (t *Table) SetColumn(name string, vals []Value) error {
	if len(vals) != len(t.rows) {
		return fmt.Errorf("column has %d values, table has %d rows", len(vals), len(t.rows))
	}
	i := t.index(name)
	if i < 0 {
		t.cols = append(t.cols, name)
		for r := range t.rows {
			t.rows[r] = append(t.rows[r], vals[r])
		}
		return nil
	}
	for r := range t.rows {
		t.rows[r][i] = vals[r]
	}
	return nil
}

// Rename changes a column label in place. Unknown labels are ignored.
func (t *Table) Rename(from, to string) {
	if i := t.index(from); i >= 0 {
		t.cols[i] = to
	}
}

// DropColumn removes the named column, if present.
func (t *Table) DropColumn(name string) {
	i := t.index(name)
	if i < 0 {
		return
	}
	t.cols = append(t.cols[:i], t.cols[i+1:]...)
	for r := range t.rows {
		t.rows[r] = append(t.rows[r][:i], t.rows[r][i+1:]...)
	}
}

// FilterRows returns a new table keeping only rows for which keep returns true.
func (t *Table) FilterRows(keep func(row int) bool) *Table {
	out := New(t.cols...)
	for r := range t.rows {
		if keep(r) {
			row := make([]Value, len(t.rows[r]))
			copy(row, t.rows[r])
			out.rows = append(out.rows, row)
		}
	}
	return out
}

// SortRowsStable sorts rows in place with a stable sort.
func (t *Table) SortRowsStable(less func(i, j int) bool) {
	sort.SliceStable(t.rows, less)
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := New(t.cols...)
	out.rows = make([][]Value, len(t.rows))
	for r := range t.rows {
		row := make([]Value, len(t.rows[r]))
		copy(row, t.rows[r])
		out.rows[r] = row
	}
	return out
}

// ColumnKind returns the dominant kind among the column's non-missing values,
// or KindMissing when the column is absent or entirely missing. Ties break in
// kind order (text before number before time before bool).
func (t *Table) ColumnKind(name string) Kind {
	vals := t.Column(name)
	if vals == nil {
		return KindMissing
	}
	counts := map[Kind]int{}
	for _, v := range vals {
		if !v.IsMissing() {
			counts[v.Kind()]++
		}
	}
	best, bestN := KindMissing, 0
	for _, k := range []Kind{KindText, KindNumber, KindTime, KindBool} {
		if counts[k] > bestN {
			best, bestN = k, counts[k]
		}
	}
	return best
}

// RowKey returns a string key identifying the row's full contents, used for
// duplicate detection.
func (t *Table) RowKey(row int) string {
	parts := make([]string, len(t.cols))
	for i, v := range t.rows[row] {
		parts[i] = fmt.Sprintf("%d:%s", v.Kind(), v.String())
	}
	return strings.Join(parts, "\x1f")
}

// Equal reports whether two tables have identical columns and cell values.
func (t *Table) Equal(o *Table) bool {
	if o == nil || len(t.cols) != len(o.cols) || len(t.rows) != len(o.rows) {
		return false
	}
	for i := range t.cols {
		if t.cols[i] != o.cols[i] {
			return false
		}
	}
	for r := range t.rows {
		for c := range t.rows[r] {
			if !t.rows[r][c].Equal(o.rows[r][c]) {
				return false
			}
		}
	}
	return true
}
