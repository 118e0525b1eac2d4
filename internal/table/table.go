// Package table holds the in-memory representation of an uploaded sheet and
// the cleaning rules applied before any KPI is derived from it.
package table

import (
	"fmt"
	"strings"
)

// Table is a rectangular sheet: named columns and rows of text cells aligned
// by column index. Tables are treated as immutable once built; every
// transformation returns a new Table.
type Table struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// New builds a Table from a header and data rows. Short rows are padded with
// empty cells and long rows are truncated so that every row has exactly one
// cell per column.
func New(name string, header []string, rows [][]string) *Table {
	cols := append([]string(nil), header...)
	out := make([][]string, len(rows))
	for i, row := range rows {
		r := make([]string, len(cols))
		copy(r, row)
		out[i] = r
	}
	return &Table{Name: name, Columns: cols, Rows: out}
}

// FromRecords treats the first record as the header row.
func FromRecords(name string, records [][]string) *Table {
	if len(records) == 0 {
		return New(name, nil, nil)
	}
	return New(name, records[0], records[1:])
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Has reports whether the table has the named column.
func (t *Table) Has(name string) bool {
	return t.Index(name) >= 0
}

// Column returns a copy of the cells of the named column.
func (t *Table) Column(name string) ([]string, error) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, &ConfigError{Kind: ErrUnknownColumn, Names: []string{name}}
	}
	cells := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = row[idx]
	}
	return cells, nil
}

// WithColumn returns a new table with the given column appended. The values
// must be aligned with the table rows.
func (t *Table) WithColumn(name string, values []string) (*Table, error) {
	if len(values) != len(t.Rows) {
		return nil, fmt.Errorf("column %q has %d values for %d rows", name, len(values), len(t.Rows))
	}
	if t.Has(name) {
		return nil, &ConfigError{Kind: ErrDuplicateColumns, Names: []string{name}}
	}

	cols := append(append([]string(nil), t.Columns...), name)
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]string, 0, len(row)+1)
		r = append(r, row...)
		rows[i] = append(r, values[i])
	}
	return &Table{Name: t.Name, Columns: cols, Rows: rows}, nil
}

// WithoutColumns returns a new table without the named columns.
func (t *Table) WithoutColumns(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	keep := make([]bool, len(t.Columns))
	for i, c := range t.Columns {
		keep[i] = !drop[c]
	}
	return t.project(keep)
}

// Records returns the header followed by the data rows, suitable for CSV or
// spreadsheet writers.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string(nil), t.Columns...))
	for _, row := range t.Rows {
		out = append(out, append([]string(nil), row...))
	}
	return out
}

func (t *Table) project(keep []bool) *Table {
	var cols []string
	for i, c := range t.Columns {
		if keep[i] {
			cols = append(cols, c)
		}
	}
	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]string, 0, len(cols))
		for i, cell := range row {
			if keep[i] {
				out = append(out, cell)
			}
		}
		rows[r] = out
	}
	return &Table{Name: t.Name, Columns: cols, Rows: rows}
}

func (t *Table) filterRows(keep func(row []string) bool) *Table {
	var rows [][]string
	for _, row := range t.Rows {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	return &Table{Name: t.Name, Columns: append([]string(nil), t.Columns...), Rows: rows}
}

func isBlank(cell string) bool {
	return strings.TrimSpace(cell) == ""
}
