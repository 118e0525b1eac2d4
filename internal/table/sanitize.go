package table

import (
	"strings"
)

// footerMarker identifies explanatory rows that exports append below the data.
const footerMarker = "para lembrar"

// Sanitize cleans a raw sheet before analysis. In order, it:
//
//   - drops placeholder columns (blank headers or "Unnamed: n" headers);
//   - drops columns whose cells are all empty;
//   - drops rows without a single digit in any cell;
//   - trims column names and turns embedded line breaks into spaces;
//   - drops rows where any cell mentions "para lembrar";
//   - rejects the table if two columns end up with the same name.
//
// The input is not modified.
func Sanitize(t *Table) (*Table, error) {
	out := dropPlaceholderColumns(t)
	out = dropEmptyColumns(out)
	out = out.filterRows(hasDigit)
	out = cleanColumnNames(out)
	out = out.filterRows(func(row []string) bool { return !hasFooterMarker(row) })

	if dups := Duplicates(out.Columns); len(dups) > 0 {
		return nil, &ConfigError{Kind: ErrDuplicateColumns, Names: dups}
	}
	return out, nil
}

// Duplicates returns each column name that appears more than once, in the
// order of its first repetition.
func Duplicates(columns []string) []string {
	seen := make(map[string]int, len(columns))
	var dups []string
	for _, c := range columns {
		seen[c]++
		if seen[c] == 2 {
			dups = append(dups, c)
		}
	}
	return dups
}

func dropPlaceholderColumns(t *Table) *Table {
	keep := make([]bool, len(t.Columns))
	for i, c := range t.Columns {
		name := strings.TrimSpace(c)
		keep[i] = name != "" && !strings.HasPrefix(name, "Unnamed")
	}
	return t.project(keep)
}

func dropEmptyColumns(t *Table) *Table {
	keep := make([]bool, len(t.Columns))
	for _, row := range t.Rows {
		for i, cell := range row {
			if !isBlank(cell) {
				keep[i] = true
			}
		}
	}
	return t.project(keep)
}

func cleanColumnNames(t *Table) *Table {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		c = strings.ReplaceAll(strings.TrimSpace(c), "\r\n", " ")
		c = strings.ReplaceAll(c, "\n", " ")
		cols[i] = strings.TrimSpace(c)
	}
	return &Table{Name: t.Name, Columns: cols, Rows: t.Rows}
}

func hasDigit(row []string) bool {
	for _, cell := range row {
		if strings.ContainsAny(cell, "0123456789") {
			return true
		}
	}
	return false
}

func hasFooterMarker(row []string) bool {
	for _, cell := range row {
		if strings.Contains(strings.ToLower(cell), footerMarker) {
			return true
		}
	}
	return false
}

// noteColumns are free-text annotation columns that some exports carry next
// to the data.
var noteColumns = []string{"Para lembrar:", "observações", "Observações"}

// DropEmptyNotes removes annotation columns that are blank in every row.
// Sanitize keeps them when the cells it drops later were their only content.
func DropEmptyNotes(t *Table) *Table {
	var empty []string
	for _, name := range noteColumns {
		i := t.Index(name)
		if i < 0 {
			continue
		}
		blank := true
		for _, row := range t.Rows {
			if i < len(row) && !isBlank(row[i]) {
				blank = false
				break
			}
		}
		if blank {
			empty = append(empty, name)
		}
	}
	if len(empty) == 0 {
		return t
	}
	return t.WithoutColumns(empty...)
}
