// Package xlsx reads and writes .xlsx workbooks as tables of text cells.
// Numbers come back unformatted, dates as displayed.
package xlsx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/table"
)

// Sheet represents a single worksheet's data.
type Sheet struct {
	Name string     `json:"name"`
	Rows [][]string `json:"rows"`
}

// Workbook represents a parsed Excel file with all its sheets.
type Workbook struct {
	Sheets []Sheet `json:"sheets"`
}

// openOptions renders built-in short dates as ISO dates so that the date
// parser never has to guess the order of day and month.
var openOptions = excelize.Options{ShortDatePattern: "yyyy-mm-dd"}

// ReadFile opens a workbook on disk.
func ReadFile(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path, openOptions)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("workbook %s: %w", path, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("%s is not a readable workbook: %w", path, err)
	}
	defer f.Close()

	return readWorkbook(f)
}

// Read reads an .xlsx workbook from r.
func Read(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r, openOptions)
	if err != nil {
		return nil, fmt.Errorf("could not read Excel data: %w", err)
	}
	defer f.Close()

	return readWorkbook(f)
}

// ReadBytes reads a workbook held in memory.
func ReadBytes(data []byte) (*Workbook, error) {
	return Read(bytes.NewReader(data))
}

func readWorkbook(f *excelize.File) (*Workbook, error) {
	names := f.GetSheetList()
	wb := &Workbook{Sheets: make([]Sheet, 0, len(names))}
	for _, name := range names {
		rows, err := readRows(f, name)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rows})
	}
	return wb, nil
}

// readRows returns the stored value of numeric cells ("1234", "0.853") and
// the displayed text of everything else ("1,234" and "85%" never appear).
// Date-formatted cells keep their display text; their stored value is a day
// serial.
func readRows(f *excelize.File, sheet string) ([][]string, error) {
	shown, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	dates := make(map[int]bool)
	for r, row := range shown {
		if r >= len(raw) {
			break
		}
		for c, text := range row {
			if c >= len(raw[r]) || raw[r][c] == text {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			numeric, err := isNumericCell(f, sheet, cell, dates)
			if err != nil {
				return nil, err
			}
			if numeric {
				row[c] = raw[r][c]
			}
		}
	}
	return shown, nil
}

// isNumericCell reports whether cell stores a plain number whose format is
// not a date or time format. dates caches the verdict per style id.
func isNumericCell(f *excelize.File, sheet, cell string, dates map[int]bool) (bool, error) {
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return false, err
	}
	if typ != excelize.CellTypeNumber && typ != excelize.CellTypeUnset {
		return false, nil
	}
	id, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return false, err
	}
	isDate, ok := dates[id]
	if !ok {
		style, err := f.GetStyle(id)
		if err != nil {
			return false, err
		}
		isDate = isDateFormat(style)
		dates[id] = isDate
	}
	return !isDate, nil
}

// isDateFormat recognises the built-in date and time formats and custom
// format codes that contain date or time tokens.
func isDateFormat(style *excelize.Style) bool {
	if style == nil {
		return false
	}
	switch id := style.NumFmt; {
	case id >= 14 && id <= 22, id >= 27 && id <= 36, id >= 45 && id <= 47, id >= 50 && id <= 58:
		return true
	}
	if style.CustomNumFmt == nil {
		return false
	}
	return hasDateToken(*style.CustomNumFmt)
}

// hasDateToken scans a format code for d, m, y, h or s outside quoted
// literals, escapes and bracketed sections such as "[$R$-416]" or "[Red]".
func hasDateToken(code string) bool {
	quoted, bracket, escaped := false, false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case quoted:
			quoted = r != '"'
		case bracket:
			bracket = r != ']'
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = true
		case r == '[':
			bracket = true
		case strings.ContainsRune("dmyhs", r):
			return true
		}
	}
	return false
}

// GetSheet looks a worksheet up by name, ignoring case.
func (wb *Workbook) GetSheet(name string) (*Sheet, error) {
	for i := range wb.Sheets {
		if strings.EqualFold(wb.Sheets[i].Name, name) {
			return &wb.Sheets[i], nil
		}
	}
	names := make([]string, len(wb.Sheets))
	for i, s := range wb.Sheets {
		names[i] = s.Name
	}
	return nil, fmt.Errorf("no sheet named %q (workbook has: %s)", name, strings.Join(names, ", "))
}

// Table converts the sheet to a table, using its first non-empty row as the
// header. Leading empty rows are common above the header in exported reports.
func (s *Sheet) Table(name string) *table.Table {
	start := 0
	for start < len(s.Rows) && isEmptyRow(s.Rows[start]) {
		start++
	}
	return table.FromRecords(name, s.Rows[start:])
}

// RowCount counts non-empty rows, header included.
func (s *Sheet) RowCount() int {
	n := 0
	for _, row := range s.Rows {
		if !isEmptyRow(row) {
			n++
		}
	}
	return n
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
