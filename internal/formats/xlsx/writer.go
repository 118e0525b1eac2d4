package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/table"
)

// WriteFile creates a new .xlsx file from the given workbook data.
func WriteFile(wb *Workbook, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range wb.Sheets {
		sheetName := sheet.Name
		if sheetName == "" {
			sheetName = fmt.Sprintf("Sheet%d", i+1)
		}

		if i == 0 {
			defaultSheet := f.GetSheetName(0)
			if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
				return fmt.Errorf("could not rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheetName); err != nil {
				return fmt.Errorf("could not create sheet %q: %w", sheetName, err)
			}
		}

		for rowIdx, row := range sheet.Rows {
			cellName, err := excelize.CoordinatesToCellName(1, rowIdx+1)
			if err != nil {
				return fmt.Errorf("invalid cell coordinates: %w", err)
			}
			values := make([]interface{}, len(row))
			for j, cell := range row {
				values[j] = cell
			}
			if err := f.SetSheetRow(sheetName, cellName, &values); err != nil {
				return fmt.Errorf("could not write row %d: %w", rowIdx+1, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("could not save %s: %w", path, err)
	}

	return nil
}

// WriteTable saves one table as a single-sheet workbook.
func WriteTable(t *table.Table, sheetName, path string) error {
	return WriteFile(&Workbook{Sheets: []Sheet{{Name: sheetName, Rows: t.Records()}}}, path)
}
