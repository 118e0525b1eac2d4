package xlsx

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/table"
)

func TestWriteAndRead(t *testing.T) {
	original := &Workbook{
		Sheets: []Sheet{
			{
				Name: "Producao",
				Rows: [][]string{
					{"Mês", "OEE", "Scrap %"},
					{"jan/24", "85,2", "0,05"},
					{"fev/24", "erro", "0,08"},
				},
			},
			{Name: "Notas", Rows: [][]string{{"Para lembrar"}}},
		},
	}

	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, WriteFile(original, path))

	_, err := os.Stat(path)
	require.NoError(t, err, "WriteFile did not create the file")

	wb, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 2)

	sheet := wb.Sheets[0]
	assert.Equal(t, "Producao", sheet.Name)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "85,2", sheet.Rows[1][1])
	assert.Equal(t, 3, sheet.RowCount())
}

func TestReadBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.xlsx")
	require.NoError(t, WriteTable(table.New("x", []string{"A"}, [][]string{{"1"}}), "KPI", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	wb, err := ReadBytes(data)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)
	assert.Equal(t, "KPI", wb.Sheets[0].Name)
	assert.Equal(t, [][]string{{"A"}, {"1"}}, wb.Sheets[0].Rows)
}

func TestSheetTableSkipsLeadingEmptyRows(t *testing.T) {
	sheet := Sheet{
		Name: "S",
		Rows: [][]string{
			{},
			{"", ""},
			{"Data", "OEE"},
			{"01/01/2024", "80"},
		},
	}

	tbl := sheet.Table("file.xlsx")
	assert.Equal(t, "file.xlsx", tbl.Name)
	assert.Equal(t, []string{"Data", "OEE"}, tbl.Columns)
	assert.Equal(t, 1, tbl.Len())
}

func TestGetSheet(t *testing.T) {
	wb := &Workbook{
		Sheets: []Sheet{
			{Name: "One"},
			{Name: "Two"},
		},
	}

	s, err := wb.GetSheet("Two")
	require.NoError(t, err)
	assert.Equal(t, "Two", s.Name)

	s, err = wb.GetSheet("two")
	require.NoError(t, err)
	assert.Equal(t, "Two", s.Name)

	_, err = wb.GetSheet("Missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Two")
}

func TestReadFileNotFound(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "file.xlsx"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

// writeStyledWorkbook saves numbers and dates carrying Excel number formats.
func writeStyledWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sh := f.GetSheetName(0)

	dayFirst := "dd/mm/yyyy"
	styles := map[string]*excelize.Style{
		"A": {NumFmt: 14},
		"B": {NumFmt: 3},
		"C": {NumFmt: 9},
		"D": {CustomNumFmt: &dayFirst},
	}

	require.NoError(t, f.SetSheetRow(sh, "A1", &[]interface{}{"Data", "Produção", "OEE", "Fechamento"}))
	rows := []struct {
		day      time.Time
		produced int
		oee      interface{}
	}{
		{time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), 1234, 0.853},
		{time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC), 2500, 0.912},
		{time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC), 980, "erro"},
	}
	for i, r := range rows {
		n := i + 2
		require.NoError(t, f.SetCellValue(sh, cellName(t, 1, n), r.day))
		require.NoError(t, f.SetCellValue(sh, cellName(t, 2, n), r.produced))
		require.NoError(t, f.SetCellValue(sh, cellName(t, 3, n), r.oee))
		require.NoError(t, f.SetCellValue(sh, cellName(t, 4, n), r.day))
	}
	for col, st := range styles {
		id, err := f.NewStyle(st)
		require.NoError(t, err)
		require.NoError(t, f.SetCellStyle(sh, col+"2", col+"4", id))
	}

	path := filepath.Join(t.TempDir(), "styled.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func cellName(t *testing.T, col, row int) string {
	t.Helper()
	name, err := excelize.CoordinatesToCellName(col, row)
	require.NoError(t, err)
	return name
}

func TestReadKeepsStoredNumbers(t *testing.T) {
	wb, err := ReadFile(writeStyledWorkbook(t))
	require.NoError(t, err)
	rows := wb.Sheets[0].Rows
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"1234", "2500", "980"}, []string{rows[1][1], rows[2][1], rows[3][1]})
	assert.Equal(t, []string{"0.853", "0.912", "erro"}, []string{rows[1][2], rows[2][2], rows[3][2]})
}

func TestReadKeepsDateText(t *testing.T) {
	wb, err := ReadFile(writeStyledWorkbook(t))
	require.NoError(t, err)
	rows := wb.Sheets[0].Rows

	assert.Equal(t, "2024-03-15", rows[1][0])
	assert.Equal(t, "15/03/2024", rows[1][3])
	assert.Equal(t, "15/05/2024", rows[3][3])
}

func TestHasDateToken(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"dd/mm/yyyy", true},
		{"[$-416]mmm/yy", true},
		{"[h]:mm", true},
		{"#,##0", false},
		{"0.0%", false},
		{`0.00" dias"`, false},
		{"[Red]#,##0.00", false},
		{`#,##0\ "und"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, hasDateToken(tt.code))
		})
	}
}
