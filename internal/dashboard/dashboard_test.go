package dashboard

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/analysis"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/kpi"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/parse"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/table"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestFormatKPI(t *testing.T) {
	tests := []struct {
		name    string
		n       parse.Number
		percent bool
		want    string
	}{
		{"percent", parse.Some(12.345), true, "12.35%"},
		{"percent whole", parse.Some(90), true, "90.00%"},
		{"absolute grouped", parse.Some(1234.6), false, "1,235"},
		{"absolute small", parse.Some(42.2), false, "42"},
		{"absolute millions", parse.Some(1234567), false, "1,234,567"},
		{"missing percent", parse.None, true, Missing},
		{"missing absolute", parse.None, false, Missing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatKPI(tt.n, tt.percent))
		})
	}
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "↑ Improving", TrendLabel(kpi.Improving))
	assert.Equal(t, "↓ Worsening", TrendLabel(kpi.Worsening))
	assert.Equal(t, "→ Stable", TrendLabel(kpi.Stable))
	assert.Equal(t, "80%", FormatRatio(0.8))
	assert.Contains(t, BandLabel(kpi.Low), "Low")
}

func scrapResult(t *testing.T) *analysis.Result {
	t.Helper()
	raw := table.New("scrap.csv", []string{"Data", "Scrap %"}, [][]string{
		{"15/01/2024", "0,05"},
		{"15/02/2024", "0.08"},
		{"15/03/2024", "0.03"},
		{"15/04/2024", "erro"},
		{"15/05/2024", "0.9"},
	})
	res, err := analysis.Run(raw, analysis.Config{KPIColumn: "Scrap %", TimeColumn: "Data"})
	require.NoError(t, err)
	return res
}

func TestRenderSections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, scrapResult(t), Options{}))
	out := buf.String()

	for _, want := range []string{
		"KPI: Scrap %",
		"lower-is-better (fixed for loss metrics)",
		"Executive view",
		"Current KPI",
		"90.00%",
		"Valid KPI",
		"4 of 5 records",
		"High data reliability",
		"rescaled to 0-100",
		"Consolidated data (5 records)",
		"2024-01-15",
		"KPI evolution",
		"2024-12  " + Missing,
		"Recent periods",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRenderMaxRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, scrapResult(t), Options{MaxRows: 2}))
	assert.Contains(t, buf.String(), "3 earlier records not shown")
}

func TestRenderWithoutTime(t *testing.T) {
	raw := table.New("x.csv", []string{"Linha", "Produção"}, [][]string{
		{"L1", "1200"},
		{"L2", "1500,5"},
	})
	res, err := analysis.Run(raw, analysis.Config{KPIColumn: "Produção", Unit: analysis.UnitAbsolute})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, res, Options{HideTable: true}))
	out := buf.String()
	assert.Contains(t, out, "1,350")
	assert.NotContains(t, out, "KPI evolution")
	assert.NotContains(t, out, "Consolidated data")
	assert.NotContains(t, out, "Valid dates")
}

func TestDisplayRowsFormatsValues(t *testing.T) {
	res := scrapResult(t)
	rows := displayRows(res)
	vi := res.Table.Index(analysis.ValueColumn)
	require.GreaterOrEqual(t, vi, 0)
	assert.Equal(t, "5.00%", rows[0][vi])
	assert.Equal(t, Missing, rows[3][vi])
	// The source table is untouched.
	assert.NotEqual(t, "5.00%", res.Table.Rows[0][vi])
}

func TestTruncateAndPad(t *testing.T) {
	assert.Equal(t, "abc…", truncate("abcdefgh", 4))
	assert.Equal(t, "ab  ", pad("ab", 4))
	widths := columnWidths([]string{"a", strings.Repeat("x", 60)}, [][]string{{"hello"}})
	assert.Equal(t, []int{5, maxColWidth}, widths)
}
