// Package report turns an analysis result into an Excel workbook with the
// analysed data, a summary of the headline figures and the monthly series.
package report

import (
	"fmt"
	"strconv"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/analysis"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/dashboard"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/formats/xlsx"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/parse"
)

// Sheet names of the exported workbook.
const (
	DataSheet    = "Data"
	SummarySheet = "Summary"
	MonthlySheet = "Monthly"
	RecentSheet  = "Recent"
)

// Summary returns the headline figures as ordered label/value pairs.
func Summary(res *analysis.Result) [][2]string {
	m, d := res.Metrics, res.Diagnostics
	timeCol := analysis.NoTime
	if res.TimeColumn != "" {
		timeCol = res.TimeColumn
	}
	unit := analysis.UnitAbsolute
	if res.Percent {
		unit = analysis.UnitPercent
	}
	return [][2]string{
		{"KPI column", res.KPIColumn},
		{"Time column", timeCol},
		{"Unit", string(unit)},
		{"Rule", string(res.Direction)},
		{"Suggested target", number(parse.Some(res.Suggested))},
		{"Target", number(parse.Some(res.Target))},
		{"Current", number(m.Current)},
		{"Operational (last 5)", number(m.Operational)},
		{"Mean", number(m.Mean)},
		{"Minimum", number(m.Min)},
		{"Records off target", strconv.Itoa(m.NonConforming)},
		{"Last status", m.LastStatus.Label()},
		{"Trend", dashboard.TrendLabel(m.Trend)},
		{"Total records", strconv.Itoa(d.TotalRows)},
		{"Valid KPI records", strconv.Itoa(d.ValidKPI)},
		{"Reliability", dashboard.FormatRatio(d.Reliability)},
		{"Valid dates", strconv.Itoa(d.ValidDates)},
	}
}

// Workbook builds the export workbook. The monthly and recent sheets are
// only present when the result has a time axis.
func Workbook(res *analysis.Result) *xlsx.Workbook {
	wb := &xlsx.Workbook{}
	wb.Sheets = append(wb.Sheets, xlsx.Sheet{Name: DataSheet, Rows: res.Table.Records()})

	summary := [][]string{{"Indicator", "Value"}}
	for _, kv := range Summary(res) {
		summary = append(summary, []string{kv[0], kv[1]})
	}
	for _, n := range res.Notices {
		summary = append(summary, []string{"Notice", n})
	}
	wb.Sheets = append(wb.Sheets, xlsx.Sheet{Name: SummarySheet, Rows: summary})

	if len(res.Monthly) > 0 {
		rows := [][]string{{"Month", res.KPIColumn, "Target"}}
		for _, p := range res.Monthly {
			rows = append(rows, []string{p.Month.Format("2006-01"), number(p.Value), number(parse.Some(res.Target))})
		}
		wb.Sheets = append(wb.Sheets, xlsx.Sheet{Name: MonthlySheet, Rows: rows})
	}
	if len(res.Recent) > 0 {
		rows := [][]string{{"Date", res.KPIColumn, "Status"}}
		for _, p := range res.Recent {
			rows = append(rows, []string{p.Time.Format("2006-01-02"), number(parse.Some(p.Value)), p.Status.Label()})
		}
		wb.Sheets = append(wb.Sheets, xlsx.Sheet{Name: RecentSheet, Rows: rows})
	}
	return wb
}

// Export writes the workbook for res to path.
func Export(res *analysis.Result, path string) error {
	if err := xlsx.WriteFile(Workbook(res), path); err != nil {
		return fmt.Errorf("could not export analysis: %w", err)
	}
	return nil
}

// number keeps full precision for spreadsheets; presentation rounding is
// left to the reader.
func number(n parse.Number) string {
	return n.String()
}
