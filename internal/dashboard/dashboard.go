// Package dashboard renders an analysis result as a colored terminal report.
package dashboard

import (
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/analysis"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/kpi"
)

// Options controls which sections are rendered.
type Options struct {
	// MaxRows caps the data table; 0 shows every row.
	MaxRows int
	// HideTable skips the data table section.
	HideTable bool
	// BarWidth is the width of the longest monthly bar.
	BarWidth int
}

const (
	maxColWidth     = 40
	minColWidth     = 3
	defaultBarWidth = 40
)

var (
	headerStyle = color.New(color.Bold, color.FgCyan)
	labelStyle  = color.New(color.Bold)
	dim         = color.New(color.FgHiBlack)
	good        = color.New(color.FgGreen)
	bad         = color.New(color.FgRed)
	warn        = color.New(color.FgYellow)
	info        = color.New(color.FgBlue)
)

// Render writes the full dashboard for res to w.
func Render(w io.Writer, res *analysis.Result, opts Options) error {
	if opts.BarWidth <= 0 {
		opts.BarWidth = defaultBarWidth
	}
	r := &renderer{w: w, res: res, opts: opts}

	r.title()
	r.executive()
	r.diagnostics()
	r.additional()
	r.notices()
	if !opts.HideTable {
		r.table()
	}
	r.chart()
	r.recent()
	return r.err
}

type renderer struct {
	w    io.Writer
	res  *analysis.Result
	opts Options
	err  error
}

func (r *renderer) printf(c *color.Color, format string, args ...any) {
	if r.err != nil {
		return
	}
	if c == nil {
		_, r.err = fmt.Fprintf(r.w, format, args...)
		return
	}
	_, r.err = c.Fprintf(r.w, format, args...)
}

func (r *renderer) section(name string) {
	r.printf(nil, "\n")
	r.printf(headerStyle, "%s\n", name)
}

func (r *renderer) kv(label, value string, c *color.Color) {
	r.printf(labelStyle, "  %-22s", label)
	r.printf(c, "%s\n", value)
}

func (r *renderer) title() {
	res := r.res
	unit := "absolute"
	if res.Percent {
		unit = "percent"
	}
	rule := string(res.Direction)
	if res.DirectionFixed {
		rule += " (fixed for loss metrics)"
	}
	r.printf(headerStyle, "KPI: %s\n", res.KPIColumn)
	r.printf(dim, "  unit %s, %s", unit, rule)
	if res.TimeColumn != "" {
		r.printf(dim, ", time axis %q", res.TimeColumn)
	}
	r.printf(nil, "\n")
}

func (r *renderer) executive() {
	res, m := r.res, r.res.Metrics
	r.section("Executive view")

	statusColor := bad
	if m.LastStatus == kpi.Conforming {
		statusColor = good
	}
	trendColor := warn
	switch m.Trend {
	case kpi.Improving:
		trendColor = good
	case kpi.Worsening:
		trendColor = bad
	}

	r.kv("Current KPI", FormatKPI(m.Current, res.Percent), statusColor)
	r.kv("Target", FormatValue(res.Target, res.Percent), info)
	r.kv("Status", m.LastStatus.Label(), statusColor)
	r.kv("Trend", TrendLabel(m.Trend), trendColor)
}

func (r *renderer) diagnostics() {
	d := r.res.Diagnostics
	r.section("Data diagnostics")
	r.kv("Valid KPI", fmt.Sprintf("%d of %d records", d.ValidKPI, d.TotalRows), nil)
	r.kv("KPI reliability", FormatRatio(d.Reliability), nil)

	c := good
	switch d.Band {
	case kpi.Moderate:
		c = warn
	case kpi.Low:
		c = bad
	}
	r.printf(c, "  %s\n", BandLabel(d.Band))
	if r.res.TimeColumn != "" {
		r.kv("Valid dates", fmt.Sprintf("%d", d.ValidDates), nil)
	}
}

func (r *renderer) additional() {
	res, m := r.res, r.res.Metrics
	r.section("Indicators")
	target := FormatValue(res.Target, res.Percent)
	if res.Target != res.Suggested {
		target += fmt.Sprintf(" (suggested %s)", FormatValue(res.Suggested, res.Percent))
	}
	r.kv("Target", target, nil)
	r.kv("Operational (last 5)", FormatKPI(m.Operational, res.Percent), nil)
	r.kv("Mean", FormatKPI(m.Mean, res.Percent), nil)
	r.kv("Minimum", FormatKPI(m.Min, res.Percent), nil)
	r.kv("Records off target", fmt.Sprintf("%d", m.NonConforming), nil)
}

func (r *renderer) notices() {
	if len(r.res.Notices) == 0 {
		return
	}
	r.printf(nil, "\n")
	for _, n := range r.res.Notices {
		r.printf(warn, "  ! %s\n", n)
	}
}

func (r *renderer) table() {
	t := r.res.Table
	if t == nil {
		return
	}
	r.section(fmt.Sprintf("Consolidated data (%d records)", t.Len()))
	if t.Len() == 0 {
		r.printf(dim, "  (empty)\n")
		return
	}

	rows := displayRows(r.res)
	shown := rows
	if r.opts.MaxRows > 0 && len(rows) > r.opts.MaxRows {
		shown = rows[len(rows)-r.opts.MaxRows:]
	}

	widths := columnWidths(t.Columns, shown)
	r.row(t.Columns, widths, labelStyle)
	r.printf(dim, "  ")
	for j, w := range widths {
		if j > 0 {
			r.printf(dim, "+-")
		}
		r.printf(dim, "%s", strings.Repeat("-", w+1))
	}
	r.printf(nil, "\n")

	statusIdx := t.Index(analysis.StatusColumn)
	for _, row := range shown {
		var c *color.Color
		if statusIdx >= 0 && statusIdx < len(row) {
			switch row[statusIdx] {
			case kpi.NonConforming.Label():
				c = bad
			case kpi.NoData.Label():
				c = dim
			}
		}
		r.row(row, widths, c)
	}
	if len(shown) < len(rows) {
		r.printf(dim, "  ... %d earlier records not shown\n", len(rows)-len(shown))
	}
}

func (r *renderer) row(cells []string, widths []int, c *color.Color) {
	r.printf(nil, "  ")
	for j, w := range widths {
		if j > 0 {
			r.printf(dim, "| ")
		}
		cell := ""
		if j < len(cells) {
			cell = truncate(cells[j], w)
		}
		r.printf(c, "%s", pad(cell, w+1))
	}
	r.printf(nil, "\n")
}

func (r *renderer) chart() {
	points := r.res.Monthly
	if len(points) == 0 {
		return
	}
	r.section("KPI evolution")

	top := 0.0
	for _, p := range points {
		if p.Value.Valid {
			top = math.Max(top, math.Abs(p.Value.Value))
		}
	}

	for _, p := range points {
		r.printf(dim, "  %s  ", p.Month.Format("2006-01"))
		if !p.Value.Valid {
			r.printf(dim, "%s\n", Missing)
			continue
		}
		n := 0
		if top > 0 {
			n = int(math.Round(math.Abs(p.Value.Value) / top * float64(r.opts.BarWidth)))
		}
		c := good
		if kpi.Evaluate(p.Value, r.res.Target, r.res.Direction) != kpi.Conforming {
			c = bad
		}
		r.printf(c, "%s", strings.Repeat("█", n))
		r.printf(nil, " %s\n", FormatKPI(p.Value, r.res.Percent))
	}
	r.printf(info, "  target %s\n", FormatValue(r.res.Target, r.res.Percent))
}

func (r *renderer) recent() {
	if len(r.res.Recent) == 0 {
		return
	}
	r.section("Recent periods")
	for _, p := range r.res.Recent {
		c := bad
		if p.Status == kpi.Conforming {
			c = good
		}
		r.printf(nil, "  %s  %12s  ", p.Time.Format("2006-01-02"), FormatValue(p.Value, r.res.Percent))
		r.printf(c, "%s\n", p.Status.Label())
	}
}

// displayRows returns the table rows with the KPI value column formatted
// for reading and the time column shown as ISO dates when it parsed.
func displayRows(res *analysis.Result) [][]string {
	t := res.Table
	valueIdx := t.Index(analysis.ValueColumn)
	timeIdx := -1
	if res.TimeColumn != "" {
		timeIdx = t.Index(res.TimeColumn)
	}

	rows := make([][]string, len(t.Rows))
	for i, src := range t.Rows {
		row := append([]string(nil), src...)
		if valueIdx >= 0 && i < len(res.Series) {
			row[valueIdx] = FormatKPI(res.Series[i], res.Percent)
		}
		if timeIdx >= 0 && i < len(res.Dates) && res.Dates[i].Valid {
			row[timeIdx] = res.Dates[i].String()
		}
		rows[i] = row
	}
	return rows
}

func columnWidths(header []string, rows [][]string) []int {
	widths := make([]int, len(header))
	for j, h := range header {
		widths[j] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for j, cell := range row {
			if j < len(widths) {
				widths[j] = max(widths[j], utf8.RuneCountInString(cell))
			}
		}
	}
	for i := range widths {
		widths[i] = min(max(widths[i], minColWidth), maxColWidth)
	}
	return widths
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-1]) + "…"
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
