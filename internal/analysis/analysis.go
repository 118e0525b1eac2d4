package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/kpi"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/parse"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/table"
)

// Names of the derived columns appended to the analysed table.
const (
	ValueColumn  = "KPI Value"
	StatusColumn = "KPI Status"
)

const (
	operationalWindow = 5
	operationalMin    = 3
	recentPeriods     = 6
)

// Diagnostics summarises the quality of the KPI and time columns.
type Diagnostics struct {
	TotalRows   int      `json:"total_rows"`
	ValidKPI    int      `json:"valid_kpi"`
	InvalidKPI  int      `json:"invalid_kpi"`
	Reliability float64  `json:"reliability"`
	Band        kpi.Band `json:"band"`
	ValidDates  int      `json:"valid_dates"`
}

// Metrics are the headline figures of a run.
type Metrics struct {
	// Current is the latest valid value, chronologically when a time column is set.
	Current parse.Number `json:"current"`
	// Operational is the mean of the last five valid values; it needs at least three.
	Operational   parse.Number `json:"operational"`
	Mean          parse.Number `json:"mean"`
	Min           parse.Number `json:"min"`
	NonConforming int          `json:"non_conforming"`
	Trend         kpi.Trend    `json:"trend"`
	// LastStatus is the status of the last record of the table.
	LastStatus kpi.Status `json:"last_status"`
}

// Point is one month of the chronological series. Value is missing for
// months without data.
type Point struct {
	Month time.Time    `json:"month"`
	Value parse.Number `json:"value"`
}

// Period is one record of the recent comparison.
type Period struct {
	Time   time.Time  `json:"time"`
	Value  float64    `json:"value"`
	Status kpi.Status `json:"status"`
}

// Result is everything derived from one run.
type Result struct {
	Table          *table.Table  `json:"table"`
	KPIColumn      string        `json:"kpi_column"`
	TimeColumn     string        `json:"time_column,omitempty"`
	Direction      kpi.Direction `json:"direction"`
	DirectionFixed bool          `json:"direction_fixed"`
	Percent        bool          `json:"percent"`
	Rescaled       bool          `json:"rescaled"`
	Suggested      float64       `json:"suggested_target"`
	Target         float64       `json:"target"`

	Series   kpi.Series   `json:"-"`
	Statuses []kpi.Status `json:"-"`
	Dates    []parse.Date `json:"-"`

	Diagnostics Diagnostics `json:"diagnostics"`
	Metrics     Metrics     `json:"metrics"`
	Monthly     []Point     `json:"monthly"`
	Recent      []Period    `json:"recent"`
	Notices     []string    `json:"notices,omitempty"`
}

// Run executes the pipeline over a raw table.
func Run(raw *table.Table, cfg Config) (*Result, error) {
	clean, err := table.Sanitize(raw)
	if err != nil {
		return nil, err
	}
	if len(clean.Columns) == 0 {
		return nil, &table.ConfigError{Kind: table.ErrNoUsableColumns}
	}
	if cfg.KPIColumn == "" {
		return nil, fmt.Errorf("no KPI column selected")
	}
	if cfg.HasTime() && cfg.TimeColumn == cfg.KPIColumn {
		return nil, &table.ConfigError{Kind: table.ErrSameColumn, Names: []string{cfg.KPIColumn}}
	}

	cells, err := clean.Column(cfg.KPIColumn)
	if err != nil {
		return nil, err
	}
	var timeCells []string
	if cfg.HasTime() {
		if timeCells, err = clean.Column(cfg.TimeColumn); err != nil {
			return nil, err
		}
	}

	class := kpi.Classify(cfg.KPIColumn)
	res := &Result{
		KPIColumn:      cfg.KPIColumn,
		Direction:      class.Resolve(cfg.Direction),
		DirectionFixed: class.Fixed,
		Percent:        cfg.Percent(),
	}
	if cfg.HasTime() {
		res.TimeColumn = cfg.TimeColumn
	}

	series := kpi.ParseSeries(cells)
	if res.Percent {
		series, res.Rescaled = kpi.NormalizePercent(series)
		if res.Rescaled {
			res.Notices = append(res.Notices, "Percent KPI detected as fractions (0.x); rescaled to 0-100.")
		}
	}
	res.Series = series

	res.Suggested = kpi.SuggestTarget(series, res.Direction)
	res.Target = res.Suggested
	if cfg.Target != nil {
		res.Target = *cfg.Target
	}
	res.Statuses = kpi.EvaluateSeries(series, res.Target, res.Direction)

	statusLabels := make([]string, len(res.Statuses))
	for i, s := range res.Statuses {
		statusLabels[i] = s.Label()
	}
	out, err := clean.WithColumn(ValueColumn, series.Strings())
	if err != nil {
		return nil, err
	}
	if out, err = out.WithColumn(StatusColumn, statusLabels); err != nil {
		return nil, err
	}
	res.Table = table.DropEmptyNotes(out)

	if cfg.HasTime() {
		res.Dates = parse.Dates(timeCells)
	}

	order := chronological(res.Dates, len(series), cfg.HasTime())
	res.Diagnostics = diagnose(series, res.Dates)
	res.Metrics = headline(series, res.Statuses, order)
	if cfg.HasTime() {
		res.Monthly = monthly(series, res.Dates, order)
		res.Recent = recent(series, res.Dates, order, res.Target, res.Direction)
	}
	res.Notices = append(res.Notices, notices(res, cfg)...)

	return res, nil
}

// chronological returns the row indexes in the order used for time-based
// aggregates. With a time column, rows without a date or dated before the
// epoch are left out and the rest are sorted by date (stable, so rows sharing
// a date keep their table order). Without one, the table order is used.
func chronological(dates []parse.Date, rows int, hasTime bool) []int {
	var idx []int
	if !hasTime {
		idx = make([]int, rows)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	for i, d := range dates {
		if d.Valid && !d.Time.Before(parse.Epoch) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return dates[idx[a]].Time.Before(dates[idx[b]].Time)
	})
	return idx
}

func diagnose(series kpi.Series, dates []parse.Date) Diagnostics {
	d := Diagnostics{
		TotalRows: len(series),
		ValidKPI:  series.ValidCount(),
	}
	d.InvalidKPI = d.TotalRows - d.ValidKPI
	d.Reliability = kpi.Reliability(d.ValidKPI, d.TotalRows)
	d.Band = kpi.BandFor(d.Reliability)
	for _, dt := range dates {
		if dt.Valid {
			d.ValidDates++
		}
	}
	return d
}

func headline(series kpi.Series, statuses []kpi.Status, order []int) Metrics {
	var values []float64
	for _, i := range order {
		if series[i].Valid {
			values = append(values, series[i].Value)
		}
	}

	m := Metrics{
		NonConforming: kpi.CountStatus(statuses, kpi.NonConforming),
		Trend:         kpi.EstimateTrend(values),
		LastStatus:    kpi.NoData,
	}
	if len(statuses) > 0 {
		m.LastStatus = statuses[len(statuses)-1]
	}
	if len(values) == 0 {
		return m
	}

	m.Current = parse.Some(values[len(values)-1])

	last := values
	if len(last) > operationalWindow {
		last = last[len(last)-operationalWindow:]
	}
	if len(last) >= operationalMin {
		if v, err := stats.Mean(last); err == nil {
			m.Operational = parse.Some(v)
		}
	}
	if v, err := stats.Mean(values); err == nil {
		m.Mean = parse.Some(v)
	}
	if v, err := stats.Min(values); err == nil {
		m.Min = parse.Some(v)
	}
	return m
}

// monthly lays the dated values on a calendar-month grid running from the
// month of the earliest record through December of the latest record's year.
// When several records fall in one month the chronologically last one wins.
func monthly(series kpi.Series, dates []parse.Date, order []int) []Point {
	byMonth := make(map[time.Time]float64)
	var first, last time.Time
	found := false
	for _, i := range order {
		if !series[i].Valid {
			continue
		}
		m := monthStart(dates[i].Time)
		byMonth[m] = series[i].Value
		if !found {
			first = m
			found = true
		}
		last = m
	}
	if !found {
		return nil
	}

	end := time.Date(last.Year(), time.December, 1, 0, 0, 0, 0, time.UTC)
	var points []Point
	for m := first; !m.After(end); m = m.AddDate(0, 1, 0) {
		p := Point{Month: m}
		if v, ok := byMonth[m]; ok {
			p.Value = parse.Some(v)
		}
		points = append(points, p)
	}
	return points
}

func recent(series kpi.Series, dates []parse.Date, order []int, target float64, d kpi.Direction) []Period {
	var periods []Period
	for _, i := range order {
		if !series[i].Valid {
			continue
		}
		periods = append(periods, Period{
			Time:   dates[i].Time,
			Value:  series[i].Value,
			Status: kpi.Evaluate(series[i], target, d),
		})
	}
	if len(periods) > recentPeriods {
		periods = periods[len(periods)-recentPeriods:]
	}
	return periods
}

func notices(res *Result, cfg Config) []string {
	var out []string
	if n := res.Diagnostics.InvalidKPI; n > 0 {
		out = append(out, fmt.Sprintf("%d KPI records were ignored because of invalid data.", n))
	}
	if !cfg.HasTime() {
		return out
	}
	if res.Diagnostics.ValidDates == 0 {
		out = append(out, "No valid dates detected; the time chart is disabled.")
	} else if len(res.Monthly) == 0 {
		out = append(out, "Not enough dated data to build the time chart.")
	}
	if len(res.Recent) == 0 {
		out = append(out, "Not enough data for the recent-period comparison.")
	}
	return out
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
