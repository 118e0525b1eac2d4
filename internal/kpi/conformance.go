package kpi

import "github.com/Wilian-lab/industrial-kpi-analyzer/internal/parse"

// Status is the conformance of one record to the target.
type Status string

const (
	Conforming    Status = "conforming"
	NonConforming Status = "non-conforming"
	NoData        Status = "no-data"
)

// Label is the text shown next to a status in tables and charts.
func (s Status) Label() string {
	switch s {
	case Conforming:
		return "On target"
	case NonConforming:
		return "Off target"
	default:
		return "No data"
	}
}

// Evaluate classifies one value. A value equal to the target always conforms.
func Evaluate(v parse.Number, target float64, d Direction) Status {
	if !v.Valid {
		return NoData
	}
	if d == LowerIsBetter {
		if v.Value <= target {
			return Conforming
		}
		return NonConforming
	}
	if v.Value >= target {
		return Conforming
	}
	return NonConforming
}

// EvaluateSeries classifies every row of a series.
func EvaluateSeries(s Series, target float64, d Direction) []Status {
	out := make([]Status, len(s))
	for i, v := range s {
		out[i] = Evaluate(v, target, d)
	}
	return out
}

// CountStatus counts the rows with the given status.
func CountStatus(statuses []Status, want Status) int {
	n := 0
	for _, s := range statuses {
		if s == want {
			n++
		}
	}
	return n
}
