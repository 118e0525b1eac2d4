package kpi

import (
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/parse"
)

// Series is a KPI column after parsing, aligned with the table rows.
type Series []parse.Number

// ParseSeries runs the value parser over a column.
func ParseSeries(cells []string) Series {
	return Series(parse.Values(cells))
}

// Valid returns the values that parsed, in row order.
func (s Series) Valid() []float64 {
	out := make([]float64, 0, len(s))
	for _, n := range s {
		if n.Valid {
			out = append(out, n.Value)
		}
	}
	return out
}

// ValidCount returns how many rows hold a value.
func (s Series) ValidCount() int {
	n := 0
	for _, v := range s {
		if v.Valid {
			n++
		}
	}
	return n
}

// Strings renders each value as stored in the derived KPI column.
func (s Series) Strings() []string {
	out := make([]string, len(s))
	for i, n := range s {
		out[i] = n.String()
	}
	return out
}

// Eligible reports whether a column can serve as a KPI: at least one of its
// cells parses as a number.
func Eligible(cells []string) bool {
	for _, c := range cells {
		if parse.Value(c).Valid {
			return true
		}
	}
	return false
}
