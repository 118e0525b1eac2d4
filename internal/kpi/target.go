package kpi

import (
	"github.com/montanaflynn/stats"
)

// SuggestTarget proposes a default target: the worst value seen so far for
// lower-is-better KPIs, the mean for higher-is-better ones, 0 without data.
func SuggestTarget(s Series, d Direction) float64 {
	valid := s.Valid()
	if len(valid) == 0 {
		return 0
	}

	var (
		v   float64
		err error
	)
	if d == LowerIsBetter {
		v, err = stats.Max(valid)
	} else {
		v, err = stats.Mean(valid)
	}
	if err != nil {
		return 0
	}
	return v
}
