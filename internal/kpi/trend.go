package kpi

import "github.com/montanaflynn/stats"

// Trend labels the recent movement of a KPI.
type Trend string

const (
	Improving Trend = "improving"
	Worsening Trend = "worsening"
	Stable    Trend = "stable"
)

// trendWindow is the size of the recent and prior windows.
const trendWindow = 3

// MinTrendPoints is the number of valid values needed to call a trend.
const MinTrendPoints = 2 * trendWindow

// EstimateTrend compares the mean of the last three values with the mean of
// the three before them. values must be valid KPI values in chronological
// order. With fewer than six values the series is reported as stable.
func EstimateTrend(values []float64) Trend {
	if len(values) < MinTrendPoints {
		return Stable
	}

	n := len(values)
	recent, err := stats.Mean(values[n-trendWindow:])
	if err != nil {
		return Stable
	}
	prior, err := stats.Mean(values[n-2*trendWindow : n-trendWindow])
	if err != nil {
		return Stable
	}

	switch {
	case recent > prior:
		return Improving
	case recent < prior:
		return Worsening
	default:
		return Stable
	}
}
