package kpi

// Band groups a reliability ratio for presentation.
type Band string

const (
	High     Band = "high"
	Moderate Band = "moderate"
	Low      Band = "low"
)

// Reliability is the share of rows with a valid KPI value.
func Reliability(valid, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(valid) / float64(total)
}

// BandFor maps a reliability ratio to its band.
func BandFor(ratio float64) Band {
	switch {
	case ratio >= 0.8:
		return High
	case ratio >= 0.5:
		return Moderate
	default:
		return Low
	}
}
