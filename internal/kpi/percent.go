package kpi

import "github.com/Wilian-lab/industrial-kpi-analyzer/internal/parse"

// FractionThreshold is the share of values inside [0, 1] above which a
// percent KPI is taken to be written as fractions (0.85 rather than 85).
const FractionThreshold = 0.7

// NormalizePercent rescales a percent KPI written as fractions to the 0-100
// scale. It returns the new series and whether it was rescaled. The decision
// is made once for the whole series.
func NormalizePercent(s Series) (Series, bool) {
	valid := s.Valid()
	if len(valid) == 0 {
		return s, false
	}

	inUnit := 0
	for _, v := range valid {
		if v >= 0 && v <= 1 {
			inUnit++
		}
	}
	if float64(inUnit)/float64(len(valid)) < FractionThreshold {
		return s, false
	}

	out := make(Series, len(s))
	for i, n := range s {
		if n.Valid {
			out[i] = parse.Some(n.Value * 100)
		}
	}
	return out, true
}
