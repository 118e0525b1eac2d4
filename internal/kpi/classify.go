// Package kpi implements the KPI rules: directionality, percent scaling,
// target suggestion, conformance, trend and reliability. Every function is
// pure and works on already-parsed series.
package kpi

import (
	"fmt"
	"strings"
)

// Direction says which way a KPI improves.
type Direction string

const (
	HigherIsBetter Direction = "higher-is-better"
	LowerIsBetter  Direction = "lower-is-better"
)

// ParseDirection accepts the canonical names plus the short forms used on
// the command line ("higher", "lower") and the Portuguese labels found in
// plant spreadsheets ("maior", "menor").
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "higher-is-better", "higher", "maior", "maior é melhor", "up":
		return HigherIsBetter, nil
	case "lower-is-better", "lower", "menor", "menor é melhor", "down":
		return LowerIsBetter, nil
	}
	return "", fmt.Errorf("unknown KPI rule %q (expected higher or lower)", s)
}

// lossKeywords mark metrics where a smaller number is always better.
var lossKeywords = []string{"recovery", "perda", "perdas", "refugo", "scrap"}

// Classification is the directionality hint for a column.
type Classification struct {
	Direction Direction `json:"direction"`
	// Fixed is true when the name identifies a loss-type metric; the user
	// cannot override the direction in that case.
	Fixed bool `json:"fixed"`
}

// Classify infers the direction of a KPI from its column name.
func Classify(column string) Classification {
	name := strings.ToLower(column)
	for _, k := range lossKeywords {
		if strings.Contains(name, k) {
			return Classification{Direction: LowerIsBetter, Fixed: true}
		}
	}
	return Classification{Direction: HigherIsBetter}
}

// Resolve picks the effective direction: the fixed hint when it fired, the
// user's choice when given, the suggestion otherwise.
func (c Classification) Resolve(choice Direction) Direction {
	if c.Fixed || choice == "" {
		return c.Direction
	}
	return choice
}

// timeKeywords mark columns offered as time axis candidates.
var timeKeywords = []string{"data", "mês", "mes"}

// TimeCandidates returns the columns whose names look like a date or month.
func TimeCandidates(columns []string) []string {
	var out []string
	for _, c := range columns {
		name := strings.ToLower(c)
		for _, k := range timeKeywords {
			if strings.Contains(name, k) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
