// Package analysis runs the KPI pipeline over one table: sanitize, parse,
// scale, suggest a target, classify every record and aggregate the result
// into the figures a dashboard shows.
//
// Run is a pure function of its inputs. Callers re-run it whenever the table
// or any selection changes; nothing is updated incrementally.
package analysis

import (
	"fmt"
	"strings"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/kpi"
)

// Unit is how the KPI is expressed.
type Unit string

const (
	UnitPercent  Unit = "percent"
	UnitAbsolute Unit = "absolute"
)

// ParseUnit accepts "percent", "%", "absolute" and a few aliases.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "percent", "percentage", "pct", "%", "percentual":
		return UnitPercent, nil
	case "absolute", "abs", "value", "valor", "valor absoluto":
		return UnitAbsolute, nil
	}
	return "", fmt.Errorf("unknown KPI unit %q (expected percent or absolute)", s)
}

// NoTime is the explicit "no time column" selection.
const NoTime = "none"

// Config is the user's selection for one analysis run.
type Config struct {
	KPIColumn string `json:"kpi" yaml:"kpi"`
	// TimeColumn is empty or NoTime when no time axis is used.
	TimeColumn string        `json:"time,omitempty" yaml:"time,omitempty"`
	Direction  kpi.Direction `json:"rule,omitempty" yaml:"rule,omitempty"`
	Unit       Unit          `json:"unit,omitempty" yaml:"unit,omitempty"`
	// Target overrides the suggested target when set.
	Target *float64 `json:"target,omitempty" yaml:"target,omitempty"`
}

// HasTime reports whether a time column is selected.
func (c Config) HasTime() bool {
	return c.TimeColumn != "" && !strings.EqualFold(c.TimeColumn, NoTime)
}

// Percent reports whether the KPI is percent-typed. Percent is the default.
func (c Config) Percent() bool {
	return c.Unit != UnitAbsolute
}
