// Package profile loads saved analysis selections from YAML files so a
// recurring report can be re-run without repeating every flag.
package profile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/analysis"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/kpi"
)

// Profile is a saved set of analysis selections.
type Profile struct {
	KPI    string   `yaml:"kpi" json:"kpi"`
	Time   string   `yaml:"time,omitempty" json:"time,omitempty"`
	Rule   string   `yaml:"rule,omitempty" json:"rule,omitempty"`
	Unit   string   `yaml:"unit,omitempty" json:"unit,omitempty"`
	Target *float64 `yaml:"target,omitempty" json:"target,omitempty"`
	Sheet  string   `yaml:"sheet,omitempty" json:"sheet,omitempty"`
}

// Load reads a profile from path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read profile at %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid profile at %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a YAML profile.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if issues := p.Validate(); len(issues) > 0 {
		return nil, fmt.Errorf("%s", strings.Join(issues, "; "))
	}
	return &p, nil
}

// Validate returns the problems found in the profile.
func (p *Profile) Validate() []string {
	var issues []string
	if strings.TrimSpace(p.KPI) == "" {
		issues = append(issues, "kpi is required")
	}
	if p.Rule != "" {
		if _, err := kpi.ParseDirection(p.Rule); err != nil {
			issues = append(issues, err.Error())
		}
	}
	if p.Unit != "" {
		if _, err := analysis.ParseUnit(p.Unit); err != nil {
			issues = append(issues, err.Error())
		}
	}
	if p.Time != "" && p.Time == p.KPI {
		issues = append(issues, "kpi and time must be different columns")
	}
	return issues
}

// Config converts the profile into an analysis configuration.
func (p *Profile) Config() (analysis.Config, error) {
	cfg := analysis.Config{
		KPIColumn:  p.KPI,
		TimeColumn: p.Time,
	}
	if p.Rule != "" {
		d, err := kpi.ParseDirection(p.Rule)
		if err != nil {
			return analysis.Config{}, err
		}
		cfg.Direction = d
	}
	if p.Unit != "" {
		u, err := analysis.ParseUnit(p.Unit)
		if err != nil {
			return analysis.Config{}, err
		}
		cfg.Unit = u
	}
	if p.Target != nil {
		t := *p.Target
		cfg.Target = &t
	}
	return cfg, nil
}

// Merge overlays non-empty fields of o onto p and returns the result.
func (p Profile) Merge(o Profile) Profile {
	if o.KPI != "" {
		p.KPI = o.KPI
	}
	if o.Time != "" {
		p.Time = o.Time
	}
	if o.Rule != "" {
		p.Rule = o.Rule
	}
	if o.Unit != "" {
		p.Unit = o.Unit
	}
	if o.Target != nil {
		p.Target = o.Target
	}
	if o.Sheet != "" {
		p.Sheet = o.Sheet
	}
	return p
}

// Template returns a commented YAML profile for the given KPI column.
func Template(kpiColumn, timeColumn string) string {
	if timeColumn == "" {
		timeColumn = analysis.NoTime
	}
	return fmt.Sprintf(`# KPI analysis profile
# Run with: kpi analyze <file> --profile <this file>

kpi: %q
time: %q      # "none" disables the time axis
rule: higher     # higher | lower (ignored for loss metrics)
unit: percent    # percent | absolute
# target: 95     # omit to use the suggested target
# sheet: ""      # workbook sheet, first sheet when empty
`, kpiColumn, timeColumn)
}
