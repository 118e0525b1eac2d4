package analysis

import (
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/kpi"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/table"
)

// ColumnInfo describes what a sanitized column can be used for.
type ColumnInfo struct {
	Name          string             `json:"name"`
	KPIEligible   bool               `json:"kpi_eligible"`
	TimeCandidate bool               `json:"time_candidate"`
	Hint          kpi.Classification `json:"hint"`
	ValidValues   int                `json:"valid_values"`
}

// Columns sanitizes the table and reports, for each remaining column,
// whether it can be chosen as a KPI or offered as a time axis.
func Columns(raw *table.Table) ([]ColumnInfo, error) {
	clean, err := table.Sanitize(raw)
	if err != nil {
		return nil, err
	}
	if len(clean.Columns) == 0 {
		return nil, &table.ConfigError{Kind: table.ErrNoUsableColumns}
	}

	timeCols := make(map[string]bool)
	for _, c := range kpi.TimeCandidates(clean.Columns) {
		timeCols[c] = true
	}

	infos := make([]ColumnInfo, 0, len(clean.Columns))
	for _, name := range clean.Columns {
		cells, err := clean.Column(name)
		if err != nil {
			return nil, err
		}
		valid := kpi.ParseSeries(cells).ValidCount()
		infos = append(infos, ColumnInfo{
			Name:          name,
			KPIEligible:   kpi.Eligible(cells),
			TimeCandidate: timeCols[name],
			Hint:          kpi.Classify(name),
			ValidValues:   valid,
		})
	}
	return infos, nil
}

// DefaultKPI picks the first KPI-eligible column that is not a time
// candidate, falling back to the first eligible column.
func DefaultKPI(infos []ColumnInfo) (string, bool) {
	fallback := ""
	for _, c := range infos {
		if !c.KPIEligible {
			continue
		}
		if !c.TimeCandidate {
			return c.Name, true
		}
		if fallback == "" {
			fallback = c.Name
		}
	}
	return fallback, fallback != ""
}
