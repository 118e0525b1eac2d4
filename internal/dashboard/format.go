package dashboard

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/kpi"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/parse"
)

// Missing is shown in place of an absent value.
const Missing = "—"

var printer = message.NewPrinter(language.English)

// FormatKPI renders a KPI value: two decimals and a percent sign for
// percent KPIs, a rounded figure with thousands separators otherwise.
func FormatKPI(n parse.Number, percent bool) string {
	if !n.Valid {
		return Missing
	}
	return FormatValue(n.Value, percent)
}

// FormatValue is FormatKPI for a value known to be present.
func FormatValue(v float64, percent bool) string {
	if percent {
		return fmt.Sprintf("%.2f%%", v)
	}
	return printer.Sprintf("%.0f", v)
}

// FormatRatio renders a 0..1 ratio as a whole percentage.
func FormatRatio(r float64) string {
	return fmt.Sprintf("%.0f%%", r*100)
}

// TrendLabel is the arrow-prefixed trend text.
func TrendLabel(t kpi.Trend) string {
	switch t {
	case kpi.Improving:
		return "↑ Improving"
	case kpi.Worsening:
		return "↓ Worsening"
	default:
		return "→ Stable"
	}
}

// BandLabel describes a reliability band.
func BandLabel(b kpi.Band) string {
	switch b {
	case kpi.High:
		return "High data reliability"
	case kpi.Moderate:
		return "Moderate data reliability"
	default:
		return "Low data reliability"
	}
}
