package analyze

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/analysis"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/config"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/formats/delimited"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/ingest"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/output"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/profile"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/progress"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/table"
)

// Options are the analysis selections shared by every command that runs
// the pipeline over a file.
type Options struct {
	KPI     string
	Time    string
	Rule    string
	Unit    string
	Target  float64
	Sheet   string
	Profile string
	Export  string
	MaxRows int

	targetSet bool
	quiet     bool
}

// AddFlags registers the selection flags on cmd.
func (o *Options) AddFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.KPI, "kpi", "", "KPI column (default: first numeric column)")
	f.StringVar(&o.Time, "time", "", `Time column, or "none" (default: none)`)
	f.StringVar(&o.Rule, "rule", "", "KPI rule: higher | lower (loss metrics are always lower)")
	f.StringVar(&o.Unit, "unit", "", "KPI unit: percent | absolute (default from config)")
	f.Float64Var(&o.Target, "target", 0, "Target value (default: suggested from the data)")
	f.StringVar(&o.Sheet, "sheet", "", "Worksheet to read from a workbook (default: first)")
	f.StringVarP(&o.Profile, "profile", "p", "", "YAML analysis profile")
	f.StringVarP(&o.Export, "export", "o", "", "Write the analysed data and summary to an .xlsx file")
	f.IntVar(&o.MaxRows, "max-rows", 30, "Data rows shown in the dashboard (0 = all)")
	o.registerCompletions(cmd)
}

// Complete records which optional flags were set.
func (o *Options) Complete(cmd *cobra.Command) {
	o.targetSet = cmd.Flags().Changed("target")
	o.quiet, _ = cmd.Flags().GetBool("json")
}

// selection merges the profile file, if any, with the flags. Flags win.
func (o *Options) selection() (profile.Profile, error) {
	var base profile.Profile
	if o.Profile != "" {
		p, err := profile.Load(o.Profile)
		if err != nil {
			return profile.Profile{}, fmt.Errorf("%w: %v", output.ErrUsage, err)
		}
		base = *p
	}
	flags := profile.Profile{
		KPI:   o.KPI,
		Time:  o.Time,
		Rule:  o.Rule,
		Unit:  o.Unit,
		Sheet: o.Sheet,
	}
	if o.targetSet {
		t := o.Target
		flags.Target = &t
	}
	return base.Merge(flags), nil
}

// Prepared is a loaded table plus the configuration to analyse it with.
type Prepared struct {
	Path   string
	Table  *table.Table
	Config analysis.Config
	// DefaultedKPI is true when no KPI was chosen and one was picked.
	DefaultedKPI bool
}

// Prepare loads path and resolves the analysis configuration.
func (o *Options) Prepare(path string, cfg *config.Config) (*Prepared, error) {
	sel, err := o.selection()
	if err != nil {
		return nil, err
	}
	if sel.Unit == "" {
		sel.Unit = cfg.Analysis.Unit
	}

	enc, err := delimited.ParseEncoding(cfg.Ingest.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: ingest.encoding: %v", output.ErrUsage, err)
	}
	spin := progress.NewSpinner("Reading " + filepath.Base(path))
	spin.Enabled = spin.Enabled && !o.quiet
	spin.Start()
	t, err := ingest.LoadFile(path, ingest.Options{Sheet: sel.Sheet, Encoding: enc})
	spin.Stop("")
	if err != nil {
		return nil, err
	}

	p := &Prepared{Path: path, Table: t}
	if sel.KPI == "" {
		infos, err := analysis.Columns(t)
		if err != nil {
			return nil, err
		}
		def, ok := analysis.DefaultKPI(infos)
		if !ok {
			return nil, fmt.Errorf("%w: no column with numeric values, choose one with --kpi", output.ErrUsage)
		}
		sel.KPI = def
		p.DefaultedKPI = true
		slog.Debug("KPI column defaulted", "column", def)
	}

	if p.Config, err = sel.Config(); err != nil {
		return nil, fmt.Errorf("%w: %v", output.ErrUsage, err)
	}
	return p, nil
}
