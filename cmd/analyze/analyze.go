// Package analyze provides the "kpi analyze" command.
package analyze

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/analysis"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/config"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/dashboard"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/output"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/report"
)

// NewCommand returns the analyze command.
func NewCommand() *cobra.Command {
	var opts Options

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a KPI column of a CSV or Excel file",
		Long: `Reads a CSV (comma or semicolon, UTF-8 or Latin-1) or Excel file, cleans it,
and reports the KPI against its target: current value, operational average,
trend, data reliability, a monthly series and the latest periods.

Examples:
  kpi analyze producao.csv --kpi "OEE %" --time Data
  kpi analyze perdas.xlsx --kpi "Scrap %" --time Mês --target 2.5
  kpi analyze linha2.csv --profile oee.yaml --export resultado.xlsx
  kpi analyze producao.csv --kpi Produção --unit absolute --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			opts.Complete(cmd)

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			res, err := opts.Run(args[0], cfg)
			if err != nil {
				return err
			}

			if jsonFlag {
				return output.PrintJSON("analyze", res)
			}
			return Print(os.Stdout, res, opts)
		},
	}

	opts.AddFlags(cmd)
	return cmd
}

// Run loads the file, analyses it and writes the export when requested.
func (o *Options) Run(path string, cfg *config.Config) (*analysis.Result, error) {
	p, err := o.Prepare(path, cfg)
	if err != nil {
		return nil, err
	}
	res, err := analysis.Run(p.Table, p.Config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if o.Export != "" {
		if err := report.Export(res, o.Export); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Print renders the dashboard, paging it when it does not fit the terminal.
func Print(w io.Writer, res *analysis.Result, o Options) error {
	var buf bytes.Buffer
	if err := Fprint(&buf, res, o); err != nil {
		return err
	}
	if w == os.Stdout {
		return output.Show(buf.String(), terminalHeight())
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Fprint renders the dashboard to w without paging.
func Fprint(w io.Writer, res *analysis.Result, o Options) error {
	if err := dashboard.Render(w, res, dashboard.Options{MaxRows: o.MaxRows}); err != nil {
		return err
	}
	if o.Export != "" {
		color.New(color.FgGreen).Fprintf(w, "\nExported to %s\n", o.Export)
	}
	return nil
}

func terminalHeight() int {
	if n, err := strconv.Atoi(os.Getenv("LINES")); err == nil && n > 0 {
		return n
	}
	return 0
}
