package analyze

import (
	"github.com/spf13/cobra"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/analysis"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/formats/xlsx"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/ingest"
)

// registerCompletions completes flag values from the file named by the
// first argument: column names for --kpi and --time, worksheets for --sheet.
func (o *Options) registerCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("kpi", func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		return o.columnCompletions(args, false), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("time", func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		return o.columnCompletions(args, true), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("sheet", func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		return sheetCompletions(args), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("rule", cobra.FixedCompletions(
		[]string{"higher\thigher is better", "lower\tlower is better"}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("unit", cobra.FixedCompletions(
		[]string{"percent", "absolute"}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("profile", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	})
	_ = cmd.RegisterFlagCompletionFunc("export", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"xlsx"}, cobra.ShellCompDirectiveFilterFileExt
	})
}

// columnCompletions lists KPI-eligible columns, or for the time axis "none"
// followed by every column with name-based candidates first.
func (o *Options) columnCompletions(args []string, timeAxis bool) []string {
	if len(args) == 0 {
		return nil
	}
	raw, err := ingest.LoadFile(args[0], ingest.Options{Sheet: o.Sheet})
	if err != nil {
		return nil
	}
	cols, err := analysis.Columns(raw)
	if err != nil {
		return nil
	}

	var out, rest []string
	if timeAxis {
		out = append(out, analysis.NoTime+"\tno time axis")
	}
	for _, c := range cols {
		switch {
		case timeAxis && c.TimeCandidate:
			out = append(out, c.Name+"\tdate column")
		case timeAxis:
			rest = append(rest, c.Name)
		case c.KPIEligible:
			out = append(out, c.Name)
		}
	}
	return append(out, rest...)
}

func sheetCompletions(args []string) []string {
	if len(args) == 0 {
		return nil
	}
	wb, err := xlsx.ReadFile(args[0])
	if err != nil {
		return nil
	}
	names := make([]string, len(wb.Sheets))
	for i, s := range wb.Sheets {
		names[i] = s.Name
	}
	return names
}
