// Package cmd contains all CLI commands for the kpi binary.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Wilian-lab/industrial-kpi-analyzer/cmd/analyze"
	"github.com/Wilian-lab/industrial-kpi-analyzer/cmd/columns"
	"github.com/Wilian-lab/industrial-kpi-analyzer/cmd/completion"
	cmdconfig "github.com/Wilian-lab/industrial-kpi-analyzer/cmd/config"
	"github.com/Wilian-lab/industrial-kpi-analyzer/cmd/serve"
	cmdshell "github.com/Wilian-lab/industrial-kpi-analyzer/cmd/shell"
	"github.com/Wilian-lab/industrial-kpi-analyzer/cmd/version"
	cmdwatch "github.com/Wilian-lab/industrial-kpi-analyzer/cmd/watch"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/config"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/logging"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/output"
)

var (
	jsonOutput bool
	verbose    bool
	logFormat  string
	noColor    bool
)

// NewRootCommand creates and returns the root cobra command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kpi",
		Short: "Industrial KPI analyzer for CSV and Excel exports",
		Long: `kpi reads production spreadsheets (OEE, scrap, downtime, output) and turns a
KPI column into an executive view: current value against target, operational
average, trend, data reliability and a monthly series.

Start with 'kpi columns <file>' to see which columns can be analysed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cfg, err := config.Load(); err == nil {
				if !cfg.Output.Color {
					color.NoColor = true
				}
				if !cmd.Flags().Changed("json") && output.ParseFormat(cfg.Output.Format) == output.FormatJSON {
					_ = cmd.Flags().Set("json", "true")
				}
			}
			if noColor || os.Getenv("NO_COLOR") != "" {
				color.NoColor = true
			}
			slog.SetDefault(logging.New(logging.Options{Verbose: verbose, Format: logFormat}))
		},
	}

	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", output.ErrUsage, err)
	})

	// Global persistent flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text | json")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI color output")

	// Register subcommands
	rootCmd.AddCommand(analyze.NewCommand())
	rootCmd.AddCommand(columns.NewCommand())
	rootCmd.AddCommand(cmdshell.NewCommand())
	rootCmd.AddCommand(cmdwatch.NewCommand())
	rootCmd.AddCommand(serve.NewCommand())
	rootCmd.AddCommand(cmdconfig.NewCommand())
	rootCmd.AddCommand(completion.NewCommand(rootCmd))
	rootCmd.AddCommand(version.NewCommand())

	return rootCmd
}

// Execute runs the root command and handles any returned errors.
func Execute() {
	rootCmd := NewRootCommand()
	executed, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}
	code := output.ExitCode(err)
	if jsonOutput {
		name := rootCmd.Name()
		if executed != nil {
			name = executed.Name()
		}
		output.PrintJSONError(name, err, code)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(code)
}
