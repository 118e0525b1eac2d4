// Package watch provides the "kpi watch" command, which re-runs the analysis
// whenever the data file is saved.
package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Wilian-lab/industrial-kpi-analyzer/cmd/analyze"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/config"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/output"
	w "github.com/Wilian-lab/industrial-kpi-analyzer/internal/watch"
)

// NewCommand creates the "watch" command.
func NewCommand() *cobra.Command {
	var (
		opts     analyze.Options
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-run the analysis every time the file changes",
		Long: `Analyze a file once, then keep watching it and refresh the dashboard each
time it is saved. Editors and exports that write in bursts are debounced.

Example:
  kpi watch producao.csv --kpi "OEE %" --time Data --target 85
  kpi watch perdas.xlsx --profile scrap.yaml --export resultado.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			opts.Complete(cmd)

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("debounce") {
				debounce = cfg.Debounce()
			}

			path := args[0]
			run := func(ctx context.Context, changed string) error {
				res, err := opts.Run(path, cfg)
				if err != nil {
					return err
				}
				if jsonFlag {
					return output.PrintJSON("watch", res)
				}
				fmt.Print("\033[H\033[2J")
				color.New(color.FgHiBlack).Printf("%s  %s\n\n", time.Now().Format("15:04:05"), changed)
				return analyze.Fprint(os.Stdout, res, opts)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := run(ctx, path); err != nil {
				return err
			}

			rerun := func(ctx context.Context, changed string) error {
				if err := run(ctx, changed); err != nil {
					color.New(color.FgRed).Fprintf(os.Stderr, "Error: %s\n", err)
					return err
				}
				return nil
			}
			watcher, err := w.New(w.Config{Files: []string{path}, Debounce: debounce}, rerun)
			if err != nil {
				return err
			}
			if !jsonFlag {
				color.New(color.FgCyan).Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", path)
			}
			if err := watcher.Start(ctx); err != nil {
				return err
			}

			st := watcher.GetStatus()
			if !jsonFlag {
				fmt.Fprintf(os.Stderr, "\nStopped after %d updates.\n", st.EventCount)
			}
			return nil
		},
	}

	opts.AddFlags(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", w.DefaultDebounce, "Quiet period before re-running after a change")
	return cmd
}
