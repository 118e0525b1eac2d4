// Package shell provides the "kpi shell" interactive REPL command.
package shell

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/analysis"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/config"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/formats/delimited"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/ingest"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/progress"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/session"
	shellpkg "github.com/Wilian-lab/industrial-kpi-analyzer/internal/shell"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/table"
)

// NewCommand creates the "shell" command.
func NewCommand() *cobra.Command {
	var (
		evalCmd   string
		sheet     string
		recursive bool
	)

	cmd := &cobra.Command{
		Use:   "shell [files or directories...]",
		Short: "Start an interactive KPI analysis shell",
		Long: `Start an interactive REPL over a workspace of loaded files.

Load several files, switch between them, pick the KPI and time columns and
re-run the analysis without reloading. Targets are remembered per file for
the rest of the session. Tab completion works for commands and column names.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			enc, err := delimited.ParseEncoding(cfg.Ingest.Encoding)
			if err != nil {
				return err
			}
			load := func(path string) (*table.Table, error) {
				return ingest.LoadFile(path, ingest.Options{Sheet: sheet, Encoding: enc})
			}

			files, err := ingest.Expand(args, recursive)
			if err != nil {
				return err
			}

			s, err := shellpkg.NewSession(session.NewWorkspace(), load)
			if err != nil {
				return err
			}
			if cfg.Analysis.Unit != "" {
				if s.Selection.Unit, err = analysis.ParseUnit(cfg.Analysis.Unit); err != nil {
					return fmt.Errorf("analysis.unit: %w", err)
				}
			}
			switch {
			case len(files) == 1:
				if err := s.LoadFiles(os.Stdout, files[0]); err != nil {
					return err
				}
			case len(files) > 1:
				bar := progress.New("Loading", len(files))
				for _, path := range files {
					if err := s.LoadFiles(io.Discard, path); err != nil {
						bar.Finish("load failed")
						return err
					}
					bar.Increment(filepath.Base(path))
				}
				bar.Finish(fmt.Sprintf("%d files loaded, type 'files' to list them", len(files)))
			}
			if evalCmd != "" {
				out, err := s.Eval(cmd.Context(), evalCmd)
				fmt.Print(out)
				return err
			}
			return s.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&evalCmd, "eval", "", "Run a single shell command and exit")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Also load files in subdirectories of directory arguments")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to read from workbooks (default: first)")
	return cmd
}
