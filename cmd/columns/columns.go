// Package columns provides the "kpi columns" command.
package columns

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/analysis"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/config"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/formats/delimited"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/ingest"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/output"
)

// NewCommand returns the columns command.
func NewCommand() *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "columns <file>",
		Short: "List the columns of a file and what they can be used for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			enc, err := delimited.ParseEncoding(cfg.Ingest.Encoding)
			if err != nil {
				return fmt.Errorf("%w: ingest.encoding: %v", output.ErrUsage, err)
			}
			t, err := ingest.LoadFile(args[0], ingest.Options{Sheet: sheet, Encoding: enc})
			if err != nil {
				return err
			}
			infos, err := analysis.Columns(t)
			if err != nil {
				return err
			}
			def, _ := analysis.DefaultKPI(infos)

			if jsonFlag {
				return output.PrintJSON("columns", map[string]any{
					"file":        t.Name,
					"rows":        t.Len(),
					"columns":     infos,
					"default_kpi": def,
				})
			}

			headerStyle := color.New(color.Bold, color.FgCyan)
			dim := color.New(color.FgHiBlack)
			headerStyle.Printf("%s (%d rows)\n", t.Name, t.Len())
			for _, c := range infos {
				var tags []string
				if c.KPIEligible {
					tags = append(tags, fmt.Sprintf("kpi, %d numeric values", c.ValidValues))
				}
				if c.TimeCandidate {
					tags = append(tags, "time")
				}
				if c.Hint.Fixed {
					tags = append(tags, "loss metric, "+string(c.Hint.Direction))
				}
				marker := " "
				if c.Name == def {
					marker = "*"
				}
				fmt.Printf("%s %-30s ", marker, c.Name)
				dim.Println(strings.Join(tags, "; "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to read from a workbook (default: first)")
	return cmd
}
