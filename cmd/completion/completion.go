// Package completion provides the "kpi completion" command.
package completion

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

type generator struct {
	install string
	gen     func(root *cobra.Command, w io.Writer) error
}

var generators = map[string]generator{
	"bash": {
		install: "kpi completion bash > /etc/bash_completion.d/kpi",
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	},
	"zsh": {
		install: "kpi completion zsh > \"${fpath[1]}/_kpi\"",
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	},
	"fish": {
		install: "kpi completion fish > ~/.config/fish/completions/kpi.fish",
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	},
	"powershell": {
		install: "kpi completion powershell >> $PROFILE",
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
	},
}

// Shells lists the supported shells in sorted order.
func Shells() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewCommand returns the completion command for root.
func NewCommand(root *cobra.Command) *cobra.Command {
	var install strings.Builder
	for _, name := range Shells() {
		fmt.Fprintf(&install, "  %-11s %s\n", name+":", generators[name].install)
	}

	return &cobra.Command{
		Use:   "completion <" + strings.Join(Shells(), "|") + ">",
		Short: "Generate shell completions",
		Long: `Generate a shell completion script for kpi.

Besides commands and flags, the script completes flag values read from the
file being analysed:

  kpi analyze producao.xlsx --kpi <TAB>     KPI-eligible columns
  kpi analyze producao.xlsx --time <TAB>    "none", date columns first
  kpi analyze producao.xlsx --sheet <TAB>   worksheets in the workbook
  kpi watch producao.csv --rule <TAB>       higher | lower

Install:
` + strings.TrimRight(install.String(), "\n"),
		ValidArgs: Shells(),
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, ok := generators[args[0]]
			if !ok {
				return fmt.Errorf("unsupported shell: %s (supported: %s)", args[0], strings.Join(Shells(), ", "))
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "# kpi %s completion\n# Install: %s\n\n", args[0], g.install)
			return g.gen(root, w)
		},
	}
}
