// Package version provides the "kpi version" command.
package version

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/ingest"
)

// Version is set at build time via ldflags:
//
//	go build -ldflags "-X github.com/Wilian-lab/industrial-kpi-analyzer/cmd/version.Version=1.2.0"
var Version = "dev"

// Info describes the running binary.
type Info struct {
	Version  string   `json:"version"`
	Go       string   `json:"go"`
	Platform string   `json:"platform"`
	Formats  []string `json:"formats"`
}

// Current returns the build information of this binary.
func Current() Info {
	return Info{
		Version:  Version,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
		Formats:  ingest.Extensions,
	}
}

// NewCommand returns the version subcommand.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the kpi version and supported input formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := Current()
			// internal/output stamps its envelopes with Version, so it
			// cannot be imported here.
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			fmt.Printf("kpi %s (%s, %s)\n", info.Version, info.Go, info.Platform)
			return nil
		},
	}
}
