// Package serve provides the "kpi serve" command, exposing the workspace over
// HTTP.
package serve

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/config"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/formats/delimited"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/ingest"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/output"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/server"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/session"
)

// NewCommand returns the serve command.
func NewCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the KPI workspace as a JSON API",
		Long: `Start an HTTP server holding a workspace of uploaded files.

Endpoints:
  GET    /healthz
  GET    /api/tables                     list loaded files
  POST   /api/tables                     upload a file (multipart field "file")
  DELETE /api/tables                     clear the workspace
  GET    /api/tables/{id}                one file
  GET    /api/tables/{id}/columns        column eligibility
  PUT    /api/tables/{id}/active         make a file active
  POST   /api/tables/{id}/analysis       run the analysis

Example:
  kpi serve --addr :8080
  curl -F file=@producao.csv localhost:8080/api/tables`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			enc, err := delimited.ParseEncoding(cfg.Ingest.Encoding)
			if err != nil {
				return fmt.Errorf("%w: ingest.encoding: %v", output.ErrUsage, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(session.NewWorkspace(), ingest.Options{Encoding: enc}, slog.Default())
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}
