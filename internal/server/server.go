// Package server exposes a workspace over an HTTP JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/go-chi/render"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/ingest"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/logging"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/session"
)

// MaxUploadBytes caps the size of an uploaded data file.
const MaxUploadBytes = 32 << 20

const shutdownTimeout = 10 * time.Second

// Server serves the KPI API.
type Server struct {
	ws       *session.Workspace
	ingest   ingest.Options
	logger   *slog.Logger
	validate *validator.Validate
}

// New creates a server over ws. Uploaded files are read with opts.
func New(ws *session.Workspace, opts ingest.Options, logger *slog.Logger) *Server {
	if ws == nil {
		ws = session.NewWorkspace()
	}
	return &Server{
		ws:       ws,
		ingest:   opts,
		logger:   logging.Component(logger, "server"),
		validate: newValidator(),
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, newAPIError(http.StatusNotFound, "NOT_FOUND", "resource not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, newAPIError(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed"))
	})

	r.Get("/healthz", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Route("/tables", func(r chi.Router) {
			r.Get("/", s.listTables)
			r.Post("/", s.uploadTable)
			r.Delete("/", s.resetTables)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getTable)
				r.Get("/columns", s.tableColumns)
				r.Put("/active", s.activateTable)
				r.Post("/analysis", s.analyzeTable)
			})
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.InfoContext(r.Context(), "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", slog.String("error", err.Error()))
	} else {
		s.logger.DebugContext(r.Context(), "request rejected",
			slog.Int("status", apiErr.StatusCode),
			slog.String("error", err.Error()),
		)
	}
	render.Render(w, r, apiErr)
}
