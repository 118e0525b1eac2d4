package server

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/analysis"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/ingest"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/kpi"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/session"
)

type tableResponse struct {
	session.Entry
	ColumnNames []string `json:"column_names"`
}

func newTableResponse(e session.Entry) tableResponse {
	return tableResponse{Entry: e, ColumnNames: e.Table.Columns}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status": "ok",
		"tables": s.ws.Len(),
	})
}

func (s *Server) listTables(w http.ResponseWriter, r *http.Request) {
	list := s.ws.List()
	out := make([]tableResponse, 0, len(list))
	for _, e := range list {
		out = append(out, newTableResponse(e))
	}
	render.JSON(w, r, out)
}

func (s *Server) uploadTable(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		s.fail(w, r, newAPIError(http.StatusBadRequest, "INVALID_REQUEST", fmt.Sprintf("invalid upload: %v", err)))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, newAPIError(http.StatusBadRequest, "MISSING_PARAMETER", `multipart field "file" is required`))
		return
	}
	defer file.Close()

	opts := s.ingest
	if sheet := r.FormValue("sheet"); sheet != "" {
		opts.Sheet = sheet
	}

	t, err := ingest.Load(filepath.Base(header.Filename), file, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e := s.ws.Add(t)
	s.logger.InfoContext(r.Context(), "table loaded", "name", e.Name, "rows", e.Rows, "id", e.ID)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newTableResponse(e))
}

func (s *Server) resetTables(w http.ResponseWriter, r *http.Request) {
	s.ws.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getTable(w http.ResponseWriter, r *http.Request) {
	e, err := s.ws.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, newTableResponse(e))
}

func (s *Server) tableColumns(w http.ResponseWriter, r *http.Request) {
	e, err := s.ws.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	infos, err := analysis.Columns(e.Table)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	def, _ := analysis.DefaultKPI(infos)
	render.JSON(w, r, map[string]any{
		"columns":     infos,
		"default_kpi": def,
	})
}

func (s *Server) activateTable(w http.ResponseWriter, r *http.Request) {
	e, err := s.ws.Use(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, newTableResponse(e))
}

// analysisRequest is the body of POST /api/tables/{id}/analysis.
type analysisRequest struct {
	KPI    string   `json:"kpi" validate:"required,max=256"`
	Time   string   `json:"time" validate:"max=256"`
	Rule   string   `json:"rule" validate:"max=32"`
	Unit   string   `json:"unit" validate:"max=32"`
	Target *float64 `json:"target"`
}

func (s *Server) analyzeTable(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.fail(w, r, newAPIError(http.StatusBadRequest, "INVALID_REQUEST", fmt.Sprintf("invalid analysis request: %v", err)))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.fail(w, r, newAPIError(http.StatusBadRequest, "VALIDATION_FAILED", validationMessage(err)))
		return
	}

	cfg := analysis.Config{KPIColumn: req.KPI, TimeColumn: req.Time, Target: req.Target}
	if req.Rule != "" {
		d, err := kpi.ParseDirection(req.Rule)
		if err != nil {
			s.fail(w, r, newAPIError(http.StatusBadRequest, "INVALID_PARAMETER", err.Error()))
			return
		}
		cfg.Direction = d
	}
	if req.Unit != "" {
		u, err := analysis.ParseUnit(req.Unit)
		if err != nil {
			s.fail(w, r, newAPIError(http.StatusBadRequest, "INVALID_PARAMETER", err.Error()))
			return
		}
		cfg.Unit = u
	}

	res, err := s.ws.Analyze(chi.URLParam(r, "id"), cfg)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, res)
}
