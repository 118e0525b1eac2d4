package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/ingest"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/session"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/table"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	StatusCode int      `json:"status_code"`
	ErrorCode  string   `json:"error_code"`
	Message    string   `json:"message"`
	Columns    []string `json:"columns,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func newAPIError(status int, code, msg string) *APIError {
	return &APIError{StatusCode: status, ErrorCode: code, Message: msg}
}

// toAPIError maps domain errors to HTTP responses. Configuration errors are
// 422 so clients can tell a bad selection from a bad request.
func toAPIError(err error) *APIError {
	var (
		apiErr *APIError
		cfgErr *table.ConfigError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &cfgErr):
		e := newAPIError(http.StatusUnprocessableEntity, "INVALID_CONFIGURATION", err.Error())
		e.Columns = cfgErr.Names
		return e
	case errors.Is(err, session.ErrNotFound):
		return newAPIError(http.StatusNotFound, "TABLE_NOT_FOUND", err.Error())
	case errors.Is(err, session.ErrEmpty):
		return newAPIError(http.StatusConflict, "NO_TABLE_LOADED", err.Error())
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		return newAPIError(http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT", err.Error())
	default:
		return newAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Error())
	}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
