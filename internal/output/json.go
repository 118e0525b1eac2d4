package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Wilian-lab/industrial-kpi-analyzer/cmd/version"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/table"
)

// Exit codes for consistent error reporting.
const (
	ExitOK          = 0 // success
	ExitUserError   = 1 // bad flags, missing file, invalid column selection
	ExitSystemError = 2 // IO error, unreadable workbook, server failure
)

// JSONResult is the standard JSON output envelope for all commands.
type JSONResult struct {
	OK      bool        `json:"ok"`
	Command string      `json:"command"`
	Version string      `json:"version"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    int         `json:"code,omitempty"`
}

// PrintJSON writes a standard success JSON result to stdout.
func PrintJSON(cmd string, data interface{}) error {
	return FprintJSON(os.Stdout, cmd, data)
}

// FprintJSON writes a standard success JSON result to w.
func FprintJSON(w io.Writer, cmd string, data interface{}) error {
	result := JSONResult{
		OK:      true,
		Command: cmd,
		Version: version.Version,
		Data:    data,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// PrintJSONError writes a standard error JSON result to stdout.
func PrintJSONError(cmd string, err error, code int) error {
	return FprintJSONError(os.Stdout, cmd, err, code)
}

// FprintJSONError writes a standard error JSON result to w.
func FprintJSONError(w io.Writer, cmd string, err error, code int) error {
	result := JSONResult{
		OK:      false,
		Command: cmd,
		Version: version.Version,
		Error:   err.Error(),
		Code:    code,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(result); encErr != nil {
		return fmt.Errorf("could not encode JSON error: %w", encErr)
	}
	return nil
}

// ExitCode maps an error to the process exit code. Configuration errors
// and bad input are user errors; everything else is a system error.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case table.IsConfigError(err), errors.Is(err, ErrUsage), errors.Is(err, os.ErrNotExist):
		return ExitUserError
	default:
		return ExitSystemError
	}
}

// ErrUsage marks errors caused by invalid command-line input.
var ErrUsage = errors.New("invalid usage")
