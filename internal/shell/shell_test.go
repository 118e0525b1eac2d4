package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/analysis"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/session"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/table"
)

var fixtures = map[string]*table.Table{
	"oee.csv": table.New("oee.csv", []string{"Data", "OEE %", "Turno"}, [][]string{
		{"15/01/2024", "80", "A"},
		{"15/02/2024", "90", "B"},
		{"15/03/2024", "70", "A"},
	}),
	"scrap.csv": table.New("scrap.csv", []string{"Mês", "Scrap %"}, [][]string{
		{"jan/24", "0,05"},
		{"fev/24", "0,08"},
	}),
}

func fakeLoader(path string) (*table.Table, error) {
	t, ok := fixtures[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	return t, nil
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	color.NoColor = true
	t.Setenv("HOME", t.TempDir())
	s, err := NewSession(session.NewWorkspace(), fakeLoader)
	require.NoError(t, err)
	return s
}

func eval(t *testing.T, s *Session, line string) string {
	t.Helper()
	out, err := s.Eval(context.Background(), line)
	require.NoError(t, err, line)
	return out
}

func TestNewSession(t *testing.T) {
	s := newTestSession(t)
	assert.Empty(t, s.CommandHistory)
	assert.NotEmpty(t, s.HistoryFile)
	assert.Contains(t, s.KnownCommands, "show")

	_, err := NewSession(nil, nil)
	assert.Error(t, err)
}

func TestLoadPicksDefaultKPI(t *testing.T) {
	s := newTestSession(t)
	out := eval(t, s, "load oee.csv")
	assert.Contains(t, out, "Loaded oee.csv (3 rows, 3 columns)")
	assert.Contains(t, out, "KPI column: OEE %")
	assert.Equal(t, "OEE %", s.Selection.KPIColumn)
	assert.False(t, s.Selection.HasTime())
}

func TestLoadError(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Eval(context.Background(), "load missing.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not load missing.csv")
}

func TestLoadFiles(t *testing.T) {
	s := newTestSession(t)
	var buf bytes.Buffer
	require.NoError(t, s.LoadFiles(&buf, "oee.csv", "scrap.csv"))
	assert.Contains(t, buf.String(), "Loaded scrap.csv")
	assert.Equal(t, 2, s.Workspace.Len())
	assert.Equal(t, "OEE %", s.Selection.KPIColumn)
}

func TestShowRendersDashboard(t *testing.T) {
	s := newTestSession(t)
	eval(t, s, "load oee.csv")
	eval(t, s, "time Data")
	eval(t, s, "unit absolute")

	out := eval(t, s, "show")
	assert.Contains(t, out, "KPI: OEE %")
	assert.Contains(t, out, "Executive view")
	assert.Contains(t, out, "KPI evolution")
}

func TestTargetIsPerFile(t *testing.T) {
	s := newTestSession(t)
	var last *analysis.Result
	s.Render = func(w io.Writer, res *analysis.Result) error {
		last = res
		return nil
	}

	eval(t, s, "load oee.csv scrap.csv")
	eval(t, s, "target 75")
	eval(t, s, "show")
	require.NotNil(t, last)
	assert.InDelta(t, 75, last.Target, 1e-9)

	out := eval(t, s, "use scrap.csv")
	assert.Contains(t, out, "KPI column: Scrap %")
	eval(t, s, "show")
	assert.Equal(t, "Scrap %", last.KPIColumn)
	assert.InDelta(t, last.Suggested, last.Target, 1e-9)

	eval(t, s, "use 1")
	eval(t, s, "kpi OEE %")
	eval(t, s, "show")
	assert.InDelta(t, 75, last.Target, 1e-9)

	eval(t, s, "target auto")
	eval(t, s, "show")
	assert.InDelta(t, 80, last.Target, 1e-9)
}

func TestSelectionCommands(t *testing.T) {
	s := newTestSession(t)
	eval(t, s, "load oee.csv")

	assert.Contains(t, eval(t, s, "rule lower"), "lower-is-better")
	assert.Contains(t, eval(t, s, "unit abs"), "absolute")
	assert.Contains(t, eval(t, s, "time none"), "disabled")

	_, err := s.Eval(context.Background(), "kpi Nope")
	require.Error(t, err)
	assert.True(t, table.IsConfigError(err))

	_, err = s.Eval(context.Background(), "rule sideways")
	assert.Error(t, err)

	_, err = s.Eval(context.Background(), "target abc")
	assert.Error(t, err)

	status := eval(t, s, "status")
	assert.Contains(t, status, "file:   oee.csv")
	assert.Contains(t, status, "rule:   lower-is-better")
}

func TestSameColumnIsRejected(t *testing.T) {
	s := newTestSession(t)
	eval(t, s, "load oee.csv")
	eval(t, s, "time Data")
	eval(t, s, "kpi Data")

	_, err := s.Eval(context.Background(), "show")
	require.Error(t, err)
	assert.ErrorIs(t, err, table.ErrSameColumn)
}

func TestFilesAndReset(t *testing.T) {
	s := newTestSession(t)
	assert.Contains(t, eval(t, s, "files"), "No files loaded")

	eval(t, s, "load oee.csv scrap.csv")
	out := eval(t, s, "files")
	assert.Contains(t, out, "* 1  oee.csv")
	assert.Contains(t, out, "  2  scrap.csv")

	assert.Contains(t, eval(t, s, "reset"), "cleared")
	_, err := s.Eval(context.Background(), "show")
	assert.Error(t, err)
	_, err = s.Eval(context.Background(), "columns")
	assert.ErrorIs(t, err, session.ErrEmpty)
}

func TestColumns(t *testing.T) {
	s := newTestSession(t)
	eval(t, s, "load scrap.csv")
	out := eval(t, s, "columns")
	assert.Contains(t, out, "Mês")
	assert.Contains(t, out, "time")
	assert.Contains(t, out, "lower-is-better")
}

func TestExitAndUnknown(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Eval(context.Background(), "exit")
	assert.ErrorIs(t, err, ErrExit)

	_, err = s.Eval(context.Background(), "frobnicate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")

	out, err := s.Eval(context.Background(), "   ")
	assert.NoError(t, err)
	assert.Empty(t, out)
}

func TestHistory(t *testing.T) {
	s := newTestSession(t)
	eval(t, s, "help")
	eval(t, s, "files")
	out := eval(t, s, "history")
	assert.Contains(t, out, "1  help")
	assert.Contains(t, out, "2  files")
}

func TestComplete(t *testing.T) {
	s := newTestSession(t)
	eval(t, s, "load oee.csv")

	assert.Equal(t, []string{"target", "time"}, s.Complete("t"))
	assert.Equal(t, []string{"higher"}, s.Complete("rule h"))
	assert.Equal(t, []string{"OEE %"}, s.Complete("kpi O"))
	assert.Equal(t, []string{analysis.NoTime, "Data"}, s.Complete("time "))
	assert.Equal(t, []string{"oee.csv"}, s.Complete("use "))
	assert.Len(t, s.Complete(""), len(s.KnownCommands))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "5s", formatDuration(5e9))
	assert.Equal(t, "2m 5s", formatDuration(125e9))
}
