package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/table"
)

func TestFprintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FprintJSON(&buf, "analyze", map[string]int{"rows": 3}))

	var got JSONResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.True(t, got.OK)
	assert.Equal(t, "analyze", got.Command)
	assert.NotEmpty(t, got.Version)
	assert.Empty(t, got.Error)
}

func TestFprintJSONError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FprintJSONError(&buf, "analyze", errors.New("boom"), ExitSystemError))

	var got JSONResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.False(t, got.OK)
	assert.Equal(t, "boom", got.Error)
	assert.Equal(t, ExitSystemError, got.Code)
}

func TestExitCode(t *testing.T) {
	cfgErr := &table.ConfigError{Kind: table.ErrSameColumn, Names: []string{"Data"}}
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitUserError, ExitCode(cfgErr))
	assert.Equal(t, ExitUserError, ExitCode(fmt.Errorf("run: %w", cfgErr)))
	assert.Equal(t, ExitUserError, ExitCode(fmt.Errorf("%w: bad unit", ErrUsage)))
	assert.Equal(t, ExitUserError, ExitCode(fmt.Errorf("open: %w", os.ErrNotExist)))
	assert.Equal(t, ExitSystemError, ExitCode(errors.New("disk on fire")))
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriterTo(&buf, ParseFormat("json"))
	assert.Equal(t, FormatJSON, w.Format())
	require.NoError(t, w.WriteJSON(map[string]string{"a": "b"}))
	assert.Contains(t, buf.String(), `"a": "b"`)

	buf.Reset()
	w = NewWriterTo(&buf, ParseFormat("whatever"))
	assert.Equal(t, FormatText, w.Format())
	require.NoError(t, w.WriteLn("hello"))
	assert.Equal(t, "hello\n", buf.String())
}
