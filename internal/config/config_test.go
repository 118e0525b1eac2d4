package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	viper.Reset()
	t.Setenv("KPI_CONFIG_DIR", dir)
	t.Cleanup(viper.Reset)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	setupTestConfig(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "percent", cfg.Analysis.Unit)
	assert.Equal(t, "auto", cfg.Ingest.Encoding)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.True(t, cfg.Output.Color)
	assert.Equal(t, 500, cfg.Watch.DebounceMS)
	assert.Equal(t, "500ms", cfg.Debounce().String())
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := setupTestConfig(t)
	yaml := "analysis:\n  unit: absolute\nserver:\n  addr: \":9000\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600))
	t.Setenv("KPI_SERVER_ADDR", "127.0.0.1:7000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "absolute", cfg.Analysis.Unit)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
}

func TestDebounceFallback(t *testing.T) {
	var cfg Config
	assert.Equal(t, "500ms", cfg.Debounce().String())
	cfg.Watch.DebounceMS = 250
	assert.Equal(t, "250ms", cfg.Debounce().String())
}

func TestSetAndGet(t *testing.T) {
	dir := setupTestConfig(t)

	require.NoError(t, Set("analysis.unit", "absolute"))
	assert.Equal(t, "absolute", Get("analysis.unit"))
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))

	err := Set("provider", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestValidate(t *testing.T) {
	setupTestConfig(t)
	setDefaults()
	assert.Empty(t, Validate())

	viper.Set("analysis.unit", "liters")
	viper.Set("ingest.encoding", "ebcdic")
	issues := Validate()
	keys := map[string]string{}
	for _, issue := range issues {
		keys[issue.Key] = issue.Severity
	}
	assert.Equal(t, "error", keys["analysis.unit"])
	assert.Equal(t, "error", keys["ingest.encoding"])
}

func TestToEnv(t *testing.T) {
	setupTestConfig(t)
	setDefaults()
	viper.Set("server.addr", ":9999")

	env := ToEnv()
	assert.Equal(t, ":9999", env["KPI_SERVER_ADDR"])
	assert.Equal(t, "percent", env["KPI_ANALYSIS_UNIT"])
}

func TestShowConfig(t *testing.T) {
	setupTestConfig(t)
	setDefaults()

	out := ShowConfig()
	for _, key := range Keys {
		assert.Contains(t, out, key)
	}
	assert.True(t, strings.HasPrefix(out, "Config: "))
}

func TestWizard(t *testing.T) {
	dir := setupTestConfig(t)
	setDefaults()

	var out bytes.Buffer
	require.NoError(t, Wizard(strings.NewReader("absolute\n\n:9001\n"), &out))
	assert.Equal(t, "absolute", Get("analysis.unit"))
	assert.Equal(t, "auto", Get("ingest.encoding"))
	assert.Equal(t, ":9001", Get("server.addr"))
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))
}

func TestWizardRejectsBadUnit(t *testing.T) {
	setupTestConfig(t)
	setDefaults()

	var out bytes.Buffer
	err := Wizard(strings.NewReader("gallons\n\n\n"), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis.unit")
}

func TestResetConfig(t *testing.T) {
	setupTestConfig(t)
	setDefaults()
	require.NoError(t, Set("analysis.unit", "absolute"))

	require.NoError(t, ResetConfig())
	assert.Equal(t, "percent", Get("analysis.unit"))
	assert.NoFileExists(t, ConfigPath())
}

func TestSetRejectsInvalidValue(t *testing.T) {
	setupTestConfig(t)
	_, err := Load()
	require.NoError(t, err)

	err = Set("ingest.encoding", "ebcdic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ingest.encoding")
	assert.Equal(t, "auto", Get("ingest.encoding"))
}

func TestSource(t *testing.T) {
	setupTestConfig(t)
	_, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "default", Source("server.addr"))

	t.Setenv("KPI_SERVER_ADDR", ":9000")
	assert.Equal(t, "env", Source("server.addr"))
	assert.Equal(t, "KPI_WATCH_DEBOUNCE_MS", EnvName("watch.debounce_ms"))
}
