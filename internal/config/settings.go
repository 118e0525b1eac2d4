package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Keys lists the supported configuration keys in display order.
var Keys = []string{
	"output.format",
	"output.color",
	"server.addr",
	"watch.debounce_ms",
	"ingest.encoding",
	"analysis.unit",
}

// ConfigIssue represents a validation finding.
type ConfigIssue struct {
	Key      string `json:"key"`
	Severity string `json:"severity"` // "error", "warning", "info"
	Message  string `json:"message"`
	Fix      string `json:"fix"`
}

// Wizard runs the interactive setup, reading answers from reader and writing
// prompts to w. Empty answers keep the current value.
func Wizard(reader io.Reader, w io.Writer) error {
	if reader == nil {
		reader = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	scanner := bufio.NewScanner(reader)

	ask := func(prompt, key string) string {
		fmt.Fprintf(w, "  %s [%s]: ", prompt, viper.GetString(key))
		if !scanner.Scan() {
			return ""
		}
		return strings.TrimSpace(scanner.Text())
	}

	fmt.Fprintln(w, "KPI Analyzer setup")
	fmt.Fprintln(w, strings.Repeat("-", 48))

	if v := ask("Default KPI unit (percent|absolute)", "analysis.unit"); v != "" {
		viper.Set("analysis.unit", v)
	}
	if v := ask("CSV text encoding (auto|utf-8|latin-1)", "ingest.encoding"); v != "" {
		viper.Set("ingest.encoding", v)
	}
	if v := ask("API listen address", "server.addr"); v != "" {
		viper.Set("server.addr", v)
	}

	for _, issue := range Validate() {
		if issue.Severity == "error" {
			return fmt.Errorf("invalid %s: %s", issue.Key, issue.Message)
		}
	}

	if err := SaveConfig(); err != nil {
		return fmt.Errorf("could not save config: %w", err)
	}
	fmt.Fprintf(w, "\nConfig file: %s\n", ConfigPath())
	return nil
}

// Validate checks config values and returns a list of issues.
func Validate() []ConfigIssue {
	var issues []ConfigIssue

	switch strings.ToLower(viper.GetString("analysis.unit")) {
	case "percent", "absolute", "%", "abs":
	default:
		issues = append(issues, ConfigIssue{
			Key:      "analysis.unit",
			Severity: "error",
			Message:  fmt.Sprintf("unit must be percent or absolute, got %q", viper.GetString("analysis.unit")),
			Fix:      "kpi config set analysis.unit percent",
		})
	}

	switch strings.ToLower(viper.GetString("ingest.encoding")) {
	case "auto", "utf-8", "utf8", "latin-1", "latin1", "iso-8859-1":
	default:
		issues = append(issues, ConfigIssue{
			Key:      "ingest.encoding",
			Severity: "error",
			Message:  fmt.Sprintf("encoding must be auto, utf-8 or latin-1, got %q", viper.GetString("ingest.encoding")),
			Fix:      "kpi config set ingest.encoding auto",
		})
	}

	switch viper.GetString("output.format") {
	case "text", "json":
	default:
		issues = append(issues, ConfigIssue{
			Key:      "output.format",
			Severity: "warning",
			Message:  fmt.Sprintf("unknown output format %q, text will be used", viper.GetString("output.format")),
		})
	}

	if ms, err := strconv.Atoi(viper.GetString("watch.debounce_ms")); err != nil || ms <= 0 {
		issues = append(issues, ConfigIssue{
			Key:      "watch.debounce_ms",
			Severity: "warning",
			Message:  "debounce must be a positive number of milliseconds, 500 will be used",
		})
	}

	if viper.GetString("server.addr") == "" {
		issues = append(issues, ConfigIssue{
			Key:      "server.addr",
			Severity: "warning",
			Message:  "server.addr is empty; kpi serve needs --addr",
		})
	}

	return issues
}

// ToEnv returns the current configuration as KPI_* environment variables.
func ToEnv() map[string]string {
	env := make(map[string]string)
	for _, key := range Keys {
		if v := viper.GetString(key); v != "" {
			env[EnvName(key)] = v
		}
	}
	return env
}

// Set sets a config value and saves to disk. A value that fails validation
// with an error is rejected and the previous value kept.
func Set(key, value string) error {
	if !known(key) {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys, ", "))
	}
	prev := viper.Get(key)
	viper.Set(key, value)
	for _, issue := range Validate() {
		if issue.Key == key && issue.Severity == "error" {
			viper.Set(key, prev)
			return fmt.Errorf("invalid %s: %s", key, issue.Message)
		}
	}
	return SaveConfig()
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return "KPI_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Source reports where the effective value of key comes from: "env",
// "file" or "default".
func Source(key string) string {
	if _, ok := os.LookupEnv(EnvName(key)); ok {
		return "env"
	}
	if viper.InConfig(key) {
		return "file"
	}
	return "default"
}

// Get retrieves a config value.
func Get(key string) string {
	return viper.GetString(key)
}

// ResetConfig resets all config to defaults.
func ResetConfig() error {
	path := ConfigPath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete config: %w", err)
	}
	viper.Reset()
	setDefaults()
	return nil
}

// SaveConfig writes the current config to ~/.kpi/config.yaml.
func SaveConfig() error {
	dir := configDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("could not write config: %w", err)
	}
	return nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// ShowConfig returns a formatted string of the current configuration.
func ShowConfig() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Config: %s\n\n", ConfigPath()))
	for _, key := range Keys {
		sb.WriteString(fmt.Sprintf("  %-18s %-12s (%s)\n", key+":", viper.GetString(key), Source(key)))
	}
	return sb.String()
}

func known(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}
