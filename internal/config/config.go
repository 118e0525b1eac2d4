// Package config manages application configuration from files and environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Output struct {
		Format string `mapstructure:"format"`
		Color  bool   `mapstructure:"color"`
	} `mapstructure:"output"`
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
	Watch struct {
		DebounceMS int `mapstructure:"debounce_ms"`
	} `mapstructure:"watch"`
	Ingest struct {
		Encoding string `mapstructure:"encoding"`
	} `mapstructure:"ingest"`
	Analysis struct {
		Unit string `mapstructure:"unit"`
	} `mapstructure:"analysis"`
}

// Debounce returns the watcher debounce interval.
func (c *Config) Debounce() time.Duration {
	if c.Watch.DebounceMS <= 0 {
		return defaultDebounceMS * time.Millisecond
	}
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

const defaultDebounceMS = 500

// Load reads the configuration from ~/.kpi/config.yaml and environment
// variables. A .env file in the working directory is applied to the
// environment first; variables already set take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir())

	setDefaults()

	// KPI_SERVER_ADDR overrides server.addr and so on.
	viper.SetEnvPrefix("KPI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file (non-fatal if missing)
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("output.color", true)
	viper.SetDefault("output.format", "text")
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("watch.debounce_ms", defaultDebounceMS)
	viper.SetDefault("ingest.encoding", "auto")
	viper.SetDefault("analysis.unit", "percent")
}

func configDir() string {
	if dir := os.Getenv("KPI_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kpi"
	}
	return filepath.Join(home, ".kpi")
}
