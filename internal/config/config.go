package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the application config file. Flags and environment variables
// are layered over it by the CLI.
type Config struct {
	Theme              string        `toml:"theme"`
	PrometheusURL      string        `toml:"prometheus_url"`
	Timeout            time.Duration `toml:"-"`
	TimeoutStr         string        `toml:"timeout"`
	RefreshInterval    time.Duration `toml:"-"`
	RefreshIntervalStr string        `toml:"refresh_interval"`
	LogLevel           string        `toml:"log_level"`
	PauseInactive      bool          `toml:"pause_inactive"`
	DashboardsDir      string        `toml:"dashboards_dir"`
}

func DefaultConfig() *Config {
	return &Config{
		Theme:              "solarized-dark",
		PrometheusURL:      "http://localhost:9090",
		Timeout:            10 * time.Second,
		TimeoutStr:         "10s",
		RefreshInterval:    5 * time.Second,
		RefreshIntervalStr: "5s",
		LogLevel:           "info",
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.TimeoutStr != "" {
		d, err := time.ParseDuration(cfg.TimeoutStr)
		if err != nil {
			return nil, fmt.Errorf("%s: timeout: %w", path, err)
		}
		cfg.Timeout = d
	}
	if cfg.RefreshIntervalStr != "" {
		d, err := time.ParseDuration(cfg.RefreshIntervalStr)
		if err != nil {
			return nil, fmt.Errorf("%s: refresh_interval: %w", path, err)
		}
		cfg.RefreshInterval = d
	}
	return cfg, nil
}

func SaveConfig(cfg *Config, path string) error {
	cfg.TimeoutStr = cfg.Timeout.String()
	cfg.RefreshIntervalStr = cfg.RefreshInterval.String()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
