package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tonhe/promenade/internal/config"
	"github.com/tonhe/promenade/internal/dashboard"
	"github.com/tonhe/promenade/internal/logging"
	"github.com/tonhe/promenade/internal/source"
	"github.com/tonhe/promenade/internal/theme"
)

// Setting keys shared by the config file, flags and the environment.
const (
	keyPrometheusURL = "prometheus_url"
	keyTheme         = "theme"
	keyTimeout       = "timeout"
	keyPauseInactive = "pause_inactive"
	keyLogLevel      = "log_level"
	keyDashboardsDir = "dashboards_dir"
)

// settings is the effective configuration: flags over environment over
// config.toml over built-in defaults.
type settings struct {
	Config        *config.Config
	ConfigPath    string
	PrometheusURL string
	Theme         *theme.Theme
	Timeout       time.Duration
	PauseInactive bool
	LogLevel      string
	DashboardsDir string
}

// addSettingsFlags registers the flags every dashboard-loading command
// shares.
func addSettingsFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringP("prometheus-url", "u", "", "Prometheus server URL (env PROMETHEUS_URL or PROM_URL)")
	f.StringP("theme", "t", "", "color theme, or \"auto\" to follow the terminal (env PROMENADE_THEME)")
	f.String("timeout", "", "poll timeout, in seconds or as a duration (env PROMETHEUS_TIMEOUT)")
	f.Bool("pause-inactive", false, "stop polling dashboards that are not on screen")
	f.String("log-level", "", "log level: debug, info, warn or error")
	f.String("dashboards-dir", "", "directory searched for dashboards")
}

// loadSettings layers flags and environment variables over the config file
// at the default path.
func loadSettings(cmd *cobra.Command) (*settings, error) {
	path, err := config.GetConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return resolveSettings(cmd, cfg, path)
}

func resolveSettings(cmd *cobra.Command, cfg *config.Config, path string) (*settings, error) {
	v := viper.New()
	v.SetDefault(keyPrometheusURL, cfg.PrometheusURL)
	v.SetDefault(keyTheme, cfg.Theme)
	v.SetDefault(keyTimeout, cfg.Timeout.String())
	v.SetDefault(keyPauseInactive, cfg.PauseInactive)
	v.SetDefault(keyLogLevel, cfg.LogLevel)
	v.SetDefault(keyDashboardsDir, cfg.DashboardsDir)

	binds := []struct {
		key  string
		flag string
		env  []string
	}{
		{keyPrometheusURL, "prometheus-url", []string{"PROMETHEUS_URL", "PROM_URL"}},
		{keyTheme, "theme", []string{"PROMENADE_THEME"}},
		{keyTimeout, "timeout", []string{"PROMETHEUS_TIMEOUT"}},
		{keyPauseInactive, "pause-inactive", nil},
		{keyLogLevel, "log-level", []string{"PROMENADE_LOG_LEVEL"}},
		{keyDashboardsDir, "dashboards-dir", []string{"PROMENADE_DASHBOARDS"}},
	}
	for _, b := range binds {
		if fl := cmd.Flags().Lookup(b.flag); fl != nil {
			if err := v.BindPFlag(b.key, fl); err != nil {
				return nil, err
			}
		}
		if len(b.env) > 0 {
			if err := v.BindEnv(append([]string{b.key}, b.env...)...); err != nil {
				return nil, err
			}
		}
	}

	timeout, err := parseTimeout(v.GetString(keyTimeout))
	if err != nil {
		return nil, err
	}
	t, err := pickTheme(v.GetString(keyTheme))
	if err != nil {
		return nil, err
	}
	dir := v.GetString(keyDashboardsDir)
	if dir == "" {
		if dir, err = config.GetDashboardsDir(); err != nil {
			return nil, err
		}
	}
	url := v.GetString(keyPrometheusURL)
	if url == "" {
		url = source.DefaultPrometheusURL
	}

	return &settings{
		Config:        cfg,
		ConfigPath:    path,
		PrometheusURL: url,
		Theme:         t,
		Timeout:       timeout,
		PauseInactive: v.GetBool(keyPauseInactive),
		LogLevel:      v.GetString(keyLogLevel),
		DashboardsDir: dir,
	}, nil
}

// parseTimeout accepts a bare number of seconds, as PROMETHEUS_TIMEOUT
// always has, or a Go duration.
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return config.DefaultConfig().Timeout, nil
	}
	var d time.Duration
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		d = time.Duration(secs * float64(time.Second))
	} else if d, err = time.ParseDuration(s); err != nil {
		return 0, fmt.Errorf("timeout: invalid duration %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %q", s)
	}
	return d, nil
}

func pickTheme(name string) (*theme.Theme, error) {
	switch name {
	case "":
		return theme.Default(), nil
	case "auto":
		return theme.Auto(), nil
	}
	if t := theme.Get(name); t != nil {
		return t, nil
	}
	return nil, fmt.Errorf("unknown theme %q (run 'promenade themes' to list them)", name)
}

// sourceDefaults is what dashboards without their own source block use.
func (s *settings) sourceDefaults(logger *log.Logger) source.Defaults {
	return source.Defaults{PrometheusURL: s.PrometheusURL, Timeout: s.Timeout, Logger: logger}
}

// logger opens the log file at the configured level.
func (s *settings) logger() (*log.Logger, func(), error) {
	path, err := config.GetLogPath()
	if err != nil {
		return nil, nil, err
	}
	l, closer, err := logging.Setup(s.LogLevel, path)
	if err != nil {
		return nil, nil, err
	}
	return l, func() { _ = closer.Close() }, nil
}

// dashboardPaths resolves args to files, or lists the dashboards
// directory when there are none.
func (s *settings) dashboardPaths(args []string) ([]string, error) {
	if len(args) == 0 {
		found, err := dashboard.ListDashboards(s.DashboardsDir)
		if err != nil || len(found) == 0 {
			return nil, fmt.Errorf("no dashboards given and none found in %s (try 'promenade init')", s.DashboardsDir)
		}
		return found, nil
	}
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		p, err := dashboard.Find(s.DashboardsDir, arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// loadDashboards loads the named dashboards, or every dashboard in the
// dashboards directory when none are named.
func (s *settings) loadDashboards(args []string) ([]*dashboard.Dashboard, error) {
	paths, err := s.dashboardPaths(args)
	if err != nil {
		return nil, err
	}
	dashes := make([]*dashboard.Dashboard, 0, len(paths))
	for _, p := range paths {
		d, err := dashboard.LoadDashboard(p, s.Config.RefreshInterval)
		if err != nil {
			return nil, err
		}
		dashes = append(dashes, d)
	}
	return dashes, nil
}
