package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "promenade"

// GetConfigDir returns the platform-specific config directory.
// Unix: $XDG_CONFIG_HOME/promenade or ~/.config/promenade
// Windows: %APPDATA%\promenade
func GetConfigDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, appName), nil
}

// GetDataDir returns the platform-specific data directory.
// Unix: $XDG_DATA_HOME/promenade or ~/.local/share/promenade
// Windows: %LOCALAPPDATA%\promenade
func GetDataDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
	default:
		base = os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".local", "share")
		}
	}
	return filepath.Join(base, appName), nil
}

// GetDashboardsDir returns the directory for dashboard config files.
func GetDashboardsDir() (string, error) {
	cfgDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, "dashboards"), nil
}

// GetConfigPath returns the path to config.toml.
func GetConfigPath() (string, error) {
	cfgDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, "config.toml"), nil
}

// GetLogPath returns the path of the log file. The TUI owns stdout, so
// logs always go to disk.
func GetLogPath() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, appName+".log"), nil
}

// EnsureDirs creates all required directories if they don't exist.
func EnsureDirs() error {
	dirs := []func() (string, error){GetConfigDir, GetDataDir, GetDashboardsDir}
	for _, fn := range dirs {
		dir, err := fn()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return nil
}
