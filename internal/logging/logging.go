// Package logging sets up the file logger. The TUI owns the terminal, so
// nothing is ever logged to stdout or stderr while it runs.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"
)

// Setup opens path for appending and returns a logger writing to it at the
// given level ("debug", "info", "warn", "error"; empty means info). The
// returned closer releases the file.
func Setup(level, path string) (*log.Logger, io.Closer, error) {
	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
		lvl = parsed
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return New(f, lvl), f, nil
}

// New returns a logfmt-style logger writing to w.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       log.LogfmtFormatter,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// Leveled adapts a logger to retryablehttp.LeveledLogger.
type Leveled struct {
	L *log.Logger
}

var _ retryablehttp.LeveledLogger = Leveled{}

func (l Leveled) Error(msg string, kv ...any) { l.L.Error(msg, kv...) }
func (l Leveled) Info(msg string, kv ...any) { l.L.Info(msg, kv...) }
func (l Leveled) Debug(msg string, kv ...any) { l.L.Debug(msg, kv...) }
func (l Leveled) Warn(msg string, kv ...any) { l.L.Warn(msg, kv...) }
