package dashboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrInvalid marks schema-level problems in a dashboard file.
var ErrInvalid = errors.New("invalid dashboard")

// Defaults applied by LoadDashboard.
const (
	DefaultTitle           = "Prometheus Dashboard"
	DefaultRefreshInterval = 5 * time.Second
	DefaultFormatString    = "{value}"
	DefaultDataPoints      = 20
	DefaultProgressTotal   = 100
	// MaxHistory bounds history and sparkline_data_points.
	MaxHistory = 10000
)

// Extensions lists the file extensions LoadDashboard understands.
var Extensions = []string{".yaml", ".yml", ".toml"}

// LoadDashboard reads a YAML or TOML file at path, picking the decoder by
// extension, then applies defaults and validates the schema. fallback
// replaces DefaultRefreshInterval for files that set no refresh_interval.
func LoadDashboard(path string, fallback time.Duration) (*Dashboard, error) {
	var dash Dashboard
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := decodeYAML(path, &dash); err != nil {
			return nil, err
		}
	case ".toml":
		md, err := toml.DecodeFile(path, &dash)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: %s: unknown field %q", ErrInvalid, path, undecoded[0].String())
		}
	default:
		return nil, fmt.Errorf("%w: %s: unsupported extension %q", ErrInvalid, path, ext)
	}

	dash.Path = path
	dash.ApplyDefaults(fallback)
	if err := dash.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &dash, nil
}

func decodeYAML(path string, dash *Dashboard) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(dash); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %s: file is empty", ErrInvalid, path)
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ApplyDefaults fills every unset field with its default value.
func (d *Dashboard) ApplyDefaults(fallback time.Duration) {
	if d.Title == "" {
		d.Title = DefaultTitle
	}
	if d.RefreshInterval.Duration == 0 {
		d.RefreshInterval.Duration = fallback
		if fallback <= 0 {
			d.RefreshInterval.Duration = DefaultRefreshInterval
		}
	}
	if d.TimerMode == "" {
		d.TimerMode = TimerPerWidget
	}
	for i := range d.Widgets {
		w := &d.Widgets[i]
		if w.Type == "" {
			w.Type = TypeText
		}
		if w.FormatString == "" {
			w.FormatString = DefaultFormatString
		}
		if w.RowSpan == 0 {
			w.RowSpan = 1
		}
		if w.ColumnSpan == 0 {
			w.ColumnSpan = 1
		}
		if w.BorderStyle == "" {
			w.BorderStyle = BorderSolid
		}
		if w.SparklineSummary == "" {
			w.SparklineSummary = SummaryMax
		}
		if w.SparklineDataPoints == 0 {
			w.SparklineDataPoints = DefaultDataPoints
		}
		if w.ProgressTotal == 0 {
			w.ProgressTotal = DefaultProgressTotal
		}
	}
}

// Validate checks the schema. Grid placement, conditions, colors and
// format strings are checked when the dashboard is prepared for display.
func (d *Dashboard) Validate() error {
	if d.GridRows < 1 || d.GridColumns < 1 {
		return fmt.Errorf("%w: grid_rows and grid_columns must be at least 1 (got %dx%d)", ErrInvalid, d.GridRows, d.GridColumns)
	}
	if d.RefreshInterval.Duration < 0 {
		return fmt.Errorf("%w: refresh_interval must be positive", ErrInvalid)
	}
	switch d.TimerMode {
	case TimerPerWidget, TimerShared:
	default:
		return fmt.Errorf("%w: timer_mode %q (want per_widget or shared)", ErrInvalid, d.TimerMode)
	}
	if d.Source != nil {
		switch d.Source.Type {
		case SourcePrometheus, SourceSNMP:
		default:
			return fmt.Errorf("%w: source type %q (want prometheus or snmp)", ErrInvalid, d.Source.Type)
		}
		if d.Source.Type == SourceSNMP {
			if d.Source.Host == "" {
				return fmt.Errorf("%w: snmp source needs a host", ErrInvalid)
			}
			switch d.Source.Version {
			case "", "1", "2c":
			case "3":
				if d.Source.Username == "" {
					return fmt.Errorf("%w: snmp v3 source needs a username", ErrInvalid)
				}
			default:
				return fmt.Errorf("%w: snmp version %q (want 1, 2c or 3)", ErrInvalid, d.Source.Version)
			}
		}
	}
	if len(d.Widgets) == 0 {
		return fmt.Errorf("%w: no widgets", ErrInvalid)
	}
	for i := range d.Widgets {
		if err := d.Widgets[i].validate(); err != nil {
			return fmt.Errorf("widget %d (%s): %w", i, d.Widgets[i].Name(), err)
		}
	}
	return nil
}

func (w *Widget) validate() error {
	if strings.TrimSpace(w.Query) == "" {
		return fmt.Errorf("%w: query is required", ErrInvalid)
	}
	switch w.Type {
	case TypeText, TypeDigits, TypeSparkline, TypeProgress:
	default:
		return fmt.Errorf("%w: type %q", ErrInvalid, w.Type)
	}
	switch w.BorderStyle {
	case BorderNone, BorderSolid, BorderDashed, BorderDouble, BorderHeavy, BorderRounded:
	default:
		return fmt.Errorf("%w: border_style %q", ErrInvalid, w.BorderStyle)
	}
	switch w.SparklineSummary {
	case SummaryMax, SummaryMin, SummaryMean:
	default:
		return fmt.Errorf("%w: sparkline_summary %q", ErrInvalid, w.SparklineSummary)
	}
	if w.Row < 0 || w.Column < 0 {
		return fmt.Errorf("%w: row and column must not be negative", ErrInvalid)
	}
	if w.RowSpan < 1 || w.ColumnSpan < 1 {
		return fmt.Errorf("%w: row_span and column_span must be at least 1", ErrInvalid)
	}
	if w.Interval.Duration < 0 || w.Timeout.Duration < 0 {
		return fmt.Errorf("%w: interval and timeout must be positive", ErrInvalid)
	}
	if w.History < 0 || w.SparklineDataPoints < 0 {
		return fmt.Errorf("%w: history must be positive", ErrInvalid)
	}
	if w.History > MaxHistory {
		return fmt.Errorf("%w: history %d exceeds %d", ErrInvalid, w.History, MaxHistory)
	}
	if w.SparklineDataPoints > MaxHistory {
		return fmt.Errorf("%w: sparkline_data_points %d exceeds %d", ErrInvalid, w.SparklineDataPoints, MaxHistory)
	}
	if w.ProgressTotal < 0 {
		return fmt.Errorf("%w: progress_total must be positive", ErrInvalid)
	}
	for j, cf := range w.ConditionalFormats {
		if strings.TrimSpace(cf.Condition) == "" {
			return fmt.Errorf("%w: conditional_formats[%d]: condition cannot be empty", ErrInvalid, j)
		}
	}
	return nil
}

// SaveDashboard writes a Dashboard to path as YAML or TOML by extension.
func SaveDashboard(dash *Dashboard, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.NewEncoder(f).Encode(dash)
	default:
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(dash); err != nil {
			return err
		}
		return enc.Close()
	}
}

// ListDashboards returns the paths of all dashboard files in dir, sorted.
func ListDashboards(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && isDashboardFile(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Find resolves arg to a dashboard file. arg is used as-is when it names an
// existing file; otherwise it is looked up by base name in dir.
func Find(dir, arg string) (string, error) {
	if st, err := os.Stat(arg); err == nil && !st.IsDir() {
		return arg, nil
	}
	if dir != "" && !strings.ContainsRune(arg, filepath.Separator) {
		for _, ext := range Extensions {
			p := filepath.Join(dir, arg+ext)
			if _, err := os.Stat(p); err == nil {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("dashboard %q not found", arg)
}

func isDashboardFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
