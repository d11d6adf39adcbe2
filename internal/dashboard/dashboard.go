package dashboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tonhe/promenade/internal/layout"
)

// WidgetType selects how a widget renders its value.
type WidgetType string

const (
	TypeText      WidgetType = "text"
	TypeDigits    WidgetType = "digits"
	TypeSparkline WidgetType = "sparkline"
	TypeProgress  WidgetType = "progress"
)

// BorderStyle is the frame drawn around a widget.
type BorderStyle string

const (
	BorderNone    BorderStyle = "none"
	BorderSolid   BorderStyle = "solid"
	BorderDashed  BorderStyle = "dashed"
	BorderDouble  BorderStyle = "double"
	BorderHeavy   BorderStyle = "heavy"
	BorderRounded BorderStyle = "rounded"
)

// TimerMode controls whether widgets tick independently or together.
type TimerMode string

const (
	TimerPerWidget TimerMode = "per_widget"
	TimerShared    TimerMode = "shared"
)

// Summary is the aggregate shown beside a sparkline.
type Summary string

const (
	SummaryMax  Summary = "max"
	SummaryMin  Summary = "min"
	SummaryMean Summary = "mean"
)

// Source type names.
const (
	SourcePrometheus = "prometheus"
	SourceSNMP       = "snmp"
)

// Dashboard represents a complete dashboard configuration loaded from YAML
// or TOML.
type Dashboard struct {
	Title           string        `yaml:"title" toml:"title"`
	RefreshInterval Duration      `yaml:"refresh_interval" toml:"refresh_interval"`
	GridRows        int           `yaml:"grid_rows" toml:"grid_rows"`
	GridColumns     int           `yaml:"grid_columns" toml:"grid_columns"`
	TimerMode       TimerMode     `yaml:"timer_mode,omitempty" toml:"timer_mode,omitempty"`
	Source          *SourceConfig `yaml:"source,omitempty" toml:"source,omitempty"`
	Widgets         []Widget      `yaml:"widgets" toml:"widgets"`

	// Path is the file the dashboard was loaded from.
	Path string `yaml:"-" toml:"-"`
}

// SourceConfig selects the metrics backend for one dashboard.
type SourceConfig struct {
	Type      string `yaml:"type" toml:"type"`
	URL       string `yaml:"url,omitempty" toml:"url,omitempty"`
	Host      string `yaml:"host,omitempty" toml:"host,omitempty"`
	Port      int    `yaml:"port,omitempty" toml:"port,omitempty"`
	Community string `yaml:"community,omitempty" toml:"community,omitempty"`
	Version   string `yaml:"version,omitempty" toml:"version,omitempty"`

	// SNMPv3 user security.
	Username       string `yaml:"username,omitempty" toml:"username,omitempty"`
	AuthProtocol   string `yaml:"auth_protocol,omitempty" toml:"auth_protocol,omitempty"`
	AuthPassphrase string `yaml:"auth_passphrase,omitempty" toml:"auth_passphrase,omitempty"`
	PrivProtocol   string `yaml:"priv_protocol,omitempty" toml:"priv_protocol,omitempty"`
	PrivPassphrase string `yaml:"priv_passphrase,omitempty" toml:"priv_passphrase,omitempty"`
}

// Widget is one grid cell showing the result of one query.
type Widget struct {
	Type               WidgetType          `yaml:"type" toml:"type"`
	Label              string              `yaml:"label,omitempty" toml:"label,omitempty"`
	Subtitle           string              `yaml:"subtitle,omitempty" toml:"subtitle,omitempty"`
	Query              string              `yaml:"query" toml:"query"`
	FormatString       string              `yaml:"format_string" toml:"format_string"`
	Row                int                 `yaml:"row" toml:"row"`
	Column             int                 `yaml:"column" toml:"column"`
	RowSpan            int                 `yaml:"row_span" toml:"row_span"`
	ColumnSpan         int                 `yaml:"column_span" toml:"column_span"`
	BorderStyle        BorderStyle         `yaml:"border_style" toml:"border_style"`
	ConditionalFormats []ConditionalFormat `yaml:"conditional_formats,omitempty" toml:"conditional_formats,omitempty"`

	Interval Duration `yaml:"interval,omitempty" toml:"interval,omitempty"`
	Timeout  Duration `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	History  int      `yaml:"history,omitempty" toml:"history,omitempty"`

	ProgressTotal       float64 `yaml:"progress_total,omitempty" toml:"progress_total,omitempty"`
	ShowPercentage      *bool   `yaml:"show_percentage,omitempty" toml:"show_percentage,omitempty"`
	SparklineSummary    Summary `yaml:"sparkline_summary,omitempty" toml:"sparkline_summary,omitempty"`
	SparklineDataPoints int     `yaml:"sparkline_data_points,omitempty" toml:"sparkline_data_points,omitempty"`
}

// ConditionalFormat overrides widget style attributes while its condition
// holds. Empty color fields and a nil Visible leave the attribute alone.
type ConditionalFormat struct {
	Condition       string `yaml:"condition" toml:"condition"`
	BorderColor     string `yaml:"border_color,omitempty" toml:"border_color,omitempty"`
	TextColor       string `yaml:"text_color,omitempty" toml:"text_color,omitempty"`
	BackgroundColor string `yaml:"background_color,omitempty" toml:"background_color,omitempty"`
	Visible         *bool  `yaml:"visible,omitempty" toml:"visible,omitempty"`
}

// Grid returns the dashboard's grid dimensions.
func (d *Dashboard) Grid() layout.GridSpec {
	return layout.GridSpec{Rows: d.GridRows, Columns: d.GridColumns}
}

// Placements returns every widget's grid placement in configuration order.
func (d *Dashboard) Placements() []layout.Placement {
	out := make([]layout.Placement, len(d.Widgets))
	for i := range d.Widgets {
		out[i] = d.Widgets[i].Placement()
	}
	return out
}

// Placement returns the widget's grid position.
func (w *Widget) Placement() layout.Placement {
	return layout.Placement{Row: w.Row, Column: w.Column, RowSpan: w.RowSpan, ColumnSpan: w.ColumnSpan}
}

// Name returns the label, falling back to the query.
func (w *Widget) Name() string {
	if w.Label != "" {
		return w.Label
	}
	return w.Query
}

// HistorySize is the number of recent samples to keep. Sparklines keep
// sparkline_data_points unless history is set explicitly.
func (w *Widget) HistorySize() int {
	if w.History > 0 {
		return w.History
	}
	if w.Type == TypeSparkline {
		return w.SparklineDataPoints
	}
	return 0
}

// ShowsPercentage reports whether a progress widget prints its percentage.
func (w *Widget) ShowsPercentage() bool {
	return w.ShowPercentage == nil || *w.ShowPercentage
}

// Duration is a time.Duration that decodes from a bare number of seconds
// or a Go duration string such as "1m30s".
type Duration struct {
	time.Duration
}

// Seconds wraps n seconds as a Duration.
func Seconds(n float64) Duration {
	return Duration{time.Duration(n * float64(time.Second))}
}

func (d Duration) IsZero() bool { return d.Duration == 0 }

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(f * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", node.Line)
	}
	v, err := parseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalTOML accepts integers, floats and strings.
func (d *Duration) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case int64:
		d.Duration = time.Duration(x) * time.Second
	case float64:
		d.Duration = time.Duration(x * float64(time.Second))
	case string:
		parsed, err := parseDuration(x)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %v", v)
	}
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
