package dashboard

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDashboardYAML = `
title: Node Overview
refresh_interval: 10
grid_rows: 2
grid_columns: 3
widgets:
  - type: digits
    label: CPU
    query: 100 - avg(rate(node_cpu_seconds_total{mode="idle"}[1m])) * 100
    format_string: "{value:.1f}%"
    row: 0
    column: 0
    column_span: 2
    border_style: heavy
    conditional_formats:
      - condition: value > 80
        border_color: $error
      - condition: value < 20
        visible: false
  - type: sparkline
    label: Load
    query: node_load1
    row: 0
    column: 2
    interval: 2s
    sparkline_summary: mean
  - query: up
    row: 1
    column: 0
    column_span: 3
`

const testDashboardTOML = `
title = "Node Overview"
refresh_interval = 10
grid_rows = 2
grid_columns = 3

[[widgets]]
type = "digits"
label = "CPU"
query = '100 - avg(rate(node_cpu_seconds_total{mode="idle"}[1m])) * 100'
format_string = "{value:.1f}%"
row = 0
column = 0
column_span = 2
border_style = "heavy"

[[widgets.conditional_formats]]
condition = "value > 80"
border_color = "$error"

[[widgets.conditional_formats]]
condition = "value < 20"
visible = false

[[widgets]]
type = "sparkline"
label = "Load"
query = "node_load1"
row = 0
column = 2
interval = "2s"
sparkline_summary = "mean"

[[widgets]]
query = "up"
row = 1
column = 0
column_span = 3
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func checkNodeOverview(t *testing.T, dash *Dashboard) {
	t.Helper()
	assert.Equal(t, "Node Overview", dash.Title)
	assert.Equal(t, 10*time.Second, dash.RefreshInterval.Duration)
	assert.Equal(t, TimerPerWidget, dash.TimerMode)
	require.Len(t, dash.Widgets, 3)

	cpu := dash.Widgets[0]
	assert.Equal(t, TypeDigits, cpu.Type)
	assert.Equal(t, BorderHeavy, cpu.BorderStyle)
	assert.Equal(t, 2, cpu.ColumnSpan)
	assert.Equal(t, 1, cpu.RowSpan)
	require.Len(t, cpu.ConditionalFormats, 2)
	assert.Equal(t, "$error", cpu.ConditionalFormats[0].BorderColor)
	assert.Nil(t, cpu.ConditionalFormats[0].Visible)
	require.NotNil(t, cpu.ConditionalFormats[1].Visible)
	assert.False(t, *cpu.ConditionalFormats[1].Visible)

	load := dash.Widgets[1]
	assert.Equal(t, 2*time.Second, load.Interval.Duration)
	assert.Equal(t, SummaryMean, load.SparklineSummary)
	assert.Equal(t, DefaultDataPoints, load.HistorySize())

	up := dash.Widgets[2]
	assert.Equal(t, TypeText, up.Type)
	assert.Equal(t, DefaultFormatString, up.FormatString)
	assert.Equal(t, BorderSolid, up.BorderStyle)
	assert.Equal(t, "up", up.Name())
	assert.Zero(t, up.HistorySize())
	assert.True(t, up.ShowsPercentage())
}

func TestLoadDashboardYAML(t *testing.T) {
	dash, err := LoadDashboard(writeFile(t, "node.yaml", testDashboardYAML), 0)
	require.NoError(t, err)
	checkNodeOverview(t, dash)
}

func TestLoadDashboardTOML(t *testing.T) {
	dash, err := LoadDashboard(writeFile(t, "node.toml", testDashboardTOML), 0)
	require.NoError(t, err)
	checkNodeOverview(t, dash)
}

func TestLoadDashboardDefaults(t *testing.T) {
	path := writeFile(t, "min.yml", "grid_rows: 1\ngrid_columns: 1\nwidgets:\n  - query: up\n    row: 0\n    column: 0\n")
	dash, err := LoadDashboard(path, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, dash.Title)
	assert.Equal(t, DefaultRefreshInterval, dash.RefreshInterval.Duration)
	assert.Equal(t, path, dash.Path)

	dash, err = LoadDashboard(path, 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, dash.RefreshInterval.Duration)
}

func TestRefreshIntervalForms(t *testing.T) {
	for in, want := range map[string]time.Duration{
		"5":     5 * time.Second,
		"2.5":   2500 * time.Millisecond,
		"1m30s": 90 * time.Second,
		`"750ms"`: 750 * time.Millisecond,
	} {
		src := "refresh_interval: " + in + "\ngrid_rows: 1\ngrid_columns: 1\nwidgets:\n  - query: up\n"
		dash, err := LoadDashboard(writeFile(t, "d.yaml", src), 0)
		require.NoError(t, err, in)
		assert.Equal(t, want, dash.RefreshInterval.Duration, in)
	}
}

func TestLoadDashboardRejects(t *testing.T) {
	cases := map[string]string{
		"unknown field":     "grid_rows: 1\ngrid_columns: 1\nbogus: 1\nwidgets:\n  - query: up\n",
		"no grid":           "widgets:\n  - query: up\n",
		"no widgets":        "grid_rows: 1\ngrid_columns: 1\n",
		"missing query":     "grid_rows: 1\ngrid_columns: 1\nwidgets:\n  - label: x\n",
		"bad type":          "grid_rows: 1\ngrid_columns: 1\nwidgets:\n  - query: up\n    type: gauge\n",
		"bad border":        "grid_rows: 1\ngrid_columns: 1\nwidgets:\n  - query: up\n    border_style: wavy\n",
		"bad summary":       "grid_rows: 1\ngrid_columns: 1\nwidgets:\n  - query: up\n    sparkline_summary: p99\n",
		"empty condition":   "grid_rows: 1\ngrid_columns: 1\nwidgets:\n  - query: up\n    conditional_formats:\n      - condition: ' '\n",
		"bad timer mode":    "grid_rows: 1\ngrid_columns: 1\ntimer_mode: cron\nwidgets:\n  - query: up\n",
		"bad source":        "grid_rows: 1\ngrid_columns: 1\nsource:\n  type: influx\nwidgets:\n  - query: up\n",
		"snmp without host": "grid_rows: 1\ngrid_columns: 1\nsource:\n  type: snmp\nwidgets:\n  - query: up\n",
		"snmp bad version":  "grid_rows: 1\ngrid_columns: 1\nsource:\n  type: snmp\n  host: r1\n  version: \"4\"\nwidgets:\n  - query: up\n",
		"snmp v3 no user":   "grid_rows: 1\ngrid_columns: 1\nsource:\n  type: snmp\n  host: r1\n  version: \"3\"\nwidgets:\n  - query: up\n",
		"negative row":      "grid_rows: 1\ngrid_columns: 1\nwidgets:\n  - query: up\n    row: -1\n",
		"empty":             "",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadDashboard(writeFile(t, "bad.yaml", src), 0)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadDashboardHistoryLimit(t *testing.T) {
	for field, msg := range map[string]string{
		"history":               "history 4611686018427387904 exceeds 10000",
		"sparkline_data_points": "sparkline_data_points 4611686018427387904 exceeds 10000",
	} {
		t.Run(field, func(t *testing.T) {
			src := "grid_rows: 1\ngrid_columns: 1\nwidgets:\n  - type: sparkline\n    query: up\n    " + field + ": 4611686018427387904\n"
			_, err := LoadDashboard(writeFile(t, "big.yaml", src), 0)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.ErrorContains(t, err, msg)
		})
	}

	src := "grid_rows: 1\ngrid_columns: 1\nwidgets:\n  - query: up\n    history: 10000\n"
	dash, err := LoadDashboard(writeFile(t, "max.yaml", src), 0)
	require.NoError(t, err)
	assert.Equal(t, MaxHistory, dash.Widgets[0].HistorySize())
}

func TestLoadDashboardBadDuration(t *testing.T) {
	_, err := LoadDashboard(writeFile(t, "d.yaml", "refresh_interval: soon\ngrid_rows: 1\ngrid_columns: 1\nwidgets:\n  - query: up\n"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "soon")
}

func TestLoadDashboardUnknownTOMLField(t *testing.T) {
	_, err := LoadDashboard(writeFile(t, "d.toml", "grid_rows = 1\ngrid_columns = 1\ncolour = 1\n[[widgets]]\nquery = \"up\"\n"), 0)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadDashboardExtension(t *testing.T) {
	_, err := LoadDashboard(writeFile(t, "d.json", "{}"), 0)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSaveDashboardRoundTrip(t *testing.T) {
	dash := &Dashboard{
		Title:           "Saved",
		RefreshInterval: Seconds(15),
		GridRows:        1,
		GridColumns:     2,
		Widgets: []Widget{
			{Query: "up", Row: 0, Column: 0, Interval: Seconds(3)},
			{Query: "node_load1", Row: 0, Column: 1, Type: TypeSparkline},
		},
	}
	for _, name := range []string{"out.yaml", "out.toml"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, SaveDashboard(dash, path))

		loaded, err := LoadDashboard(path, 0)
		require.NoError(t, err, name)
		assert.Equal(t, "Saved", loaded.Title)
		assert.Equal(t, 15*time.Second, loaded.RefreshInterval.Duration)
		assert.Equal(t, 3*time.Second, loaded.Widgets[0].Interval.Duration)
		assert.Equal(t, TypeSparkline, loaded.Widgets[1].Type)
	}
}

func TestListDashboards(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.toml", "c.yml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.yaml"), 0o755))

	paths, err := ListDashboards(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.toml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "c.yml"),
	}, paths)
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nodes.toml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	got, err := Find(dir, "nodes")
	require.NoError(t, err)
	assert.Equal(t, path, got)

	got, err = Find("", path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = Find(dir, "missing")
	assert.Error(t, err)
}
