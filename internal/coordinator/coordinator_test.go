package coordinator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonhe/promenade/internal/dashboard"
	"github.com/tonhe/promenade/internal/engine"
	"github.com/tonhe/promenade/internal/expr"
	"github.com/tonhe/promenade/internal/format"
	"github.com/tonhe/promenade/internal/layout"
	"github.com/tonhe/promenade/internal/source"
	"github.com/tonhe/promenade/internal/theme"
)

// scriptSource answers successive queries from a script; the last entry
// repeats once the script runs out.
type scriptSource struct {
	mu     sync.Mutex
	script []func() (engine.Sample, error)
	calls  int
}

func (s *scriptSource) Query(ctx context.Context, q string) (engine.Sample, error) {
	s.mu.Lock()
	i := min(s.calls, len(s.script)-1)
	s.calls++
	s.mu.Unlock()
	return s.script[i]()
}

func value(v float64) func() (engine.Sample, error) {
	return func() (engine.Sample, error) { return engine.Sample{Value: v, Timestamp: time.Now()}, nil }
}

func failing(err error) func() (engine.Sample, error) {
	return func() (engine.Sample, error) { return engine.Sample{}, err }
}

func sourceOf(src engine.Source) SourceFactory {
	return func(*dashboard.Dashboard) (engine.Source, error) { return src, nil }
}

func newDash(title string, rows, cols int, widgets ...dashboard.Widget) *dashboard.Dashboard {
	d := &dashboard.Dashboard{Title: title, GridRows: rows, GridColumns: cols, Widgets: widgets}
	d.ApplyDefaults(time.Hour)
	return d
}

func cpuWidget(formats ...dashboard.ConditionalFormat) dashboard.Widget {
	return dashboard.Widget{Label: "CPU", Query: "cpu", FormatString: "{value:.0f}%", ConditionalFormats: formats}
}

func start(t *testing.T, c *Coordinator) {
	t.Helper()
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(c.Stop)
}

func waitStatus(t *testing.T, c *Coordinator, want Status) RenderInstruction {
	t.Helper()
	var ri RenderInstruction
	require.Eventually(t, func() bool {
		ri = c.Frame().Widgets[0]
		return ri.Status == want
	}, 2*time.Second, 5*time.Millisecond)
	return ri
}

func TestCarouselWraps(t *testing.T) {
	c, err := NewCarousel(3)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Index())
	assert.Equal(t, 2, c.Previous())
	assert.Equal(t, 0, c.Next())
	assert.Equal(t, 1, c.Next())
	assert.Equal(t, 2, c.Next())
	assert.Equal(t, 0, c.Next())
	assert.Equal(t, 3, c.Len())

	require.NoError(t, c.Set(2))
	assert.Equal(t, 0, c.Next())
	assert.Error(t, c.Set(3))
}

func TestCarouselEmpty(t *testing.T) {
	_, err := NewCarousel(0)
	assert.Error(t, err)
}

func TestPrepareBoundsCheckedBeforeOverlap(t *testing.T) {
	d := newDash("grid", 2, 2,
		dashboard.Widget{Label: "W1", Query: "a", Row: 0, Column: 0},
		dashboard.Widget{Label: "W2", Query: "b", Row: 0, Column: 1, ColumnSpan: 2},
	)
	_, err := Prepare(d, theme.Default())
	require.Error(t, err)

	var le *layout.Error
	require.True(t, errors.As(err, &le))
	assert.Equal(t, layout.OutOfBounds, le.Kind)
	assert.Equal(t, 1, le.Widget)
	assert.Contains(t, err.Error(), `dashboard "grid"`)
	assert.Contains(t, err.Error(), "W2")
}

func TestPrepareOverlap(t *testing.T) {
	d := newDash("grid", 2, 2,
		dashboard.Widget{Query: "a", RowSpan: 2},
		dashboard.Widget{Query: "b", Row: 1, Column: 0},
	)
	_, err := Prepare(d, theme.Default())
	var le *layout.Error
	require.True(t, errors.As(err, &le))
	assert.Equal(t, layout.Overlap, le.Kind)
	assert.Equal(t, 1, le.Widget)
	assert.Equal(t, 0, le.Other)
}

func TestPrepareRejects(t *testing.T) {
	tests := []struct {
		name   string
		widget dashboard.Widget
		src    *dashboard.SourceConfig
		target error
		msg    string
	}{
		{
			name:   "unknown theme color",
			widget: cpuWidget(dashboard.ConditionalFormat{Condition: "value > 1"}, dashboard.ConditionalFormat{Condition: "value > 2", BorderColor: "$danger"}),
			target: theme.ErrUnknownThemeColor,
			msg:    "rule 1: border_color",
		},
		{
			name:   "invalid color",
			widget: cpuWidget(dashboard.ConditionalFormat{Condition: "value > 1", BackgroundColor: "#12345"}),
			target: theme.ErrInvalidColor,
			msg:    "background_color",
		},
		{
			name:   "unsafe condition",
			widget: cpuWidget(dashboard.ConditionalFormat{Condition: "__import__('os')"}),
			target: expr.ErrUnsafeExpression,
			msg:    "rule 0",
		},
		{
			name:   "malformed condition",
			widget: cpuWidget(dashboard.ConditionalFormat{Condition: "value >"}),
			target: expr.ErrMalformedExpression,
			msg:    "rule 0",
		},
		{
			name:   "bad format string",
			widget: dashboard.Widget{Label: "CPU", Query: "cpu", FormatString: "{value:q}"},
			target: format.ErrInvalidFormat,
			msg:    "format_string",
		},
		{
			name:   "snmp query is not an OID",
			widget: dashboard.Widget{Label: "Uptime", Query: "sysUpTime"},
			src:    &dashboard.SourceConfig{Type: dashboard.SourceSNMP, Host: "r1"},
			target: source.ErrInvalidOID,
			msg:    "query",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDash("ops", 1, 1, tt.widget)
			d.Source = tt.src
			_, err := Prepare(d, theme.Default())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.Contains(t, err.Error(), `dashboard "ops"`)
			assert.Contains(t, err.Error(), "widget 0")
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestNewAbortsOnAnyBadDashboard(t *testing.T) {
	good := newDash("good", 1, 1, cpuWidget())
	bad := newDash("bad", 1, 1, cpuWidget(dashboard.ConditionalFormat{Condition: "value.real > 1"}))
	var built atomic.Int32
	factory := func(*dashboard.Dashboard) (engine.Source, error) {
		built.Add(1)
		return &scriptSource{script: []func() (engine.Sample, error){value(1)}}, nil
	}
	_, err := New([]*dashboard.Dashboard{good, bad}, factory, Options{})
	assert.ErrorIs(t, err, expr.ErrUnsafeExpression)
	assert.Contains(t, err.Error(), `dashboard "bad"`)
	assert.Zero(t, built.Load(), "no source is built before validation passes")
}

func TestNewRequiresDashboards(t *testing.T) {
	_, err := New(nil, sourceOf(&scriptSource{}), Options{})
	assert.Error(t, err)
}

func TestFramePendingBeforeStart(t *testing.T) {
	c, err := New([]*dashboard.Dashboard{newDash("ops", 1, 1, cpuWidget())}, sourceOf(&scriptSource{}), Options{})
	require.NoError(t, err)

	f := c.Frame()
	require.Len(t, f.Widgets, 1)
	ri := f.Widgets[0]
	assert.Equal(t, StatusPending, ri.Status)
	assert.Equal(t, "Loading...", ri.Text)
	assert.True(t, ri.Visible)
	assert.Equal(t, theme.Default().Palette["secondary"], ri.BorderColor)
	assert.Equal(t, theme.Default().Palette["foreground"], ri.TextColor)
	assert.Equal(t, "ops", f.Title)
	assert.Equal(t, 1, f.Count)
}

func TestStaleValueKeepsStyle(t *testing.T) {
	src := &scriptSource{script: []func() (engine.Sample, error){
		value(92),
		failing(context.DeadlineExceeded),
	}}
	dash := newDash("ops", 1, 1, cpuWidget(dashboard.ConditionalFormat{Condition: "value>80", BorderColor: "$error"}))
	c, err := New([]*dashboard.Dashboard{dash}, sourceOf(src), Options{Timeout: time.Second})
	require.NoError(t, err)
	start(t, c)

	errColor := theme.Default().Palette["error"]

	ok := waitStatus(t, c, StatusOK)
	assert.Equal(t, "92%", ok.Text)
	assert.Equal(t, errColor, ok.BorderColor)
	require.NotNil(t, ok.Value)
	assert.Equal(t, 92.0, *ok.Value)

	require.NoError(t, c.RefreshNow())
	stale := waitStatus(t, c, StatusStale)
	assert.Equal(t, engine.PollTimeout, stale.Error)
	assert.Equal(t, "92%", stale.Text)
	assert.Equal(t, errColor, stale.BorderColor)
	require.NotNil(t, stale.Value)
	assert.Equal(t, 92.0, *stale.Value)
}

func TestNoDataWhenFirstPollFails(t *testing.T) {
	src := &scriptSource{script: []func() (engine.Sample, error){failing(engine.ErrEmptyResult)}}
	c, err := New([]*dashboard.Dashboard{newDash("ops", 1, 1, cpuWidget())}, sourceOf(src), Options{})
	require.NoError(t, err)
	start(t, c)

	ri := waitStatus(t, c, StatusNoData)
	assert.Equal(t, "No data", ri.Text)
	assert.Equal(t, engine.PollEmptyResult, ri.Error)
	assert.Nil(t, ri.Value)
}

func TestHiddenByRule(t *testing.T) {
	hide := false
	src := &scriptSource{script: []func() (engine.Sample, error){value(0)}}
	dash := newDash("ops", 1, 1, cpuWidget(dashboard.ConditionalFormat{Condition: "value == 0", Visible: &hide}))
	c, err := New([]*dashboard.Dashboard{dash}, sourceOf(src), Options{})
	require.NoError(t, err)
	start(t, c)

	ri := waitStatus(t, c, StatusOK)
	assert.False(t, ri.Visible)
	assert.Equal(t, layout.Rect{RowSpan: 1, ColumnSpan: 1}, ri.Rect)
}

func TestNavigationKeepsPolling(t *testing.T) {
	var polls [2]atomic.Int32
	factory := func(d *dashboard.Dashboard) (engine.Source, error) {
		i := 0
		if d.Title == "b" {
			i = 1
		}
		return &scriptSource{script: []func() (engine.Sample, error){func() (engine.Sample, error) {
			polls[i].Add(1)
			return engine.Sample{Value: 1}, nil
		}}}, nil
	}
	a := newDash("a", 1, 1, cpuWidget())
	b := newDash("b", 1, 1, cpuWidget())
	c, err := New([]*dashboard.Dashboard{a, b}, factory, Options{})
	require.NoError(t, err)
	start(t, c)

	require.Eventually(t, func() bool { return polls[0].Load() == 1 && polls[1].Load() == 1 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, c.Next())
	board, idx := c.Current()
	assert.Equal(t, 1, idx)
	assert.Equal(t, "b", board.Dash.Title)
	assert.Equal(t, "b", c.Frame().Title)
	assert.Equal(t, 0, c.Next())
	assert.Equal(t, 1, c.Previous())

	require.NoError(t, c.RefreshNow())
	require.Eventually(t, func() bool { return polls[1].Load() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), polls[0].Load(), "refresh only touches the visible dashboard")
	assert.Equal(t, engine.EngineRunning, c.Info().State)
}

func TestPauseInactive(t *testing.T) {
	src := sourceOf(&scriptSource{script: []func() (engine.Sample, error){value(1)}})
	a := newDash("a", 1, 1, cpuWidget())
	b := newDash("b", 1, 1, cpuWidget())
	c, err := New([]*dashboard.Dashboard{a, b}, src, Options{PauseInactive: true})
	require.NoError(t, err)
	start(t, c)

	paused := func(key string) bool {
		snap, err := c.manager.Snapshot(key)
		return err == nil && snap.Paused
	}
	require.Eventually(t, func() bool { return paused("001") && !paused("000") }, time.Second, 5*time.Millisecond)

	c.Next()
	require.Eventually(t, func() bool { return paused("000") && !paused("001") }, time.Second, 5*time.Millisecond)
	assert.Equal(t, engine.EngineRunning, c.Info().State)
}

func TestShow(t *testing.T) {
	a := newDash("a", 1, 1, cpuWidget())
	b := newDash("b", 1, 1, cpuWidget())
	c, err := New([]*dashboard.Dashboard{a, b}, sourceOf(&scriptSource{}), Options{})
	require.NoError(t, err)

	require.NoError(t, c.Show(1))
	_, idx := c.Current()
	assert.Equal(t, 1, idx)
	assert.Error(t, c.Show(5))
	_, idx = c.Current()
	assert.Equal(t, 1, idx)
}

func TestCycleThemeResolvesAgainstNewTheme(t *testing.T) {
	dash := newDash("ops", 1, 1, cpuWidget())
	c, err := New([]*dashboard.Dashboard{dash}, sourceOf(&scriptSource{}), Options{Theme: theme.Get("dracula")})
	require.NoError(t, err)

	before := c.Frame().Widgets[0].BorderColor
	next := c.CycleTheme()
	assert.Equal(t, next, c.Theme())
	assert.NotEqual(t, "dracula", next.Slug)
	assert.Equal(t, next.Palette["secondary"], c.Frame().Widgets[0].BorderColor)
	assert.NotEqual(t, before, c.Frame().Widgets[0].BorderColor)
}

func TestUpdatesSignalled(t *testing.T) {
	src := &scriptSource{script: []func() (engine.Sample, error){value(3)}}
	c, err := New([]*dashboard.Dashboard{newDash("ops", 1, 1, cpuWidget())}, sourceOf(src), Options{})
	require.NoError(t, err)
	start(t, c)

	waitStatus(t, c, StatusOK)
	select {
	case <-c.Updates():
	case <-time.After(time.Second):
		t.Fatal("no update signalled")
	}
}

func TestSourceFactoryError(t *testing.T) {
	factory := func(*dashboard.Dashboard) (engine.Source, error) { return nil, errors.New("no route") }
	c, err := New([]*dashboard.Dashboard{newDash("ops", 1, 1, cpuWidget())}, factory, Options{})
	require.NoError(t, err)
	err = c.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no route")
}

func TestRenderProgress(t *testing.T) {
	w := dashboard.Widget{Type: dashboard.TypeProgress, Query: "q", ProgressTotal: 200, FormatString: "{value}"}
	v := 50.0
	st := engine.WidgetState{LastValue: &v, DisplayText: "50.0", Polls: 1}
	ri := renderWidget(&w, layout.Rect{RowSpan: 1, ColumnSpan: 1}, nil, st, theme.Default())
	assert.InDelta(t, 0.25, ri.Progress, 1e-9)
	assert.True(t, ri.ShowPercentage)

	v = 500
	ri = renderWidget(&w, layout.Rect{RowSpan: 1, ColumnSpan: 1}, nil, st, theme.Default())
	assert.Equal(t, 1.0, ri.Progress)

	v = -5
	ri = renderWidget(&w, layout.Rect{RowSpan: 1, ColumnSpan: 1}, nil, st, theme.Default())
	assert.Equal(t, 0.0, ri.Progress)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "pending", StatusPending.String())
	assert.Equal(t, "no data", StatusNoData.String())
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "stale", StatusStale.String())
}

func TestInfosInCarouselOrder(t *testing.T) {
	a := newDash("a", 1, 1, cpuWidget())
	b := newDash("b", 1, 1, cpuWidget())
	c, err := New([]*dashboard.Dashboard{a, b}, sourceOf(&scriptSource{script: []func() (engine.Sample, error){value(1)}}), Options{})
	require.NoError(t, err)

	infos := c.Infos()
	require.Len(t, infos, 2)
	assert.Equal(t, engine.EngineStopped, infos[0].State)
	assert.Equal(t, "b", infos[1].Title)

	start(t, c)
	infos = c.Infos()
	assert.Equal(t, engine.EngineRunning, infos[0].State)
	assert.Equal(t, "001", infos[1].Key)
}

func TestFrameSummary(t *testing.T) {
	d := newDash("a", 1, 2, cpuWidget(), dashboard.Widget{Label: "mem", Query: "mem", Column: 1})
	d.RefreshInterval = dashboard.Seconds(30)
	c, err := New([]*dashboard.Dashboard{d}, sourceOf(&scriptSource{script: []func() (engine.Sample, error){value(7)}}), Options{})
	require.NoError(t, err)

	f := c.Frame()
	assert.Equal(t, 30*time.Second, f.Interval)
	assert.Equal(t, 0, f.Healthy())
	assert.True(t, f.LastPoll.IsZero())

	start(t, c)
	require.Eventually(t, func() bool { return c.Frame().Healthy() == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.False(t, c.Frame().LastPoll.IsZero())
}
