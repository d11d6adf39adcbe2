package coordinator

import (
	"math"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/promenade/internal/dashboard"
	"github.com/tonhe/promenade/internal/engine"
	"github.com/tonhe/promenade/internal/format"
	"github.com/tonhe/promenade/internal/layout"
	"github.com/tonhe/promenade/internal/theme"
)

// Status describes how current a widget's value is.
type Status int

const (
	// StatusPending means no poll has finished yet.
	StatusPending Status = iota
	// StatusNoData means every poll so far has failed.
	StatusNoData
	StatusOK
	// StatusStale means the last poll failed and an older value is shown.
	StatusStale
)

func (s Status) String() string {
	switch s {
	case StatusNoData:
		return "no data"
	case StatusOK:
		return "ok"
	case StatusStale:
		return "stale"
	}
	return "pending"
}

// RenderInstruction is everything needed to paint one widget. Colors are
// resolved against the active theme; an empty color means the terminal
// default.
type RenderInstruction struct {
	Rect     layout.Rect
	Title    string
	Subtitle string
	Text     string

	BorderColor     lipgloss.Color
	TextColor       lipgloss.Color
	BackgroundColor lipgloss.Color
	BorderStyle     dashboard.BorderStyle
	Visible         bool

	Status Status
	Error  engine.ErrorKind
	Kind   dashboard.WidgetType

	// Value is the last good reading, nil while pending.
	Value   *float64
	History []float64
	Summary dashboard.Summary
	// Progress is Value/progress_total clamped to [0,1].
	Progress       float64
	ShowPercentage bool
}

// Frame is the render plan for the visible dashboard.
type Frame struct {
	Index    int
	Count    int
	Title    string
	Grid     layout.GridSpec
	Theme    *theme.Theme
	Paused   bool
	Interval time.Duration
	LastPoll time.Time
	Errors   int
	Widgets  []RenderInstruction
}

// Healthy counts the widgets whose last poll succeeded.
func (f Frame) Healthy() int {
	n := 0
	for _, w := range f.Widgets {
		if w.Status == StatusOK {
			n++
		}
	}
	return n
}

// Frame builds render instructions for the visible dashboard from its most
// recent snapshot. It never blocks on polling.
func (c *Coordinator) Frame() Frame {
	b, idx := c.Current()
	t := c.Theme()
	snap := c.snapshot(b)
	return Frame{
		Index:    idx,
		Count:    len(c.boards),
		Title:    b.Dash.Title,
		Grid:     b.Dash.Grid(),
		Theme:    t,
		Paused:   snap.Paused,
		Interval: b.Dash.RefreshInterval.Duration,
		LastPoll: snap.LastPoll,
		Errors:   snap.ErrorCount,
		Widgets:  Render(b, snap, t),
	}
}

// Render styles every widget of b for snapshot snap under theme t.
func Render(b *Board, snap *engine.DashboardSnapshot, t *theme.Theme) []RenderInstruction {
	out := make([]RenderInstruction, len(b.Dash.Widgets))
	for i := range b.Dash.Widgets {
		var st engine.WidgetState
		if i < len(snap.Widgets) {
			st = snap.Widgets[i]
		}
		out[i] = renderWidget(&b.Dash.Widgets[i], b.Rects[i], b.Rules[i], st, t)
	}
	return out
}

func renderWidget(w *dashboard.Widget, rect layout.Rect, rules []format.Rule, st engine.WidgetState, t *theme.Theme) RenderInstruction {
	style := format.ResolveStyle(st.LastValue, rules, BaseStyle)
	ri := RenderInstruction{
		Rect:            rect,
		Title:           w.Label,
		Subtitle:        w.Subtitle,
		Text:            st.DisplayText,
		BorderColor:     resolve(style.BorderColor, t),
		TextColor:       resolve(style.TextColor, t),
		BackgroundColor: resolve(style.BackgroundColor, t),
		BorderStyle:     w.BorderStyle,
		Visible:         style.Visible,
		Error:           st.LastError,
		Kind:            w.Type,
		Value:           st.LastValue,
		History:         st.History,
		Summary:         w.SparklineSummary,
		ShowPercentage:  w.ShowsPercentage(),
	}

	switch {
	case st.LastValue == nil && st.Polls == 0:
		ri.Status = StatusPending
		ri.Text = "Loading..."
	case st.LastValue == nil:
		ri.Status = StatusNoData
		ri.Text = "No data"
	case st.LastError != engine.NoError:
		ri.Status = StatusStale
	default:
		ri.Status = StatusOK
	}

	if st.LastValue != nil && w.ProgressTotal > 0 {
		p := *st.LastValue / w.ProgressTotal
		if math.IsNaN(p) {
			p = 0
		}
		ri.Progress = math.Max(0, math.Min(1, p))
	}
	return ri
}

// resolve maps a spec onto t. Specs were validated at load time and every
// theme shares the same palette names, so failures only leave the default.
func resolve(spec string, t *theme.Theme) lipgloss.Color {
	if spec == "" {
		return ""
	}
	c, err := theme.Resolve(spec, t)
	if err != nil {
		return ""
	}
	return c
}
