package coordinator

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tonhe/promenade/internal/dashboard"
	"github.com/tonhe/promenade/internal/format"
	"github.com/tonhe/promenade/internal/layout"
	"github.com/tonhe/promenade/internal/source"
	"github.com/tonhe/promenade/internal/theme"
)

// BaseStyle is what a widget looks like before any rule matches.
var BaseStyle = format.Style{BorderColor: "$secondary", TextColor: "$foreground", Visible: true}

// Board is a dashboard that passed every configuration-time check: its
// widgets are placed on the grid and their rules compiled.
type Board struct {
	Key   string
	Name  string
	Dash  *dashboard.Dashboard
	Rects []layout.Rect
	Rules [][]format.Rule
}

// Prepare validates dash for display with theme t. Errors name the
// dashboard, the widget and, where relevant, the rule and field at fault.
func Prepare(dash *dashboard.Dashboard, t *theme.Theme) (*Board, error) {
	name := boardName(dash)
	fail := func(err error) (*Board, error) {
		return nil, fmt.Errorf("dashboard %q: %w", name, err)
	}

	rects, err := layout.ValidateAndPlace(dash.Grid(), dash.Placements())
	if err != nil {
		var le *layout.Error
		if errors.As(err, &le) {
			return fail(fmt.Errorf("widget %d (%s): %w", le.Widget, dash.Widgets[le.Widget].Name(), err))
		}
		return fail(err)
	}

	for _, spec := range []string{BaseStyle.BorderColor, BaseStyle.TextColor} {
		if err := theme.Validate(spec, t); err != nil {
			return fail(err)
		}
	}

	b := &Board{Name: name, Dash: dash, Rects: rects, Rules: make([][]format.Rule, len(dash.Widgets))}
	for i := range dash.Widgets {
		w := &dash.Widgets[i]
		wrap := func(err error) (*Board, error) {
			return fail(fmt.Errorf("widget %d (%s): %w", i, w.Name(), err))
		}
		if err := format.ValidateText(w.FormatString); err != nil {
			return wrap(fmt.Errorf("format_string: %w", err))
		}
		if err := source.CheckQuery(dash.Source, w.Query); err != nil {
			return wrap(fmt.Errorf("query: %w", err))
		}
		rules, err := format.CompileRules(w.ConditionalFormats)
		if err != nil {
			return wrap(err)
		}
		for j, cf := range w.ConditionalFormats {
			if err := checkRuleColors(cf, t); err != nil {
				return wrap(fmt.Errorf("rule %d: %w", j, err))
			}
		}
		b.Rules[i] = rules
	}
	return b, nil
}

func checkRuleColors(cf dashboard.ConditionalFormat, t *theme.Theme) error {
	fields := []struct{ name, spec string }{
		{"border_color", cf.BorderColor},
		{"text_color", cf.TextColor},
		{"background_color", cf.BackgroundColor},
	}
	for _, f := range fields {
		if f.spec == "" {
			continue
		}
		if err := theme.Validate(f.spec, t); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return nil
}

// boardName identifies a dashboard in messages: its file name when it was
// loaded from disk, else its title.
func boardName(d *dashboard.Dashboard) string {
	if d.Path != "" {
		return strings.TrimSuffix(filepath.Base(d.Path), filepath.Ext(d.Path))
	}
	return d.Title
}
