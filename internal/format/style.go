// Package format turns a widget's current value into visual attributes
// and display text.
package format

import (
	"fmt"

	"github.com/tonhe/promenade/internal/dashboard"
	"github.com/tonhe/promenade/internal/expr"
)

// Style is a set of color specs plus visibility. Colors are unresolved
// specs ("$error", "#ff0000", "red"); an empty string means "inherit".
type Style struct {
	BorderColor     string
	TextColor       string
	BackgroundColor string
	Visible         bool
}

// Rule is a compiled conditional format.
type Rule struct {
	Cond            *expr.Expr
	BorderColor     string
	TextColor       string
	BackgroundColor string
	Visible         *bool
}

// CompileRules compiles every condition, naming the failing rule by index.
func CompileRules(formats []dashboard.ConditionalFormat) ([]Rule, error) {
	rules := make([]Rule, 0, len(formats))
	for i, cf := range formats {
		cond, err := expr.Compile(cf.Condition)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, Rule{
			Cond:            cond,
			BorderColor:     cf.BorderColor,
			TextColor:       cf.TextColor,
			BackgroundColor: cf.BackgroundColor,
			Visible:         cf.Visible,
		})
	}
	return rules, nil
}

// ResolveStyle applies rules to value on top of base. Rules are reduced in
// order, so for each attribute the last matching rule that sets it wins.
// Attributes no matching rule sets keep base's value. A nil value
// (nothing polled yet) returns base, visible.
func ResolveStyle(value *float64, rules []Rule, base Style) Style {
	out := base
	if value == nil {
		out.Visible = true
		return out
	}
	for _, r := range rules {
		if !r.Cond.Eval(*value) {
			continue
		}
		if r.BorderColor != "" {
			out.BorderColor = r.BorderColor
		}
		if r.TextColor != "" {
			out.TextColor = r.TextColor
		}
		if r.BackgroundColor != "" {
			out.BackgroundColor = r.BackgroundColor
		}
		if r.Visible != nil {
			out.Visible = *r.Visible
		}
	}
	return out
}
