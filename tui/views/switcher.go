package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tonhe/promenade/internal/engine"
	"github.com/tonhe/promenade/tui/keys"
	"github.com/tonhe/promenade/tui/styles"
)

// SwitcherAction describes what the app should do after a switcher key press.
type SwitcherAction int

const (
	// ActionNone means no action needed.
	ActionNone SwitcherAction = iota
	// ActionClose means the user wants to dismiss the switcher.
	ActionClose
	// ActionSwitch means the user selected a dashboard to show.
	ActionSwitch
)

// SwitcherItem represents a single dashboard entry in the switcher list.
type SwitcherItem struct {
	Name string
	Info engine.EngineInfo
}

// SwitcherView is a modal overlay that lists the dashboards in the carousel
// and jumps to the selected one.
type SwitcherView struct {
	sty     *styles.Styles
	items   []SwitcherItem
	current int
	cursor  int
	width   int
	height  int
}

// NewSwitcherView creates a new SwitcherView with the given styles.
func NewSwitcherView(sty *styles.Styles) SwitcherView {
	return SwitcherView{sty: sty}
}

// SetStyles swaps the styles after a theme change.
func (v *SwitcherView) SetStyles(sty *styles.Styles) { v.sty = sty }

// SetItems replaces the list. current is the visible dashboard; the cursor
// starts there.
func (v *SwitcherView) SetItems(items []SwitcherItem, current int) {
	v.items = items
	v.current = current
	v.cursor = max(0, min(current, len(items)-1))
}

// SetSize updates the available dimensions for the overlay.
func (v *SwitcherView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Cursor returns the index of the highlighted dashboard.
func (v SwitcherView) Cursor() int { return v.cursor }

// Update handles key messages for the switcher overlay.
func (v SwitcherView) Update(msg tea.Msg) (SwitcherView, tea.Cmd, SwitcherAction) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil, ActionNone
	}
	switch {
	case key.Matches(km, keys.DefaultKeyMap.Escape), key.Matches(km, keys.DefaultKeyMap.Switcher):
		return v, nil, ActionClose
	case key.Matches(km, keys.DefaultKeyMap.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(km, keys.DefaultKeyMap.Down):
		if v.cursor < len(v.items)-1 {
			v.cursor++
		}
	case key.Matches(km, keys.DefaultKeyMap.Enter):
		if len(v.items) > 0 {
			return v, nil, ActionSwitch
		}
	}
	return v, nil, ActionNone
}

// View renders the switcher as a centered modal box.
func (v SwitcherView) View() string {
	modalWidth := 44
	if v.width > 60 {
		modalWidth = min(v.width/2, 64)
	}
	modalWidth = max(modalWidth, 30)
	innerWidth := modalWidth - 6

	lines := make([]string, 0, len(v.items)+2)
	for i, item := range v.items {
		lines = append(lines, v.renderItem(i, item, innerWidth))
	}

	help := fmt.Sprintf("%s:show  %s:close",
		v.sty.ModalKey.Render("enter"),
		v.sty.ModalKey.Render("esc"),
	)
	lines = append(lines, "", v.sty.Dim.Render(help))

	modal := titledModal(v.sty, "Dashboards", strings.Join(lines, "\n"), innerWidth)
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, modal)
}

// renderItem renders a single dashboard line: cursor, name and status,
// with the status right-aligned.
func (v SwitcherView) renderItem(i int, item SwitcherItem, width int) string {
	cursor := "  "
	if i == v.cursor {
		cursor = "> "
	}
	name := item.Name
	if i == v.current {
		name += " *"
	}
	nameStyle := v.sty.ModalText
	if i == v.cursor {
		nameStyle = v.sty.Selected
	}

	var status string
	statusStyle := v.sty.Dim
	switch item.Info.State {
	case engine.EngineRunning:
		status = fmt.Sprintf("LIVE (%s polls)", humanize.Comma(int64(item.Info.PollCount)))
		statusStyle = v.sty.ModalKey
	case engine.EnginePaused:
		status = "paused"
	default:
		status = "stopped"
	}

	padLen := max(2, width-lipgloss.Width(cursor)-lipgloss.Width(name)-lipgloss.Width(status))
	return v.sty.ModalKey.Render(cursor) +
		nameStyle.Render(name) +
		strings.Repeat(" ", padLen) +
		statusStyle.Render(status)
}
