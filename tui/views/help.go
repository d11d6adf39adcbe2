package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/promenade/tui/keys"
	"github.com/tonhe/promenade/tui/styles"
)

// HelpView renders a modal overlay showing all keyboard shortcuts.
type HelpView struct {
	sty     *styles.Styles
	width   int
	height  int
	visible bool
}

// NewHelpView creates a new HelpView with the given styles.
func NewHelpView(sty *styles.Styles) HelpView {
	return HelpView{sty: sty}
}

// SetStyles swaps the styles after a theme change.
func (v *HelpView) SetStyles(sty *styles.Styles) { v.sty = sty }

// Toggle flips the help overlay visibility.
func (v *HelpView) Toggle() {
	v.visible = !v.visible
}

// IsVisible returns whether the help overlay is currently shown.
func (v HelpView) IsVisible() bool {
	return v.visible
}

// SetSize updates the available dimensions for the overlay.
func (v *HelpView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// View renders the help overlay as a centered modal box.
func (v HelpView) View() string {
	modalWidth := 48
	if v.width > 60 {
		modalWidth = min(v.width/2, 60)
	}
	modalWidth = max(modalWidth, 44)
	innerWidth := modalWidth - 6 // border + padding

	bindingLine := func(b key.Binding) string {
		h := b.Help()
		return fmt.Sprintf("  %s  %s",
			v.sty.ModalKey.Render(padRight(h.Key, 17)),
			v.sty.ModalText.Render(h.Desc),
		)
	}

	km := keys.DefaultKeyMap
	var lines []string

	lines = append(lines, v.sty.ModalSection.Render("Dashboard"))
	for _, b := range []key.Binding{km.Next, km.Previous, km.Refresh, km.Theme, km.Switcher, km.Help, km.Quit} {
		lines = append(lines, bindingLine(b))
	}
	lines = append(lines, "")

	lines = append(lines, v.sty.ModalSection.Render("Dashboard List"))
	for _, b := range []key.Binding{km.Up, km.Down, km.Enter, km.Escape} {
		lines = append(lines, bindingLine(b))
	}
	lines = append(lines, "")
	lines = append(lines, v.sty.Dim.Render("[?] close"))

	modal := titledModal(v.sty, "Keyboard Shortcuts", strings.Join(lines, "\n"), innerWidth)

	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, modal)
}

// titledModal frames content in the modal border with title set into
// the top edge.
func titledModal(sty *styles.Styles, title, content string, innerWidth int) string {
	body := sty.ModalBorder.BorderTop(false).Width(innerWidth).Render(content)
	titleText := " " + title + " "
	rightDashes := max(0, lipgloss.Width(body)-2-1-lipgloss.Width(titleText))
	top := sty.ModalEdge.Render("╭─") +
		sty.ModalTitle.Render(titleText) +
		sty.ModalEdge.Render(strings.Repeat("─", rightDashes)+"╮")
	return top + "\n" + body
}

// padRight pads s with spaces on the right to the given width.
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
