package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/promenade/tui/styles"
)

// HeaderInfo is what the header bar shows about the visible dashboard.
type HeaderInfo struct {
	Title   string
	Index   int
	Count   int
	Theme   string
	Paused  bool
	Version string
}

// RenderHeader renders the top header bar with app name, dashboard title,
// carousel position, theme and live/paused status.
func RenderHeader(sty *styles.Styles, info HeaderInfo, width int) string {
	title := info.Title
	if title == "" {
		title = "(untitled)"
	}
	status := sty.HeaderStatus.Render("LIVE")
	if info.Paused {
		status = sty.HeaderPaused.Render("PAUSED")
	}
	sep := sty.HeaderDim.Render("  |  ")

	segs := []string{
		sty.HeaderTitle.Render("promenade"),
		sty.Header.Render(title),
		sty.HeaderDim.Render(fmt.Sprintf("%d/%d", info.Index+1, info.Count)),
		status,
		sty.HeaderDim.Render(info.Theme),
	}
	if info.Version != "" {
		segs = append(segs, sty.HeaderDim.Render(info.Version))
	}

	pad := sty.Header.Render(" ")
	content := pad + strings.Join(segs, sep) + pad
	return fill(content, width, sty.Header)
}

// fill pads a bar to width with its background, or clips it.
func fill(content string, width int, bg lipgloss.Style) string {
	w := lipgloss.Width(content)
	if w > width {
		return lipgloss.NewStyle().MaxWidth(width).Render(content)
	}
	return content + bg.Render(strings.Repeat(" ", width-w))
}
