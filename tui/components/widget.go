package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/promenade/internal/coordinator"
	"github.com/tonhe/promenade/internal/dashboard"
	"github.com/tonhe/promenade/tui/styles"
)

var dashedBorder = lipgloss.Border{
	Top:         "╌",
	Bottom:      "╌",
	Left:        "╎",
	Right:       "╎",
	TopLeft:     "┌",
	TopRight:    "┐",
	BottomLeft:  "└",
	BottomRight: "┘",
}

// BorderFor maps a dashboard border style onto a lipgloss border. The
// second result is false for widgets drawn without a frame.
func BorderFor(s dashboard.BorderStyle) (lipgloss.Border, bool) {
	switch s {
	case dashboard.BorderNone:
		return lipgloss.Border{}, false
	case dashboard.BorderDashed:
		return dashedBorder, true
	case dashboard.BorderDouble:
		return lipgloss.DoubleBorder(), true
	case dashboard.BorderHeavy:
		return lipgloss.ThickBorder(), true
	case dashboard.BorderRounded:
		return lipgloss.RoundedBorder(), true
	}
	return lipgloss.NormalBorder(), true
}

// RenderWidget paints ri into a block exactly width x height cells. spin
// is the current spinner frame shown while the widget is pending.
func RenderWidget(ri coordinator.RenderInstruction, width, height int, sty *styles.Styles, spin string) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if !ri.Visible {
		return blankBlock(width, height)
	}

	border, framed := BorderFor(ri.BorderStyle)
	innerW, innerH := width, height
	if framed {
		innerW, innerH = width-2, height-2
	}
	if innerW < 1 || innerH < 1 {
		return blankBlock(width, height)
	}

	body := lipgloss.NewStyle().
		Width(innerW).
		Height(innerH).
		MaxWidth(innerW).
		MaxHeight(innerH).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center)
	if ri.TextColor != "" {
		body = body.Foreground(ri.TextColor)
	}
	if ri.BackgroundColor != "" {
		body = body.Background(ri.BackgroundColor)
	}
	content := body.Render(widgetContent(ri, innerW, innerH, sty, spin))
	if !framed {
		return content
	}

	edge := lipgloss.NewStyle()
	if ri.BorderColor != "" {
		edge = edge.Foreground(ri.BorderColor)
	}
	sides := lipgloss.NewStyle().Border(border, false, true, false, true)
	if ri.BorderColor != "" {
		sides = sides.BorderForeground(ri.BorderColor)
	}

	top := borderLine(border.TopLeft, border.Top, border.TopRight, ri.Title, sty.WidgetTitle, false, width, edge)
	bottom := borderLine(border.BottomLeft, border.Bottom, border.BottomRight, subtitle(ri), subtitleStyle(ri, sty), true, width, edge)
	return lipgloss.JoinVertical(lipgloss.Left, top, sides.Render(content), bottom)
}

// widgetContent is the unstyled interior of a widget.
func widgetContent(ri coordinator.RenderInstruction, w, h int, sty *styles.Styles, spin string) string {
	switch ri.Status {
	case coordinator.StatusPending:
		if spin != "" {
			return sty.Pending.Render(spin + " " + ri.Text)
		}
		return sty.Pending.Render(ri.Text)
	case coordinator.StatusNoData:
		return sty.Pending.Render(ri.Text)
	}

	switch ri.Kind {
	case dashboard.TypeDigits:
		if h >= DigitsHeight && DigitsWidth(ri.Text) <= w {
			return Digits(ri.Text)
		}
	case dashboard.TypeSparkline:
		if h >= 2 {
			return Chart(ri.History, w, h-1, ri.Summary) + "\n" + ri.Text
		}
		return Sparkline(ri.History, w, ri.Summary)
	case dashboard.TypeProgress:
		bar := progressBar(ri, w)
		if h >= 2 {
			return bar + "\n" + ri.Text
		}
		return bar
	}
	return ri.Text
}

func progressBar(ri coordinator.RenderInstruction, w int) string {
	opts := []progress.Option{progress.WithWidth(w)}
	if ri.TextColor != "" {
		opts = append(opts, progress.WithSolidFill(string(ri.TextColor)))
	}
	if !ri.ShowPercentage {
		opts = append(opts, progress.WithoutPercentage())
	}
	return progress.New(opts...).ViewAs(ri.Progress)
}

// subtitle appends the poll error to the configured subtitle of a stale
// widget.
func subtitle(ri coordinator.RenderInstruction) string {
	if ri.Status != coordinator.StatusStale {
		return ri.Subtitle
	}
	if ri.Subtitle == "" {
		return ri.Error.String()
	}
	return ri.Subtitle + " · " + ri.Error.String()
}

func subtitleStyle(ri coordinator.RenderInstruction, sty *styles.Styles) lipgloss.Style {
	if ri.Status == coordinator.StatusStale {
		return sty.WidgetStale
	}
	return sty.WidgetSubtitle
}

// borderLine draws a horizontal edge width cells wide with label set into
// it, left-aligned or right-aligned.
func borderLine(left, fill, right, label string, labelStyle lipgloss.Style, alignRight bool, width int, edge lipgloss.Style) string {
	inner := width - lipgloss.Width(left) - lipgloss.Width(right)
	if inner < 0 {
		return edge.Render(truncate(left+right, width))
	}
	if label != "" && inner >= 5 {
		label = " " + truncate(label, inner-4) + " "
	} else {
		label = ""
	}
	rest := inner - lipgloss.Width(label)
	if label == "" {
		return edge.Render(left + strings.Repeat(fill, inner) + right)
	}
	lead, trail := 1, rest-1
	if alignRight {
		lead, trail = rest-1, 1
	}
	return edge.Render(left+strings.Repeat(fill, lead)) +
		labelStyle.Render(label) +
		edge.Render(strings.Repeat(fill, trail)+right)
}

func blankBlock(width, height int) string {
	return lipgloss.NewStyle().Width(width).Height(height).Render("")
}

// truncate shortens s to at most n cells, marking the cut with an
// ellipsis.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= n {
		return s
	}
	var sb strings.Builder
	w := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if w+rw > n-1 {
			break
		}
		sb.WriteRune(r)
		w += rw
	}
	return sb.String() + "…"
}
