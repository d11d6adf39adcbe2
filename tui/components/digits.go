package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DigitsHeight is the number of rows a Digits rendering occupies.
const DigitsHeight = 3

// digitGlyphs is a three-row box-drawing font for numerals and the
// punctuation that format strings commonly produce.
var digitGlyphs = map[rune][DigitsHeight]string{
	'0': {"╭─╮", "│ │", "╰─╯"},
	'1': {"╶╮ ", " │ ", "╶┴╴"},
	'2': {"╶─╮", "┌─┘", "╰─╴"},
	'3': {"╶─╮", " ─┤", "╶─╯"},
	'4': {"╷ ╷", "╰─┤", "  ╵"},
	'5': {"╭─╴", "╰─╮", "╶─╯"},
	'6': {"╭─╴", "├─╮", "╰─╯"},
	'7': {"╶─┐", "  │", "  ╵"},
	'8': {"╭─╮", "├─┤", "╰─╯"},
	'9': {"╭─╮", "╰─┤", "╶─╯"},
	'.': {" ", " ", "."},
	',': {" ", " ", ","},
	':': {" ", ":", ":"},
	'-': {"   ", "╶─╴", "   "},
	'+': {"   ", "╶┼╴", "   "},
	'%': {"o ╱", " ╱ ", "╱ o"},
	' ': {"  ", "  ", "  "},
}

// Digits renders s in a three-row font. Characters without a glyph are
// drawn on the middle row.
func Digits(s string) string {
	var rows [DigitsHeight]strings.Builder
	for _, r := range s {
		g, ok := digitGlyphs[r]
		if !ok {
			pad := strings.Repeat(" ", lipgloss.Width(string(r)))
			g = [DigitsHeight]string{pad, string(r), pad}
		}
		for i := range rows {
			rows[i].WriteString(g[i])
		}
	}
	out := make([]string, DigitsHeight)
	for i := range rows {
		out[i] = rows[i].String()
	}
	return strings.Join(out, "\n")
}

// DigitsWidth returns the number of cells Digits(s) is wide.
func DigitsWidth(s string) int {
	w := 0
	for _, r := range s {
		if g, ok := digitGlyphs[r]; ok {
			w += lipgloss.Width(g[0])
		} else {
			w += lipgloss.Width(string(r))
		}
	}
	return w
}
