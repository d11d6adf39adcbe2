package components

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/promenade/internal/layout"
)

// Tile is a rendered block and the cell area it occupies.
type Tile struct {
	Box     layout.Box
	Content string
}

// Compose lays tiles onto a width x height canvas. Tiles must not overlap;
// uncovered cells are blank and tile lines are clipped or padded to the
// tile's box.
func Compose(tiles []Tile, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	sorted := make([]Tile, len(tiles))
	copy(sorted, tiles)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Box.X < sorted[j].Box.X })

	split := make([][]string, len(sorted))
	for i, t := range sorted {
		split[i] = strings.Split(t.Content, "\n")
	}

	rows := make([]string, height)
	for y := 0; y < height; y++ {
		var sb strings.Builder
		x := 0
		for i, t := range sorted {
			b := t.Box
			if y < b.Y || y >= b.Y+b.Height || b.X < x || b.X >= width {
				continue
			}
			sb.WriteString(strings.Repeat(" ", b.X-x))
			w := min(b.Width, width-b.X)
			line := ""
			if ly := y - b.Y; ly < len(split[i]) {
				line = split[i][ly]
			}
			sb.WriteString(fit(line, w))
			x = b.X + w
		}
		if x < width {
			sb.WriteString(strings.Repeat(" ", width-x))
		}
		rows[y] = sb.String()
	}
	return strings.Join(rows, "\n")
}

// fit clips or pads line to exactly w cells.
func fit(line string, w int) string {
	lw := lipgloss.Width(line)
	switch {
	case lw > w:
		return lipgloss.NewStyle().MaxWidth(w).Render(line)
	case lw < w:
		return line + strings.Repeat(" ", w-lw)
	}
	return line
}
