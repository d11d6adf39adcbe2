package components

import (
	"math"
	"strings"

	"github.com/tonhe/promenade/internal/dashboard"
)

// chartBlocks are block characters from empty to full, used for rendering
// the chart area. Index 0 is empty (space), index 8 is full block.
var chartBlocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Chart renders data as vertical bars height rows tall, newest on the
// right. Wide histories are bucketed with summary like Sparkline. Every
// line is exactly width cells.
func Chart(data []float64, width, height int, summary dashboard.Summary) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if height == 1 {
		return Sparkline(data, width, summary)
	}

	blank := strings.Repeat(" ", width)
	lines := make([]string, 0, height)
	if len(data) == 0 {
		for i := 0; i < height; i++ {
			lines = append(lines, blank)
		}
		return strings.Join(lines, "\n")
	}

	data = Bucket(data, width, summary)
	minVal, maxVal := bounds(data)

	// Ensure we have some range to work with
	if maxVal == minVal {
		maxVal = minVal + 1
	}
	// Bars grow from zero when every value is positive
	if minVal > 0 {
		minVal = 0
	}
	spread := maxVal - minVal
	padding := strings.Repeat(" ", width-len(data))

	for row := height - 1; row >= 0; row-- {
		cellBottom := minVal + spread*float64(row)/float64(height)
		cellTop := minVal + spread*float64(row+1)/float64(height)
		cellRange := cellTop - cellBottom

		var sb strings.Builder
		sb.WriteString(padding)
		for _, v := range data {
			switch {
			case v <= cellBottom:
				sb.WriteRune(' ')
			case v >= cellTop:
				sb.WriteRune(chartBlocks[8])
			default:
				fraction := (v - cellBottom) / cellRange
				idx := int(math.Round(fraction * 8))
				idx = max(0, min(8, idx))
				sb.WriteRune(chartBlocks[idx])
			}
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}
