package components

import (
	"strings"

	"github.com/tonhe/promenade/internal/dashboard"
)

var blocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders data as one row of block characters. When there are
// more points than cells, each cell shows the summary of its bucket.
func Sparkline(data []float64, width int, summary dashboard.Summary) string {
	if width <= 0 {
		return ""
	}
	if len(data) == 0 {
		return strings.Repeat(" ", width)
	}
	data = Bucket(data, width, summary)
	min, max := bounds(data)
	var sb strings.Builder
	padding := width - len(data)
	for i := 0; i < padding; i++ {
		sb.WriteRune(' ')
	}
	spread := max - min
	for _, v := range data {
		if spread == 0 {
			sb.WriteRune(blocks[3])
		} else {
			normalized := (v - min) / spread
			idx := int(normalized * float64(len(blocks)-1))
			if idx >= len(blocks) {
				idx = len(blocks) - 1
			}
			if idx < 0 {
				idx = 0
			}
			sb.WriteRune(blocks[idx])
		}
	}
	return sb.String()
}

// Bucket reduces data to at most n points, splitting it into n contiguous
// buckets and applying summary to each. Data that already fits is
// returned as is.
func Bucket(data []float64, n int, summary dashboard.Summary) []float64 {
	if n <= 0 || len(data) <= n {
		return data
	}
	out := make([]float64, n)
	for i := range out {
		start := i * len(data) / n
		end := (i + 1) * len(data) / n
		out[i] = Summarize(data[start:end], summary)
	}
	return out
}

// Summarize applies summary to data. Unknown summaries use max; empty
// data gives zero.
func Summarize(data []float64, summary dashboard.Summary) float64 {
	if len(data) == 0 {
		return 0
	}
	switch summary {
	case dashboard.SummaryMin:
		min, _ := bounds(data)
		return min
	case dashboard.SummaryMean:
		var sum float64
		for _, v := range data {
			sum += v
		}
		return sum / float64(len(data))
	}
	_, max := bounds(data)
	return max
}

func bounds(data []float64) (min, max float64) {
	min, max = data[0], data[0]
	for _, v := range data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
