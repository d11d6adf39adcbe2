package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tonhe/promenade/tui/styles"
)

// StatusInfo is the poll summary for the visible dashboard.
type StatusInfo struct {
	Interval time.Duration
	LastPoll time.Time
	OK       int
	Total    int
	Errors   int
}

// RenderStatusBar renders the two-line status/footer bar showing poll info,
// health status, and key bindings.
func RenderStatusBar(sty *styles.Styles, info StatusInfo, now time.Time, width int) string {
	sep := sty.FooterSep.Render(" | ")

	pollSeg := sty.Footer.Render(fmt.Sprintf("refresh: %s", info.Interval))
	lastStr := "never"
	if !info.LastPoll.IsZero() {
		lastStr = info.LastPoll.Format("15:04:05")
		if age := now.Sub(info.LastPoll); age >= 2*time.Second {
			lastStr += " (" + humanize.RelTime(info.LastPoll, now, "ago", "from now") + ")"
		}
	}
	lastSeg := sty.Footer.Render(fmt.Sprintf("last: %s", lastStr))

	health := sty.StatusUp
	switch {
	case info.OK == 0 && info.Total > 0 && info.Errors > 0:
		health = sty.StatusDown
	case info.OK < info.Total:
		health = sty.StatusWarn
	}
	healthSeg := health.Render(fmt.Sprintf("%d/%d OK", info.OK, info.Total))

	top := sty.Footer.Render(" ") + pollSeg + sep + lastSeg + sep + healthSeg
	if info.Errors > 0 {
		top += sep + sty.StatusDown.Render(fmt.Sprintf("%s poll errors", humanize.Comma(int64(info.Errors))))
	}

	spacer := sty.Footer.Render("  ")
	binding := func(k, desc string) string {
		return sty.FooterKey.Render(k) + sty.FooterDesc.Render(":"+desc)
	}
	keys := sty.Footer.Render(" ") +
		binding("←/→", "dashboards") + spacer +
		binding("d", "list") + spacer +
		binding("r", "refresh") + spacer +
		binding("t", "theme") + spacer +
		binding("?", "help") + spacer +
		binding("q", "quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		fill(top, width, sty.Footer),
		fill(keys, width, sty.Footer),
	)
}
