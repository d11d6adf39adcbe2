package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/promenade/internal/coordinator"
	"github.com/tonhe/promenade/tui/components"
	"github.com/tonhe/promenade/tui/styles"
)

// DashboardView paints the visible dashboard's widgets onto its grid.
type DashboardView struct {
	sty    *styles.Styles
	frame  coordinator.Frame
	spin   string
	width  int
	height int
}

// NewDashboardView creates a new DashboardView with the given styles.
func NewDashboardView(sty *styles.Styles) DashboardView {
	return DashboardView{sty: sty}
}

// SetStyles swaps the styles after a theme change.
func (v *DashboardView) SetStyles(sty *styles.Styles) { v.sty = sty }

// SetFrame replaces the render plan.
func (v *DashboardView) SetFrame(f coordinator.Frame) { v.frame = f }

// SetSpinner sets the frame drawn beside pending widgets.
func (v *DashboardView) SetSpinner(s string) { v.spin = s }

// SetSize updates the available dimensions for the view.
func (v *DashboardView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// View renders every widget into its grid cell. The output is exactly
// width x height cells.
func (v DashboardView) View() string {
	if v.width <= 0 || v.height <= 0 {
		return ""
	}
	if len(v.frame.Widgets) == 0 || v.frame.Grid.Rows == 0 || v.frame.Grid.Columns == 0 {
		return v.renderEmpty()
	}

	tiles := make([]components.Tile, 0, len(v.frame.Widgets))
	for _, ri := range v.frame.Widgets {
		box := ri.Rect.Box(v.width, v.height, v.frame.Grid)
		tiles = append(tiles, components.Tile{
			Box:     box,
			Content: components.RenderWidget(ri, box.Width, box.Height, v.sty, v.spin),
		})
	}
	return components.Compose(tiles, v.width, v.height)
}

func (v DashboardView) renderEmpty() string {
	msg := v.sty.Dim.Render("Nothing to show")
	out := lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, msg)
	return strings.TrimRight(out, "\n")
}
