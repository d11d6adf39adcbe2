package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/promenade/internal/theme"
)

// Styles holds the themed lipgloss styles for the application chrome.
// Widget colors come from render instructions, not from here.
type Styles struct {
	// Layout
	AppContainer lipgloss.Style

	// Header / Footer
	Header       lipgloss.Style
	HeaderTitle  lipgloss.Style
	HeaderStatus lipgloss.Style
	HeaderPaused lipgloss.Style
	HeaderDim    lipgloss.Style
	Footer       lipgloss.Style
	FooterKey    lipgloss.Style
	FooterDesc   lipgloss.Style
	FooterSep    lipgloss.Style

	// Status colors
	StatusUp   lipgloss.Style
	StatusDown lipgloss.Style
	StatusWarn lipgloss.Style

	// Widget chrome
	WidgetTitle    lipgloss.Style
	WidgetSubtitle lipgloss.Style
	WidgetStale    lipgloss.Style
	Pending        lipgloss.Style
	SparklineStyle lipgloss.Style

	// Modal / overlay
	ModalBorder  lipgloss.Style
	ModalTitle   lipgloss.Style
	ModalEdge    lipgloss.Style
	ModalSection lipgloss.Style
	ModalKey     lipgloss.Style
	ModalText    lipgloss.Style
	Dim          lipgloss.Style
	Selected     lipgloss.Style
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(t *theme.Theme) *Styles {
	bar := t.Base01
	return &Styles{
		AppContainer: lipgloss.NewStyle().
			Foreground(t.Base05).
			Background(t.Base00),

		Header: lipgloss.NewStyle().
			Foreground(t.Base05).
			Background(bar).
			Bold(true),
		HeaderTitle: lipgloss.NewStyle().
			Foreground(t.Base0D).
			Background(bar).
			Bold(true),
		HeaderStatus: lipgloss.NewStyle().
			Foreground(t.Base0B).
			Background(bar),
		HeaderPaused: lipgloss.NewStyle().
			Foreground(t.Base0A).
			Background(bar),
		HeaderDim: lipgloss.NewStyle().
			Foreground(t.Base04).
			Background(bar),

		Footer: lipgloss.NewStyle().
			Foreground(t.Base04).
			Background(bar),
		FooterKey: lipgloss.NewStyle().
			Foreground(t.Base0D).
			Background(bar).
			Bold(true),
		FooterDesc: lipgloss.NewStyle().
			Foreground(t.Base04).
			Background(bar),
		FooterSep: lipgloss.NewStyle().
			Foreground(t.Base03).
			Background(bar),

		StatusUp: lipgloss.NewStyle().
			Foreground(t.Base0B).
			Background(bar),
		StatusDown: lipgloss.NewStyle().
			Foreground(t.Base08).
			Background(bar),
		StatusWarn: lipgloss.NewStyle().
			Foreground(t.Base0A).
			Background(bar),

		WidgetTitle: lipgloss.NewStyle().
			Foreground(t.Base05).
			Bold(true),
		WidgetSubtitle: lipgloss.NewStyle().
			Foreground(t.Base0D),
		WidgetStale: lipgloss.NewStyle().
			Foreground(t.Base0A),
		Pending: lipgloss.NewStyle().
			Foreground(t.Base03),
		SparklineStyle: lipgloss.NewStyle().
			Foreground(t.Base0C),

		ModalBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Base0D).
			BorderBackground(t.Base00).
			Background(t.Base00).
			Padding(1, 2),
		ModalTitle: lipgloss.NewStyle().
			Foreground(t.Base0D).
			Background(t.Base00).
			Bold(true),
		ModalEdge: lipgloss.NewStyle().
			Foreground(t.Base0D).
			Background(t.Base00),
		ModalSection: lipgloss.NewStyle().
			Foreground(t.Base0E).
			Bold(true),
		ModalKey: lipgloss.NewStyle().
			Foreground(t.Base0D).
			Bold(true),
		ModalText: lipgloss.NewStyle().
			Foreground(t.Base05),
		Dim: lipgloss.NewStyle().
			Foreground(t.Base04),
		Selected: lipgloss.NewStyle().
			Foreground(t.Base06).
			Background(t.Base02).
			Bold(true),
	}
}
