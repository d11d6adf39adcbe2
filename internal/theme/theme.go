package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// DefaultSlug is the theme used when none is configured.
const DefaultSlug = "solarized-dark"

// Theme represents a Base16 color scheme plus the symbolic palette that
// dashboard color specs like "$error" resolve through.
type Theme struct {
	Name   string
	Slug   string
	IsDark bool
	Base00 lipgloss.Color // Background
	Base01 lipgloss.Color // Lighter background
	Base02 lipgloss.Color // Selection
	Base03 lipgloss.Color // Comments / dim
	Base04 lipgloss.Color // Dark foreground
	Base05 lipgloss.Color // Foreground
	Base06 lipgloss.Color // Light foreground
	Base07 lipgloss.Color // Light background
	Base08 lipgloss.Color // Red
	Base09 lipgloss.Color // Orange
	Base0A lipgloss.Color // Yellow
	Base0B lipgloss.Color // Green
	Base0C lipgloss.Color // Cyan
	Base0D lipgloss.Color // Blue
	Base0E lipgloss.Color // Magenta
	Base0F lipgloss.Color // Brown

	Palette map[string]lipgloss.Color
}

var sortedSlugs []string

func init() {
	sortedSlugs = make([]string, 0, len(themes))
	for slug, t := range themes {
		t.Slug = slug
		t.Palette = paletteOf(t)
		sortedSlugs = append(sortedSlugs, slug)
	}
	sort.Strings(sortedSlugs)
}

// paletteOf maps the symbolic color names onto Base16 slots.
func paletteOf(t *Theme) map[string]lipgloss.Color {
	return map[string]lipgloss.Color{
		"success":    t.Base0B,
		"error":      t.Base08,
		"warning":    t.Base0A,
		"primary":    t.Base0D,
		"secondary":  t.Base0E,
		"accent":     t.Base0C,
		"foreground": t.Base05,
		"background": t.Base00,
		"surface":    t.Base01,
		"muted":      t.Base03,
	}
}

// Get returns a theme by its slug, or nil if not found.
func Get(slug string) *Theme {
	return themes[slug]
}

// Default returns the default theme.
func Default() *Theme {
	return themes[DefaultSlug]
}

// Auto picks a dark or light theme from the terminal's background color.
func Auto() *Theme {
	if termenv.HasDarkBackground() {
		return themes[DefaultSlug]
	}
	return themes["solarized-light"]
}

// List returns sorted theme slugs.
func List() []string {
	return sortedSlugs
}

// Count returns the total number of available themes.
func Count() int {
	return len(themes)
}

// ByIndex returns a theme at the given sorted index.
func ByIndex(idx int) *Theme {
	if idx < 0 || idx >= len(sortedSlugs) {
		return nil
	}
	return themes[sortedSlugs[idx]]
}

// Index returns the sorted index of a theme slug, or -1.
func Index(slug string) int {
	for i, s := range sortedSlugs {
		if s == slug {
			return i
		}
	}
	return -1
}

// Next returns the theme after slug in sorted order, wrapping around.
func Next(slug string) *Theme {
	return ByIndex((Index(slug) + 1) % len(sortedSlugs))
}
