package theme

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

var (
	ErrUnknownThemeColor = errors.New("unknown theme color")
	ErrInvalidColor      = errors.New("invalid color")
)

// Lightness shifts applied to literal colors, in CIE-Lab L units (0..1).
const (
	darkLighten   = 0.30
	lightDarkenLo = 0.30
	lightDarkenHi = 0.70
)

// Resolve turns a color spec into a concrete color for t. A "$name" spec is
// looked up in the theme palette and returned as-is. Anything else is parsed
// as a hex triplet or a named color and then lightened on dark themes or
// darkened on light ones so it stays legible against the background.
func Resolve(spec string, t *Theme) (lipgloss.Color, error) {
	spec = strings.TrimSpace(spec)
	if name, ok := strings.CutPrefix(spec, "$"); ok {
		key := strings.ReplaceAll(strings.ToLower(name), "-", "_")
		c, ok := t.Palette[key]
		if !ok {
			return "", fmt.Errorf("%w: $%s", ErrUnknownThemeColor, name)
		}
		return c, nil
	}

	c, err := ParseLiteral(spec)
	if err != nil {
		return "", err
	}
	return lipgloss.Color(adjust(c, t.IsDark).Hex()), nil
}

// Validate reports whether spec resolves against t without returning the color.
func Validate(spec string, t *Theme) error {
	_, err := Resolve(spec, t)
	return err
}

// ParseLiteral parses "#rgb", "#rrggbb" or an SVG color name.
func ParseLiteral(spec string) (colorful.Color, error) {
	if strings.HasPrefix(spec, "#") {
		c, err := colorful.Hex(strings.ToLower(spec))
		if err != nil {
			return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, spec)
		}
		return c, nil
	}

	key := strings.ToLower(strings.NewReplacer(" ", "", "-", "", "_", "").Replace(spec))
	rgba, ok := colornames.Map[key]
	if !ok || key == "" {
		return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, spec)
	}
	c, _ := colorful.MakeColor(rgba)
	return c, nil
}

// Luma is the perceived brightness of c in [0, 1].
func Luma(c colorful.Color) float64 {
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}

func adjust(c colorful.Color, dark bool) colorful.Color {
	l, a, b := c.Lab()
	if dark {
		l = math.Min(1, l+darkLighten)
	} else {
		amount := lightDarkenLo + (lightDarkenHi-lightDarkenLo)*Luma(c)
		l = math.Max(0, l-amount)
	}
	return colorful.Lab(l, a, b).Clamped()
}
