package format

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// ErrInvalidFormat is returned for format strings that cannot be rendered.
var ErrInvalidFormat = errors.New("invalid format string")

// Template is a compiled format string such as "{value:.1f}%". The only
// field is value; "{{" and "}}" are literal braces.
type Template struct {
	src   string
	parts []part
}

type part struct {
	literal string
	field   *fieldSpec
}

type fieldSpec struct {
	kind      byte // 'f', 'e', 'g', '%', 'd', 0 for the default repr
	unit      string
	sign      bool
	zero      bool
	width     int
	comma     bool
	precision int // -1 when unset
}

var specRe = regexp.MustCompile(`^(\+)?(0)?([0-9]+)?(,)?(?:\.([0-9]+))?([fFeEgGd%]|si|bytes|ibytes)?$`)

// Compile parses a format string.
func Compile(src string) (*Template, error) {
	t := &Template{src: src}
	var lit strings.Builder
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '{' && i+1 < len(src) && src[i+1] == '{':
			lit.WriteByte('{')
			i++
		case c == '}' && i+1 < len(src) && src[i+1] == '}':
			lit.WriteByte('}')
			i++
		case c == '}':
			return nil, fmt.Errorf("%w: single '}' at offset %d in %q", ErrInvalidFormat, i, src)
		case c == '{':
			end := strings.IndexByte(src[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed '{' at offset %d in %q", ErrInvalidFormat, i, src)
			}
			spec, err := parseField(src[i+1 : i+end])
			if err != nil {
				return nil, fmt.Errorf("%w: %v in %q", ErrInvalidFormat, err, src)
			}
			if lit.Len() > 0 {
				t.parts = append(t.parts, part{literal: lit.String()})
				lit.Reset()
			}
			t.parts = append(t.parts, part{field: spec})
			i += end
		default:
			lit.WriteByte(c)
		}
	}
	if lit.Len() > 0 {
		t.parts = append(t.parts, part{literal: lit.String()})
	}
	return t, nil
}

func parseField(field string) (*fieldSpec, error) {
	name, spec, hasSpec := strings.Cut(field, ":")
	if strings.TrimSpace(name) != "value" {
		return nil, fmt.Errorf("unknown field {%s}", field)
	}
	fs := &fieldSpec{precision: -1}
	if !hasSpec || spec == "" {
		return fs, nil
	}
	m := specRe.FindStringSubmatch(spec)
	if m == nil {
		return nil, fmt.Errorf("bad spec %q", spec)
	}
	fs.sign = m[1] != ""
	fs.zero = m[2] != ""
	if m[3] != "" {
		fs.width, _ = strconv.Atoi(m[3])
	}
	fs.comma = m[4] != ""
	if m[5] != "" {
		fs.precision, _ = strconv.Atoi(m[5])
	}
	switch typ := m[6]; typ {
	case "":
	case "si", "bytes", "ibytes":
		if fs.comma {
			return nil, fmt.Errorf("',' not allowed with %s", typ)
		}
		fs.unit = typ
	default:
		fs.kind = strings.ToLower(typ)[0]
		if fs.comma && (fs.kind == 'e' || fs.kind == 'g') {
			return nil, fmt.Errorf("',' not allowed with %q", typ)
		}
		if fs.kind == 'd' && fs.precision >= 0 {
			return nil, fmt.Errorf("precision not allowed with 'd'")
		}
	}
	return fs, nil
}

// Format renders v.
func (t *Template) Format(v float64) string {
	var b strings.Builder
	for _, p := range t.parts {
		if p.field == nil {
			b.WriteString(p.literal)
			continue
		}
		b.WriteString(p.field.format(v))
	}
	return b.String()
}

func (t *Template) String() string { return t.src }

// Text formats v with a format string in one step.
func Text(src string, v float64) (string, error) {
	t, err := Compile(src)
	if err != nil {
		return "", err
	}
	return t.Format(v), nil
}

// ValidateText reports whether src is a usable format string.
func ValidateText(src string) error {
	_, err := Compile(src)
	return err
}

func (fs *fieldSpec) format(v float64) string {
	var s string
	switch {
	case fs.unit != "":
		s = fs.formatUnit(v)
	case math.IsNaN(v) || math.IsInf(v, 0):
		s = repr(v)
		if fs.kind == '%' {
			s += "%"
		}
	default:
		s = fs.formatNumber(v)
	}
	if fs.sign && !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	if pad := fs.width - len(s); pad > 0 {
		if fs.zero {
			neg := strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+")
			if neg {
				s = s[:1] + strings.Repeat("0", pad) + s[1:]
			} else {
				s = strings.Repeat("0", pad) + s
			}
		} else {
			s = strings.Repeat(" ", pad) + s
		}
	}
	return s
}

func (fs *fieldSpec) formatNumber(v float64) string {
	prec := fs.precision
	switch fs.kind {
	case 'f':
		if prec < 0 {
			prec = 6
		}
		return fs.fixed(v, prec)
	case '%':
		if prec < 0 {
			prec = 6
		}
		return fs.fixed(v*100, prec) + "%"
	case 'd':
		return fs.fixed(math.Round(v), 0)
	case 'e':
		if prec < 0 {
			prec = 6
		}
		return strconv.FormatFloat(v, 'e', prec, 64)
	case 'g':
		if prec < 0 {
			prec = 6
		}
		return strconv.FormatFloat(v, 'g', max(prec, 1), 64)
	}
	if fs.comma {
		return humanize.Commaf(v)
	}
	if prec >= 0 {
		return strconv.FormatFloat(v, 'g', max(prec, 1), 64)
	}
	return repr(v)
}

func (fs *fieldSpec) fixed(v float64, prec int) string {
	if fs.comma {
		layout := "#,###."
		if prec > 0 {
			layout += strings.Repeat("#", prec)
		}
		return humanize.FormatFloat(layout, v)
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func (fs *fieldSpec) formatUnit(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return repr(v)
	}
	switch fs.unit {
	case "si":
		digits := fs.precision
		if digits < 0 {
			digits = 2
		}
		return strings.TrimSpace(humanize.SIWithDigits(v, digits, ""))
	case "bytes", "ibytes":
		neg := v < 0
		s := formatBytes(math.Round(math.Abs(v)), fs.unit == "ibytes")
		if neg {
			s = "-" + s
		}
		return s
	}
	return repr(v)
}

// maxUint64 is 2^64, the first float64 a uint64 cannot hold.
const maxUint64 = float64(1 << 64)

// formatBytes renders a non-negative byte count, falling back to big
// integers above the uint64 range.
func formatBytes(n float64, iec bool) string {
	if n < maxUint64 {
		if iec {
			return humanize.IBytes(uint64(n))
		}
		return humanize.Bytes(uint64(n))
	}
	b, _ := big.NewFloat(n).Int(nil)
	if iec {
		return humanize.BigIBytes(b)
	}
	return humanize.BigBytes(b)
}

// repr renders v the way the default "{value}" placeholder does: the
// shortest round-tripping form, always with a decimal point or exponent.
func repr(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	exp := 0
	if v != 0 {
		exp = int(math.Floor(math.Log10(math.Abs(v))))
	}
	if exp < -4 || exp >= 16 {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}
