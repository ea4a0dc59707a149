// Package color implements the color-resolution pipeline: parsing of
// arbitrary CSS color representations, mixing, WCAG relative luminance and
// contrast-safe text color selection.
//
// Every operation fails soft: unparseable input yields a zero value or a
// fallback, never an error.
package color

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB is a color with channels clamped to [0,255].
type RGB struct {
	R, G, B int
}

// KeywordResolver maps an unrecognized color token (a CSS keyword such as
// "rebeccapurple") to an rgb/hex string. It is an external collaborator: a
// renderer may supply a computed-style lookup, tests a fixed table. A
// resolver returns "" for unknown keywords.
type KeywordResolver func(keyword string) string

// Engine resolves color inputs using an optional keyword resolver.
// The zero value resolves hex and rgb() notation only.
type Engine struct {
	Keywords KeywordResolver
}

// Default is an engine backed by the built-in CSS named-color table.
var Default = &Engine{Keywords: NamedKeyword}

// Resolve normalizes an arbitrary color string. Hex and rgb()/rgba() inputs
// come back as lowercase "#rrggbb"; unknown tokens are handed to the keyword
// resolver and returned trimmed but unresolved when that fails too.
// Empty or whitespace-only input resolves to "".
func (e *Engine) Resolve(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	if rgb, ok := ParseRGB(trimmed); ok {
		return Hex(rgb)
	}
	if e.Keywords != nil {
		if resolved := e.Keywords(trimmed); resolved != "" {
			if rgb, ok := ParseRGB(resolved); ok {
				return Hex(rgb)
			}
		}
	}
	return trimmed
}

// ResolveValue accepts the loosely-typed color inputs that appear in raw
// event payloads: strings in any supported notation, or packed 24-bit
// integers (0xRRGGBB).
func (e *Engine) ResolveValue(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return e.Resolve(c)
	case int:
		return FromPacked(c)
	case int64:
		return FromPacked(int(c))
	case float64:
		// JSON numbers decode as float64.
		if c != math.Trunc(c) {
			return ""
		}
		return FromPacked(int(c))
	default:
		return ""
	}
}

// FromPacked converts a packed 24-bit RGB integer to a hex string.
// Values outside [0, 0xFFFFFF] are rejected.
func FromPacked(v int) string {
	if v < 0 || v > 0xFFFFFF {
		return ""
	}
	return Hex(RGB{R: (v >> 16) & 0xFF, G: (v >> 8) & 0xFF, B: v & 0xFF})
}

// ParseRGB parses hex (#rgb, #rgba, #rrggbb, #rrggbbaa) and rgb()/rgba()
// functional notation. Alpha channels are parsed and discarded. Out-of-range
// channels are clamped to [0,255]; percentage channels are scaled by 2.55.
func ParseRGB(input string) (RGB, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return RGB{}, false
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "rgb(") || strings.HasPrefix(lower, "rgba(") {
		return parseFunctional(s)
	}
	return RGB{}, false
}

func parseHex(hex string) (RGB, bool) {
	switch len(hex) {
	case 3, 4: // #rgb / #rgba
		r, err1 := strconv.ParseUint(strings.Repeat(string(hex[0]), 2), 16, 8)
		g, err2 := strconv.ParseUint(strings.Repeat(string(hex[1]), 2), 16, 8)
		b, err3 := strconv.ParseUint(strings.Repeat(string(hex[2]), 2), 16, 8)
		if err1 != nil || err2 != nil || err3 != nil {
			return RGB{}, false
		}
		return RGB{int(r), int(g), int(b)}, true
	case 6, 8: // #rrggbb / #rrggbbaa
		r, err1 := strconv.ParseUint(hex[0:2], 16, 8)
		g, err2 := strconv.ParseUint(hex[2:4], 16, 8)
		b, err3 := strconv.ParseUint(hex[4:6], 16, 8)
		if err1 != nil || err2 != nil || err3 != nil {
			return RGB{}, false
		}
		return RGB{int(r), int(g), int(b)}, true
	default:
		return RGB{}, false
	}
}

func parseFunctional(s string) (RGB, bool) {
	open := strings.IndexByte(s, '(')
	close := strings.LastIndexByte(s, ')')
	if open < 0 || close < open {
		return RGB{}, false
	}
	parts := strings.Split(s[open+1:close], ",")
	if len(parts) < 3 {
		return RGB{}, false
	}
	var out [3]int
	for i := 0; i < 3; i++ {
		p := strings.TrimSpace(parts[i])
		scale := 1.0
		if strings.HasSuffix(p, "%") {
			p = strings.TrimSuffix(p, "%")
			scale = 2.55
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return RGB{}, false
		}
		out[i] = clampChannel(int(math.Round(f * scale)))
	}
	return RGB{out[0], out[1], out[2]}, true
}

// Mix interpolates linearly between two colors: c = a*(1-w) + b*w.
// If one input is unparseable the other is returned unchanged; if both are,
// the result is "".
func Mix(a, b string, weight float64) string {
	ca, okA := ParseRGB(a)
	cb, okB := ParseRGB(b)
	switch {
	case okA && okB:
		w := math.Min(math.Max(weight, 0), 1)
		blended := toColorful(ca).BlendRgb(toColorful(cb), w)
		r, g, bb := blended.RGB255()
		return Hex(RGB{int(r), int(g), int(bb)})
	case okA:
		return a
	case okB:
		return b
	default:
		return ""
	}
}

// Luminance computes the WCAG relative luminance of a color.
// See https://www.w3.org/TR/WCAG20/#relativeluminancedef
func Luminance(c RGB) float64 {
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B)
}

func linearize(channel int) float64 {
	v := float64(clampChannel(channel)) / 255.0
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// Text colors returned by TextColor for light and dark backgrounds.
const (
	TextDark  = "#1f1f1f"
	TextLight = "#ffffff"
)

// TextColor picks a readable text color for the given background.
// Luminance above 0.57 gets dark text, everything else light text.
// An unparseable background yields the fallback (TextLight when empty).
func TextColor(background, fallback string) string {
	if fallback == "" {
		fallback = TextLight
	}
	rgb, ok := ParseRGB(background)
	if !ok {
		return fallback
	}
	if Luminance(rgb) > 0.57 {
		return TextDark
	}
	return TextLight
}

// Hex formats a color as lowercase "#rrggbb", clamped and zero-padded.
func Hex(c RGB) string {
	return fmt.Sprintf("#%02x%02x%02x",
		clampChannel(c.R), clampChannel(c.G), clampChannel(c.B))
}

// RGBString formats a color in functional notation, clamped.
func RGBString(c RGB) string {
	return fmt.Sprintf("rgb(%d, %d, %d)",
		clampChannel(c.R), clampChannel(c.G), clampChannel(c.B))
}

func clampChannel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func toColorful(c RGB) colorful.Color {
	return colorful.Color{
		R: float64(clampChannel(c.R)) / 255.0,
		G: float64(clampChannel(c.G)) / 255.0,
		B: float64(clampChannel(c.B)) / 255.0,
	}
}
