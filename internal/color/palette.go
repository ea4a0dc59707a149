package color

import colorful "github.com/lucasb-eyer/go-colorful"

// paletteHues are the hue stops of the automatic calendar palette.
var paletteHues = []float64{0, 35, 70, 140, 210, 275, 320}

const (
	paletteSaturation = 0.70
	paletteLightness  = 0.70
)

// PaletteColor returns the automatic color for a calendar at position i in
// its list, cycling round-robin through the fixed hue palette at 70%
// saturation and 70% lightness.
func PaletteColor(i int) string {
	if i < 0 {
		i = -i
	}
	hue := paletteHues[i%len(paletteHues)]
	c := colorful.Hsl(hue, paletteSaturation, paletteLightness)
	return c.Hex()
}

// Gradient returns the two stops of an event-box background gradient:
// the base color and the base darkened 25% toward black. An unparseable
// base yields two empty stops.
func Gradient(base string) (top, bottom string) {
	if _, ok := ParseRGB(base); !ok {
		return "", ""
	}
	return Mix(base, "#000000", 0), Mix(base, "#000000", 0.25)
}
