package frame

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is one 8-bit RGB pixel.
type Color struct{ R, G, B uint8 }

var (
	Black = Color{}
	White = Color{R: 255, G: 255, B: 255}
	Red   = Color{R: 255}
)

func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

// Hue returns a fully saturated color at hue h (degrees, wrapped into [0,360)).
func Hue(h float64) Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return FromColorful(colorful.Hsv(h, 1, 1))
}

// Dim scales c to percent of its intensity (0..100).
func Dim(c Color, percent int) Color {
	return Color{
		R: scaleChannel(c.R, percent),
		G: scaleChannel(c.G, percent),
		B: scaleChannel(c.B, percent),
	}
}

func (c Color) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func FromColorful(cc colorful.Color) Color {
	r, g, b := cc.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

// String formats the color as #rrggbb.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	cc, err := colorful.Hex(string(b))
	if err != nil {
		return fmt.Errorf("parse color %q: %w", string(b), err)
	}
	*c = FromColorful(cc)
	return nil
}

// ParseColor accepts #rgb or #rrggbb.
func ParseColor(s string) (Color, error) {
	var c Color
	err := c.UnmarshalText([]byte(s))
	return c, err
}

// scaleChannel multiplies v by percent/100, rounding half up and clamping to 0..255.
func scaleChannel(v uint8, percent int) uint8 {
	if percent <= 0 {
		return 0
	}
	if percent >= 100 {
		return v
	}
	return uint8((int(v)*percent + 50) / 100)
}
