package render

import (
	"image/color"
	"math"
)

// Color is a straight (non-premultiplied) RGBA color with components in
// [0, 1]. Shading and blending happen in float; conversion to 8-bit happens
// only at display time.
type Color struct {
	R, G, B, A float64
}

// Colors for convenience
var (
	ColorBlack       = Color{0, 0, 0, 1}
	ColorWhite       = Color{1, 1, 1, 1}
	ColorRed         = Color{1, 0, 0, 1}
	ColorGreen       = Color{0, 1, 0, 1}
	ColorBlue        = Color{0, 0, 1, 1}
	ColorGray        = RGB(128, 128, 128)
	ColorSky         = RGB(135, 206, 235)
	ColorTransparent = Color{}
)

// RGB creates an opaque color from 8-bit components.
func RGB(r, g, b uint8) Color {
	return Color{float64(r) / 255, float64(g) / 255, float64(b) / 255, 1}
}

// RGBA creates a color from 8-bit components.
func RGBA(r, g, b, a uint8) Color {
	return Color{float64(r) / 255, float64(g) / 255, float64(b) / 255, float64(a) / 255}
}

// FromColor converts any color.Color, un-premultiplying its alpha.
func FromColor(c color.Color) Color {
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	return Color{
		R: float64(n.R) / 0xffff,
		G: float64(n.G) / 0xffff,
		B: float64(n.B) / 0xffff,
		A: float64(n.A) / 0xffff,
	}
}

// NRGBA returns the color as clamped 8-bit straight-alpha components.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

// Opaque returns the color as clamped 8-bit RGB with full alpha, which is how
// a finished frame is shown.
func (c Color) Opaque() color.RGBA {
	return color.RGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: 255}
}

// Scale multiplies the RGB components by k and keeps alpha.
func (c Color) Scale(k float64) Color {
	return Color{c.R * k, c.G * k, c.B * k, c.A}
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// Over composites src over dst with straight alpha. The result alpha is
// a + dst.a*(1-a).
func Over(src, dst Color) Color {
	a := src.A
	inv := 1 - a
	return Color{
		R: src.R*a + dst.R*inv,
		G: src.G*a + dst.G*inv,
		B: src.B*a + dst.B*inv,
		A: a + dst.A*inv,
	}
}

func to8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
