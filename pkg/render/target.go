// Package render implements a CPU triangle rasterizer: near-plane clipping,
// perspective projection, barycentric scan conversion with
// perspective-correct interpolation, depth testing and alpha blending into a
// RenderTarget.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"strconv"
	"strings"
)

// AlphaEpsilon is the alpha below which SetPixel leaves the target untouched.
const AlphaEpsilon = 1e-4

// ErrInvalidSize is returned for malformed or negative target dimensions.
var ErrInvalidSize = errors.New("invalid render target size")

// RenderTarget holds a color buffer and a depth buffer of equal size,
// indexed y*Width+x. Row 0 is the bottom of the image; ToImage and Draw flip
// it for display.
type RenderTarget struct {
	Width  int
	Height int
	Color  []Color
	Depth  []float64 // view-space z of the last write, +Inf when empty
}

// NewRenderTarget creates a cleared target. Negative dimensions are treated
// as zero.
func NewRenderTarget(width, height int) *RenderTarget {
	rt := &RenderTarget{}
	rt.Resize(width, height)
	return rt
}

// Resize reallocates both buffers when the size changes and clears them to
// transparent black and +Inf depth.
func (rt *RenderTarget) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if width != rt.Width || height != rt.Height || rt.Color == nil {
		rt.Width, rt.Height = width, height
		rt.Color = make([]Color, width*height)
		rt.Depth = make([]float64, width*height)
	}
	rt.Clear(ColorTransparent)
}

// Clear fills the color buffer with c and resets every depth to +Inf.
// Clearing twice is the same as clearing once.
func (rt *RenderTarget) Clear(c Color) {
	n := len(rt.Color)
	if n == 0 {
		return
	}
	// Copy-doubling is faster than a per-element loop.
	rt.Color[0] = c
	rt.Depth[0] = math.Inf(1)
	for i := 1; i < n; i *= 2 {
		copy(rt.Color[i:], rt.Color[:i])
		copy(rt.Depth[i:], rt.Depth[:i])
	}
}

// SetPixel blends c over the stored color with straight alpha and records
// depth unconditionally, so translucent surfaces still occlude what is drawn
// after them. Writes with alpha below AlphaEpsilon change nothing.
// Out-of-range coordinates are ignored.
func (rt *RenderTarget) SetPixel(x, y int, c Color, depth float64) {
	if x < 0 || x >= rt.Width || y < 0 || y >= rt.Height {
		return
	}
	rt.blend(y*rt.Width+x, c, depth)
}

// blend is SetPixel without the bounds check; the rasterizer clamps first.
// It reports whether the write changed the target.
func (rt *RenderTarget) blend(i int, c Color, depth float64) bool {
	if c.A < AlphaEpsilon {
		return false
	}
	rt.Color[i] = Over(c, rt.Color[i])
	rt.Depth[i] = depth
	return true
}

// PixelColor returns the color at (x, y), or transparent black when out of
// range.
func (rt *RenderTarget) PixelColor(x, y int) Color {
	if x < 0 || x >= rt.Width || y < 0 || y >= rt.Height {
		return Color{}
	}
	return rt.Color[y*rt.Width+x]
}

// PixelDepth returns the depth at (x, y), or +Inf when out of range.
func (rt *RenderTarget) PixelDepth(x, y int) float64 {
	if x < 0 || x >= rt.Width || y < 0 || y >= rt.Height {
		return math.Inf(1)
	}
	return rt.Depth[y*rt.Width+x]
}

// ToImage converts the color buffer to an image with the usual top-down row
// order.
func (rt *RenderTarget) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, rt.Width, rt.Height))
	for y := range rt.Height {
		row := (rt.Height - 1 - y) * rt.Width
		for x := range rt.Width {
			img.SetNRGBA(x, y, rt.Color[row+x].NRGBA())
		}
	}
	return img
}

// SavePNG saves the color buffer as a PNG file.
func (rt *RenderTarget) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, rt.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

// ParseSize parses a "WIDTHxHEIGHT" string such as "320x240".
func ParseSize(s string) (width, height int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	width, err = strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %w", ErrInvalidSize, s, err)
	}
	height, err = strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %w", ErrInvalidSize, s, err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	return width, height, nil
}
