package render

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"
	"strings"

	_ "golang.org/x/image/bmp" // Register BMP decoder
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapClamp                  // Clamp to edge
)

// ErrInvalidWrapMode is returned by ParseWrapMode for unknown names.
var ErrInvalidWrapMode = errors.New("invalid wrap mode")

// ParseWrapMode parses "repeat" or "clamp".
func ParseWrapMode(s string) (WrapMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "repeat":
		return WrapRepeat, nil
	case "clamp":
		return WrapClamp, nil
	}
	return WrapRepeat, fmt.Errorf("%w: %q (use repeat or clamp)", ErrInvalidWrapMode, s)
}

// Texture holds a 2D image for texture mapping. Texel row 0 is the bottom of
// the source image, so v = 0 samples the bottom edge and no flip is needed at
// sample time.
type Texture struct {
	Width  int
	Height int
	Pixels []Color  // Row-major, bottom row first
	WrapU  WrapMode // Horizontal wrap mode
	WrapV  WrapMode // Vertical wrap mode
}

// NewTexture creates a transparent texture with the given dimensions. It
// repeats in both directions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
		WrapU:  WrapRepeat,
		WrapV:  WrapRepeat,
	}
}

// SetWrap sets both wrap modes.
func (t *Texture) SetWrap(mode WrapMode) {
	t.WrapU, t.WrapV = mode, mode
}

// LoadTexture loads a PNG, JPEG, BMP or WebP image. Images larger than
// maxSize on either side are scaled down to fit; maxSize <= 0 keeps the
// original size.
func LoadTexture(path string, maxSize int) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	Logger().Debug("decoded texture", "path", path, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	return TextureFromImage(fitImage(img, maxSize)), nil
}

// TextureFromImage creates a texture from an image.Image, converting it to
// straight alpha and flipping it so the bottom row comes first.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	nrgba, ok := img.(*image.NRGBA)
	if !ok || bounds.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, width, height))
		xdraw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, xdraw.Src)
	}

	tex := NewTexture(width, height)
	for y := range height {
		dst := (height - 1 - y) * width
		for x := range width {
			tex.Pixels[dst+x] = FromColor(nrgba.NRGBAAt(x, y))
		}
	}
	return tex
}

// fitImage scales img down, preserving aspect ratio, so neither side
// exceeds maxSize.
func fitImage(img image.Image, maxSize int) image.Image {
	b := img.Bounds()
	if maxSize <= 0 || (b.Dx() <= maxSize && b.Dy() <= maxSize) {
		return img
	}
	scale := float64(maxSize) / float64(max(b.Dx(), b.Dy()))
	w := max(1, int(float64(b.Dx())*scale))
	h := max(1, int(float64(b.Dy())*scale))

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			cx := x / checkSize
			cy := y / checkSize
			if (cx+cy)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// SetPixel sets a texel; row 0 is the bottom.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the texel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample point-samples the texture at UV coordinates.
//
// With the default repeat wrap this reduces to taking
// the fractional part u - floor(u) and reading texel int(u*(width-1)), and
// likewise for v.
func (t *Texture) Sample(u, v float64) Color {
	if t.Width == 0 || t.Height == 0 {
		return Color{}
	}

	u = wrapCoord(u, t.WrapU)
	v = wrapCoord(v, t.WrapV)

	return t.sampleNearest(u, v)
}

// wrapCoord maps a coordinate into [0,1).
func wrapCoord(coord float64, mode WrapMode) float64 {
	switch mode {
	case WrapClamp:
		coord = math.Max(0, math.Min(1, coord))
	default:
		coord -= math.Floor(coord)
	}
	return coord
}

// sampleNearest returns the texel at the scaled coordinate.
func (t *Texture) sampleNearest(u, v float64) Color {
	x := int(u * float64(t.Width-1))
	y := int(v * float64(t.Height-1))
	return t.Pixels[y*t.Width+x]
}
