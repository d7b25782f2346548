package render

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/softras/pkg/math3d"
)

func colorsClose(a, b Color, eps float64) bool {
	return math.Abs(a.R-b.R) <= eps && math.Abs(a.G-b.G) <= eps &&
		math.Abs(a.B-b.B) <= eps && math.Abs(a.A-b.A) <= eps
}

func TestLighting(t *testing.T) {
	light := math3d.V3(0, 2, 0)
	tests := []struct {
		name   string
		normal math3d.Vec3
		want   float64
	}{
		{"facing", math3d.V3(0, 1, 0), 1},
		{"away", math3d.V3(0, -3, 0), 0.4},
		{"perpendicular", math3d.V3(1, 0, 0), 0.7},
		{"zero normal", math3d.Vec3{}, 0.7},
		{"unnormalized", math3d.V3(0, 0.1, 0), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lighting(tt.normal, light); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestShaders(t *testing.T) {
	tex := NewTexture(1, 1)
	tex.SetPixel(0, 0, Color{0.8, 0.6, 0.4, 1})
	uv := math3d.V2(0.5, 0.5)
	up := math3d.V3(0, 1, 0)

	tests := []struct {
		name   string
		shader Shader
		normal math3d.Vec3
		want   Color
	}{
		{"solid", &SolidShader{Color: ColorRed}, up, ColorRed},
		{"texture", &TextureShader{Texture: tex}, up, Color{0.8, 0.6, 0.4, 1}},
		{"lit facing", &LitTextureShader{Texture: tex, LightDir: up}, up, Color{0.8, 0.6, 0.4, 1}},
		{"lit away", &LitTextureShader{Texture: tex, LightDir: up}, up.Negate(), Color{0.32, 0.24, 0.16, 1}},
		{"transparent", &TransparentTextureShader{Texture: tex, Alpha: 0.25}, up, Color{0.8, 0.6, 0.4, 0.25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.shader.PixelColor(math3d.V2(3, 4), uv, tt.normal, 2)
			if !colorsClose(got, tt.want, 1e-12) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestOutline(t *testing.T) {
	s := &TextureShader{Texture: NewTexture(1, 1)}
	var ws WireframeShader = s
	if _, on := ws.WireframeColor(); on {
		t.Error("wireframe should default to off")
	}
	s.Wireframe = true
	s.EdgeColor = ColorGreen
	if c, on := ws.WireframeColor(); !on || c != ColorGreen {
		t.Errorf("expected green wireframe, got %v %v", c, on)
	}
}

func TestWireframeOverlay(t *testing.T) {
	rt := NewRenderTarget(64, 64)
	a, b, c := screenPoint(8, 8, 2), screenPoint(32, 56, 2), screenPoint(56, 8, 2)
	s := &SolidShader{Color: ColorRed}
	s.Wireframe = true
	s.EdgeColor = ColorGreen

	model := &Model{Shader: s, points: []RasterizerPoint{a, b, c}}
	rasterBand(rt, []*Model{model}, 0, rt.Height)

	// The bottom edge runs along y = 8.
	if got := rt.PixelColor(32, 8); got != ColorGreen {
		t.Errorf("expected edge color on the bottom edge, got %v", got)
	}
	if got := rt.PixelColor(32, 20); got != ColorRed {
		t.Errorf("expected fill color inside, got %v", got)
	}
	if got := rt.PixelColor(2, 60); got != (Color{}) {
		t.Errorf("expected no color outside, got %v", got)
	}
}

func TestTextureSample(t *testing.T) {
	tex := NewTexture(4, 2)
	for y := range 2 {
		for x := range 4 {
			tex.SetPixel(x, y, Color{float64(x) / 3, float64(y), 0, 1})
		}
	}

	tests := []struct {
		name string
		u, v float64
		x, y int
	}{
		{"origin", 0, 0, 0, 0},
		{"just below one", 0.999, 0.999, 2, 0},
		{"middle", 0.5, 0.5, 1, 0},
		{"wraps", 1.25, 0, 0, 0},
		{"negative wraps", -0.25, 0, 2, 0},
		{"one wraps to zero", 1, 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := tex.GetPixel(tt.x, tt.y)
			if got := tex.Sample(tt.u, tt.v); got != want {
				t.Errorf("Sample(%v, %v) = %v, want texel (%d,%d) %v", tt.u, tt.v, got, tt.x, tt.y, want)
			}
		})
	}

	t.Run("clamp", func(t *testing.T) {
		tex.SetWrap(WrapClamp)
		defer tex.SetWrap(WrapRepeat)
		if got, want := tex.Sample(5, 5), tex.GetPixel(3, 1); got != want {
			t.Errorf("expected %v, got %v", want, got)
		}
		if got, want := tex.Sample(-2, 0.5), tex.GetPixel(0, 0); got != want {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := NewTexture(0, 0).Sample(0.5, 0.5); got != (Color{}) {
			t.Errorf("expected zero color, got %v", got)
		}
	})
}

func TestParseWrapMode(t *testing.T) {
	tests := []struct {
		in      string
		want    WrapMode
		wantErr bool
	}{
		{"repeat", WrapRepeat, false},
		{"clamp", WrapClamp, false},
		{" Clamp ", WrapClamp, false},
		{"mirror", WrapRepeat, true},
		{"", WrapRepeat, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWrapMode(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidWrapMode) {
					t.Errorf("expected ErrInvalidWrapMode, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("expected %v, got %v (%v)", tt.want, got, err)
			}
		})
	}
}

func TestTextureFromImageFlips(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255}) // top left
	img.Set(1, 1, color.RGBA{0, 0, 255, 255}) // bottom right

	tex := TextureFromImage(img)
	if tex.Width != 2 || tex.Height != 2 {
		t.Fatalf("unexpected size %dx%d", tex.Width, tex.Height)
	}
	if got := tex.GetPixel(0, 1); got != ColorRed {
		t.Errorf("top-left texel should be red, got %v", got)
	}
	if got := tex.GetPixel(1, 0); got != ColorBlue {
		t.Errorf("bottom-right texel should be blue, got %v", got)
	}
	// v = 0 is the bottom of the image.
	tex.SetWrap(WrapClamp)
	if got := tex.Sample(1, 0); got != ColorBlue {
		t.Errorf("expected blue at the bottom right, got %v", got)
	}
}

func TestLoadTexture(t *testing.T) {
	dir := t.TempDir()
	src := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	for y := range 32 {
		for x := range 64 {
			src.SetNRGBA(x, y, color.NRGBA{uint8(x * 4), uint8(y * 8), 0, 255})
		}
	}
	path := filepath.Join(dir, "tex.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, src); err != nil {
		t.Fatal(err)
	}
	f.Close()

	tests := []struct {
		name          string
		maxSize       int
		width, height int
	}{
		{"original", 0, 64, 32},
		{"fits", 128, 64, 32},
		{"downscaled", 16, 16, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex, err := LoadTexture(path, tt.maxSize)
			if err != nil {
				t.Fatalf("LoadTexture: %v", err)
			}
			if tex.Width != tt.width || tex.Height != tt.height {
				t.Errorf("expected %dx%d, got %dx%d", tt.width, tt.height, tex.Width, tex.Height)
			}
		})
	}

	if _, err := LoadTexture(filepath.Join(dir, "missing.png"), 0); err == nil {
		t.Error("expected error for missing file")
	}
	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTexture(bad, 0); err == nil {
		t.Error("expected error for undecodable file")
	}
}

func TestColor(t *testing.T) {
	t.Run("over", func(t *testing.T) {
		got := Over(Color{1, 1, 1, 0.25}, Color{0, 0, 0, 1})
		if want := (Color{0.25, 0.25, 0.25, 1}); got != want {
			t.Errorf("expected %v, got %v", want, got)
		}
	})
	t.Run("rgb", func(t *testing.T) {
		if got := RGB(255, 0, 255); got != (Color{1, 0, 1, 1}) {
			t.Errorf("got %v", got)
		}
		if got := RGBA(0, 0, 0, 0); got != (Color{}) {
			t.Errorf("got %v", got)
		}
	})
	t.Run("from color", func(t *testing.T) {
		got := FromColor(color.NRGBA{255, 0, 0, 128})
		if !colorsClose(got, Color{1, 0, 0, 128.0 / 255}, 1e-3) {
			t.Errorf("expected straight red at half alpha, got %v", got)
		}
	})
	t.Run("scale keeps alpha", func(t *testing.T) {
		if got := (Color{0.5, 1, 0, 0.5}).Scale(0.5); got != (Color{0.25, 0.5, 0, 0.5}) {
			t.Errorf("got %v", got)
		}
	})
	t.Run("conversion clamps", func(t *testing.T) {
		if got := (Color{2, -1, 0.5, 1}).NRGBA(); got != (color.NRGBA{255, 0, 128, 255}) {
			t.Errorf("got %v", got)
		}
		if got := (Color{0, 0, 0, 0}).Opaque(); got.A != 255 {
			t.Errorf("Opaque should force alpha, got %v", got)
		}
	})
}

func BenchmarkLitTextureShader(b *testing.B) {
	s := &LitTextureShader{
		Texture:  NewCheckerTexture(64, 64, 8, ColorWhite, ColorGray),
		LightDir: math3d.V3(1, 1, -1),
	}
	uv := math3d.V2(0.3, 0.7)
	n := math3d.V3(0, 1, 0)
	for b.Loop() {
		s.PixelColor(math3d.Vec2{}, uv, n, 1)
	}
}
