package render

import "github.com/taigrr/softras/pkg/math3d"

// Shader computes the color of one covered pixel. coord is the integer pixel
// position, uv and normal are perspective-correct interpolations of the
// vertex attributes (the normal is not renormalized) and depth is the
// view-space depth of the fragment.
//
// Shaders are called from several goroutines when the rasterizer runs with
// more than one worker, so PixelColor must not mutate shared state.
type Shader interface {
	PixelColor(coord, uv math3d.Vec2, normal math3d.Vec3, depth float64) Color
}

// WireframeShader is implemented by shaders that can request triangle edges
// to be drawn over the filled surface.
type WireframeShader interface {
	WireframeColor() (Color, bool)
}

// Outline adds an optional wireframe overlay to a shader by embedding.
type Outline struct {
	Wireframe bool
	EdgeColor Color
}

// WireframeColor implements WireframeShader.
func (o Outline) WireframeColor() (Color, bool) {
	return o.EdgeColor, o.Wireframe
}

// SolidShader fills with a constant color.
type SolidShader struct {
	Color Color
	Outline
}

// PixelColor implements Shader.
func (s *SolidShader) PixelColor(_, _ math3d.Vec2, _ math3d.Vec3, _ float64) Color {
	return s.Color
}

// TextureShader returns the texture sample at the fragment's UV.
type TextureShader struct {
	Texture *Texture
	Outline
}

// PixelColor implements Shader.
func (s *TextureShader) PixelColor(_, uv math3d.Vec2, _ math3d.Vec3, _ float64) Color {
	return s.Texture.Sample(uv.X, uv.Y)
}

// LitTextureShader modulates the texture sample by a half-Lambert term so
// surfaces facing away from the light keep 40% of their color:
//
//	intensity = 0.4 + 0.6 * (dot(n, L) + 1) / 2
type LitTextureShader struct {
	Texture *Texture
	// LightDir points from the surface toward the light. Need not be unit.
	LightDir math3d.Vec3
	Outline
}

// PixelColor implements Shader.
func (s *LitTextureShader) PixelColor(_, uv math3d.Vec2, normal math3d.Vec3, _ float64) Color {
	c := s.Texture.Sample(uv.X, uv.Y)
	return c.Scale(Lighting(normal, s.LightDir))
}

// Lighting returns the half-Lambert intensity used by LitTextureShader, in
// [0.4, 1]. A zero normal counts as perpendicular to the light.
func Lighting(normal, lightDir math3d.Vec3) float64 {
	ndl := normal.Normalize().Dot(lightDir.Normalize())
	return 0.4 + 0.6*(ndl+1)/2
}

// TransparentTextureShader samples the texture and replaces its alpha with
// a constant.
type TransparentTextureShader struct {
	Texture *Texture
	Alpha   float64
	Outline
}

// PixelColor implements Shader.
func (s *TransparentTextureShader) PixelColor(_, uv math3d.Vec2, _ math3d.Vec3, _ float64) Color {
	return s.Texture.Sample(uv.X, uv.Y).WithAlpha(s.Alpha)
}
