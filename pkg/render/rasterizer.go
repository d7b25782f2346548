package render

import (
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/softras/pkg/math3d"
)

// minBandRows keeps bands from getting so thin that goroutine overhead
// dominates.
const minBandRows = 8

// FrameStats describes the most recent Render call.
type FrameStats struct {
	ModelsDrawn      int // Models that reached scan conversion
	ModelsCulled     int // Models entirely behind the near plane
	TrianglesIn      int // Source triangles of drawn models
	TrianglesOut     int // Triangles emitted by the clip stage
	TrianglesClipped int // Source triangles with at least one clipped vertex
	PixelsWritten    int // Fragments that passed the depth test and were blended
	Bands            int // Row bands rasterized
}

// Rasterizer turns models into pixels on a RenderTarget.
//
// With Workers > 1 the target is split into horizontal bands of rows and
// each band is scan-converted by its own goroutine. Every band walks all
// models and triangles in submission order and writes only its own rows, so
// the output is identical to the serial path and no locking is needed.
type Rasterizer struct {
	Workers int
	Stats   FrameStats

	logger *slog.Logger
}

// Option configures a Rasterizer.
type Option func(*Rasterizer)

// WithWorkers sets the number of goroutines used for scan conversion.
// Values below 2 rasterize on the calling goroutine.
func WithWorkers(n int) Option {
	return func(r *Rasterizer) {
		r.Workers = n
	}
}

// WithLogger sends this rasterizer's logs to l instead of the package
// logger. The package logger is left alone.
func WithLogger(l *slog.Logger) Option {
	return func(r *Rasterizer) {
		r.logger = l
	}
}

// NewRasterizer creates a rasterizer. By default it runs single-threaded.
func NewRasterizer(opts ...Option) *Rasterizer {
	r := &Rasterizer{Workers: 1}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws models into rt as seen from cam. It does not clear rt; call
// rt.Clear first for a fresh frame. Models are drawn in slice order, which
// matters for translucent shaders.
func Render(rt *RenderTarget, models []*Model, cam *Camera) {
	NewRasterizer().Render(rt, models, cam)
}

// Render draws models into rt as seen from cam. See the package-level
// Render.
func (r *Rasterizer) Render(rt *RenderTarget, models []*Model, cam *Camera) {
	r.Stats = FrameStats{}
	if rt.Width == 0 || rt.Height == 0 {
		return
	}

	// Clip and project every model up front. This reads only the models and
	// camera, so the bands below share the results read-only.
	for _, m := range models {
		m.points = m.points[:0]
		if behindNearPlane(m, cam) {
			r.Stats.ModelsCulled++
			r.log().Debug("model behind near plane", "model", m.Name)
			continue
		}
		var cs clipStats
		m.points = clipAndProject(m.points, m.Mesh, m.Transform, cam, rt.Width, rt.Height, &cs)
		r.Stats.ModelsDrawn++
		r.Stats.TrianglesIn += cs.trianglesIn
		r.Stats.TrianglesOut += cs.trianglesOut
		r.Stats.TrianglesClipped += cs.trianglesClipped
	}

	bands := r.bands(rt.Height)
	r.Stats.Bands = len(bands)
	written := make([]int, len(bands))

	if len(bands) == 1 {
		written[0] = rasterBand(rt, models, 0, rt.Height)
	} else {
		var g errgroup.Group
		g.SetLimit(r.Workers)
		for i, b := range bands {
			g.Go(func() error {
				written[i] = rasterBand(rt, models, b[0], b[1])
				return nil
			})
		}
		_ = g.Wait() // bands never fail
	}

	for _, n := range written {
		r.Stats.PixelsWritten += n
	}
	r.log().Debug("frame rendered",
		"models", r.Stats.ModelsDrawn,
		"culled", r.Stats.ModelsCulled,
		"triangles", r.Stats.TrianglesOut,
		"clipped", r.Stats.TrianglesClipped,
		"pixels", r.Stats.PixelsWritten,
		"bands", r.Stats.Bands)
}

func (r *Rasterizer) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return Logger()
}

// bands splits [0, height) into disjoint half-open row ranges, one per
// worker.
func (r *Rasterizer) bands(height int) [][2]int {
	n := min(r.Workers, height/minBandRows)
	if n < 2 {
		return [][2]int{{0, height}}
	}
	out := make([][2]int, n)
	for i := range n {
		out[i] = [2]int{i * height / n, (i + 1) * height / n}
	}
	return out
}

// rasterBand scan-converts every model's triangles into rows [y0, y1) and
// returns the number of fragments that passed the depth test.
func rasterBand(rt *RenderTarget, models []*Model, y0, y1 int) int {
	written := 0
	for _, m := range models {
		edgeColor, wire := wireframeOf(m.Shader)
		pts := m.points
		for i := 0; i+2 < len(pts); i += 3 {
			written += rasterTriangle(rt, &pts[i], &pts[i+1], &pts[i+2], m.Shader, y0, y1)
			if wire {
				drawTriangleEdges(rt, &pts[i], &pts[i+1], &pts[i+2], edgeColor, y0, y1)
			}
		}
	}
	return written
}

func wireframeOf(s Shader) (Color, bool) {
	if ws, ok := s.(WireframeShader); ok {
		return ws.WireframeColor()
	}
	return Color{}, false
}

// edgeCoeffs returns A, B, C such that A*x + B*y + C equals
// edge((x0,y0), (x1,y1), (x,y)), the signed area spanned by the edge and
// the point.
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y1 - y0
	B = x0 - x1
	C = x1*y0 - x0*y1
	return
}

// edge returns (p.x-a.x)*(b.y-a.y) - (p.y-a.y)*(b.x-a.x). It is positive
// when p lies to the right of a→b in a y-up screen, so a triangle whose
// vertices run clockwise on screen has edge(a, b, c) > 0.
func edge(a, b, p math3d.Vec2) float64 {
	return (p.X-a.X)*(b.Y-a.Y) - (p.Y-a.Y)*(b.X-a.X)
}

// Barycentric returns the normalized weights of p with respect to the
// screen triangle (a, b, c). The weights sum to one. ok is false when the
// triangle is back-facing or degenerate, or when p lies outside it.
func Barycentric(a, b, c, p math3d.Vec2) (wa, wb, wc float64, ok bool) {
	area := edge(a, b, c)
	if !(area > 0) {
		return 0, 0, 0, false
	}
	wa, wb, wc = edge(b, c, p), edge(c, a, p), edge(a, b, p)
	if wa < 0 || wb < 0 || wc < 0 {
		return 0, 0, 0, false
	}
	return wa / area, wb / area, wc / area, true
}

// rasterTriangle fills the rows [y0, y1) of one clockwise screen triangle
// and returns the number of fragments written.
//
// Pixels are sampled at their centers. Edge values are computed directly at
// the start of each row and stepped by A along it. Depth and attributes are
// interpolated perspective-correctly: 1/z is linear in screen space, and an
// attribute divided by z is too.
func rasterTriangle(rt *RenderTarget, p0, p1, p2 *RasterizerPoint, shader Shader, y0, y1 int) int {
	a, b, c := p0.Screen, p1.Screen, p2.Screen

	area := edge(a, b, c)
	if !(area > 0) {
		// Back-facing, degenerate or NaN.
		return 0
	}

	minX := max(0, int(math.Floor(min(a.X, b.X, c.X))))
	maxX := min(rt.Width-1, int(math.Ceil(max(a.X, b.X, c.X))))
	minY := max(y0, int(math.Floor(min(a.Y, b.Y, c.Y))))
	maxY := min(y1-1, int(math.Ceil(max(a.Y, b.Y, c.Y))))
	if minX > maxX || minY > maxY {
		return 0
	}

	// Edge 0: b -> c weighs a, edge 1: c -> a weighs b, edge 2: a -> b weighs c.
	A0, B0, C0 := edgeCoeffs(b.X, b.Y, c.X, c.Y)
	A1, B1, C1 := edgeCoeffs(c.X, c.Y, a.X, a.Y)
	A2, B2, C2 := edgeCoeffs(a.X, a.Y, b.X, b.Y)

	invArea := 1 / area
	inv0, inv1, inv2 := 1/p0.Depth, 1/p1.Depth, 1/p2.Depth

	width := rt.Width
	depthBuf := rt.Depth
	written := 0
	px0 := float64(minX) + 0.5

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		w0 := A0*px0 + B0*py + C0
		w1 := A1*px0 + B1*py + C1
		w2 := A2*px0 + B2*py + C2
		row := y * width

		for x := minX; x <= maxX; x, w0, w1, w2 = x+1, w0+A0, w1+A1, w2+A2 {
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			// Barycentric weights pre-divided by each vertex depth.
			q0 := w0 * invArea * inv0
			q1 := w1 * invArea * inv1
			q2 := w2 * invArea * inv2
			depth := 1 / (q0 + q1 + q2)

			idx := row + x
			if depth >= depthBuf[idx] {
				continue
			}

			k0, k1, k2 := q0*depth, q1*depth, q2*depth
			uv := math3d.V2(
				p0.UV.X*k0+p1.UV.X*k1+p2.UV.X*k2,
				p0.UV.Y*k0+p1.UV.Y*k1+p2.UV.Y*k2,
			)
			normal := p0.Normal.Scale(k0).Add(p1.Normal.Scale(k1)).Add(p2.Normal.Scale(k2))

			col := shader.PixelColor(math3d.V2(float64(x), float64(y)), uv, normal, depth)
			if rt.blend(idx, col, depth) {
				written++
			}
		}
	}
	return written
}
