package render

import (
	"math"

	"github.com/taigrr/softras/pkg/math3d"
)

// edgeDepthBias lets an edge win the depth test against the surface it
// outlines. It is relative to the fragment depth.
const edgeDepthBias = 1e-3

// maxEdgeSteps bounds the sample count of edges that project absurdly far
// off-screen.
const maxEdgeSteps = 1 << 24

// drawTriangleEdges outlines a front-facing screen triangle, restricted to
// rows [y0, y1). Back faces are skipped the same way the fill skips them.
func drawTriangleEdges(rt *RenderTarget, p0, p1, p2 *RasterizerPoint, c Color, y0, y1 int) {
	if !(edge(p0.Screen, p1.Screen, p2.Screen) > 0) {
		return
	}
	drawEdge(rt, p0.Screen, p1.Screen, p0.Depth, p1.Depth, c, y0, y1)
	drawEdge(rt, p1.Screen, p2.Screen, p1.Depth, p2.Depth, c, y0, y1)
	drawEdge(rt, p2.Screen, p0.Screen, p2.Depth, p0.Depth, c, y0, y1)
}

// drawEdge steps a DDA line from a to b, one sample per pixel along the
// major axis, and depth-tests every sample. Depth is interpolated as 1/z so
// it agrees with the fill. Only rows in [y0, y1) are touched; the sample
// positions do not depend on the band, so a line split across bands is the
// same line.
func drawEdge(rt *RenderTarget, a, b math3d.Vec2, za, zb float64, c Color, y0, y1 int) {
	dx, dy := b.X-a.X, b.Y-a.Y
	steps := int(math.Ceil(min(max(math.Abs(dx), math.Abs(dy)), maxEdgeSteps)))
	if steps == 0 {
		steps = 1
	}

	// Only walk the samples that can land inside the band. Near-clipped
	// edges can project far outside the target.
	t0, t1, ok := clipSpan(a, b, 0, float64(rt.Width), float64(y0), float64(y1))
	if !ok {
		return
	}
	first := max(0, int(math.Floor(t0*float64(steps)))-1)
	last := min(steps, int(math.Ceil(t1*float64(steps)))+1)

	invA, invB := 1/za, 1/zb
	for i := first; i <= last; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Floor(a.X + dx*t))
		y := int(math.Floor(a.Y + dy*t))
		if y < y0 || y >= y1 || x < 0 || x >= rt.Width {
			continue
		}
		depth := 1 / (invA + (invB-invA)*t)
		idx := y*rt.Width + x
		if depth*(1-edgeDepthBias) >= rt.Depth[idx] {
			continue
		}
		rt.blend(idx, c, depth)
	}
}

// clipSpan returns the parameter range of a + t(b-a), t in [0, 1], that
// lies within [minX, maxX] × [minY, maxY] (Liang-Barsky).
func clipSpan(a, b math3d.Vec2, minX, maxX, minY, maxY float64) (t0, t1 float64, ok bool) {
	t0, t1 = 0, 1
	dx, dy := b.X-a.X, b.Y-a.Y
	for _, c := range [4][2]float64{
		{-dx, a.X - minX},
		{dx, maxX - a.X},
		{-dy, a.Y - minY},
		{dy, maxY - a.Y},
	} {
		p, q := c[0], c[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			t0 = max(t0, r)
		} else {
			t1 = min(t1, r)
		}
	}
	return t0, t1, t0 <= t1
}

// DrawLine3D draws a depth-tested world-space line segment. The segment is
// clipped against the near plane first, so it may pass behind the camera.
func DrawLine3D(rt *RenderTarget, cam *Camera, p1, p2 math3d.Vec3, c Color) {
	a, b := cam.WorldToView(p1), cam.WorldToView(p2)
	if a.Z <= NearClipDst && b.Z <= NearClipDst {
		return
	}
	if a.Z <= NearClipDst {
		a = a.Lerp(b, (NearClipDst-a.Z)/(b.Z-a.Z))
		a.Z = math.Nextafter(NearClipDst, math.Inf(1))
	} else if b.Z <= NearClipDst {
		b = b.Lerp(a, (NearClipDst-b.Z)/(a.Z-b.Z))
		b.Z = math.Nextafter(NearClipDst, math.Inf(1))
	}
	sa := cam.Project(a, rt.Width, rt.Height)
	sb := cam.Project(b, rt.Width, rt.Height)
	drawEdge(rt, sa, sb, a.Z, b.Z, c, 0, rt.Height)
}

// DrawAxes draws the world X, Y and Z axes from origin in red, green and
// blue.
func DrawAxes(rt *RenderTarget, cam *Camera, origin math3d.Vec3, length float64) {
	DrawLine3D(rt, cam, origin, origin.Add(math3d.V3(length, 0, 0)), ColorRed)
	DrawLine3D(rt, cam, origin, origin.Add(math3d.V3(0, length, 0)), ColorGreen)
	DrawLine3D(rt, cam, origin, origin.Add(math3d.V3(0, 0, length)), ColorBlue)
}
