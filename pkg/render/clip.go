package render

import (
	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/models"
)

// NearClipDst is the view-space depth of the near clipping plane. Vertices
// with z <= NearClipDst are clipped.
const NearClipDst = 0.01

// RasterizerPoint is a projected vertex ready for scan conversion.
type RasterizerPoint struct {
	Depth  float64     // view-space z, never below NearClipDst
	Screen math3d.Vec2 // pixel coordinates, y up
	UV     math3d.Vec2
	Normal math3d.Vec3 // world space
}

// viewVertex is a vertex in view space before projection.
type viewVertex struct {
	pos    math3d.Vec3
	uv     math3d.Vec2
	normal math3d.Vec3
}

// lerp interpolates every attribute at the same t. The normal is
// renormalized.
func (a viewVertex) lerp(b viewVertex, t float64) viewVertex {
	return viewVertex{
		pos:    a.pos.Lerp(b.pos, t),
		uv:     a.uv.Lerp(b.uv, t),
		normal: a.normal.Lerp(b.normal, t).Normalize(),
	}
}

// clipStats counts what the clip stage did for one model.
type clipStats struct {
	trianglesIn      int
	trianglesOut     int
	trianglesClipped int
}

// ClipAndProject transforms every triangle of mesh into view space, clips it
// against the near plane, projects the survivors onto a width × height
// target and appends three points per output triangle to dst.
//
// A triangle with no clipped vertex is emitted as is and one with three is
// dropped. One clipped vertex turns the triangle into a quad, emitted as two
// triangles; two clipped vertices shrink it to one. Winding is preserved.
// Degenerate triangles are not filtered here.
func ClipAndProject(dst []RasterizerPoint, mesh *models.Mesh, tr *math3d.Transform, cam *Camera, width, height int) []RasterizerPoint {
	return clipAndProject(dst, mesh, tr, cam, width, height, nil)
}

func clipAndProject(dst []RasterizerPoint, mesh *models.Mesh, tr *math3d.Transform, cam *Camera, width, height int, stats *clipStats) []RasterizerPoint {
	focal := cam.FocalLength(height)
	halfW, halfH := float64(width)/2, float64(height)/2

	project := func(v viewVertex) RasterizerPoint {
		ppu := focal / v.pos.Z
		return RasterizerPoint{
			Depth:  v.pos.Z,
			Screen: math3d.V2(halfW+v.pos.X*ppu, halfH+v.pos.Y*ppu),
			UV:     v.uv,
			Normal: v.normal,
		}
	}
	emit := func(a, b, c viewVertex) {
		dst = append(dst, project(a), project(b), project(c))
		if stats != nil {
			stats.trianglesOut++
		}
	}

	tris := mesh.TriangleCount()
	for i := range tris {
		idx := mesh.Triangle(i)

		var v [3]viewVertex
		var clipped [3]bool
		numClipped := 0
		for k, vi := range idx {
			world := tr.ToWorldPoint(mesh.Vertices[vi])
			v[k] = viewVertex{
				pos:    cam.WorldToView(world),
				uv:     mesh.UV(vi),
				normal: tr.TransformDirection(mesh.Normal(vi)),
			}
			if v[k].pos.Z <= NearClipDst {
				clipped[k] = true
				numClipped++
			}
		}

		if stats != nil {
			stats.trianglesIn++
			if numClipped > 0 {
				stats.trianglesClipped++
			}
		}

		switch numClipped {
		case 0:
			emit(v[0], v[1], v[2])

		case 1:
			c := 0
			for !clipped[c] {
				c++
			}
			a, b := (c+1)%3, (c+2)%3
			pA := toNear(v[c], v[a])
			pB := toNear(v[c], v[b])
			emit(pB, pA, v[b])
			emit(pA, v[a], v[b])

		case 2:
			n := 0
			for clipped[n] {
				n++
			}
			a, b := (n+1)%3, (n+2)%3
			pA := toNear(v[n], v[a])
			pB := toNear(v[n], v[b])
			emit(pB, v[n], pA)
		}
	}
	return dst
}

// toNear returns the point on from→to where z reaches NearClipDst. The two
// endpoints lie on opposite sides of the plane, so the denominator is
// non-zero. z is pinned to the plane so rounding cannot leave it behind.
func toNear(from, to viewVertex) viewVertex {
	t := (NearClipDst - from.pos.Z) / (to.pos.Z - from.pos.Z)
	v := from.lerp(to, t)
	v.pos.Z = NearClipDst
	return v
}
