package render

import (
	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/models"
)

// Plane represents a plane in 3D space using the equation: Ax + By + Cz + D = 0
// where (A, B, C) is the normal and D is the distance from origin.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// NearPlane is the view-space near clipping plane, normal pointing into the
// visible half-space.
var NearPlane = Plane{Normal: math3d.V3(0, 0, 1), D: -NearClipDst}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive = in front (same side as normal), negative = behind.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// MeshBounds computes the local-space bounding box of a mesh's vertices.
// It does not trust the mesh's cached bounds, which callers may leave stale.
func MeshBounds(m *models.Mesh) AABB {
	if len(m.Vertices) == 0 {
		return AABB{}
	}
	b := AABB{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		b.Min = b.Min.Min(v)
		b.Max = b.Max.Max(v)
	}
	return b
}

// Corners returns the eight corners of the box.
func (b AABB) Corners() [8]math3d.Vec3 {
	return [8]math3d.Vec3{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
}

// BehindPlane reports whether every point lies at or behind p. The first
// point in front ends the scan.
func BehindPlane(p Plane, points []math3d.Vec3) bool {
	for _, pt := range points {
		if p.DistanceToPoint(pt) > 0 {
			return false
		}
	}
	return true
}

// behindNearPlane reports whether a model's bounding box lies entirely at or
// behind the camera's near plane. Every vertex of such a model would be
// clipped, so skipping it changes nothing but time.
//
// The box corners are pushed through the same transform chain as the
// vertices, so the test holds for rotated and parented models.
func behindNearPlane(m *Model, cam *Camera) bool {
	if m.Mesh.VertexCount() == 0 {
		return true
	}
	var view [8]math3d.Vec3
	for i, c := range MeshBounds(m.Mesh).Corners() {
		view[i] = cam.WorldToView(m.Transform.ToWorldPoint(c))
	}
	return BehindPlane(NearPlane, view[:])
}
