// Package models provides mesh representation, file loaders and procedural
// geometry for the softras renderer.
package models

import (
	"errors"
	"fmt"

	"github.com/taigrr/softras/pkg/math3d"
)

var (
	// ErrInvalidMesh is returned when a mesh breaks its index or attribute
	// invariants.
	ErrInvalidMesh = errors.New("invalid mesh")

	// ErrUnsupportedFormat is returned by Load for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported model format")
)

// Mesh is an indexed triangle list. Every three consecutive entries of
// Indices form one triangle. Normals and UVs are either empty or parallel to
// Vertices; a missing attribute reads as zero.
//
// The rasterizer only reads a Mesh; loaders and generators build it.
type Mesh struct {
	Name     string
	Vertices []math3d.Vec3
	Indices  []int
	Normals  []math3d.Vec3
	UVs      []math3d.Vec2

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Triangle returns the vertex indices of triangle i.
func (m *Mesh) Triangle(i int) [3]int {
	return [3]int{m.Indices[i*3], m.Indices[i*3+1], m.Indices[i*3+2]}
}

// Normal returns the normal of vertex i, or zero when the mesh has none.
func (m *Mesh) Normal(i int) math3d.Vec3 {
	if len(m.Normals) == 0 {
		return math3d.Vec3{}
	}
	return m.Normals[i]
}

// UV returns the texture coordinate of vertex i, or zero when the mesh has
// none.
func (m *Mesh) UV(i int) math3d.Vec2 {
	if len(m.UVs) == 0 {
		return math3d.Vec2{}
	}
	return m.UVs[i]
}

// Validate checks the index and attribute invariants. Loaders call it before
// handing a mesh out; the rasterizer trusts its input.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a multiple of 3", ErrInvalidMesh, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if idx < 0 || idx >= len(m.Vertices) {
			return fmt.Errorf("%w: index %d at %d out of range [0,%d)", ErrInvalidMesh, idx, i, len(m.Vertices))
		}
	}
	if n := len(m.Normals); n != 0 && n != len(m.Vertices) {
		return fmt.Errorf("%w: %d normals for %d vertices", ErrInvalidMesh, n, len(m.Vertices))
	}
	if n := len(m.UVs); n != 0 && n != len(m.Vertices) {
		return fmt.Errorf("%w: %d uvs for %d vertices", ErrInvalidMesh, n, len(m.Vertices))
	}
	return nil
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Vec3{}, math3d.Vec3{}
		return
	}

	m.BoundsMin = m.Vertices[0]
	m.BoundsMax = m.Vertices[0]

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v)
		m.BoundsMax = m.BoundsMax.Max(v)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// CalculateNormals computes smooth per-vertex normals by accumulating the
// area-weighted face normals of every triangle that shares a vertex.
//
// Front faces wind clockwise when viewed from outside, which in this
// left-handed space makes edge1 × edge2 point outward.
func (m *Mesh) CalculateNormals() {
	m.Normals = make([]math3d.Vec3, len(m.Vertices))

	for i := range m.TriangleCount() {
		tri := m.Triangle(i)
		v0, v1, v2 := m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]
		n := v1.Sub(v0).Cross(v2.Sub(v0)) // not normalized: larger faces weigh more

		for _, idx := range tri {
			m.Normals[idx] = m.Normals[idx].Add(n)
		}
	}

	for i := range m.Normals {
		m.Normals[i] = m.Normals[i].Normalize()
	}
}

// Fit centers the mesh on the origin and scales it uniformly so its largest
// dimension equals size. Normals are unaffected by a uniform scale.
func (m *Mesh) Fit(size float64) {
	m.CalculateBounds()
	center := m.Center()
	dims := m.Size()
	maxDim := max(dims.X, dims.Y, dims.Z)
	if maxDim <= 0 {
		return
	}
	scale := size / maxDim
	for i, v := range m.Vertices {
		m.Vertices[i] = v.Sub(center).Scale(scale)
	}
	m.CalculateBounds()
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  append([]math3d.Vec3(nil), m.Vertices...),
		Indices:   append([]int(nil), m.Indices...),
		Normals:   append([]math3d.Vec3(nil), m.Normals...),
		UVs:       append([]math3d.Vec2(nil), m.UVs...),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	return clone
}

// Append adds all triangles of other to m, rebasing its indices. Attributes
// missing on either side are filled with zeros so both stay parallel to
// Vertices.
func (m *Mesh) Append(other *Mesh) {
	base := len(m.Vertices)
	needNormals := len(m.Normals) > 0 || len(other.Normals) > 0
	needUVs := len(m.UVs) > 0 || len(other.UVs) > 0

	if needNormals && len(m.Normals) == 0 {
		m.Normals = make([]math3d.Vec3, base)
	}
	if needUVs && len(m.UVs) == 0 {
		m.UVs = make([]math3d.Vec2, base)
	}

	m.Vertices = append(m.Vertices, other.Vertices...)
	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, base+idx)
	}
	if needNormals {
		if len(other.Normals) > 0 {
			m.Normals = append(m.Normals, other.Normals...)
		} else {
			m.Normals = append(m.Normals, make([]math3d.Vec3, len(other.Vertices))...)
		}
	}
	if needUVs {
		if len(other.UVs) > 0 {
			m.UVs = append(m.UVs, other.UVs...)
		} else {
			m.UVs = append(m.UVs, make([]math3d.Vec2, len(other.Vertices))...)
		}
	}
}
