package models

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/softras/pkg/math3d"
)

// faceNormal returns the unnormalized outward normal of triangle i.
func faceNormal(m *Mesh, i int) math3d.Vec3 {
	tri := m.Triangle(i)
	v0, v1, v2 := m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]
	return v1.Sub(v0).Cross(v2.Sub(v0))
}

func TestMeshValidate(t *testing.T) {
	verts := []math3d.Vec3{{}, {X: 1}, {Y: 1}}

	tests := []struct {
		name    string
		mesh    *Mesh
		wantErr bool
	}{
		{"valid", &Mesh{Vertices: verts, Indices: []int{0, 1, 2}}, false},
		{"empty", &Mesh{}, false},
		{"partial triangle", &Mesh{Vertices: verts, Indices: []int{0, 1}}, true},
		{"index out of range", &Mesh{Vertices: verts, Indices: []int{0, 1, 3}}, true},
		{"negative index", &Mesh{Vertices: verts, Indices: []int{0, -1, 2}}, true},
		{"short normals", &Mesh{Vertices: verts, Indices: []int{0, 1, 2}, Normals: []math3d.Vec3{{}}}, true},
		{"short uvs", &Mesh{Vertices: verts, Indices: []int{0, 1, 2}, UVs: []math3d.Vec2{{}, {}}}, true},
		{"full attributes", &Mesh{
			Vertices: verts,
			Indices:  []int{0, 1, 2},
			Normals:  make([]math3d.Vec3, 3),
			UVs:      make([]math3d.Vec2, 3),
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMesh) {
					t.Errorf("Validate() = %v, want ErrInvalidMesh", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestMeshMissingAttributesReadZero(t *testing.T) {
	m := &Mesh{Vertices: []math3d.Vec3{{X: 1}}}
	if m.Normal(0) != (math3d.Vec3{}) {
		t.Errorf("Normal(0) = %v, want zero", m.Normal(0))
	}
	if m.UV(0) != (math3d.Vec2{}) {
		t.Errorf("UV(0) = %v, want zero", m.UV(0))
	}
}

func TestNewCube(t *testing.T) {
	m := NewCube(2)

	if m.TriangleCount() != 12 {
		t.Errorf("TriangleCount = %d, want 12", m.TriangleCount())
	}
	if m.VertexCount() != 24 {
		t.Errorf("VertexCount = %d, want 24", m.VertexCount())
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !m.BoundsMin.ApproxEqual(math3d.V3(-1, -1, -1), 1e-12) || !m.BoundsMax.ApproxEqual(math3d.V3(1, 1, 1), 1e-12) {
		t.Errorf("bounds = %v..%v", m.BoundsMin, m.BoundsMax)
	}

	for i := range m.TriangleCount() {
		n := faceNormal(m, i)
		stored := m.Normal(m.Triangle(i)[0])
		if n.Normalize().Dot(stored) < 0.999 {
			t.Errorf("triangle %d winds against its normal: geometric %v, stored %v", i, n, stored)
		}
		// Outward: the normal points away from the cube center.
		if n.Dot(m.Vertices[m.Triangle(i)[0]]) <= 0 {
			t.Errorf("triangle %d normal %v points inward", i, n)
		}
	}
}

func TestNewGrid(t *testing.T) {
	m := NewGrid(100, 20, -2)

	if m.TriangleCount() != 20*20*2 {
		t.Errorf("TriangleCount = %d, want %d", m.TriangleCount(), 20*20*2)
	}
	for _, v := range m.Vertices {
		if v.Y != -2 {
			t.Fatalf("vertex %v not on plane y=-2", v)
		}
	}
	for i := range m.TriangleCount() {
		if n := faceNormal(m, i); n.Y <= 0 || math.Abs(n.X) > 1e-9 || math.Abs(n.Z) > 1e-9 {
			t.Fatalf("triangle %d faces %v, want +Y", i, n)
		}
	}
	if !m.BoundsMin.ApproxEqual(math3d.V3(-50, -2, -50), 1e-9) || !m.BoundsMax.ApproxEqual(math3d.V3(50, -2, 50), 1e-9) {
		t.Errorf("bounds = %v..%v", m.BoundsMin, m.BoundsMax)
	}
}

func TestCalculateNormalsMatchesCubeFaces(t *testing.T) {
	want := NewCube(1)
	m := want.Clone()
	m.Normals = nil
	m.CalculateNormals()

	for i := range m.Normals {
		if !m.Normals[i].ApproxEqual(want.Normals[i], 1e-9) {
			t.Errorf("normal %d = %v, want %v", i, m.Normals[i], want.Normals[i])
		}
	}
}

func TestMeshFit(t *testing.T) {
	m := &Mesh{Vertices: []math3d.Vec3{{X: 10, Y: 10, Z: 10}, {X: 14, Y: 12, Z: 11}}}
	m.Fit(2)

	size := m.Size()
	if math.Abs(size.X-2) > 1e-12 {
		t.Errorf("largest dimension = %f, want 2", size.X)
	}
	if !m.Center().ApproxEqual(math3d.Zero3(), 1e-12) {
		t.Errorf("center = %v, want origin", m.Center())
	}
}

func TestMeshAppendFillsAttributes(t *testing.T) {
	a := &Mesh{Vertices: []math3d.Vec3{{}, {X: 1}, {Y: 1}}, Indices: []int{0, 1, 2}}
	b := NewCube(1)

	a.Append(b)

	if err := a.Validate(); err != nil {
		t.Fatalf("Validate after Append: %v", err)
	}
	if a.TriangleCount() != 13 {
		t.Errorf("TriangleCount = %d, want 13", a.TriangleCount())
	}
	if a.Indices[3] != 3+b.Indices[0] {
		t.Errorf("appended indices not rebased: %d", a.Indices[3])
	}
	if a.Normal(0) != (math3d.Vec3{}) {
		t.Errorf("padded normal = %v, want zero", a.Normal(0))
	}
}

func TestMeshCloneIsDeep(t *testing.T) {
	m := NewCube(1)
	c := m.Clone()
	c.Vertices[0] = math3d.V3(99, 99, 99)
	c.Indices[0] = 7

	if m.Vertices[0] == c.Vertices[0] || m.Indices[0] == 7 {
		t.Error("Clone shares backing arrays with the original")
	}
}
