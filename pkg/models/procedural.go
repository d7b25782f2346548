package models

import "github.com/taigrr/softras/pkg/math3d"

// NewCube returns an axis-aligned cube of the given edge length centered on
// the origin. Each face has its own four vertices so normals stay flat and
// every face maps the full [0,1] texture square.
func NewCube(size float64) *Mesh {
	m := NewMesh("cube")
	h := size / 2

	faces := []struct {
		normal, up math3d.Vec3
	}{
		{math3d.V3(0, 0, -1), math3d.Up()},
		{math3d.V3(0, 0, 1), math3d.Up()},
		{math3d.V3(-1, 0, 0), math3d.Up()},
		{math3d.V3(1, 0, 0), math3d.Up()},
		{math3d.V3(0, 1, 0), math3d.Forward()},
		{math3d.V3(0, -1, 0), math3d.Forward()},
	}
	for _, f := range faces {
		addQuad(m, f.normal.Scale(h), f.normal, f.up, h, h)
	}

	m.CalculateBounds()
	return m
}

// NewGrid returns a square floor of divisions × divisions quads lying in the
// plane Y = y and facing up. The texture repeats once per cell.
func NewGrid(size float64, divisions int, y float64) *Mesh {
	m := NewMesh("grid")
	if divisions < 1 {
		divisions = 1
	}
	step := size / float64(divisions)
	half := step / 2
	start := -size / 2

	for i := range divisions {
		for j := range divisions {
			center := math3d.V3(start+(float64(i)+0.5)*step, y, start+(float64(j)+0.5)*step)
			addQuad(m, center, math3d.Up(), math3d.Forward(), half, half)
		}
	}

	m.CalculateBounds()
	return m
}

// addQuad appends a rectangle centered at c facing along n. up orients the
// quad's V axis and must be perpendicular to n; the U axis is up × -n, which
// is "right" for a viewer looking at the front. Both triangles wind
// clockwise as seen from the front.
func addQuad(m *Mesh, c, n, up math3d.Vec3, halfU, halfV float64) {
	u := up.Cross(n.Negate()).Scale(halfU)
	v := up.Scale(halfV)
	base := len(m.Vertices)

	m.Vertices = append(m.Vertices,
		c.Sub(u).Sub(v), // 00
		c.Add(u).Sub(v), // 10
		c.Add(u).Add(v), // 11
		c.Sub(u).Add(v), // 01
	)
	m.UVs = append(m.UVs,
		math3d.V2(0, 0),
		math3d.V2(1, 0),
		math3d.V2(1, 1),
		math3d.V2(0, 1),
	)
	m.Normals = append(m.Normals, n, n, n, n)
	m.Indices = append(m.Indices,
		base+3, base+2, base+1,
		base+3, base+1, base+0,
	)
}
