// Package math3d provides the vector and transform primitives shared by the
// mesh loaders and the rasterizer.
//
// Space is left-handed: +X is right, +Y is up and +Z points away from the
// viewer.
package math3d

import "math"

// Vec3 is a point or direction in 3D space.
type Vec3 struct {
	X, Y, Z float64
}

// V3 creates a new Vec3.
func V3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// Zero3 returns the zero vector, the origin.
func Zero3() Vec3 {
	return Vec3{}
}

// One3 returns (1, 1, 1), the identity scale.
func One3() Vec3 {
	return Vec3{1, 1, 1}
}

// Up returns the world up axis (0, 1, 0).
func Up() Vec3 {
	return Vec3{Y: 1}
}

// Forward returns the world forward axis (0, 0, 1), the direction an
// unrotated camera looks.
func Forward() Vec3 {
	return Vec3{Z: 1}
}

// Right returns the world right axis (1, 0, 0).
func Right() Vec3 {
	return Vec3{X: 1}
}

// Add returns a + b.
func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns a - b.
func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// Mul returns the per-component product of a and b.
func (a Vec3) Mul(b Vec3) Vec3 {
	return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z}
}

// DivVec returns the per-component quotient of a and b. It undoes a
// non-uniform scale.
func (a Vec3) DivVec(b Vec3) Vec3 {
	return Vec3{a.X / b.X, a.Y / b.Y, a.Z / b.Z}
}

// Scale returns a multiplied by s.
func (a Vec3) Scale(s float64) Vec3 {
	return Vec3{a.X * s, a.Y * s, a.Z * s}
}

// Dot returns the dot product of a and b.
func (a Vec3) Dot(b Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns a × b. In a left-handed frame Right × Up = Forward.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

// Len returns the Euclidean length of a.
func (a Vec3) Len() float64 {
	return math.Sqrt(a.Dot(a))
}

// Normalize returns a unit vector pointing the same way as a. The zero
// vector stays zero so degenerate normals never produce NaN.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{a.X / l, a.Y / l, a.Z / l}
}

// Negate returns -a.
func (a Vec3) Negate() Vec3 {
	return Vec3{-a.X, -a.Y, -a.Z}
}

// Lerp moves from a toward b by t; t = 0 gives a and t = 1 gives b.
func (a Vec3) Lerp(b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}

// Min returns the per-component minimum of a and b. Bounding boxes grow
// with it.
func (a Vec3) Min(b Vec3) Vec3 {
	return Vec3{min(a.X, b.X), min(a.Y, b.Y), min(a.Z, b.Z)}
}

// Max returns the per-component maximum of a and b.
func (a Vec3) Max(b Vec3) Vec3 {
	return Vec3{max(a.X, b.X), max(a.Y, b.Y), max(a.Z, b.Z)}
}

// ApproxEqual reports whether no component of a and b differs by more than
// eps.
func (a Vec3) ApproxEqual(b Vec3, eps float64) bool {
	d := a.Sub(b)
	return math.Abs(d.X) <= eps && math.Abs(d.Y) <= eps && math.Abs(d.Z) <= eps
}
