package math3d

import "math"

// Transform places an object in its parent's space (or world space when it
// has no parent) using a position, Euler rotation and non-uniform scale.
//
// Rotation angles are independent, in radians: pitch about X, yaw about Y,
// roll about Z. Yaw is applied first, then pitch in the yawed frame, then roll
// in that result. The orthonormal basis and its inverse are recomputed by
// every mutator, so lookups never see a stale basis.
//
// A parent is owned by value. SetParent stores a private deep copy, so later
// edits to the original do not reach the child and a chain can never form a
// cycle.
//
// The zero value has a zero scale; use NewTransform.
type Transform struct {
	position Vec3
	rotation Vec3 // X=pitch, Y=yaw, Z=roll
	scale    Vec3
	parent   *Transform

	right, up, forward      Vec3
	invRight, invUp, invFwd Vec3
}

// NewTransform returns an identity transform at the origin with unit scale.
func NewTransform() *Transform {
	t := &Transform{scale: One3()}
	t.updateBasis()
	return t
}

// NewTransformAt returns a transform with the given position, rotation
// (pitch, yaw, roll) and unit scale.
func NewTransformAt(position, rotation Vec3) *Transform {
	t := &Transform{position: position, rotation: rotation, scale: One3()}
	t.updateBasis()
	return t
}

// Position returns the local position.
func (t *Transform) Position() Vec3 { return t.position }

// Rotation returns the Euler angles as (pitch, yaw, roll).
func (t *Transform) Rotation() Vec3 { return t.rotation }

// Scale returns the local scale.
func (t *Transform) Scale() Vec3 { return t.scale }

// Parent returns the transform's private parent copy, or nil.
func (t *Transform) Parent() *Transform { return t.parent }

// Right returns the local +X axis expressed in parent space.
func (t *Transform) Right() Vec3 { return t.right }

// Up returns the local +Y axis expressed in parent space.
func (t *Transform) Up() Vec3 { return t.up }

// Forward returns the local +Z axis expressed in parent space.
func (t *Transform) Forward() Vec3 { return t.forward }

// Basis returns the right, up and forward axes.
func (t *Transform) Basis() (right, up, forward Vec3) {
	return t.right, t.up, t.forward
}

// SetPosition sets the local position.
func (t *Transform) SetPosition(p Vec3) {
	t.position = p
}

// Translate moves the transform by d in parent space.
func (t *Transform) Translate(d Vec3) {
	t.position = t.position.Add(d)
}

// SetRotation sets pitch, yaw and roll in radians.
func (t *Transform) SetRotation(pitch, yaw, roll float64) {
	t.rotation = V3(pitch, yaw, roll)
	t.updateBasis()
}

// Rotate adds the given angles to the current rotation.
func (t *Transform) Rotate(pitch, yaw, roll float64) {
	t.rotation = t.rotation.Add(V3(pitch, yaw, roll))
	t.updateBasis()
}

// SetScale sets the local scale. Components must be non-zero for
// ToLocalPoint to be defined.
func (t *Transform) SetScale(s Vec3) {
	t.scale = s
}

// SetPosRotScale sets position, rotation (pitch, yaw, roll) and scale at once.
func (t *Transform) SetPosRotScale(position, rotation, scale Vec3) {
	t.position = position
	t.rotation = rotation
	t.scale = scale
	t.updateBasis()
}

// SetParent stores a deep copy of p as the parent. Passing nil detaches
// the transform.
func (t *Transform) SetParent(p *Transform) {
	if p == nil {
		t.parent = nil
		return
	}
	t.parent = p.Clone()
}

// Clone returns a deep copy of t including its parent chain.
func (t *Transform) Clone() *Transform {
	c := *t
	if t.parent != nil {
		c.parent = t.parent.Clone()
	}
	return &c
}

// ToWorldPoint maps a point from local space to world space.
func (t *Transform) ToWorldPoint(p Vec3) Vec3 {
	w := t.right.Scale(t.scale.X * p.X).
		Add(t.up.Scale(t.scale.Y * p.Y)).
		Add(t.forward.Scale(t.scale.Z * p.Z)).
		Add(t.position)
	if t.parent != nil {
		return t.parent.ToWorldPoint(w)
	}
	return w
}

// ToLocalPoint maps a world-space point into this transform's local space.
// It is the inverse of ToWorldPoint.
func (t *Transform) ToLocalPoint(p Vec3) Vec3 {
	if t.parent != nil {
		p = t.parent.ToLocalPoint(p)
	}
	d := p.Sub(t.position)
	l := t.invRight.Scale(d.X).
		Add(t.invUp.Scale(d.Y)).
		Add(t.invFwd.Scale(d.Z))
	return l.DivVec(t.scale)
}

// TransformDirection rotates a local direction into world space. Scale and
// translation are not applied.
func (t *Transform) TransformDirection(d Vec3) Vec3 {
	w := t.right.Scale(d.X).
		Add(t.up.Scale(d.Y)).
		Add(t.forward.Scale(d.Z))
	if t.parent != nil {
		return t.parent.TransformDirection(w)
	}
	return w
}

func (t *Transform) updateBasis() {
	pitch, yaw, roll := t.rotation.X, t.rotation.Y, t.rotation.Z

	sy, cy := math.Sincos(yaw)
	yawI, yawJ, yawK := V3(cy, 0, sy), V3(0, 1, 0), V3(-sy, 0, cy)

	sp, cp := math.Sincos(pitch)
	ypI := apply(yawI, yawJ, yawK, V3(1, 0, 0))
	ypJ := apply(yawI, yawJ, yawK, V3(0, cp, -sp))
	ypK := apply(yawI, yawJ, yawK, V3(0, sp, cp))

	sr, cr := math.Sincos(roll)
	t.right = apply(ypI, ypJ, ypK, V3(cr, sr, 0))
	t.up = apply(ypI, ypJ, ypK, V3(-sr, cr, 0))
	t.forward = apply(ypI, ypJ, ypK, V3(0, 0, 1))

	// Orthonormal basis: the inverse is the transpose.
	t.invRight = V3(t.right.X, t.up.X, t.forward.X)
	t.invUp = V3(t.right.Y, t.up.Y, t.forward.Y)
	t.invFwd = V3(t.right.Z, t.up.Z, t.forward.Z)
}

// apply expresses v in the basis (i, j, k).
func apply(i, j, k, v Vec3) Vec3 {
	return i.Scale(v.X).Add(j.Scale(v.Y)).Add(k.Scale(v.Z))
}
