package render

import (
	"math"

	"github.com/taigrr/softras/pkg/math3d"
)

// Camera is a perspective viewpoint. It looks along its Transform's local +Z
// with +X right and +Y up; the transform's inverse maps world space to view
// space.
type Camera struct {
	// Vertical field of view in degrees.
	FOV float64

	Transform *math3d.Transform
}

// NewCamera creates a camera at the origin looking down +Z.
func NewCamera(fovDegrees float64) *Camera {
	return &Camera{
		FOV:       fovDegrees,
		Transform: math3d.NewTransform(),
	}
}

// FocalLength returns the projection scale for a target of the given pixel
// height: a view-space point at depth z projects at offset (x, y) *
// FocalLength / z from the screen center.
func (c *Camera) FocalLength(height int) float64 {
	fov := c.FOV * math.Pi / 180
	return float64(height) / (2 * math.Tan(fov/2))
}

// WorldToView transforms a world-space point into view space.
func (c *Camera) WorldToView(p math3d.Vec3) math3d.Vec3 {
	return c.Transform.ToLocalPoint(p)
}

// Project maps a view-space point with z > 0 to pixel coordinates on a
// width × height target.
func (c *Camera) Project(view math3d.Vec3, width, height int) math3d.Vec2 {
	ppu := c.FocalLength(height) / view.Z
	return math3d.V2(
		float64(width)/2+view.X*ppu,
		float64(height)/2+view.Y*ppu,
	)
}

// WorldToScreen projects a world point. visible is false when the point
// lies at or behind the near plane.
func (c *Camera) WorldToScreen(p math3d.Vec3, width, height int) (screen math3d.Vec2, depth float64, visible bool) {
	view := c.WorldToView(p)
	if view.Z <= NearClipDst {
		return math3d.Vec2{}, 0, false
	}
	return c.Project(view, width, height), view.Z, true
}

// Position returns the camera position in world space.
func (c *Camera) Position() math3d.Vec3 {
	return c.Transform.ToWorldPoint(math3d.Zero3())
}

// MoveForward moves the camera along its view direction.
func (c *Camera) MoveForward(distance float64) {
	c.Transform.Translate(c.Transform.Forward().Scale(distance))
}

// MoveRight moves the camera along its right axis.
func (c *Camera) MoveRight(distance float64) {
	c.Transform.Translate(c.Transform.Right().Scale(distance))
}

// MoveUp moves the camera along the world up axis.
func (c *Camera) MoveUp(distance float64) {
	c.Transform.Translate(math3d.Up().Scale(distance))
}

// Rotate adds pitch and yaw (radians). Pitch is clamped short of straight up
// or down.
func (c *Camera) Rotate(deltaPitch, deltaYaw float64) {
	r := c.Transform.Rotation()
	c.Transform.SetRotation(clampPitch(r.X+deltaPitch), r.Y+deltaYaw, r.Z)
}

// LookAt turns the camera toward a world-space target and clears roll.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.Transform.Position()).Normalize()
	if dir == (math3d.Vec3{}) {
		return
	}
	pitch := math.Asin(math.Max(-1, math.Min(1, dir.Y)))
	yaw := math.Atan2(-dir.X, dir.Z)
	c.Transform.SetRotation(clampPitch(pitch), yaw, 0)
}

func clampPitch(p float64) float64 {
	const maxPitch = math.Pi/2 - 0.01
	return math.Max(-maxPitch, math.Min(maxPitch, p))
}
