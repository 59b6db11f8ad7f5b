package render

import (
	"github.com/taigrr/softraster/pkg/math3d"
)

// Camera looks from Position at Target with +Y up, using a left-handed
// view and an infinite reverse-Z projection.
type Camera struct {
	Position math3d.Vec3
	Target   math3d.Vec3

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64 // Near plane

	// Cached matrices (computed on demand)
	viewMatrix math3d.Mat4
	projMatrix math3d.Mat4
	viewDirty  bool
	projDirty  bool
}

// NewCamera creates a camera at eye looking at the origin with the
// projection parameters of cfg.
func NewCamera(eye math3d.Vec3, cfg Config) *Camera {
	return &Camera{
		Position:    eye,
		FOV:         cfg.FOVY,
		AspectRatio: cfg.Aspect(),
		Near:        cfg.Near,
		viewDirty:   true,
		projDirty:   true,
	}
}

// SetPosition sets the camera position.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.viewDirty = true
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target math3d.Vec3) {
	c.Target = target
	c.viewDirty = true
}

// Orbit moves the camera around Target about the Y axis by angle radians,
// keeping its distance and height.
func (c *Camera) Orbit(angle float64) {
	offset := c.Position.Sub(c.Target)
	c.SetPosition(c.Target.Add(math3d.RotateY(angle).MulVec3(offset)))
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAtLH(c.Position, c.Target, math3d.Up())
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.PerspectiveInfiniteReverseLH(c.FOV, c.AspectRatio, c.Near)
		c.projDirty = false
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns projection * view.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}
