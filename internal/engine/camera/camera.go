// Package camera provides camera implementations for 3D rendering.
package camera

import (
	gomath "math"

	"github.com/Faultbox/voxelizer/pkg/math"
)

// FreeLookCamera is a first-person fly camera: mouse look plus
// forward/right/up movement relative to the view direction.
type FreeLookCamera struct {
	Position math.Vec3
	Yaw      float32 // radians, 0 looks down -Z
	Pitch    float32 // radians, positive looks up

	FovY       float32 // radians
	Near, Far  float32
	MaxPitch   float32
	MoveSpeed  float32 // units per second
	LookSpeed  float32 // radians per pixel
	FastFactor float32
	SlowFactor float32
}

// NewFreeLookCamera creates a camera at pos looking down -Z.
func NewFreeLookCamera(pos math.Vec3) *FreeLookCamera {
	return &FreeLookCamera{
		Position:   pos,
		FovY:       float32(gomath.Pi / 3),
		Near:       0.05,
		Far:        500,
		MaxPitch:   1.55,
		MoveSpeed:  4,
		LookSpeed:  0.004,
		FastFactor: 4,
		SlowFactor: 0.25,
	}
}

// Forward returns the unit view direction.
func (c *FreeLookCamera) Forward() math.Vec3 {
	cp := float32(gomath.Cos(float64(c.Pitch)))
	return math.Vec3{
		X: cp * float32(gomath.Sin(float64(c.Yaw))),
		Y: float32(gomath.Sin(float64(c.Pitch))),
		Z: -cp * float32(gomath.Cos(float64(c.Yaw))),
	}
}

// Right returns the unit right direction on the XZ plane.
func (c *FreeLookCamera) Right() math.Vec3 {
	return math.Vec3{
		X: float32(gomath.Cos(float64(c.Yaw))),
		Z: float32(gomath.Sin(float64(c.Yaw))),
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *FreeLookCamera) ViewMatrix() math.Mat4 {
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	return math.LookAt(c.Position, c.Position.Add(c.Forward()), up)
}

// ProjectionMatrix returns a perspective projection for the aspect ratio.
func (c *FreeLookCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return math.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// HandleLook turns the camera by a mouse delta in pixels.
func (c *FreeLookCamera) HandleLook(deltaX, deltaY float32) {
	c.Yaw += deltaX * c.LookSpeed
	c.Pitch -= deltaY * c.LookSpeed

	// Clamp pitch
	if c.Pitch > c.MaxPitch {
		c.Pitch = c.MaxPitch
	}
	if c.Pitch < -c.MaxPitch {
		c.Pitch = -c.MaxPitch
	}
}

// Movement is one frame of movement input, each axis in [-1, 1].
type Movement struct {
	Forward, Right, Up float32
	Fast, Slow         bool
}

// HandleMovement moves the camera for dt seconds. Up is world up.
func (c *FreeLookCamera) HandleMovement(m Movement, dt float32) {
	speed := c.MoveSpeed * dt
	if m.Fast {
		speed *= c.FastFactor
	}
	if m.Slow {
		speed *= c.SlowFactor
	}

	delta := c.Forward().Scale(m.Forward).
		Add(c.Right().Scale(m.Right)).
		Add(math.Vec3{Y: m.Up})
	c.Position = c.Position.Add(delta.Scale(speed))
}

// LookAt points the camera at target.
func (c *FreeLookCamera) LookAt(target math.Vec3) {
	d := target.Sub(c.Position)
	if d.Length() == 0 {
		return
	}
	d = d.Normalize()
	c.Yaw = float32(gomath.Atan2(float64(d.X), float64(-d.Z)))
	c.Pitch = float32(gomath.Asin(float64(d.Y)))
}

// FitToBounds places the camera so the box is in view, looking at its
// center from the front and slightly above.
func (c *FreeLookCamera) FitToBounds(lo, hi math.Vec3) {
	center := lo.Add(hi).Scale(0.5)
	radius := hi.Sub(lo).Length() / 2
	if radius == 0 {
		radius = 1
	}
	dist := radius / float32(gomath.Tan(float64(c.FovY)/2))

	c.Position = center.Add(math.Vec3{Y: 0.4 * dist, Z: dist})
	c.LookAt(center)
}
