package voxelize

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxelizer/internal/voxel"
	"github.com/Faultbox/voxelizer/pkg/math"
)

// Axis names one of the three orthographic views.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Axes lists the views in geometry-stage emission order.
var Axes = [3]Axis{AxisX, AxisY, AxisZ}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Projections are the view-projection matrices of the three axis views.
// Each maps the grid's box, centered at the origin with one world unit
// per cell, onto the clip cube.
type Projections struct {
	X, Y, Z math.Mat4
}

// For returns the matrix of one axis view.
func (p Projections) For(a Axis) math.Mat4 {
	switch a {
	case AxisX:
		return p.X
	case AxisY:
		return p.Y
	default:
		return p.Z
	}
}

// ComputeProjections derives the three orthographic view-projections for
// a grid. Every view looks at the origin along its positive axis from the
// box face, and the near and far planes span the whole viewed extent.
// The Y view uses +Z as up.
func ComputeProjections(dims voxel.Dims) Projections {
	hw := float32(dims.W) / 2
	hh := float32(dims.H) / 2
	hd := float32(dims.D) / 2

	var origin mgl32.Vec3
	up := mgl32.Vec3{0, 1, 0}
	upZ := mgl32.Vec3{0, 0, 1}

	return Projections{
		X: viewProj(mgl32.Ortho(-hd, hd, -hh, hh, 0, 2*hw), mgl32.LookAtV(mgl32.Vec3{-hw, 0, 0}, origin, up)),
		Y: viewProj(mgl32.Ortho(-hw, hw, -hd, hd, 0, 2*hh), mgl32.LookAtV(mgl32.Vec3{0, -hh, 0}, origin, upZ)),
		Z: viewProj(mgl32.Ortho(-hw, hw, -hh, hh, 0, 2*hd), mgl32.LookAtV(mgl32.Vec3{0, 0, -hd}, origin, up)),
	}
}

// viewProj multiplies proj by view. Both libraries store matrices column
// major, so the result converts directly.
func viewProj(proj, view mgl32.Mat4) math.Mat4 {
	return math.Mat4(proj.Mul4(view))
}
