package voxelize

import (
	gomath "math"

	"github.com/Faultbox/voxelizer/internal/voxel"
	"github.com/Faultbox/voxelizer/pkg/math"
)

// CellFromNDC maps a fragment's normalized device coordinates under one
// axis view back to the grid cell containing it. It inverts
// ComputeProjections:
//
//	X view: world = ( ndc.z*hw, ndc.y*hh,  ndc.x*hd)
//	Y view: world = ( ndc.x*hw, ndc.z*hh,  ndc.y*hd)
//	Z view: world = (-ndc.x*hw, ndc.y*hh,  ndc.z*hd)
//
// and then cell = floor(world + half). A coordinate on the grid's upper
// face belongs to the last cell. Points outside the grid report false.
// voxelize.frag mirrors this function.
func CellFromNDC(axis Axis, ndc math.Vec3, dims voxel.Dims) (voxel.Cell, bool) {
	hw := float32(dims.W) / 2
	hh := float32(dims.H) / 2
	hd := float32(dims.D) / 2

	var world math.Vec3
	switch axis {
	case AxisX:
		world = math.Vec3{X: ndc.Z * hw, Y: ndc.Y * hh, Z: ndc.X * hd}
	case AxisY:
		world = math.Vec3{X: ndc.X * hw, Y: ndc.Z * hh, Z: ndc.Y * hd}
	case AxisZ:
		world = math.Vec3{X: -ndc.X * hw, Y: ndc.Y * hh, Z: ndc.Z * hd}
	default:
		return voxel.Cell{}, false
	}

	x, okX := cellIndex(world.X+hw, dims.W)
	y, okY := cellIndex(world.Y+hh, dims.H)
	z, okZ := cellIndex(world.Z+hd, dims.D)
	if !okX || !okY || !okZ {
		return voxel.Cell{}, false
	}
	return voxel.Cell{X: x, Y: y, Z: z}, true
}

// cellIndex floors a grid-space coordinate in [0, n].
func cellIndex(v float32, n int) (int, bool) {
	if !(v >= 0 && v <= float32(n)) {
		return 0, false
	}
	i := int(gomath.Floor(float64(v)))
	if i >= n {
		i = n - 1
	}
	return i, true
}
