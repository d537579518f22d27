package model

import (
	"github.com/Faultbox/voxelizer/internal/voxel"
	"github.com/Faultbox/voxelizer/pkg/math"
)

// FitTransform returns the matrix that centers the model's bounds at the
// origin and scales it uniformly to fill dims, leaving padding (a
// fraction of each extent) empty on every side. Grid space has one unit
// per cell. An empty model yields the identity.
func (m *Model) FitTransform(dims voxel.Dims, padding float32) math.Mat4 {
	lo, hi, ok := m.Bounds()
	if !ok {
		return math.Identity()
	}

	size := hi.Sub(lo)
	center := lo.Add(hi).Scale(0.5)
	avail := math.Vec3{X: float32(dims.W), Y: float32(dims.H), Z: float32(dims.D)}.
		Scale(1 - 2*padding)

	scale := float32(0)
	for _, r := range []struct{ extent, room float32 }{
		{size.X, avail.X}, {size.Y, avail.Y}, {size.Z, avail.Z},
	} {
		if r.extent <= 0 {
			continue
		}
		if s := r.room / r.extent; scale == 0 || s < scale {
			scale = s
		}
	}
	if scale == 0 {
		scale = 1
	}

	return math.Scale(scale, scale, scale).
		Mul(math.Translate(-center.X, -center.Y, -center.Z))
}

// FitToGrid transforms the model in place with FitTransform.
func (m *Model) FitToGrid(dims voxel.Dims, padding float32) {
	m.Transform(m.FitTransform(dims, padding))
}
