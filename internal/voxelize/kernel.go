package voxelize

import (
	"github.com/Faultbox/voxelizer/internal/gpu"
	"github.com/Faultbox/voxelizer/internal/model"
	"github.com/Faultbox/voxelizer/internal/voxel"
	"github.com/Faultbox/voxelizer/pkg/math"
)

// Uniform names shared by the GLSL program and Kernel.
const (
	UniformOrthoX     = "uViewProjMatOrthoX"
	UniformOrthoY     = "uViewProjMatOrthoY"
	UniformOrthoZ     = "uViewProjMatOrthoZ"
	UniformGridSizeX  = "uGridSizeX"
	UniformGridSizeY  = "uGridSizeY"
	UniformGridSizeZ  = "uGridSizeZ"
	UniformVoxelImage = "uVoxelDiffuseColor"
)

var orthoUniforms = [3]string{UniformOrthoX, UniformOrthoY, UniformOrthoZ}

// Kernel runs the voxelization program on devices without GLSL. Geometry
// emits each triangle once per axis view with the axis as layer; Fragment
// remaps the fragment to its grid cell and stores the mesh's diffuse
// color there with opaque alpha.
type Kernel struct{}

// Geometry implements gpu.Kernel.
func (Kernel) Geometry(u *gpu.Uniforms, tri [3]math.Vec3, emit func(gpu.Primitive)) {
	for _, axis := range Axes {
		m := u.Mat4[orthoUniforms[axis]]
		emit(gpu.Primitive{
			Clip: [3]math.Vec4{
				m.MulVec4(math.Point(tri[0])),
				m.MulVec4(math.Point(tri[1])),
				m.MulVec4(math.Point(tri[2])),
			},
			Layer: int(axis),
		})
	}
}

// Fragment implements gpu.Kernel.
func (Kernel) Fragment(u *gpu.Uniforms, f gpu.Fragment, img gpu.ImageStore) {
	dims := voxel.Dims{
		W: int(u.Int[UniformGridSizeX]),
		H: int(u.Int[UniformGridSizeY]),
		D: int(u.Int[UniformGridSizeZ]),
	}
	cell, ok := CellFromNDC(Axis(f.Layer), f.NDC, dims)
	if !ok {
		return
	}
	c := u.Vec4[model.DiffuseColorUniform]
	img.Store(int(u.Int[UniformVoxelImage]), cell.X, cell.Y, cell.Z, [4]uint8{
		unorm8(c[0]), unorm8(c[1]), unorm8(c[2]), 255,
	})
}

// unorm8 converts like an rgba8 imageStore: clamp to [0,1], round.
func unorm8(v float32) uint8 {
	v = max(0, min(1, v))
	return uint8(v*255 + 0.5)
}

var _ gpu.Kernel = Kernel{}
