package voxelize

import (
	"fmt"

	"github.com/Faultbox/voxelizer/internal/gpu"
	"github.com/Faultbox/voxelizer/internal/voxel"
	"github.com/Faultbox/voxelizer/internal/voxelize/shaders"
)

// voxelImageUnit is the image unit the volume is bound to for writes.
const voxelImageUnit = 0

// Program is the compiled voxelization program.
type Program struct {
	dev gpu.Device
	id  gpu.ProgramID
}

// NewProgram compiles the voxelization program. Failure wraps
// ErrInitialization.
func NewProgram(dev gpu.Device) (*Program, error) {
	id, err := dev.CompileProgram(gpu.ProgramSource{
		Name:     "voxelize",
		Vertex:   shaders.VoxelizeVertexShader,
		Geometry: shaders.VoxelizeGeometryShader,
		Fragment: shaders.VoxelizeFragmentShader,
		Kernel:   Kernel{},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: voxelization program: %w", ErrInitialization, err)
	}
	return &Program{dev: dev, id: id}, nil
}

// ID returns the device handle.
func (p *Program) ID() gpu.ProgramID { return p.id }

// Use makes the program current.
func (p *Program) Use() { p.dev.UseProgram(p.id) }

// SetGrid binds the axis projections and the integer grid size for dims.
func (p *Program) SetGrid(dims voxel.Dims, proj Projections) {
	p.dev.SetUniformMat4(p.id, UniformOrthoX, proj.X)
	p.dev.SetUniformMat4(p.id, UniformOrthoY, proj.Y)
	p.dev.SetUniformMat4(p.id, UniformOrthoZ, proj.Z)
	p.dev.SetUniformInt(p.id, UniformGridSizeX, int32(dims.W))
	p.dev.SetUniformInt(p.id, UniformGridSizeY, int32(dims.H))
	p.dev.SetUniformInt(p.id, UniformGridSizeZ, int32(dims.D))
}

// SetTarget binds storage for write-only image stores.
func (p *Program) SetTarget(s voxel.Storage) {
	s.BindForWrite(voxelImageUnit, gpu.AccessWriteOnly)
	p.dev.SetUniformInt(p.id, UniformVoxelImage, voxelImageUnit)
}

// Delete frees the program.
func (p *Program) Delete() {
	if p.id != 0 {
		p.dev.DeleteProgram(p.id)
		p.id = 0
	}
}
