package voxelize

import (
	"fmt"

	"github.com/Faultbox/voxelizer/internal/gpu"
	"github.com/Faultbox/voxelizer/internal/model"
	"github.com/Faultbox/voxelizer/internal/voxel"
	"github.com/Faultbox/voxelizer/internal/voxelize/shaders"
	"github.com/Faultbox/voxelizer/pkg/math"
)

// displaySamplerUnit is the texture unit the volume is sampled from.
const displaySamplerUnit = 0

// Visualizer draws one unit cube per non-empty voxel with a single
// instanced draw. It only reads the volume.
type Visualizer struct {
	dev     gpu.Device
	storage voxel.Storage
	program gpu.ProgramID
	cube    gpu.MeshID
}

// NewVisualizer compiles the display program and uploads the cube.
func NewVisualizer(dev gpu.Device, storage voxel.Storage) (*Visualizer, error) {
	prog, err := dev.CompileProgram(gpu.ProgramSource{
		Name:     "voxel display",
		Vertex:   shaders.DisplayVertexShader,
		Fragment: shaders.DisplayFragmentShader,
	})
	if err != nil {
		return nil, fmt.Errorf("display program: %w", err)
	}

	// Unit cube spanning [0,1] so instance offsets are cell indices.
	cube := model.Cube("voxel", 1, model.DefaultMaterial)
	for i, p := range cube.Positions {
		cube.Positions[i] = p.Add(math.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	}
	mesh, err := dev.UploadMesh(gpu.MeshData{Positions: cube.Positions, Indices: cube.Indices})
	if err != nil {
		dev.DeleteProgram(prog)
		return nil, fmt.Errorf("display cube: %w", err)
	}

	return &Visualizer{dev: dev, storage: storage, program: prog, cube: mesh}, nil
}

// SetStorage points the visualizer at another volume.
func (v *Visualizer) SetStorage(s voxel.Storage) {
	v.storage = s
}

// Render draws the volume centered at the origin of modelMat with depth
// testing and back-face culling. Rendering without a live volume is a
// programming error and panics.
func (v *Visualizer) Render(modelMat, view, proj math.Mat4) error {
	if v.storage == nil || !v.storage.Live() {
		panic("voxelize: visualizer rendered without a voxel volume")
	}
	dims := v.storage.Dims()

	s := v.dev.RasterState()
	s.CullFace = true
	s.DepthTest = true
	s.ColorMask = [4]bool{true, true, true, true}
	s.ConservativeRaster = false
	restore, err := gpu.Override(v.dev, s)
	if err != nil {
		return fmt.Errorf("voxel preview: %w", err)
	}
	defer restore()

	v.dev.UseProgram(v.program)
	v.dev.SetUniformMat4(v.program, "uModel", modelMat)
	v.dev.SetUniformMat4(v.program, "uView", view)
	v.dev.SetUniformMat4(v.program, "uProjection", proj)
	v.dev.SetUniformInt(v.program, UniformGridSizeX, int32(dims.W))
	v.dev.SetUniformInt(v.program, UniformGridSizeY, int32(dims.H))
	v.dev.SetUniformInt(v.program, UniformGridSizeZ, int32(dims.D))
	v.dev.SetUniformInt(v.program, "uVolume", displaySamplerUnit)
	v.storage.BindForSampling(displaySamplerUnit)

	v.dev.DrawMeshInstanced(v.cube, dims.Count())
	return nil
}

// Delete frees the display program and cube.
func (v *Visualizer) Delete() {
	if v.cube != 0 {
		v.dev.DeleteMesh(v.cube)
		v.cube = 0
	}
	if v.program != 0 {
		v.dev.DeleteProgram(v.program)
		v.program = 0
	}
}
