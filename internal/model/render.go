package model

import (
	"fmt"

	"github.com/Faultbox/voxelizer/internal/gpu"
	"github.com/Faultbox/voxelizer/pkg/math"
)

// DiffuseColorUniform is the uniform the per-mesh setters write.
const DiffuseColorUniform = "uDiffuseColor"

// UniformSetter binds one mesh's material uniforms on a program.
type UniformSetter func()

// CompileUniformSetters returns one setter per mesh, in the same order,
// that binds the mesh's diffuse color on prog.
func CompileUniformSetters(dev gpu.Device, prog gpu.ProgramID, meshes []*Mesh) []UniformSetter {
	setters := make([]UniformSetter, len(meshes))
	for i, mesh := range meshes {
		color := math.Vec4(mesh.Material.Diffuse)
		setters[i] = func() {
			dev.SetUniformVec4(prog, DiffuseColorUniform, color)
		}
	}
	return setters
}

// RenderData returns the mesh's upload on dev, uploading on first use.
func RenderData(dev gpu.Device, mesh *Mesh) (gpu.MeshID, error) {
	if id, ok := mesh.handles[dev]; ok {
		return id, nil
	}
	id, err := dev.UploadMesh(gpu.MeshData{Positions: mesh.Positions, Indices: mesh.Indices})
	if err != nil {
		return 0, fmt.Errorf("upload mesh %q: %w", mesh.Name, err)
	}
	if mesh.handles == nil {
		mesh.handles = make(map[gpu.Device]gpu.MeshID)
	}
	mesh.handles[dev] = id
	return id, nil
}
