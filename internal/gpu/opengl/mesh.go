package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.5-core/gl"

	"github.com/Faultbox/voxelizer/internal/gpu"
)

type mesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

// UploadMesh creates a VAO with positions on attribute 0.
func (d *Device) UploadMesh(data gpu.MeshData) (gpu.MeshID, error) {
	if len(data.Positions) == 0 || len(data.Indices) == 0 {
		return 0, fmt.Errorf("empty mesh: %w", gpu.ErrInvalidValue)
	}

	m := &mesh{indexCount: int32(len(data.Indices))}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data.Positions)*12, gl.Ptr(data.Positions), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, gl.Ptr(data.Indices), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 12, 0)
	gl.EnableVertexAttribArray(0)

	gl.BindVertexArray(0)

	if err := checkError("upload mesh"); err != nil {
		d.deleteMesh(m)
		return 0, err
	}

	id := gpu.MeshID(m.vao)
	d.meshes[id] = m
	return id, nil
}

// DeleteMesh implements gpu.Device.
func (d *Device) DeleteMesh(id gpu.MeshID) {
	m, ok := d.meshes[id]
	if !ok {
		return
	}
	d.deleteMesh(m)
	delete(d.meshes, id)
}

func (d *Device) deleteMesh(m *mesh) {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
}

// DrawMesh draws the mesh with the current program.
func (d *Device) DrawMesh(id gpu.MeshID) {
	m, ok := d.meshes[id]
	if !ok {
		return
	}
	d.barrier()
	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
	d.imageWrites = d.imageWrites || len(d.writableUnits) > 0
}

// DrawMeshInstanced draws instances of the mesh with the current program.
func (d *Device) DrawMeshInstanced(id gpu.MeshID, instances int) {
	m, ok := d.meshes[id]
	if !ok || instances <= 0 {
		return
	}
	d.barrier()
	gl.BindVertexArray(m.vao)
	gl.DrawElementsInstanced(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, nil, int32(instances))
	gl.BindVertexArray(0)
	d.imageWrites = d.imageWrites || len(d.writableUnits) > 0
}
