// Package model holds triangulated models submitted for voxelization:
// meshes with a diffuse material, their GPU upload cache and the loaders
// that produce them.
package model

import (
	"fmt"

	"github.com/Faultbox/voxelizer/internal/gpu"
	"github.com/Faultbox/voxelizer/pkg/math"
)

// Material is the part of a surface material the voxelizer stores.
type Material struct {
	Name    string
	Diffuse [4]float32
}

// DefaultMaterial is used for meshes without a material.
var DefaultMaterial = Material{Name: "default", Diffuse: [4]float32{0.8, 0.8, 0.8, 1}}

// Mesh is an indexed triangle list in model space.
type Mesh struct {
	Name      string
	Positions []math.Vec3
	Indices   []uint32
	Material  Material

	// handles caches uploads per device.
	handles map[gpu.Device]gpu.MeshID
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bounds returns the axis-aligned bounds of the referenced vertices.
func (m *Mesh) Bounds() (lo, hi math.Vec3, ok bool) {
	for i, idx := range m.Indices {
		p := m.Positions[idx]
		if i == 0 {
			lo, hi = p, p
			continue
		}
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi, len(m.Indices) > 0
}

// Validate checks that every index references a vertex and that the index
// list holds whole triangles.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh %q: %d indices is not a triangle list", m.Name, len(m.Indices))
	}
	for _, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			return fmt.Errorf("mesh %q: index %d out of range of %d vertices", m.Name, idx, len(m.Positions))
		}
	}
	return nil
}

// Model is a set of meshes.
type Model struct {
	Name   string
	Meshes []*Mesh
}

// SelectAllMeshes returns the meshes that have triangles, in order.
func (m *Model) SelectAllMeshes() []*Mesh {
	if m == nil {
		return nil
	}
	out := make([]*Mesh, 0, len(m.Meshes))
	for _, mesh := range m.Meshes {
		if mesh.TriangleCount() > 0 {
			out = append(out, mesh)
		}
	}
	return out
}

// TriangleCount returns the number of triangles over all meshes.
func (m *Model) TriangleCount() int {
	n := 0
	for _, mesh := range m.Meshes {
		n += mesh.TriangleCount()
	}
	return n
}

// Bounds returns the bounds of all meshes.
func (m *Model) Bounds() (lo, hi math.Vec3, ok bool) {
	for _, mesh := range m.Meshes {
		mlo, mhi, mok := mesh.Bounds()
		if !mok {
			continue
		}
		if !ok {
			lo, hi, ok = mlo, mhi, true
			continue
		}
		lo = lo.Min(mlo)
		hi = hi.Max(mhi)
	}
	return lo, hi, ok
}

// Transform applies mat to every vertex. Uploads made before the call
// hold the old positions and are deleted on their devices.
func (m *Model) Transform(mat math.Mat4) {
	for _, mesh := range m.Meshes {
		for i, p := range mesh.Positions {
			mesh.Positions[i] = mat.TransformVec3(p)
		}
		for dev, id := range mesh.handles {
			dev.DeleteMesh(id)
		}
		mesh.handles = nil
	}
}

// Release deletes the model's uploads on dev.
func (m *Model) Release(dev gpu.Device) {
	for _, mesh := range m.Meshes {
		if id, ok := mesh.handles[dev]; ok {
			dev.DeleteMesh(id)
			delete(mesh.handles, dev)
		}
	}
}
