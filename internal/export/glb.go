package export

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/voxelizer/internal/voxel"
)

// ErrEmptyGrid is returned when a mesh export finds no filled cells.
var ErrEmptyGrid = errors.New("grid has no filled cells")

// cubeFace is one side of a cell: the neighbour offset, the outward
// normal and four corners wound counter-clockwise seen from outside.
type cubeFace struct {
	dx, dy, dz int
	normal     [3]float32
	corners    [4][3]float32
}

var cubeFaces = [6]cubeFace{
	{1, 0, 0, [3]float32{1, 0, 0}, [4][3]float32{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}},
	{-1, 0, 0, [3]float32{-1, 0, 0}, [4][3]float32{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}},
	{0, 1, 0, [3]float32{0, 1, 0}, [4][3]float32{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}},
	{0, -1, 0, [3]float32{0, -1, 0}, [4][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}},
	{0, 0, 1, [3]float32{0, 0, 1}, [4][3]float32{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}},
	{0, 0, -1, [3]float32{0, 0, -1}, [4][3]float32{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}},
}

// voxelMesh is the flat-shaded surface of a grid.
type voxelMesh struct {
	positions [][3]float32
	normals   [][3]float32
	colors    [][4]float32
	indices   []uint32
}

// buildVoxelMesh emits the faces of filled cells that border an empty
// cell or the grid boundary. The grid is centred on the origin.
func buildVoxelMesh(g *voxel.Grid, cellSize float32) *voxelMesh {
	m := &voxelMesh{}
	ox := float32(g.Dims.W) / 2
	oy := float32(g.Dims.H) / 2
	oz := float32(g.Dims.D) / 2

	for _, c := range g.Filled() {
		texel := g.At(c.X, c.Y, c.Z)
		color := [4]float32{
			float32(texel[0]) / 255,
			float32(texel[1]) / 255,
			float32(texel[2]) / 255,
			float32(texel[3]) / 255,
		}

		for _, f := range cubeFaces {
			n := voxel.Cell{X: c.X + f.dx, Y: c.Y + f.dy, Z: c.Z + f.dz}
			if g.InBounds(n) && !g.Empty(n.X, n.Y, n.Z) {
				continue
			}

			base := uint32(len(m.positions))
			for _, k := range f.corners {
				m.positions = append(m.positions, [3]float32{
					(float32(c.X) + k[0] - ox) * cellSize,
					(float32(c.Y) + k[1] - oy) * cellSize,
					(float32(c.Z) + k[2] - oz) * cellSize,
				})
				m.normals = append(m.normals, f.normal)
				m.colors = append(m.colors, color)
			}
			m.indices = append(m.indices, base, base+1, base+2, base, base+2, base+3)
		}
	}
	return m
}

// GLB builds a glTF document holding the visible faces of g with
// per-vertex colours.
func GLB(g *voxel.Grid, cellSize float32) (*gltf.Document, error) {
	if cellSize <= 0 {
		cellSize = 1
	}
	m := buildVoxelMesh(g, cellSize)
	if len(m.indices) == 0 {
		return nil, ErrEmptyGrid
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "voxelizer"

	posAccessor := modeler.WritePosition(doc, m.positions)
	normalAccessor := modeler.WriteNormal(doc, m.normals)
	colorAccessor := modeler.WriteColor(doc, m.colors)
	indicesAccessor := modeler.WriteIndices(doc, m.indices)

	prim := &gltf.Primitive{
		Attributes: gltf.PrimitiveAttributes{
			gltf.POSITION: posAccessor,
			gltf.NORMAL:   normalAccessor,
			gltf.COLOR_0:  colorAccessor,
		},
		Indices:  gltf.Index(indicesAccessor),
		Material: gltf.Index(0),
	}

	doc.Materials = []*gltf.Material{{
		Name: "voxel",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{1, 1, 1, 1},
			MetallicFactor:  gltf.Float(0),
			RoughnessFactor: gltf.Float(1),
		},
		AlphaMode: gltf.AlphaOpaque,
	}}
	doc.Meshes = []*gltf.Mesh{{Name: "voxels", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: "voxels", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc, nil
}

// SaveGLB writes the voxel surface of g as a binary glTF file.
func SaveGLB(path string, g *voxel.Grid, cellSize float32) error {
	doc, err := GLB(g, cellSize)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("writing glb: %w", err)
	}
	return nil
}
