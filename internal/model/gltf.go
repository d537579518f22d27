package model

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/voxelizer/pkg/math"
)

// Load reads a glTF 2.0 file (.gltf or .glb). Every triangle primitive of
// the default scene becomes one Mesh with node transforms baked in.
func Load(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return FromDocument(name, doc)
}

// FromDocument converts a decoded glTF document.
func FromDocument(name string, doc *gltf.Document) (*Model, error) {
	m := &Model{Name: name}

	var roots []int
	switch {
	case doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes):
		roots = doc.Scenes[*doc.Scene].Nodes
	case len(doc.Scenes) > 0:
		roots = doc.Scenes[0].Nodes
	default:
		// No scene: treat every node as a root.
		for i := range doc.Nodes {
			roots = append(roots, i)
		}
	}

	for _, root := range roots {
		if err := m.addNode(doc, root, math.Identity(), 0); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// maxNodeDepth guards against cyclic node graphs.
const maxNodeDepth = 64

func (m *Model) addNode(doc *gltf.Document, idx int, parent math.Mat4, depth int) error {
	if idx < 0 || idx >= len(doc.Nodes) {
		return fmt.Errorf("node %d out of range", idx)
	}
	if depth > maxNodeDepth {
		return fmt.Errorf("node %d: hierarchy deeper than %d", idx, maxNodeDepth)
	}

	node := doc.Nodes[idx]
	world := parent.Mul(nodeMatrix(node))

	if node.Mesh != nil {
		if *node.Mesh < 0 || *node.Mesh >= len(doc.Meshes) {
			return fmt.Errorf("node %d: mesh %d out of range", idx, *node.Mesh)
		}
		gm := doc.Meshes[*node.Mesh]
		for pi, prim := range gm.Primitives {
			mesh, err := readPrimitive(doc, prim)
			if err != nil {
				return fmt.Errorf("mesh %q primitive %d: %w", gm.Name, pi, err)
			}
			if mesh == nil {
				continue
			}
			mesh.Name = primitiveName(gm.Name, node.Name, pi, len(gm.Primitives))
			for i, p := range mesh.Positions {
				mesh.Positions[i] = world.TransformVec3(p)
			}
			m.Meshes = append(m.Meshes, mesh)
		}
	}

	for _, child := range node.Children {
		if err := m.addNode(doc, child, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func primitiveName(mesh, node string, prim, count int) string {
	name := mesh
	if name == "" {
		name = node
	}
	if count > 1 {
		name = fmt.Sprintf("%s#%d", name, prim)
	}
	return name
}

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// nodeMatrix returns the node's local matrix, from Matrix when it is set
// to something other than identity and from translation, rotation and
// scale otherwise.
func nodeMatrix(n *gltf.Node) math.Mat4 {
	if n.Matrix != [16]float64{} && n.Matrix != identityMatrix {
		var out math.Mat4
		for i, v := range n.Matrix {
			out[i] = float32(v)
		}
		return out
	}

	rot := n.Rotation
	if rot == [4]float64{} {
		rot = [4]float64{0, 0, 0, 1}
	}
	scale := n.Scale
	if scale == [3]float64{} {
		scale = [3]float64{1, 1, 1}
	}

	t := math.Translate(float32(n.Translation[0]), float32(n.Translation[1]), float32(n.Translation[2]))
	r := math.FromQuat(float32(rot[0]), float32(rot[1]), float32(rot[2]), float32(rot[3]))
	s := math.Scale(float32(scale[0]), float32(scale[1]), float32(scale[2]))
	return t.Mul(r).Mul(s)
}

// readPrimitive returns nil for primitives that are not triangle lists.
func readPrimitive(doc *gltf.Document, prim *gltf.Primitive) (*Mesh, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, nil
	}
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok || posIdx < 0 || posIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("missing POSITION accessor")
	}

	raw, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	positions := make([]math.Vec3, len(raw))
	for i, p := range raw {
		positions[i] = math.V3(p)
	}

	var indices []uint32
	if prim.Indices != nil {
		if *prim.Indices < 0 || *prim.Indices >= len(doc.Accessors) {
			return nil, fmt.Errorf("index accessor %d out of range", *prim.Indices)
		}
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	mesh := &Mesh{
		Positions: positions,
		Indices:   indices[:len(indices)/3*3],
		Material:  readMaterial(doc, prim.Material),
	}
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

func readMaterial(doc *gltf.Document, idx *int) Material {
	if idx == nil || *idx < 0 || *idx >= len(doc.Materials) {
		return DefaultMaterial
	}
	gm := doc.Materials[*idx]
	mat := Material{Name: gm.Name, Diffuse: DefaultMaterial.Diffuse}
	if gm.PBRMetallicRoughness != nil && gm.PBRMetallicRoughness.BaseColorFactor != nil {
		for i, c := range gm.PBRMetallicRoughness.BaseColorFactor {
			mat.Diffuse[i] = float32(c)
		}
	}
	return mat
}
