package model

import (
	"fmt"
	gomath "math"
	"sort"

	"github.com/Faultbox/voxelizer/pkg/math"
)

// Cube returns an axis-aligned cube centered at the origin with
// outward-facing counter-clockwise triangles.
func Cube(name string, size float32, mat Material) *Mesh {
	h := size / 2
	positions := []math.Vec3{
		{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h},
		{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h},
	}
	indices := []uint32{
		4, 5, 6, 4, 6, 7, // +Z
		1, 0, 3, 1, 3, 2, // -Z
		5, 1, 2, 5, 2, 6, // +X
		0, 4, 7, 0, 7, 3, // -X
		7, 6, 2, 7, 2, 3, // +Y
		0, 1, 5, 0, 5, 4, // -Y
	}
	return &Mesh{Name: name, Positions: positions, Indices: indices, Material: mat}
}

// Quad returns a square of the given edge length in the XY plane at
// height z, made of two triangles facing +Z.
func Quad(name string, size, z float32, mat Material) *Mesh {
	h := size / 2
	return &Mesh{
		Name: name,
		Positions: []math.Vec3{
			{X: -h, Y: -h, Z: z}, {X: h, Y: -h, Z: z}, {X: h, Y: h, Z: z}, {X: -h, Y: h, Z: z},
		},
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
		Material: mat,
	}
}

// Sphere returns a UV sphere of the given radius.
func Sphere(name string, radius float32, rings, segments int, mat Material) *Mesh {
	rings = max(rings, 2)
	segments = max(segments, 3)

	var positions []math.Vec3
	for r := 0; r <= rings; r++ {
		phi := gomath.Pi * float64(r) / float64(rings)
		for s := 0; s <= segments; s++ {
			theta := 2 * gomath.Pi * float64(s) / float64(segments)
			positions = append(positions, math.Vec3{
				X: radius * float32(gomath.Sin(phi)*gomath.Cos(theta)),
				Y: radius * float32(gomath.Cos(phi)),
				Z: radius * float32(gomath.Sin(phi)*gomath.Sin(theta)),
			})
		}
	}

	var indices []uint32
	stride := uint32(segments + 1)
	for r := uint32(0); r < uint32(rings); r++ {
		for s := uint32(0); s < uint32(segments); s++ {
			a := r*stride + s
			b := a + stride
			indices = append(indices, a, a+1, b, a+1, b+1, b)
		}
	}
	return &Mesh{Name: name, Positions: positions, Indices: indices, Material: mat}
}

var builtins = map[string]func() *Model{
	"cube": func() *Model {
		return &Model{Name: "cube", Meshes: []*Mesh{Cube("cube", 1, DefaultMaterial)}}
	},
	"plane": func() *Model {
		return &Model{Name: "plane", Meshes: []*Mesh{Quad("plane", 1, 0, DefaultMaterial)}}
	},
	"sphere": func() *Model {
		return &Model{Name: "sphere", Meshes: []*Mesh{Sphere("sphere", 0.5, 16, 32, DefaultMaterial)}}
	},
}

// Builtin returns a fresh copy of a named built-in model.
func Builtin(name string) (*Model, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown built-in model %q (have %v)", name, BuiltinNames())
	}
	return build(), nil
}

// BuiltinNames lists the built-in models.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
