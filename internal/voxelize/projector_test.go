package voxelize

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxelizer/internal/gpu"
	"github.com/Faultbox/voxelizer/internal/model"
	"github.com/Faultbox/voxelizer/internal/voxel"
	"github.com/Faultbox/voxelizer/pkg/math"
)

var projectorDims = []voxel.Dims{
	{W: 1, H: 1, D: 1},
	{W: 4, H: 4, D: 4},
	{W: 8, H: 4, D: 2},
	{W: 3, H: 7, D: 5},
	{W: 128, H: 64, D: 32},
}

func TestComputeProjectionsIsPure(t *testing.T) {
	for _, dims := range projectorDims {
		a := ComputeProjections(dims)
		b := ComputeProjections(dims)
		if a != b {
			t.Errorf("%v: projections differ between calls", dims)
		}
	}
}

func TestProjectionsMapBoxToClipCube(t *testing.T) {
	for _, dims := range projectorDims {
		proj := ComputeProjections(dims)
		h := math.Vec3{X: float32(dims.W) / 2, Y: float32(dims.H) / 2, Z: float32(dims.D) / 2}

		for _, axis := range Axes {
			m := proj.For(axis)
			for _, sx := range []float32{-1, 1} {
				for _, sy := range []float32{-1, 1} {
					for _, sz := range []float32{-1, 1} {
						corner := math.Vec3{X: sx * h.X, Y: sy * h.Y, Z: sz * h.Z}
						ndc := m.MulVec4(math.Point(corner)).PerspectiveDivide()
						for i, c := range ndc.Array() {
							if d := gomath.Abs(gomath.Abs(float64(c)) - 1); d > 1e-5 {
								t.Errorf("%v view %v: corner %v component %d = %f, want +-1", dims, axis, corner, i, c)
							}
						}
					}
				}
			}
		}
	}
}

func TestProjectionsAreInvertible(t *testing.T) {
	// A view whose up vector is parallel to its direction collapses to a
	// singular matrix.
	proj := ComputeProjections(voxel.Dims{W: 8, H: 8, D: 8})
	p := math.Vec3{X: 1, Y: 2, Z: 3}
	for _, axis := range Axes {
		m := proj.For(axis)
		inv := math.Mat4(mgl32.Mat4(m).Inv())
		back := inv.TransformVec3(m.TransformVec3(p))
		if back.Sub(p).Length() > 1e-4 {
			t.Errorf("view %v: round trip gave %v, want %v", axis, back, p)
		}
	}
}

func TestCellFromNDCInvertsProjections(t *testing.T) {
	for _, dims := range projectorDims {
		proj := ComputeProjections(dims)
		for z := 0; z < dims.D; z++ {
			for y := 0; y < dims.H; y++ {
				for x := 0; x < dims.W; x++ {
					// Cell center in grid space.
					p := math.Vec3{
						X: float32(x) + 0.5 - float32(dims.W)/2,
						Y: float32(y) + 0.5 - float32(dims.H)/2,
						Z: float32(z) + 0.5 - float32(dims.D)/2,
					}
					want := voxel.Cell{X: x, Y: y, Z: z}
					for _, axis := range Axes {
						ndc := proj.For(axis).TransformVec3(p)
						got, ok := CellFromNDC(axis, ndc, dims)
						if !ok || got != want {
							t.Fatalf("%v view %v: cell %v maps to %v (ok=%v)", dims, axis, want, got, ok)
						}
					}
				}
			}
		}
	}
}

func TestCellFromNDCBounds(t *testing.T) {
	dims := voxel.Dims{W: 4, H: 8, D: 2}

	tests := []struct {
		name string
		axis Axis
		ndc  math.Vec3
		want voxel.Cell
		ok   bool
	}{
		{"origin", AxisZ, math.Vec3{}, voxel.Cell{X: 2, Y: 4, Z: 1}, true},
		{"lower corner", AxisY, math.Vec3{X: -1, Y: -1, Z: -1}, voxel.Cell{}, true},
		{"upper face maps to last cell", AxisY, math.Vec3{X: 1, Y: 1, Z: 1}, voxel.Cell{X: 3, Y: 7, Z: 1}, true},
		{"z view mirrors x", AxisZ, math.Vec3{X: 1, Y: -1, Z: -1}, voxel.Cell{}, true},
		{"x view depth is world x", AxisX, math.Vec3{X: -1, Y: -1, Z: 1}, voxel.Cell{X: 3}, true},
		{"outside", AxisX, math.Vec3{Z: 1.01}, voxel.Cell{}, false},
		{"nan", AxisX, math.Vec3{Z: float32(gomath.NaN())}, voxel.Cell{}, false},
		{"unknown axis", Axis(5), math.Vec3{}, voxel.Cell{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CellFromNDC(tt.axis, tt.ndc, dims)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("CellFromNDC(%v, %v) = %v, %v; want %v, %v", tt.axis, tt.ndc, got, ok, tt.want, tt.ok)
			}
		})
	}
}

type recordingStore struct {
	stores map[voxel.Cell][4]uint8
	units  []int
}

func (r *recordingStore) Store(unit, x, y, z int, texel [4]uint8) {
	if r.stores == nil {
		r.stores = make(map[voxel.Cell][4]uint8)
	}
	r.units = append(r.units, unit)
	r.stores[voxel.Cell{X: x, Y: y, Z: z}] = texel
}

func kernelUniforms(dims voxel.Dims, color math.Vec4) *gpu.Uniforms {
	u := gpu.NewUniforms()
	proj := ComputeProjections(dims)
	u.Mat4[UniformOrthoX] = proj.X
	u.Mat4[UniformOrthoY] = proj.Y
	u.Mat4[UniformOrthoZ] = proj.Z
	u.Int[UniformGridSizeX] = int32(dims.W)
	u.Int[UniformGridSizeY] = int32(dims.H)
	u.Int[UniformGridSizeZ] = int32(dims.D)
	u.Int[UniformVoxelImage] = 3
	u.Vec4[model.DiffuseColorUniform] = color
	return u
}

func TestKernelGeometryEmitsEveryAxis(t *testing.T) {
	dims := voxel.Cube(8)
	u := kernelUniforms(dims, math.Vec4{1, 1, 1, 1})
	tri := [3]math.Vec3{{X: 1}, {Y: 1}, {Z: 1}}

	var prims []gpu.Primitive
	Kernel{}.Geometry(u, tri, func(p gpu.Primitive) { prims = append(prims, p) })

	if len(prims) != 3 {
		t.Fatalf("emitted %d primitives, want 3", len(prims))
	}
	proj := ComputeProjections(dims)
	for i, p := range prims {
		if p.Layer != i {
			t.Errorf("primitive %d has layer %d", i, p.Layer)
		}
		want := proj.For(Axis(i)).MulVec4(math.Point(tri[0]))
		if p.Clip[0] != want {
			t.Errorf("primitive %d vertex 0 = %v, want %v", i, p.Clip[0], want)
		}
	}
}

func TestKernelFragmentStoresOpaqueColor(t *testing.T) {
	dims := voxel.Cube(4)
	u := kernelUniforms(dims, math.Vec4{1, 0.5, 0, 0})
	store := &recordingStore{}

	// Z view, center of cell (1, 2, 3).
	ndc := ComputeProjections(dims).Z.TransformVec3(math.Vec3{X: -0.5, Y: 0.5, Z: 1.5})
	Kernel{}.Fragment(u, gpu.Fragment{NDC: ndc, Layer: int(AxisZ)}, store)

	got, ok := store.stores[voxel.Cell{X: 1, Y: 2, Z: 3}]
	if !ok {
		t.Fatalf("no store at (1,2,3): %v", store.stores)
	}
	if got != [4]uint8{255, 128, 0, 255} {
		t.Errorf("texel %v, want {255 128 0 255}", got)
	}
	if store.units[0] != 3 {
		t.Errorf("stored to unit %d, want 3", store.units[0])
	}

	// Fragments outside the grid are discarded.
	Kernel{}.Fragment(u, gpu.Fragment{NDC: math.Vec3{X: 0, Y: 0, Z: 1.5}, Layer: int(AxisZ)}, store)
	if len(store.stores) != 1 {
		t.Errorf("out-of-grid fragment stored: %v", store.stores)
	}
}
