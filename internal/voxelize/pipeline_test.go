package voxelize

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Faultbox/voxelizer/internal/engine/tweak"
	"github.com/Faultbox/voxelizer/internal/gpu"
	"github.com/Faultbox/voxelizer/internal/gpu/soft"
	"github.com/Faultbox/voxelizer/internal/model"
	"github.com/Faultbox/voxelizer/internal/voxel"
	"github.com/Faultbox/voxelizer/pkg/math"
)

var red = model.Material{Name: "red", Diffuse: [4]float32{1, 0, 0, 1}}

func newPipeline(t *testing.T, devOpts soft.Options, opts Options) (*Pipeline, *soft.Device) {
	t.Helper()
	dev := soft.New(devOpts, nil)
	if opts.PlaceholderSize == 0 {
		opts.PlaceholderSize = 16
	}
	p := New(dev, opts, nil)
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(p.Destroy)
	return p, dev
}

func readback(t *testing.T, p *Pipeline) *voxel.Grid {
	t.Helper()
	g, err := p.Volume().Readback()
	if err != nil {
		t.Fatalf("Readback: %v", err)
	}
	return g
}

func cellSet(cells []voxel.Cell) map[voxel.Cell]bool {
	out := make(map[voxel.Cell]bool, len(cells))
	for _, c := range cells {
		out[c] = true
	}
	return out
}

func box(lo, hi voxel.Cell) map[voxel.Cell]bool {
	out := make(map[voxel.Cell]bool)
	for z := lo.Z; z <= hi.Z; z++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for x := lo.X; x <= hi.X; x++ {
				out[voxel.Cell{X: x, Y: y, Z: z}] = true
			}
		}
	}
	return out
}

func translated(m *model.Mesh, by math.Vec3) *model.Mesh {
	for i, p := range m.Positions {
		m.Positions[i] = p.Add(by)
	}
	return m
}

func singleMesh(m *model.Mesh) *model.Model {
	return &model.Model{Name: m.Name, Meshes: []*model.Mesh{m}}
}

func TestInitialize(t *testing.T) {
	p, dev := newPipeline(t, soft.Options{}, Options{PlaceholderSize: 24})

	if p.State() != StateReady {
		t.Fatalf("state %v, want ready", p.State())
	}
	if p.Volume().Dims() != voxel.Cube(24) {
		t.Errorf("placeholder dims %v, want 24^3", p.Volume().Dims())
	}
	g := readback(t, p)
	want := voxel.TestPattern(voxel.Cube(24))
	if string(g.Data) != string(want) {
		t.Error("placeholder is not the test pattern")
	}
	if dev.BoundTexture(0) != p.Volume().Texture() {
		t.Error("placeholder not bound for sampling")
	}
}

func TestInitializeDefaultPlaceholder(t *testing.T) {
	dev := soft.New(soft.Options{}, nil)
	p := New(dev, Options{}, nil)
	if err := p.Initialize(); err != nil {
		t.Fatal(err)
	}
	defer p.Destroy()

	if p.Volume().Dims() != voxel.Cube(128) {
		t.Errorf("placeholder dims %v, want 128^3", p.Volume().Dims())
	}
	if err := p.Initialize(); !errors.Is(err, ErrInitialization) {
		t.Errorf("second Initialize: expected ErrInitialization, got %v", err)
	}
}

// brokenCompiler fails to build the voxelization program.
type brokenCompiler struct {
	*soft.Device
}

func (b brokenCompiler) CompileProgram(src gpu.ProgramSource) (gpu.ProgramID, error) {
	if src.Name == "voxelize" {
		return 0, fmt.Errorf("0:12: syntax error: %w", gpu.ErrCompile)
	}
	return b.Device.CompileProgram(src)
}

func TestInitializeProgramFailure(t *testing.T) {
	dev := brokenCompiler{soft.New(soft.Options{}, nil)}
	p := New(dev, Options{PlaceholderSize: 8}, nil)

	err := p.Initialize()
	if !errors.Is(err, ErrInitialization) || !errors.Is(err, gpu.ErrCompile) {
		t.Fatalf("expected ErrInitialization wrapping gpu.ErrCompile, got %v", err)
	}
	if p.State() != StateUninitialized {
		t.Errorf("state %v after failed init", p.State())
	}
	if _, err := p.Voxelize(singleMesh(model.Cube("c", 1, red)), voxel.Cube(4)); !errors.Is(err, ErrNotReady) {
		t.Errorf("Voxelize after failed init: expected ErrNotReady, got %v", err)
	}
	if err := p.RenderVolumePreview(math.Identity(), math.Identity()); !errors.Is(err, ErrNotReady) {
		t.Errorf("preview after failed init: expected ErrNotReady, got %v", err)
	}
	if n := dev.Stats().LiveTextures; n != 0 {
		t.Errorf("failed init left %d textures", n)
	}
}

func TestUnitCubeCoverage(t *testing.T) {
	cube := singleMesh(model.Cube("cube", 1, red))
	surface := box(voxel.Cell{X: 1, Y: 1, Z: 1}, voxel.Cell{X: 2, Y: 2, Z: 2})

	t.Run("conservative", func(t *testing.T) {
		p, _ := newPipeline(t, soft.Options{ConservativeRaster: true}, Options{ConservativeRaster: true})
		if on, supported := p.ConservativeRaster(); !on || !supported {
			t.Fatalf("conservative on=%v supported=%v", on, supported)
		}

		if _, err := p.Voxelize(cube, voxel.Cube(4)); err != nil {
			t.Fatalf("Voxelize: %v", err)
		}
		g := readback(t, p)
		got := cellSet(g.Filled())
		for c := range surface {
			if !got[c] {
				t.Errorf("surface cell %v empty", c)
			}
		}
		for c := range got {
			if !surface[c] {
				t.Errorf("cell %v filled outside the cube", c)
			}
		}
		if texel := g.At(1, 1, 1); texel != [4]uint8{255, 0, 0, 255} {
			t.Errorf("texel %v, want opaque red", texel)
		}
	})

	t.Run("standard is a subset", func(t *testing.T) {
		p, _ := newPipeline(t, soft.Options{}, Options{})
		if _, err := p.Voxelize(cube, voxel.Cube(4)); err != nil {
			t.Fatalf("Voxelize: %v", err)
		}
		got := readback(t, p).Filled()
		if len(got) == 0 {
			t.Fatal("no cells filled")
		}
		for _, c := range got {
			if !surface[c] {
				t.Errorf("cell %v filled outside the conservative set", c)
			}
		}
	})
}

func TestThinPlane(t *testing.T) {
	// Two triangles in z = 0.25 spanning x, y in [-2.5, 2.5].
	plane := singleMesh(model.Quad("plane", 5, 0.25, red))
	footprint := box(voxel.Cell{X: 1, Y: 1, Z: 4}, voxel.Cell{X: 6, Y: 6, Z: 4})

	tests := []struct {
		name         string
		conservative bool
	}{
		{"conservative", true},
		{"standard", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newPipeline(t, soft.Options{ConservativeRaster: true}, Options{ConservativeRaster: tt.conservative})
			if _, err := p.Voxelize(plane, voxel.Cube(8)); err != nil {
				t.Fatalf("Voxelize: %v", err)
			}
			got := cellSet(readback(t, p).Filled())

			if len(got) != len(footprint) {
				t.Errorf("filled %d cells, want %d", len(got), len(footprint))
			}
			for c := range footprint {
				if !got[c] {
					t.Errorf("footprint cell %v empty", c)
				}
			}
			for c := range got {
				if !footprint[c] {
					t.Errorf("cell %v filled outside the footprint", c)
				}
			}
		})
	}
}

func TestConservativeCatchesSubCellTriangle(t *testing.T) {
	// Lies inside cell (2,2,2) of a 4^3 grid without covering any pixel
	// center in any view.
	sliver := singleMesh(&model.Mesh{
		Name:      "sliver",
		Positions: []math.Vec3{{X: 0.1, Y: 0.1, Z: 0.1}, {X: 0.4, Y: 0.1, Z: 0.1}, {X: 0.1, Y: 0.4, Z: 0.3}},
		Indices:   []uint32{0, 1, 2},
		Material:  red,
	})

	p, _ := newPipeline(t, soft.Options{ConservativeRaster: true}, Options{ConservativeRaster: false})

	if _, err := p.Voxelize(sliver, voxel.Cube(4)); err != nil {
		t.Fatal(err)
	}
	if n := readback(t, p).FilledCount(); n != 0 {
		t.Errorf("standard rasterization filled %d cells", n)
	}

	if err := p.SetConservativeRaster(true); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Voxelize(sliver, voxel.Cube(4)); err != nil {
		t.Fatal(err)
	}
	got := readback(t, p).Filled()
	if len(got) != 1 || got[0] != (voxel.Cell{X: 2, Y: 2, Z: 2}) {
		t.Errorf("conservative filled %v, want [(2,2,2)]", got)
	}
}

func TestEmptyModel(t *testing.T) {
	p, _ := newPipeline(t, soft.Options{}, Options{})

	for _, m := range []Model{&model.Model{Name: "empty"}, nil} {
		stats, err := p.Voxelize(m, voxel.Cube(8))
		if err != nil {
			t.Fatalf("Voxelize: %v", err)
		}
		if stats.Meshes != 0 || stats.Triangles != 0 {
			t.Errorf("unexpected stats %+v", stats)
		}
		g := readback(t, p)
		if g.Dims != voxel.Cube(8) {
			t.Errorf("dims %v, want 8^3", g.Dims)
		}
		if n := g.FilledCount(); n != 0 {
			t.Errorf("%d cells filled by an empty model", n)
		}
	}
}

func TestAllMeshesAreDrawn(t *testing.T) {
	blue := model.Material{Name: "blue", Diffuse: [4]float32{0, 0, 1, 1}}
	twoCubes := func() *model.Model {
		return &model.Model{Meshes: []*model.Mesh{
			translated(model.Cube("left", 1, red), math.Vec3{X: -2}),
			translated(model.Cube("right", 1, blue), math.Vec3{X: 2}),
		}}
	}
	left := box(voxel.Cell{X: 1, Y: 3, Z: 3}, voxel.Cell{X: 2, Y: 4, Z: 4})
	right := box(voxel.Cell{X: 5, Y: 3, Z: 3}, voxel.Cell{X: 6, Y: 4, Z: 4})

	tests := []struct {
		name      string
		firstOnly bool
		meshes    int
		want      map[voxel.Cell]bool
	}{
		{"all meshes", false, 2, union(left, right)},
		{"first mesh only", true, 1, left},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newPipeline(t, soft.Options{ConservativeRaster: true}, Options{ConservativeRaster: true, FirstMeshOnly: tt.firstOnly})
			stats, err := p.Voxelize(twoCubes(), voxel.Cube(8))
			if err != nil {
				t.Fatal(err)
			}
			if stats.Meshes != tt.meshes || stats.Triangles != 12*tt.meshes {
				t.Errorf("stats %+v, want %d meshes", stats, tt.meshes)
			}

			g := readback(t, p)
			got := cellSet(g.Filled())
			if len(got) != len(tt.want) {
				t.Errorf("filled %d cells, want %d", len(got), len(tt.want))
			}
			for c := range tt.want {
				if !got[c] {
					t.Errorf("cell %v empty", c)
				}
			}
			if !tt.firstOnly {
				if texel := g.At(6, 4, 4); texel != [4]uint8{0, 0, 255, 255} {
					t.Errorf("right cube texel %v, want opaque blue", texel)
				}
			}
		})
	}
}

func union(a, b map[voxel.Cell]bool) map[voxel.Cell]bool {
	out := make(map[voxel.Cell]bool, len(a)+len(b))
	for c := range a {
		out[c] = true
	}
	for c := range b {
		out[c] = true
	}
	return out
}

func TestRasterStateRestored(t *testing.T) {
	p, dev := newPipeline(t, soft.Options{ConservativeRaster: true}, Options{ConservativeRaster: true})
	before := dev.RasterState()

	if _, err := p.Voxelize(singleMesh(model.Cube("c", 1, red)), voxel.Cube(8)); err != nil {
		t.Fatal(err)
	}
	if after := dev.RasterState(); after != before {
		t.Errorf("raster state changed:\nbefore %+v\nafter  %+v", before, after)
	}
	if dev.Stats().Fragments == 0 {
		t.Error("pass produced no fragments")
	}
}

func TestGridAboveDeviceLimit(t *testing.T) {
	p, dev := newPipeline(t, soft.Options{Max3DTextureSize: 32, ConservativeRaster: true}, Options{ConservativeRaster: true})
	before := dev.RasterState()
	prevTex := p.Volume().Texture()
	prevDims := p.Volume().Dims()

	_, err := p.Voxelize(singleMesh(model.Cube("c", 1, red)), voxel.Dims{W: 8, H: 8, D: 64})
	if !errors.Is(err, voxel.ErrResourceExhausted) {
		t.Fatalf("expected ErrResourceExhausted, got %v", err)
	}
	if p.State() != StateReady {
		t.Errorf("state %v, want ready", p.State())
	}
	if after := dev.RasterState(); after != before {
		t.Errorf("raster state changed:\nbefore %+v\nafter  %+v", before, after)
	}
	if p.Volume().Texture() != prevTex || p.Volume().Dims() != prevDims {
		t.Error("previous volume was not kept")
	}
	if string(readback(t, p).Data) != string(voxel.TestPattern(prevDims)) {
		t.Error("previous volume contents changed")
	}

	// The pipeline keeps working.
	if _, err := p.Voxelize(singleMesh(model.Cube("c", 1, red)), voxel.Cube(4)); err != nil {
		t.Errorf("Voxelize after failure: %v", err)
	}
}

// unlimitedDevice reports no 3D texture size limit.
type unlimitedDevice struct {
	*soft.Device
}

func (u unlimitedDevice) Capabilities() gpu.Capabilities {
	caps := u.Device.Capabilities()
	caps.Max3DTextureSize = 0
	return caps
}

func TestGridBeyondViewportRange(t *testing.T) {
	devices := []struct {
		name string
		dev  func() gpu.Device
	}{
		{"device limit", func() gpu.Device { return soft.New(soft.Options{}, nil) }},
		{"no device limit", func() gpu.Device { return unlimitedDevice{soft.New(soft.Options{}, nil)} }},
	}
	grids := []voxel.Dims{
		{W: 1 << 31, H: 4, D: 4},
		{W: 4, H: 1 << 32, D: 4},
		{W: 4, H: 4, D: 3_000_000_000},
	}

	for _, d := range devices {
		t.Run(d.name, func(t *testing.T) {
			dev := d.dev()
			p := New(dev, Options{PlaceholderSize: 8}, nil)
			if err := p.Initialize(); err != nil {
				t.Fatalf("Initialize: %v", err)
			}
			defer p.Destroy()
			before := dev.RasterState()
			prevTex := p.Volume().Texture()

			for _, dims := range grids {
				_, err := p.Voxelize(singleMesh(model.Cube("c", 1, red)), dims)
				if !errors.Is(err, voxel.ErrResourceExhausted) {
					t.Errorf("%v: expected ErrResourceExhausted, got %v", dims, err)
				}
				if errors.Is(err, gpu.ErrInvalidValue) {
					t.Errorf("%v: viewport was applied: %v", dims, err)
				}
			}
			if after := dev.RasterState(); after != before {
				t.Errorf("raster state changed:\nbefore %+v\nafter  %+v", before, after)
			}
			if p.Volume().Texture() != prevTex || p.Volume().Dims() != voxel.Cube(8) {
				t.Error("previous volume was not kept")
			}
			if p.State() != StateReady {
				t.Errorf("state %v, want ready", p.State())
			}
		})
	}
}

func TestPlaceholderClampedToDeviceLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		size  int
		want  int
	}{
		{"below limit", 64, 16, 16},
		{"above limit", 8, 16, 8},
		{"no limit", 0, 16, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Pipeline{opts: Options{PlaceholderSize: tt.size}, caps: gpu.Capabilities{Max3DTextureSize: tt.limit}}
			if got := p.placeholderSize(); got != tt.want {
				t.Errorf("placeholderSize() = %d, want %d", got, tt.want)
			}
		})
	}

	// A device without a reported limit still gets a usable placeholder.
	dev := unlimitedDevice{soft.New(soft.Options{}, nil)}
	p := New(dev, Options{PlaceholderSize: 16}, nil)
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer p.Destroy()
	if got := p.Volume().Dims(); got != voxel.Cube(16) {
		t.Errorf("placeholder dims %v, want 16^3", got)
	}
}

func TestOutOfMemoryLeavesVolumeEmpty(t *testing.T) {
	// Room for the 16^3 placeholder but not for a 32^3 grid.
	p, dev := newPipeline(t, soft.Options{MemoryLimit: 16 * 16 * 16 * 4}, Options{})
	before := dev.RasterState()

	_, err := p.Voxelize(singleMesh(model.Cube("c", 1, red)), voxel.Cube(32))
	if !errors.Is(err, voxel.ErrResourceExhausted) {
		t.Fatalf("expected ErrResourceExhausted, got %v", err)
	}
	if p.State() != StateReady || p.Volume().Live() {
		t.Errorf("state %v live %v, want ready and empty", p.State(), p.Volume().Live())
	}
	if dev.RasterState() != before {
		t.Error("raster state changed")
	}

	// Preview of an empty volume is a no-op.
	if err := p.RenderVolumePreview(math.Identity(), math.Identity()); err != nil {
		t.Errorf("preview: %v", err)
	}
	if dev.Stats().InstancedDraws != 0 {
		t.Error("empty volume was drawn")
	}
}

func TestSmallerGridStartsEmpty(t *testing.T) {
	p, _ := newPipeline(t, soft.Options{ConservativeRaster: true}, Options{ConservativeRaster: true})

	if _, err := p.Voxelize(singleMesh(model.Quad("plane", 12, 0.25, red)), voxel.Cube(16)); err != nil {
		t.Fatal(err)
	}
	if readback(t, p).FilledCount() == 0 {
		t.Fatal("large pass filled nothing")
	}

	if _, err := p.Voxelize(singleMesh(model.Cube("c", 1, red)), voxel.Cube(4)); err != nil {
		t.Fatal(err)
	}
	g := readback(t, p)
	written := box(voxel.Cell{X: 1, Y: 1, Z: 1}, voxel.Cell{X: 2, Y: 2, Z: 2})
	for z := 0; z < 4; z++ {
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				if !written[voxel.Cell{X: x, Y: y, Z: z}] && !g.Empty(x, y, z) {
					t.Errorf("cell (%d,%d,%d) retained %v", x, y, z, g.At(x, y, z))
				}
			}
		}
	}
}

func TestRepeatedVoxelizeIsLeakFree(t *testing.T) {
	p, dev := newPipeline(t, soft.Options{}, Options{})
	m := singleMesh(model.Cube("c", 1, red))

	for i := 1; i <= 10; i++ {
		if _, err := p.Voxelize(m, voxel.Dims{W: 2 + i, H: 4, D: 3 + i%3}); err != nil {
			t.Fatal(err)
		}
		if n := dev.Stats().LiveTextures; n != 1 {
			t.Fatalf("pass %d: %d live textures, want 1", i, n)
		}
	}
	if n := dev.Stats().LiveMeshes; n != 2 {
		t.Errorf("%d live meshes, want the preview cube and one cached upload", n)
	}
}

func TestVoxelizeInvalidDims(t *testing.T) {
	p, _ := newPipeline(t, soft.Options{}, Options{})
	if _, err := p.Voxelize(nil, voxel.Dims{W: 4, H: 0, D: 4}); !errors.Is(err, voxel.ErrInvalidDimensions) {
		t.Errorf("expected ErrInvalidDimensions, got %v", err)
	}
	if p.State() != StateReady {
		t.Errorf("state %v, want ready", p.State())
	}
}

func TestRenderVolumePreview(t *testing.T) {
	p, dev := newPipeline(t, soft.Options{}, Options{})
	if _, err := p.Voxelize(singleMesh(model.Cube("c", 1, red)), voxel.Dims{W: 4, H: 5, D: 6}); err != nil {
		t.Fatal(err)
	}
	before := dev.RasterState()
	grid := readback(t, p)

	for i := 0; i < 3; i++ {
		if err := p.RenderVolumePreview(math.Identity(), math.Identity()); err != nil {
			t.Fatalf("preview: %v", err)
		}
	}

	st := dev.Stats()
	if st.InstancedDraws != 3 || st.Instances != 3*4*5*6 {
		t.Errorf("stats %+v, want 3 draws of 120 instances", st)
	}
	if dev.RasterState() != before {
		t.Error("preview changed raster state")
	}
	if string(readback(t, p).Data) != string(grid.Data) {
		t.Error("preview modified the volume")
	}
}

func TestVisualizerPanicsWithoutVolume(t *testing.T) {
	dev := soft.New(soft.Options{}, nil)
	vis, err := NewVisualizer(dev, voxel.NewVolume(dev, nil))
	if err != nil {
		t.Fatal(err)
	}
	defer vis.Delete()

	defer func() {
		if recover() == nil {
			t.Error("expected panic rendering an empty volume")
		}
	}()
	_ = vis.Render(math.Identity(), math.Identity(), math.Identity())
}

func TestConservativeUnsupported(t *testing.T) {
	p, _ := newPipeline(t, soft.Options{}, Options{ConservativeRaster: true})

	if on, supported := p.ConservativeRaster(); on || supported {
		t.Errorf("on=%v supported=%v, want both false", on, supported)
	}
	if err := p.SetConservativeRaster(true); !errors.Is(err, ErrUnsupportedCapability) {
		t.Errorf("expected ErrUnsupportedCapability, got %v", err)
	}
	if on, _ := p.ConservativeRaster(); on {
		t.Error("flag turned on without support")
	}
	if _, err := p.Voxelize(singleMesh(model.Cube("c", 1, red)), voxel.Cube(4)); err != nil {
		t.Errorf("Voxelize without conservative support: %v", err)
	}
}

func TestStorageMode(t *testing.T) {
	p, _ := newPipeline(t, soft.Options{}, Options{})

	if err := p.SetStorageMode(voxel.OctreeHierarchy); !errors.Is(err, voxel.ErrUnsupportedStorage) {
		t.Errorf("expected ErrUnsupportedStorage, got %v", err)
	}
	if p.StorageMode() != voxel.Dense3DTexture || !p.Volume().Live() {
		t.Error("failed mode switch changed the volume")
	}
	if err := p.SetStorageMode(voxel.Dense3DTexture); err != nil {
		t.Errorf("setting the current mode: %v", err)
	}
}

func TestRegisterControls(t *testing.T) {
	tests := []struct {
		name      string
		supported bool
	}{
		{"supported", true},
		{"unsupported", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newPipeline(t, soft.Options{ConservativeRaster: tt.supported}, Options{ConservativeRaster: true})
			panel := tweak.NewPanel("Voxelizer")
			p.RegisterControls(panel, func() float64 { return 16.6667 })

			if len(panel.Controls()) != 3 {
				t.Fatalf("got %d controls, want 3", len(panel.Controls()))
			}

			rt, _ := panel.Lookup(ControlRenderTime)
			if rt.String() != "16.67" || !rt.ReadOnly() {
				t.Errorf("render time %q readOnly=%v", rt.String(), rt.ReadOnly())
			}

			mode, _ := panel.Lookup(ControlStorageMode)
			if mode.String() != "Tex3D" {
				t.Errorf("storage mode %q, want Tex3D", mode.String())
			}
			mode.SetEnum(int(voxel.OctreeHierarchy))
			if p.StorageMode() != voxel.Dense3DTexture || mode.String() != "Tex3D" {
				t.Error("unsupported storage mode was applied")
			}

			cr, _ := panel.Lookup(ControlConservative)
			if cr.ReadOnly() == tt.supported {
				t.Errorf("conservative control readOnly=%v with support=%v", cr.ReadOnly(), tt.supported)
			}
			if cr.Bool() != tt.supported {
				t.Errorf("conservative control = %v, want %v", cr.Bool(), tt.supported)
			}
			if tt.supported {
				cr.SetBool(false)
				if on, _ := p.ConservativeRaster(); on {
					t.Error("control did not turn conservative rasterization off")
				}
			}
		})
	}
}

func TestDestroyReleasesResources(t *testing.T) {
	dev := soft.New(soft.Options{}, nil)
	p := New(dev, Options{PlaceholderSize: 8}, nil)
	if err := p.Initialize(); err != nil {
		t.Fatal(err)
	}
	m := singleMesh(model.Cube("c", 1, red))
	if _, err := p.Voxelize(m, voxel.Cube(4)); err != nil {
		t.Fatal(err)
	}

	p.Destroy()
	m.Release(dev)

	st := dev.Stats()
	if st.LiveTextures != 0 || st.LivePrograms != 0 || st.LiveMeshes != 0 {
		t.Errorf("resources left after Destroy: %+v", st)
	}
	if p.State() != StateUninitialized {
		t.Errorf("state %v after Destroy", p.State())
	}
}
