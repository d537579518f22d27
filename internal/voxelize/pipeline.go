// Package voxelize converts triangle meshes into a dense voxel volume by
// rasterizing every triangle under three axis-aligned orthographic views
// and scattering the covered cells into a 3D image.
package voxelize

import (
	"errors"
	"fmt"
	gomath "math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/voxelizer/internal/engine/tweak"
	"github.com/Faultbox/voxelizer/internal/gpu"
	"github.com/Faultbox/voxelizer/internal/model"
	"github.com/Faultbox/voxelizer/internal/voxel"
	"github.com/Faultbox/voxelizer/pkg/math"
)

// State is the pipeline's lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateVoxelizing
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateVoxelizing:
		return "voxelizing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Debug panel control names.
const (
	ControlRenderTime   = "Render time (ms)"
	ControlStorageMode  = "Voxel Storage Mode"
	ControlConservative = "NV Conservative Raster"
)

// Model is what the pipeline voxelizes.
type Model interface {
	SelectAllMeshes() []*model.Mesh
}

// Options configures a Pipeline.
type Options struct {
	// ConservativeRaster requests conservative rasterization. It is forced
	// off when the device does not support it.
	ConservativeRaster bool
	// FirstMeshOnly draws only the first selected mesh of a model.
	FirstMeshOnly bool
	// PlaceholderSize is the edge of the test pattern volume allocated by
	// Initialize.
	PlaceholderSize int
	// PreviewScale is the model scale used by RenderVolumePreview.
	PreviewScale float32
	StorageMode  voxel.StorageMode
}

// DefaultOptions returns the standard configuration.
func DefaultOptions() Options {
	return Options{
		ConservativeRaster: true,
		PlaceholderSize:    128,
		PreviewScale:       0.1,
		StorageMode:        voxel.Dense3DTexture,
	}
}

// Stats describes one voxelization pass.
type Stats struct {
	Dims      voxel.Dims
	Meshes    int
	Triangles int
	Duration  time.Duration
}

// Pipeline sequences a voxelization pass: it owns the voxel volume, the
// voxelization program and the preview visualizer. It must be used from
// the thread that owns the device.
type Pipeline struct {
	dev  gpu.Device
	opts Options
	log  *zap.Logger

	state        State
	caps         gpu.Capabilities
	conservative bool
	mode         voxel.StorageMode

	volume     voxel.Storage
	program    *Program
	visualizer *Visualizer
	last       Stats
}

// New creates an uninitialized pipeline.
func New(dev gpu.Device, opts Options, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	def := DefaultOptions()
	if opts.PlaceholderSize <= 0 {
		opts.PlaceholderSize = def.PlaceholderSize
	}
	if opts.PreviewScale <= 0 {
		opts.PreviewScale = def.PreviewScale
	}
	return &Pipeline{
		dev:  dev,
		opts: opts,
		log:  log,
		mode: opts.StorageMode,
	}
}

// Initialize caches device capabilities, compiles the program and
// allocates the placeholder volume. Any failure wraps ErrInitialization
// and leaves the pipeline unusable.
func (p *Pipeline) Initialize() error {
	if p.state != StateUninitialized {
		return fmt.Errorf("initialize in state %v: %w", p.state, ErrInitialization)
	}

	p.caps = p.dev.Capabilities()
	p.conservative = p.opts.ConservativeRaster && p.caps.ConservativeRaster
	if p.opts.ConservativeRaster && !p.caps.ConservativeRaster {
		p.log.Warn("conservative rasterization not supported, disabled",
			zap.String("renderer", p.caps.Renderer))
	}

	program, err := NewProgram(p.dev)
	if err != nil {
		p.log.Error("voxelization program failed to build", zap.Error(err))
		return err
	}

	storage, err := voxel.NewStorage(p.mode, p.dev, p.log)
	if err != nil {
		program.Delete()
		return fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	n := p.placeholderSize()
	if err := storage.GenerateTestPattern(n, n, n); err != nil {
		program.Delete()
		return fmt.Errorf("%w: placeholder volume: %w", ErrInitialization, err)
	}

	vis, err := NewVisualizer(p.dev, storage)
	if err != nil {
		storage.Release()
		program.Delete()
		return fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	p.program = program
	p.volume = storage
	p.visualizer = vis
	p.state = StateReady

	p.log.Info("voxelizer initialized",
		zap.Bool("conservativeRaster", p.conservative),
		zap.Bool("conservativeSupported", p.caps.ConservativeRaster),
		zap.Int("max3DTextureSize", p.caps.Max3DTextureSize),
		zap.Stringer("storage", p.mode),
		zap.Int("placeholder", n))
	return nil
}

// Voxelize replaces the volume with a voxelization of m at dims.
//
// The pass disables culling, depth testing and color writes, sets an
// N*N viewport with N the largest extent, and enables conservative
// rasterization when it is on. That state is restored on every return.
// If the volume cannot be reallocated the previous one is kept when it
// was not yet released, and the pipeline stays Ready either way.
func (p *Pipeline) Voxelize(m Model, dims voxel.Dims) (Stats, error) {
	if p.state != StateReady {
		return Stats{}, fmt.Errorf("voxelize in state %v: %w", p.state, ErrNotReady)
	}
	if !dims.Valid() {
		return Stats{}, fmt.Errorf("voxelize %v: %w", dims, voxel.ErrInvalidDimensions)
	}
	if limit := p.maxExtent(); dims.Max() > limit {
		p.log.Warn("grid above device limit",
			zap.Stringer("dims", dims),
			zap.Int("limit", limit))
		return Stats{}, fmt.Errorf("voxelize %v: extent above %d: %w", dims, limit, voxel.ErrResourceExhausted)
	}

	start := time.Now()
	p.state = StateVoxelizing
	defer func() { p.state = StateReady }()

	n := int32(dims.Max())
	override := p.dev.RasterState().Masked().WithViewport(0, 0, n, n)
	override.ConservativeRaster = p.conservative
	restore, err := gpu.Override(p.dev, override)
	if err != nil {
		return Stats{}, fmt.Errorf("voxelize %v: %w", dims, err)
	}
	defer restore()

	if err := p.volume.AllocateEmpty(dims.W, dims.H, dims.D); err != nil {
		p.log.Warn("voxel volume allocation failed",
			zap.Stringer("dims", dims),
			zap.Bool("keptPrevious", p.volume.Live()),
			zap.Error(err))
		return Stats{}, fmt.Errorf("voxelize %v: %w", dims, err)
	}

	p.program.Use()
	p.program.SetGrid(dims, ComputeProjections(dims))
	p.program.SetTarget(p.volume)
	p.dev.Clear()

	var meshes []*model.Mesh
	if m != nil {
		meshes = m.SelectAllMeshes()
	}
	if p.opts.FirstMeshOnly && len(meshes) > 1 {
		meshes = meshes[:1]
	}
	setters := model.CompileUniformSetters(p.dev, p.program.ID(), meshes)

	stats := Stats{Dims: dims}
	for i, mesh := range meshes {
		id, err := model.RenderData(p.dev, mesh)
		if err != nil {
			p.volume.Release()
			return stats, fmt.Errorf("voxelize %v: %w", dims, mapDeviceError(err))
		}
		setters[i]()
		p.dev.DrawMesh(id)
		stats.Meshes++
		stats.Triangles += mesh.TriangleCount()
	}

	p.volume.BindForSampling(0)

	stats.Duration = time.Since(start)
	p.last = stats

	p.log.Debug("voxelization pass complete",
		zap.Stringer("dims", dims),
		zap.Int("meshes", stats.Meshes),
		zap.Int("triangles", stats.Triangles),
		zap.Bool("conservativeRaster", p.conservative),
		zap.Duration("duration", stats.Duration))
	return stats, nil
}

// maxExtent is the largest grid extent the device and an int32 viewport
// can hold. A zero device limit means the device reports none.
func (p *Pipeline) maxExtent() int {
	limit := gomath.MaxInt32
	if l := p.caps.Max3DTextureSize; l > 0 && l < limit {
		limit = l
	}
	return limit
}

// placeholderSize is the placeholder extent clamped to maxExtent.
func (p *Pipeline) placeholderSize() int {
	return min(p.opts.PlaceholderSize, p.maxExtent())
}

// mapDeviceError reports device memory exhaustion as
// voxel.ErrResourceExhausted.
func mapDeviceError(err error) error {
	if errors.Is(err, gpu.ErrOutOfMemory) {
		return fmt.Errorf("%w: %w", voxel.ErrResourceExhausted, err)
	}
	return err
}

// RenderVolumePreview draws the volume at PreviewScale. It is a no-op
// while the volume is empty.
func (p *Pipeline) RenderVolumePreview(view, proj math.Mat4) error {
	if p.state != StateReady {
		return fmt.Errorf("preview in state %v: %w", p.state, ErrNotReady)
	}
	if !p.volume.Live() {
		return nil
	}
	s := p.opts.PreviewScale
	return p.visualizer.Render(math.Scale(s, s, s), view, proj)
}

// SetConservativeRaster toggles conservative rasterization for later
// passes. Enabling it on a device without support returns
// ErrUnsupportedCapability and leaves it off. Capabilities are known
// after Initialize.
func (p *Pipeline) SetConservativeRaster(on bool) error {
	if on && !p.caps.ConservativeRaster {
		p.conservative = false
		return fmt.Errorf("conservative rasterization: %w", ErrUnsupportedCapability)
	}
	p.conservative = on
	return nil
}

// ConservativeRaster reports whether conservative rasterization is on and
// whether the device supports it.
func (p *Pipeline) ConservativeRaster() (on, supported bool) {
	return p.conservative, p.caps.ConservativeRaster
}

// StorageMode returns the active storage mode.
func (p *Pipeline) StorageMode() voxel.StorageMode {
	return p.mode
}

// SetStorageMode switches the volume's storage. The current volume is
// discarded and, once initialized, replaced by the placeholder pattern.
func (p *Pipeline) SetStorageMode(mode voxel.StorageMode) error {
	if mode == p.mode {
		return nil
	}
	storage, err := voxel.NewStorage(mode, p.dev, p.log)
	if err != nil {
		return err
	}

	if p.state == StateReady {
		n := p.placeholderSize()
		if err := storage.GenerateTestPattern(n, n, n); err != nil {
			return fmt.Errorf("storage mode %v: %w", mode, err)
		}
		p.volume.Release()
		p.visualizer.SetStorage(storage)
	}
	p.volume = storage
	p.mode = mode
	return nil
}

// RegisterControls adds the pipeline's debug controls to reg. renderTime
// supplies the frame time in milliseconds and may be nil.
func (p *Pipeline) RegisterControls(reg tweak.Registry, renderTime func() float64) {
	if renderTime != nil {
		reg.AddReadOnlyFloat(ControlRenderTime, 2, renderTime)
	}

	reg.AddEnum(ControlStorageMode, voxel.StorageModeLabels,
		func() int { return int(p.mode) },
		func(i int) {
			if err := p.SetStorageMode(voxel.StorageMode(i)); err != nil {
				p.log.Warn("storage mode rejected", zap.Int("mode", i), zap.Error(err))
			}
		})

	reg.AddBool(ControlConservative,
		func() bool { return p.conservative },
		func(on bool) {
			if err := p.SetConservativeRaster(on); err != nil {
				p.log.Warn("conservative rasterization rejected", zap.Error(err))
			}
		},
		tweak.ReadOnlyIf(!p.caps.ConservativeRaster))
}

// Volume returns the current voxel storage.
func (p *Pipeline) Volume() voxel.Storage { return p.volume }

// State returns the lifecycle state.
func (p *Pipeline) State() State { return p.state }

// LastStats returns the stats of the last successful pass.
func (p *Pipeline) LastStats() Stats { return p.last }

// Destroy frees every device resource. The pipeline returns to
// StateUninitialized.
func (p *Pipeline) Destroy() {
	if p.visualizer != nil {
		p.visualizer.Delete()
		p.visualizer = nil
	}
	if p.volume != nil {
		p.volume.Release()
	}
	if p.program != nil {
		p.program.Delete()
		p.program = nil
	}
	p.state = StateUninitialized
}
