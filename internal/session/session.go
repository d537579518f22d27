// Package session wires configuration, a device, the voxelization
// pipeline and the exporters into the flow shared by the batch tool and
// the viewer: load a model, fit it to the grid, voxelize, export.
package session

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/voxelizer/internal/config"
	"github.com/Faultbox/voxelizer/internal/export"
	"github.com/Faultbox/voxelizer/internal/gpu"
	"github.com/Faultbox/voxelizer/internal/model"
	"github.com/Faultbox/voxelizer/internal/voxel"
	"github.com/Faultbox/voxelizer/internal/voxelize"
)

// Session owns a pipeline on a device. It must be used from the thread
// that owns the device.
type Session struct {
	cfg      *config.Config
	dev      gpu.Device
	log      *zap.Logger
	pipeline *voxelize.Pipeline
}

// Result is one voxelized model.
type Result struct {
	Name  string
	Stats voxelize.Stats
	Grid  *voxel.Grid
}

// PipelineOptions maps the voxelizer config section to pipeline options.
func PipelineOptions(c config.VoxelizerConfig) voxelize.Options {
	opts := voxelize.DefaultOptions()
	opts.ConservativeRaster = c.ConservativeRaster
	opts.FirstMeshOnly = c.FirstMeshOnly
	if c.PlaceholderSize > 0 {
		opts.PlaceholderSize = c.PlaceholderSize
	}
	if c.PreviewScale > 0 {
		opts.PreviewScale = c.PreviewScale
	}
	return opts
}

// New initializes a pipeline on dev.
func New(cfg *config.Config, dev gpu.Device, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p := voxelize.New(dev, PipelineOptions(cfg.Voxelizer), log.Named("voxelize"))
	if err := p.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing voxelizer: %w", err)
	}
	return &Session{cfg: cfg, dev: dev, log: log, pipeline: p}, nil
}

// Pipeline returns the session's pipeline.
func (s *Session) Pipeline() *voxelize.Pipeline { return s.pipeline }

// Dims returns the configured grid resolution.
func (s *Session) Dims() voxel.Dims {
	g := s.cfg.Voxelizer.Grid
	return voxel.Dims{W: g.Width, H: g.Height, D: g.Depth}
}

// SetDims changes the grid resolution used by later Voxelize calls.
func (s *Session) SetDims(d voxel.Dims) {
	s.cfg.Voxelizer.Grid = config.GridConfig{Width: d.W, Height: d.H, Depth: d.D}
}

// LoadModel loads a built-in model by name or a glTF/GLB file by path.
func LoadModel(src string) (*model.Model, error) {
	if m, err := model.Builtin(src); err == nil {
		return m, nil
	}
	switch strings.ToLower(filepath.Ext(src)) {
	case ".gltf", ".glb":
		return model.Load(src)
	default:
		return nil, fmt.Errorf("model %q: not a built-in (%s) or a .gltf/.glb file",
			src, strings.Join(model.BuiltinNames(), ", "))
	}
}

// Voxelize fits m to the configured grid and voxelizes it. The model is
// transformed in place and its uploads are released afterwards.
func (s *Session) Voxelize(m *model.Model) (*Result, error) {
	dims := s.Dims()
	m.FitToGrid(dims, s.cfg.Voxelizer.FitPadding)
	defer m.Release(s.dev)

	stats, err := s.pipeline.Voxelize(m, dims)
	if err != nil {
		return nil, fmt.Errorf("voxelizing %s: %w", m.Name, err)
	}
	grid, err := s.pipeline.Volume().Readback()
	if err != nil {
		return nil, err
	}

	s.log.Info("voxelized",
		zap.String("model", m.Name),
		zap.Stringer("dims", dims),
		zap.Int("meshes", stats.Meshes),
		zap.Int("triangles", stats.Triangles),
		zap.Int("filled", grid.FilledCount()),
		zap.Duration("duration", stats.Duration))

	return &Result{Name: m.Name, Stats: stats, Grid: grid}, nil
}

// Export writes r with the configured exporters.
func (s *Session) Export(r *Result) ([]string, error) {
	e := s.cfg.Export
	return export.Write(r.Grid, FileStem(r.Name), export.Options{
		Dir:        e.Dir,
		Snapshot:   e.Snapshot,
		Slices:     e.Slices,
		SliceScale: e.SliceScale,
		GLB:        e.GLB,
		CellSize:   1,
	}, s.log.Named("export"))
}

// FileStem turns a model name into a file name stem.
func FileStem(name string) string {
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "model"
	}
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == ':' {
			return '_'
		}
		return r
	}, name)
}

// Close frees the pipeline's device resources.
func (s *Session) Close() {
	s.pipeline.Destroy()
}
