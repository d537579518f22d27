// Package opengl implements gpu.Device on an OpenGL 4.5 core context.
package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.5-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/voxelizer/internal/gpu"
)

// GL_NV_conservative_raster
const (
	conservativeRasterExtension = "GL_NV_conservative_raster"
	conservativeRasterizationNV = 0x9346
)

// Device wraps the current OpenGL context.
// IMPORTANT: Must be created AFTER the context is made current, and used
// only from the thread that owns it.
type Device struct {
	log  *zap.Logger
	caps gpu.Capabilities

	programs map[gpu.ProgramID]*program
	meshes   map[gpu.MeshID]*mesh
	textures map[gpu.TextureID]gpu.Texture3DDesc

	// imageWrites is set after a draw with a writable image bound and
	// cleared by the next memory barrier.
	imageWrites   bool
	writableUnits map[int]bool
}

// New loads GL entry points and queries device capabilities.
func New(log *zap.Logger) (*Device, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	var major, minor int32
	gl.GetIntegerv(gl.MAJOR_VERSION, &major)
	gl.GetIntegerv(gl.MINOR_VERSION, &minor)
	if major < 4 || (major == 4 && minor < 3) {
		return nil, fmt.Errorf("OpenGL %d.%d lacks geometry shaders with image load/store: %w", major, minor, gpu.ErrUnsupported)
	}

	d := &Device{
		log:           log,
		programs:      make(map[gpu.ProgramID]*program),
		meshes:        make(map[gpu.MeshID]*mesh),
		textures:      make(map[gpu.TextureID]gpu.Texture3DDesc),
		writableUnits: make(map[int]bool),
	}

	var max3D int32
	gl.GetIntegerv(gl.MAX_3D_TEXTURE_SIZE, &max3D)
	d.caps = gpu.Capabilities{
		ConservativeRaster: hasExtension(conservativeRasterExtension),
		Max3DTextureSize:   int(max3D),
		Renderer:           gl.GoStr(gl.GetString(gl.RENDERER)),
	}

	log.Info("OpenGL device initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", d.caps.Renderer),
		zap.Int("max3DTextureSize", d.caps.Max3DTextureSize),
		zap.Bool("conservativeRaster", d.caps.ConservativeRaster),
	)

	return d, nil
}

func hasExtension(name string) bool {
	var n int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
	for i := int32(0); i < n; i++ {
		if strings.EqualFold(gl.GoStr(gl.GetStringi(gl.EXTENSIONS, uint32(i))), name) {
			return true
		}
	}
	return false
}

// Capabilities implements gpu.Device.
func (d *Device) Capabilities() gpu.Capabilities {
	return d.caps
}

// RasterState reads the current raster state back from the context.
func (d *Device) RasterState() gpu.RasterState {
	var s gpu.RasterState
	s.CullFace = gl.IsEnabled(gl.CULL_FACE)
	s.DepthTest = gl.IsEnabled(gl.DEPTH_TEST)

	var mask [4]bool
	gl.GetBooleanv(gl.COLOR_WRITEMASK, &mask[0])
	s.ColorMask = mask

	if d.caps.ConservativeRaster {
		s.ConservativeRaster = gl.IsEnabled(conservativeRasterizationNV)
	}

	gl.GetIntegerv(gl.VIEWPORT, &s.Viewport[0])
	return s
}

// ApplyRasterState implements gpu.Device.
func (d *Device) ApplyRasterState(s gpu.RasterState) error {
	if s.ConservativeRaster && !d.caps.ConservativeRaster {
		return fmt.Errorf("conservative rasterization: %w", gpu.ErrUnsupported)
	}
	if s.Viewport[2] <= 0 || s.Viewport[3] <= 0 {
		return fmt.Errorf("viewport %v: %w", s.Viewport, gpu.ErrInvalidValue)
	}

	setEnabled(gl.CULL_FACE, s.CullFace)
	setEnabled(gl.DEPTH_TEST, s.DepthTest)
	gl.ColorMask(s.ColorMask[0], s.ColorMask[1], s.ColorMask[2], s.ColorMask[3])
	if d.caps.ConservativeRaster {
		setEnabled(conservativeRasterizationNV, s.ConservativeRaster)
	}
	gl.Viewport(s.Viewport[0], s.Viewport[1], s.Viewport[2], s.Viewport[3])
	return nil
}

func setEnabled(capability uint32, on bool) {
	if on {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}

// Clear implements gpu.Device.
func (d *Device) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// barrier makes image stores of earlier draws visible to texture fetches,
// texture reads and later image accesses.
func (d *Device) barrier() {
	if !d.imageWrites {
		return
	}
	gl.MemoryBarrier(gl.SHADER_IMAGE_ACCESS_BARRIER_BIT | gl.TEXTURE_FETCH_BARRIER_BIT | gl.TEXTURE_UPDATE_BARRIER_BIT)
	d.imageWrites = false
}

// checkError drains the GL error queue and reports the first error.
func checkError(op string) error {
	code := gl.GetError()
	if code == gl.NO_ERROR {
		return nil
	}
	for gl.GetError() != gl.NO_ERROR {
	}
	if code == gl.OUT_OF_MEMORY {
		return fmt.Errorf("%s: %w", op, gpu.ErrOutOfMemory)
	}
	return fmt.Errorf("%s: GL error 0x%04X: %w", op, code, gpu.ErrInvalidValue)
}

var _ gpu.Device = (*Device)(nil)
