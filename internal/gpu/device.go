// Package gpu defines the narrow device surface the voxelizer needs from a
// graphics API: 3D textures with image load/store, programs with a
// geometry stage, indexed meshes and the handful of global raster flags a
// voxelization pass overrides.
package gpu

import (
	"errors"

	"github.com/Faultbox/voxelizer/pkg/math"
)

var (
	// ErrOutOfMemory is returned when the device cannot back an allocation.
	ErrOutOfMemory = errors.New("gpu: out of memory")
	// ErrUnsupported is returned when a requested feature is not exposed.
	ErrUnsupported = errors.New("gpu: unsupported feature")
	// ErrCompile is returned when a program fails to compile or link.
	ErrCompile = errors.New("gpu: program compilation failed")
	// ErrInvalidValue is returned for out-of-range arguments.
	ErrInvalidValue = errors.New("gpu: invalid value")
)

// Opaque resource handles. Zero is never a valid handle.
type (
	TextureID uint32
	ProgramID uint32
	MeshID    uint32
)

// Format is a texel format.
type Format int

const (
	// FormatRGBA8 stores four unsigned normalized bytes per texel.
	FormatRGBA8 Format = iota
)

// BytesPerTexel returns the size of one texel.
func (f Format) BytesPerTexel() int {
	switch f {
	case FormatRGBA8:
		return 4
	default:
		return 0
	}
}

func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	default:
		return "unknown"
	}
}

// Access is the access mode of an image unit binding.
type Access int

const (
	AccessReadOnly Access = iota
	AccessWriteOnly
	AccessReadWrite
)

// Writes reports whether the access mode allows image stores.
func (a Access) Writes() bool {
	return a == AccessWriteOnly || a == AccessReadWrite
}

// Texture3DDesc describes a 3D texture allocation.
type Texture3DDesc struct {
	Width, Height, Depth int
	Format               Format
}

// Size returns the byte size of the texture's base level.
func (d Texture3DDesc) Size() int {
	return d.Width * d.Height * d.Depth * d.Format.BytesPerTexel()
}

// Capabilities are queried once from the device.
type Capabilities struct {
	ConservativeRaster bool
	Max3DTextureSize   int
	Renderer           string
}

// RasterState is the subset of global pipeline state a pass may override.
type RasterState struct {
	CullFace           bool
	DepthTest          bool
	ColorMask          [4]bool
	ConservativeRaster bool
	Viewport           [4]int32 // x, y, width, height
}

// MeshData is an indexed triangle list in model space.
type MeshData struct {
	Positions []math.Vec3
	Indices   []uint32
}

// TriangleCount returns the number of complete triangles in the index list.
func (m MeshData) TriangleCount() int {
	return len(m.Indices) / 3
}

// ProgramSource holds the stages of a program. Devices that execute GLSL
// use the source strings; devices without a shader compiler run Kernel.
type ProgramSource struct {
	Name     string
	Vertex   string
	Geometry string
	Fragment string
	Kernel   Kernel
}

// Device is a graphics device bound to the calling thread.
type Device interface {
	Capabilities() Capabilities

	RasterState() RasterState
	ApplyRasterState(s RasterState) error
	// Clear clears the color and depth attachments of the current target.
	Clear()

	CreateTexture3D(desc Texture3DDesc, data []byte) (TextureID, error)
	DeleteTexture3D(id TextureID)
	// ReadTexture3D returns the base level of the texture, x fastest.
	ReadTexture3D(id TextureID) ([]byte, error)
	BindTexture3D(unit int, id TextureID)
	BindImage3D(unit int, id TextureID, access Access)

	CompileProgram(src ProgramSource) (ProgramID, error)
	DeleteProgram(id ProgramID)
	UseProgram(id ProgramID)
	SetUniformMat4(p ProgramID, name string, m math.Mat4)
	SetUniformInt(p ProgramID, name string, v int32)
	SetUniformVec4(p ProgramID, name string, v math.Vec4)

	UploadMesh(data MeshData) (MeshID, error)
	DeleteMesh(id MeshID)
	DrawMesh(id MeshID)
	DrawMeshInstanced(id MeshID, instances int)
}
