// Package voxel holds the voxel volume resource: a dense RGBA8 grid backed
// by a GPU 3D texture, and its CPU mirror used for readback and export.
package voxel

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/voxelizer/internal/gpu"
)

var (
	// ErrResourceExhausted is returned when the device cannot hold a grid of
	// the requested size.
	ErrResourceExhausted = errors.New("voxel: resource exhausted")
	// ErrInvalidDimensions is returned for non-positive grid extents.
	ErrInvalidDimensions = errors.New("voxel: invalid dimensions")
	// ErrUnsupportedStorage is returned for storage modes without an
	// implementation.
	ErrUnsupportedStorage = errors.New("voxel: unsupported storage mode")
)

// Dims is a grid resolution in cells.
type Dims struct {
	W, H, D int
}

// Cube returns an n*n*n resolution.
func Cube(n int) Dims {
	return Dims{W: n, H: n, D: n}
}

// Valid reports whether every extent is positive.
func (d Dims) Valid() bool {
	return d.W > 0 && d.H > 0 && d.D > 0
}

// Max returns the largest extent.
func (d Dims) Max() int {
	return max(d.W, d.H, d.D)
}

// Count returns the number of cells.
func (d Dims) Count() int {
	return d.W * d.H * d.D
}

// Array returns the extents as x, y, z.
func (d Dims) Array() [3]int {
	return [3]int{d.W, d.H, d.D}
}

func (d Dims) String() string {
	return fmt.Sprintf("%dx%dx%d", d.W, d.H, d.D)
}

// Cell is an integer grid coordinate.
type Cell struct {
	X, Y, Z int
}

// StorageMode selects how a volume is stored.
type StorageMode int

const (
	Dense3DTexture StorageMode = iota
	// OctreeHierarchy is reserved for sparse storage and has no
	// implementation.
	OctreeHierarchy
)

// StorageModeLabels are the display names of the storage modes, indexed
// by StorageMode.
var StorageModeLabels = []string{"Tex3D", "OctreeHierarchy"}

func (m StorageMode) String() string {
	if int(m) >= 0 && int(m) < len(StorageModeLabels) {
		return StorageModeLabels[m]
	}
	return fmt.Sprintf("StorageMode(%d)", int(m))
}

// Storage is a voxel volume resource. Allocation releases the previous
// resource first, so at most one is live at a time.
type Storage interface {
	Mode() StorageMode
	AllocateEmpty(w, h, d int) error
	GenerateTestPattern(w, h, d int) error
	Dims() Dims
	Format() gpu.Format
	Live() bool
	Texture() gpu.TextureID
	BindForSampling(unit int)
	BindForWrite(unit int, access gpu.Access)
	Readback() (*Grid, error)
	Release()
}

// NewStorage creates an empty storage of the given mode.
func NewStorage(mode StorageMode, dev gpu.Device, log *zap.Logger) (Storage, error) {
	switch mode {
	case Dense3DTexture:
		return NewVolume(dev, log), nil
	default:
		return nil, fmt.Errorf("%v: %w", mode, ErrUnsupportedStorage)
	}
}
