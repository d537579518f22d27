package voxel

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/voxelizer/internal/gpu"
)

// Volume is a dense voxel grid stored in an RGBA8 3D texture. A zero
// texel is an empty cell.
type Volume struct {
	dev    gpu.Device
	log    *zap.Logger
	format gpu.Format

	dims Dims
	tex  gpu.TextureID
}

// NewVolume creates a volume with no resource.
func NewVolume(dev gpu.Device, log *zap.Logger) *Volume {
	if log == nil {
		log = zap.NewNop()
	}
	return &Volume{dev: dev, log: log, format: gpu.FormatRGBA8}
}

// Mode implements Storage.
func (v *Volume) Mode() StorageMode { return Dense3DTexture }

// Dims returns the current resolution, zero when no resource is live.
func (v *Volume) Dims() Dims { return v.dims }

// Format implements Storage.
func (v *Volume) Format() gpu.Format { return v.format }

// Live reports whether a texture is allocated.
func (v *Volume) Live() bool { return v.tex != 0 }

// Texture returns the backing texture, zero when none is live.
func (v *Volume) Texture() gpu.TextureID { return v.tex }

// AllocateEmpty replaces the volume with a zero-initialized grid and binds
// it for sampling on unit 0.
func (v *Volume) AllocateEmpty(w, h, d int) error {
	return v.allocate(Dims{W: w, H: h, D: d}, nil)
}

// GenerateTestPattern replaces the volume with TestPattern and binds it
// for sampling on unit 0.
func (v *Volume) GenerateTestPattern(w, h, d int) error {
	dims := Dims{W: w, H: h, D: d}
	if err := v.check(dims); err != nil {
		return err
	}
	return v.allocate(dims, TestPattern(dims))
}

// check validates dims against the device before anything is released.
func (v *Volume) check(dims Dims) error {
	if !dims.Valid() {
		return fmt.Errorf("%v: %w", dims, ErrInvalidDimensions)
	}
	if limit := v.dev.Capabilities().Max3DTextureSize; limit > 0 && dims.Max() > limit {
		return fmt.Errorf("%v exceeds max 3D texture size %d: %w", dims, limit, ErrResourceExhausted)
	}
	return nil
}

func (v *Volume) allocate(dims Dims, data []byte) error {
	if err := v.check(dims); err != nil {
		return err
	}

	v.Release()

	tex, err := v.dev.CreateTexture3D(gpu.Texture3DDesc{
		Width:  dims.W,
		Height: dims.H,
		Depth:  dims.D,
		Format: v.format,
	}, data)
	if err != nil {
		if errors.Is(err, gpu.ErrOutOfMemory) {
			return fmt.Errorf("allocate %v: %w: %w", dims, ErrResourceExhausted, err)
		}
		return fmt.Errorf("allocate %v: %w", dims, err)
	}

	v.tex = tex
	v.dims = dims
	v.BindForSampling(0)

	v.log.Debug("voxel volume allocated",
		zap.Stringer("dims", dims),
		zap.Bool("pattern", data != nil),
		zap.Uint32("texture", uint32(tex)))
	return nil
}

// BindForSampling binds the texture to a sampler unit.
func (v *Volume) BindForSampling(unit int) {
	v.dev.BindTexture3D(unit, v.tex)
}

// BindForWrite binds the texture to an image unit.
func (v *Volume) BindForWrite(unit int, access gpu.Access) {
	v.dev.BindImage3D(unit, v.tex, access)
}

// Readback copies the volume into a Grid.
func (v *Volume) Readback() (*Grid, error) {
	if !v.Live() {
		return nil, errors.New("voxel: readback of empty volume")
	}
	data, err := v.dev.ReadTexture3D(v.tex)
	if err != nil {
		return nil, fmt.Errorf("read volume: %w", err)
	}
	return &Grid{Dims: v.dims, Format: v.format, Data: data}, nil
}

// Release frees the texture. Safe to call repeatedly.
func (v *Volume) Release() {
	if v.tex == 0 {
		return
	}
	v.dev.DeleteTexture3D(v.tex)
	v.tex = 0
	v.dims = Dims{}
}

var _ Storage = (*Volume)(nil)
