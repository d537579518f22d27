package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.5-core/gl"

	"github.com/Faultbox/voxelizer/internal/gpu"
)

func glFormat(f gpu.Format) (internal int32, format, xtype uint32, ok bool) {
	switch f {
	case gpu.FormatRGBA8:
		return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE, true
	default:
		return 0, 0, 0, false
	}
}

// CreateTexture3D allocates an immutable-size 3D texture with nearest
// filtering. A nil data slice yields a zero-initialized texture.
func (d *Device) CreateTexture3D(desc gpu.Texture3DDesc, data []byte) (gpu.TextureID, error) {
	internal, format, xtype, ok := glFormat(desc.Format)
	if !ok {
		return 0, fmt.Errorf("texture format %v: %w", desc.Format, gpu.ErrInvalidValue)
	}
	if desc.Width <= 0 || desc.Height <= 0 || desc.Depth <= 0 {
		return 0, fmt.Errorf("texture %dx%dx%d: %w", desc.Width, desc.Height, desc.Depth, gpu.ErrInvalidValue)
	}
	if data == nil {
		data = make([]byte, desc.Size())
	} else if len(data) != desc.Size() {
		return 0, fmt.Errorf("texture data is %d bytes, want %d: %w", len(data), desc.Size(), gpu.ErrInvalidValue)
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_3D, tex)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_MAX_LEVEL, 0)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage3D(gl.TEXTURE_3D, 0, internal,
		int32(desc.Width), int32(desc.Height), int32(desc.Depth),
		0, format, xtype, gl.Ptr(data))

	if err := checkError("glTexImage3D"); err != nil {
		gl.DeleteTextures(1, &tex)
		return 0, err
	}

	id := gpu.TextureID(tex)
	d.textures[id] = desc
	return id, nil
}

// DeleteTexture3D implements gpu.Device.
func (d *Device) DeleteTexture3D(id gpu.TextureID) {
	if _, ok := d.textures[id]; !ok {
		return
	}
	tex := uint32(id)
	gl.DeleteTextures(1, &tex)
	delete(d.textures, id)
}

// ReadTexture3D implements gpu.Device.
func (d *Device) ReadTexture3D(id gpu.TextureID) ([]byte, error) {
	desc, ok := d.textures[id]
	if !ok {
		return nil, fmt.Errorf("texture %d: %w", id, gpu.ErrInvalidValue)
	}
	_, format, xtype, _ := glFormat(desc.Format)

	d.barrier()

	out := make([]byte, desc.Size())
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.GetTextureImage(uint32(id), 0, format, xtype, int32(len(out)), gl.Ptr(out))
	if err := checkError("glGetTextureImage"); err != nil {
		return nil, err
	}
	return out, nil
}

// BindTexture3D binds a texture for sampling.
func (d *Device) BindTexture3D(unit int, id gpu.TextureID) {
	d.barrier()
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_3D, uint32(id))
}

// BindImage3D binds all layers of a texture to an image unit.
func (d *Device) BindImage3D(unit int, id gpu.TextureID, access gpu.Access) {
	desc, ok := d.textures[id]
	if !ok || id == 0 {
		gl.BindImageTexture(uint32(unit), 0, 0, true, 0, gl.READ_ONLY, gl.RGBA8)
		delete(d.writableUnits, unit)
		return
	}
	internal, _, _, _ := glFormat(desc.Format)

	d.barrier()
	gl.BindImageTexture(uint32(unit), uint32(id), 0, true, 0, glAccess(access), uint32(internal))
	if access.Writes() {
		d.writableUnits[unit] = true
	} else {
		delete(d.writableUnits, unit)
	}
}

func glAccess(a gpu.Access) uint32 {
	switch a {
	case gpu.AccessWriteOnly:
		return gl.WRITE_ONLY
	case gpu.AccessReadWrite:
		return gl.READ_WRITE
	default:
		return gl.READ_ONLY
	}
}
