// Package framebuffer provides OpenGL framebuffer utilities for offscreen
// rendering of the voxel preview.
package framebuffer

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.5-core/gl"
)

// Framebuffer is an offscreen render target with an RGBA8 color texture
// and a 24-bit depth renderbuffer. The viewer shows its color texture in
// an ImGui window and the batch tool reads it back as a preview image.
//
// Bind does not touch the viewport: callers size it through the device's
// raster state so the device's view of that state stays accurate.
type Framebuffer struct {
	fbo          uint32
	colorTexture uint32
	depthRBO     uint32
	width        int32
	height       int32
}

// New creates a new framebuffer with the specified dimensions.
func New(width, height int32) (*Framebuffer, error) {
	fb := &Framebuffer{
		width:  max(width, 1),
		height: max(height, 1),
	}
	if err := fb.create(); err != nil {
		return nil, fmt.Errorf("creating framebuffer: %w", err)
	}
	return fb, nil
}

func (fb *Framebuffer) create() error {
	gl.CreateFramebuffers(1, &fb.fbo)

	gl.CreateTextures(gl.TEXTURE_2D, 1, &fb.colorTexture)
	gl.TextureStorage2D(fb.colorTexture, 1, gl.RGBA8, fb.width, fb.height)
	gl.TextureParameteri(fb.colorTexture, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TextureParameteri(fb.colorTexture, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.NamedFramebufferTexture(fb.fbo, gl.COLOR_ATTACHMENT0, fb.colorTexture, 0)

	gl.CreateRenderbuffers(1, &fb.depthRBO)
	gl.NamedRenderbufferStorage(fb.depthRBO, gl.DEPTH_COMPONENT24, fb.width, fb.height)
	gl.NamedFramebufferRenderbuffer(fb.fbo, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, fb.depthRBO)

	if status := gl.CheckNamedFramebufferStatus(fb.fbo, gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		fb.Destroy()
		return fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	return nil
}

// Bind makes this framebuffer the current render target and returns a
// function that restores the previous one.
func (fb *Framebuffer) Bind() func() {
	var prev int32
	gl.GetIntegerv(gl.DRAW_FRAMEBUFFER_BINDING, &prev)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	return func() {
		gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prev))
	}
}

// Clear clears color and depth with the given color.
func (fb *Framebuffer) Clear(r, g, b, a float32) {
	color := [4]float32{r, g, b, a}
	depth := float32(1)
	gl.ClearNamedFramebufferfv(fb.fbo, gl.COLOR, 0, &color[0])
	gl.ClearNamedFramebufferfv(fb.fbo, gl.DEPTH, 0, &depth)
}

// ColorTexture returns the color attachment texture ID.
func (fb *Framebuffer) ColorTexture() uint32 {
	return fb.colorTexture
}

// Size returns the framebuffer dimensions.
func (fb *Framebuffer) Size() (width, height int32) {
	return fb.width, fb.height
}

// Resize recreates the attachments when the size changes. Texture
// storage is immutable, so the old objects are replaced.
func (fb *Framebuffer) Resize(width, height int32) error {
	width, height = max(width, 1), max(height, 1)
	if width == fb.width && height == fb.height {
		return nil
	}
	fb.Destroy()
	fb.width, fb.height = width, height
	return fb.create()
}

// ReadPixels reads the color attachment bottom row first, as OpenGL
// stores it.
func (fb *Framebuffer) ReadPixels() []byte {
	pixels := make([]byte, fb.width*fb.height*4)
	gl.GetTextureImage(fb.colorTexture, 0, gl.RGBA, gl.UNSIGNED_BYTE, int32(len(pixels)), gl.Ptr(pixels))
	return pixels
}

// ReadImage reads the color attachment into an image with the top row
// first.
func (fb *Framebuffer) ReadImage() *image.RGBA {
	return FlipRows(fb.ReadPixels(), int(fb.width), int(fb.height))
}

// FlipRows copies bottom-up RGBA rows into a top-down image.
func FlipRows(pixels []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}
	return img
}

// Destroy releases all OpenGL resources.
func (fb *Framebuffer) Destroy() {
	if fb.fbo != 0 {
		gl.DeleteFramebuffers(1, &fb.fbo)
		fb.fbo = 0
	}
	if fb.colorTexture != 0 {
		gl.DeleteTextures(1, &fb.colorTexture)
		fb.colorTexture = 0
	}
	if fb.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &fb.depthRBO)
		fb.depthRBO = 0
	}
}
