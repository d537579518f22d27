package main

import (
	"image"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/voxelizer/internal/session"
)

// sliceView shows one z layer of the read-back grid.
type sliceView struct {
	z     int32
	zoom  float32
	tex   *backend.Texture
	shown int32 // layer held by tex, -1 when stale
}

func newSliceView() *sliceView {
	return &sliceView{zoom: 4, shown: -1}
}

func (v *sliceView) invalidate() {
	v.shown = -1
}

func (v *sliceView) release() {
	if v.tex != nil {
		v.tex.Release()
		v.tex = nil
	}
}

func (v *sliceView) render(r *session.Result) {
	if r == nil {
		imgui.TextDisabled("Nothing voxelized yet")
		return
	}
	dims := r.Grid.Dims
	if v.z >= int32(dims.D) {
		v.z = int32(dims.D) - 1
		v.shown = -1
	}
	if imgui.SliderIntV("Layer", &v.z, 0, int32(dims.D)-1, "z = %d", imgui.SliderFlagsNone) {
		v.shown = -1
	}
	imgui.SliderFloatV("Zoom", &v.zoom, 1, 16, "%.0fx", imgui.SliderFlagsNone)

	if v.shown != v.z || v.tex == nil {
		v.release()
		img := &image.RGBA{
			Pix:    append([]byte(nil), r.Grid.Slice(int(v.z))...),
			Stride: dims.W * 4,
			Rect:   image.Rect(0, 0, dims.W, dims.H),
		}
		v.tex = backend.NewTextureFromRgba(img)
		v.shown = v.z
	}

	// Row 0 is y = 0, drawn at the bottom.
	imgui.ImageWithBgV(
		v.tex.ID,
		imgui.NewVec2(float32(dims.W)*v.zoom, float32(dims.H)*v.zoom),
		imgui.NewVec2(0, 1),
		imgui.NewVec2(1, 0),
		imgui.NewVec4(0.2, 0.2, 0.2, 1.0),
		imgui.NewVec4(1, 1, 1, 1),
	)
}
