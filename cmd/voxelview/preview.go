package main

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"go.uber.org/zap"

	"github.com/Faultbox/voxelizer/internal/engine/camera"
	"github.com/Faultbox/voxelizer/internal/engine/ui"
	"github.com/Faultbox/voxelizer/internal/gpu"
	"github.com/Faultbox/voxelizer/pkg/math"
)

var cameraStart = math.Vec3{Z: 20}

var lastMousePos imgui.Vec2

// fitCamera frames the current grid as the preview draws it.
func (app *App) fitCamera() {
	d := app.session.Dims()
	s := app.cfg.Voxelizer.PreviewScale
	if s <= 0 {
		s = 0.1
	}
	half := math.Vec3{X: float32(d.W), Y: float32(d.H), Z: float32(d.D)}.Scale(s / 2)
	app.camera.FitToBounds(half.Scale(-1), half)
}

// renderPreview draws the volume into the offscreen framebuffer and shows
// it as an image that takes camera input while hovered.
func (app *App) renderPreview() {
	avail := imgui.ContentRegionAvail()
	w, h := int32(avail.X), int32(avail.Y-imgui.FrameHeightWithSpacing())
	if w < 1 || h < 1 {
		return
	}
	if fw, fh := app.fb.Size(); fw != w || fh != h {
		if err := app.fb.Resize(w, h); err != nil {
			app.log.Warn("resize preview", zap.Error(err))
			return
		}
	}

	app.drawVolume(w, h)

	texRef := imgui.NewTextureRefTextureID(imgui.TextureID(app.fb.ColorTexture()))
	imgui.ImageWithBgV(
		*texRef,
		imgui.NewVec2(float32(w), float32(h)),
		imgui.NewVec2(0, 1), // GL rows are bottom-up
		imgui.NewVec2(1, 0),
		imgui.NewVec4(0.1, 0.1, 0.12, 1.0),
		imgui.NewVec4(1, 1, 1, 1),
	)

	if imgui.IsItemHovered() {
		mousePos := imgui.MousePos()
		if imgui.IsMouseDragging(imgui.MouseButtonLeft) {
			app.camera.HandleLook(mousePos.X-lastMousePos.X, mousePos.Y-lastMousePos.Y)
		}
		lastMousePos = mousePos
		app.camera.HandleMovement(movementKeys(), app.timer.Seconds())
	}

	if imgui.Button("Reset View") {
		app.fitCamera()
	}
	imgui.SameLine()
	imgui.TextDisabled("(Drag to look, WASD/QE to move, Shift fast, Ctrl slow)")
}

func (app *App) drawVolume(w, h int32) {
	unbind := app.fb.Bind()
	defer unbind()

	restore, err := gpu.Override(app.dev, app.dev.RasterState().WithViewport(0, 0, w, h))
	if err != nil {
		app.log.Warn("preview viewport", zap.Error(err))
		return
	}
	defer restore()

	app.fb.Clear(0.1, 0.1, 0.12, 1)
	if app.result == nil {
		return
	}
	view := app.camera.ViewMatrix()
	proj := app.camera.ProjectionMatrix(float32(w) / float32(h))
	if err := app.session.Pipeline().RenderVolumePreview(view, proj); err != nil {
		app.log.Warn("preview", zap.Error(err))
	}
}

func movementKeys() camera.Movement {
	var m camera.Movement
	axis := func(pos, neg imgui.Key) float32 {
		var v float32
		if ui.IsKeyDown(pos) {
			v++
		}
		if ui.IsKeyDown(neg) {
			v--
		}
		return v
	}
	m.Forward = axis(imgui.KeyW, imgui.KeyS)
	m.Right = axis(imgui.KeyD, imgui.KeyA)
	m.Up = axis(imgui.KeyE, imgui.KeyQ)
	m.Fast = ui.IsKeyDown(imgui.KeyLeftShift)
	m.Slow = ui.IsKeyDown(imgui.KeyLeftCtrl)
	return m
}
