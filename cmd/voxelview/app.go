package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/voxelizer/internal/config"
	"github.com/Faultbox/voxelizer/internal/engine/camera"
	"github.com/Faultbox/voxelizer/internal/engine/framebuffer"
	"github.com/Faultbox/voxelizer/internal/engine/screenshot"
	"github.com/Faultbox/voxelizer/internal/engine/timing"
	"github.com/Faultbox/voxelizer/internal/engine/tweak"
	"github.com/Faultbox/voxelizer/internal/engine/ui"
	"github.com/Faultbox/voxelizer/internal/gpu/opengl"
	"github.com/Faultbox/voxelizer/internal/logger"
	"github.com/Faultbox/voxelizer/internal/model"
	"github.com/Faultbox/voxelizer/internal/session"
	"github.com/Faultbox/voxelizer/internal/voxel"
)

const (
	controlsPanelWidth = float32(320)
	maxGridSize        = 512
)

// App is the viewer state. Everything except the file dialog runs on
// the main thread inside the ImGui render callback.
type App struct {
	cfg     *config.Config
	log     *zap.Logger
	backend *ui.Backend
	dev     *opengl.Device
	session *session.Session

	panel  *tweak.Panel
	timer  *timing.FrameTimer
	camera *camera.FreeLookCamera
	fb     *framebuffer.Framebuffer
	shots  *screenshot.Capture

	modelSrc string
	result   *session.Result
	grid     [3]int32
	cubeGrid bool
	status   string

	slices *sliceView

	// initial is opened on the first frame.
	initial string
	started bool
	initErr error

	// pendingOpen receives paths chosen in the file dialog.
	pendingOpen chan string
}

// NewApp creates the window. The GL device and the voxelizer session are
// created on the first frame, so every resource is owned by the render
// loop and freed when it exits.
func NewApp(cfg *config.Config, initial string) (*App, error) {
	log := logger.Named("viewer")

	b, err := ui.NewBackend(cfg.Window.Title, int32(cfg.Window.Width), int32(cfg.Window.Height), log)
	if err != nil {
		return nil, err
	}

	g := cfg.Voxelizer.Grid
	app := &App{
		cfg:         cfg,
		log:         log,
		backend:     b,
		panel:       tweak.NewPanel("Voxelizer"),
		timer:       timing.NewFrameTimer(),
		camera:      camera.NewFreeLookCamera(cameraStart),
		shots:       screenshot.New(cfg.Export.Dir, "voxelview"),
		grid:        [3]int32{int32(g.Width), int32(g.Height), int32(g.Depth)},
		cubeGrid:    g.Width == g.Height && g.Height == g.Depth,
		slices:      newSliceView(),
		initial:     initial,
		pendingOpen: make(chan string, 1),
	}
	b.OnClose(app.release)
	return app, nil
}

// Run runs the render loop until the window closes. It returns the
// error that kept the viewer from starting, if any.
func (app *App) Run() error {
	app.backend.Run(app.frame)
	return app.initErr
}

// start creates the GPU side of the viewer. On failure whatever was
// created is freed again.
func (app *App) start() error {
	dev, err := opengl.New(logger.Named("gl"))
	if err != nil {
		return err
	}
	s, err := session.New(app.cfg, dev, logger.Log)
	if err != nil {
		return err
	}
	fb, err := framebuffer.New(int32(app.cfg.Window.Width)-int32(controlsPanelWidth), int32(app.cfg.Window.Height))
	if err != nil {
		s.Close()
		return err
	}

	app.dev, app.session, app.fb = dev, s, fb
	s.Pipeline().RegisterControls(app.panel, app.timer.RenderTimeMs)
	app.fitCamera()
	if app.initial != "" {
		app.Open(app.initial)
	}
	return nil
}

// release frees GPU resources while the GL context is still current.
func (app *App) release() {
	if app.session == nil {
		return
	}
	app.slices.release()
	app.fb.Destroy()
	app.session.Close()
	app.session = nil
}

func (app *App) frame() {
	if !app.started {
		app.started = true
		if err := app.start(); err != nil {
			app.log.Error("viewer failed to start", zap.Error(err))
			app.initErr = err
		}
	}
	if app.initErr != nil {
		app.renderStartupError()
		return
	}
	app.render()
}

func (app *App) renderStartupError() {
	x, y, w, h := app.backend.GetViewport()
	imgui.SetNextWindowPos(imgui.NewVec2(x, y))
	imgui.SetNextWindowSize(imgui.NewVec2(w, h))
	if imgui.BeginV("Startup failed", nil, imgui.WindowFlagsNoMove|imgui.WindowFlagsNoResize|imgui.WindowFlagsNoCollapse) {
		imgui.TextWrapped(app.initErr.Error())
		imgui.TextDisabled("Close the window to exit.")
	}
	imgui.End()
}

// Open voxelizes a model at the current grid size and makes it the
// current model on success.
func (app *App) Open(src string) {
	prev := app.modelSrc
	app.modelSrc = src
	if !app.voxelize() {
		app.modelSrc = prev
		return
	}
	app.backend.SetWindowTitle(fmt.Sprintf("%s - %s", app.cfg.Window.Title, filepath.Base(src)))
}

// voxelize runs the pipeline on a fresh load of the current model, so
// repeated runs do not compound the fit transform.
func (app *App) voxelize() bool {
	if app.modelSrc == "" {
		return false
	}
	m, err := session.LoadModel(app.modelSrc)
	if err != nil {
		app.fail("open", err)
		return false
	}

	app.session.SetDims(voxel.Dims{W: int(app.grid[0]), H: int(app.grid[1]), D: int(app.grid[2])})
	res, err := app.session.Voxelize(m)
	if err != nil {
		app.fail("voxelize", err)
		return false
	}
	app.result = res
	app.shots.SetPrefix(session.FileStem(res.Name))
	app.slices.invalidate()
	app.fitCamera()
	app.status = fmt.Sprintf("%s: %v, %d cells, %s",
		res.Name, res.Stats.Dims, res.Grid.FilledCount(), res.Stats.Duration.Round(time.Millisecond))
	return true
}

func (app *App) export() {
	if app.result == nil {
		return
	}
	paths, err := app.session.Export(app.result)
	if err != nil {
		app.fail("export", err)
		return
	}
	app.status = fmt.Sprintf("exported %d files to %s", len(paths), app.cfg.Export.Dir)
}

// saveScreenshot saves the last rendered preview frame.
func (app *App) saveScreenshot() {
	path, err := app.shots.Save(app.fb.ReadImage())
	if err != nil {
		app.fail("screenshot", err)
		return
	}
	app.status = "saved " + path
}

// saveSettings stores the current grid and pipeline toggles in the user
// config file.
func (app *App) saveSettings() {
	app.cfg.Voxelizer.Grid = config.GridConfig{
		Width:  int(app.grid[0]),
		Height: int(app.grid[1]),
		Depth:  int(app.grid[2]),
	}
	app.cfg.Voxelizer.ConservativeRaster, _ = app.session.Pipeline().ConservativeRaster()
	if err := app.cfg.Save(); err != nil {
		app.fail("save settings", err)
		return
	}
	app.status = "settings saved"
}

func (app *App) fail(op string, err error) {
	app.log.Warn(op+" failed", zap.Error(err))
	app.status = fmt.Sprintf("%s: %v", op, err)
	if errors.Is(err, voxel.ErrResourceExhausted) {
		app.status += " (try a smaller grid)"
	}
}

// openFileDialog shows a native file dialog off the main thread and
// hands the result to render.
func (app *App) openFileDialog() {
	go func() {
		filename, err := dialog.File().
			Filter("glTF models", "gltf", "glb").
			Filter("All Files", "*").
			Title("Open model").
			Load()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				app.log.Warn("file dialog failed", zap.Error(err))
			}
			return
		}
		select {
		case app.pendingOpen <- filename:
		default:
		}
	}()
}

func (app *App) render() {
	app.timer.Tick()

	if ui.IsKeyPressed(imgui.KeyF12) {
		app.saveScreenshot()
	}

	select {
	case path := <-app.pendingOpen:
		app.Open(path)
	default:
	}

	workX, workY, workW, height := app.backend.GetViewport()
	flags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoCollapse

	imgui.SetNextWindowPos(imgui.NewVec2(workX, workY))
	imgui.SetNextWindowSize(imgui.NewVec2(controlsPanelWidth, height))
	if imgui.BeginV("Controls", nil, flags) {
		app.renderControls()
	}
	imgui.End()

	imgui.SetNextWindowPos(imgui.NewVec2(workX+controlsPanelWidth, workY))
	imgui.SetNextWindowSize(imgui.NewVec2(workW-controlsPanelWidth, height))
	if imgui.BeginV("Preview", nil, flags) {
		if imgui.BeginTabBar("Views") {
			if imgui.BeginTabItem("Volume") {
				app.renderPreview()
				imgui.EndTabItem()
			}
			if imgui.BeginTabItem("Slices") {
				app.slices.render(app.result)
				imgui.EndTabItem()
			}
			imgui.EndTabBar()
		}
	}
	imgui.End()
}

func (app *App) renderControls() {
	if imgui.ButtonV("Open model...", imgui.NewVec2(-1, 0)) {
		app.openFileDialog()
	}
	imgui.Text("Built-in:")
	for _, name := range model.BuiltinNames() {
		imgui.SameLine()
		if imgui.Button(name) {
			app.Open(name)
		}
	}

	imgui.Separator()
	imgui.Text("Grid")
	imgui.Checkbox("Cube", &app.cubeGrid)
	if app.cubeGrid {
		if imgui.SliderIntV("Size", &app.grid[0], 1, maxGridSize, "%d", imgui.SliderFlagsNone) {
			app.grid[1], app.grid[2] = app.grid[0], app.grid[0]
		}
	} else {
		imgui.SliderIntV("Width", &app.grid[0], 1, maxGridSize, "%d", imgui.SliderFlagsNone)
		imgui.SliderIntV("Height", &app.grid[1], 1, maxGridSize, "%d", imgui.SliderFlagsNone)
		imgui.SliderIntV("Depth", &app.grid[2], 1, maxGridSize, "%d", imgui.SliderFlagsNone)
	}

	if imgui.ButtonV("Voxelize", imgui.NewVec2(-1, 0)) {
		app.voxelize()
	}
	imgui.BeginDisabledV(app.result == nil)
	if imgui.ButtonV("Export", imgui.NewVec2(-1, 0)) {
		app.export()
	}
	if imgui.ButtonV("Screenshot (F12)", imgui.NewVec2(-1, 0)) {
		app.saveScreenshot()
	}
	imgui.EndDisabled()
	if imgui.ButtonV("Save settings", imgui.NewVec2(-1, 0)) {
		app.saveSettings()
	}

	imgui.Separator()
	ui.DrawPanel(app.panel)

	imgui.Separator()
	imgui.TextWrapped(app.status)
}
