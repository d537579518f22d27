package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/voxelizer/internal/config"
	"github.com/Faultbox/voxelizer/internal/engine/window"
	"github.com/Faultbox/voxelizer/internal/gpu"
	"github.com/Faultbox/voxelizer/internal/gpu/opengl"
	"github.com/Faultbox/voxelizer/internal/gpu/soft"
)

// Backend names accepted by OpenDevice.
const (
	BackendOpenGL = "opengl"
	BackendSoft   = "soft"
)

// OpenDevice creates the device named by cfg.Voxelizer.Backend. The
// OpenGL backend runs on a hidden window's context. The returned close
// function releases the context.
func OpenDevice(cfg *config.Config, log *zap.Logger) (gpu.Device, func(), error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch cfg.Voxelizer.Backend {
	case BackendSoft:
		dev := soft.New(soft.Options{
			ConservativeRaster: true,
			Max3DTextureSize:   cfg.Voxelizer.MaxTextureSize,
		}, log.Named("soft"))
		return dev, func() {}, nil

	case BackendOpenGL:
		win, err := window.New(window.Config{
			Title:  cfg.Window.Title,
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
			Hidden: true,
		}, log.Named("window"))
		if err != nil {
			return nil, nil, fmt.Errorf("opening GL context: %w", err)
		}
		dev, err := opengl.New(log.Named("gl"))
		if err != nil {
			win.Close()
			return nil, nil, err
		}
		return dev, win.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Voxelizer.Backend)
	}
}
