// Command voxelview is an interactive viewer for the voxelizer: open a
// model, voxelize it at a chosen resolution and inspect the volume.
package main

import (
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/Faultbox/voxelizer/internal/config"
	"github.com/Faultbox/voxelizer/internal/logger"
)

func main() {
	runtime.LockOSThread()

	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	// The viewer draws the volume, so it always runs on the GL device.
	cfg.Voxelizer.Backend = "opengl"

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	src := "cube"
	if args := config.Args(); len(args) > 0 {
		src = args[0]
	}

	app, err := NewApp(cfg, src)
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		os.Exit(1)
	}
	if err := app.Run(); err != nil {
		logger.Sync()
		os.Exit(1)
	}
}
