// Command voxelize converts models to voxel volumes without a visible
// window.
//
//	voxelize [flags] MODEL...
//
// MODEL is a .gltf/.glb path or a built-in name (cube, plane, sphere).
// Results are written to the export directory.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/voxelizer/internal/config"
	"github.com/Faultbox/voxelizer/internal/logger"
	"github.com/Faultbox/voxelizer/internal/session"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	models := config.Args()
	if len(models) == 0 {
		fmt.Fprintln(os.Stderr, "usage: voxelize [flags] MODEL...")
		os.Exit(2)
	}

	if err := run(cfg, models); err != nil {
		logger.Error("voxelize failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, models []string) error {
	logger.Sugar.Debugf("Config: %+v", cfg)

	dev, closeDev, err := session.OpenDevice(cfg, logger.Log)
	if err != nil {
		return err
	}
	defer closeDev()

	s, err := session.New(cfg, dev, logger.Log)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, src := range models {
		m, err := session.LoadModel(src)
		if err != nil {
			return err
		}
		res, err := s.Voxelize(m)
		if err != nil {
			return err
		}
		paths, err := s.Export(res)
		if err != nil {
			return fmt.Errorf("exporting %s: %w", res.Name, err)
		}
		fmt.Printf("%s: %v, %d cells filled, %s\n",
			res.Name, res.Stats.Dims, res.Grid.FilledCount(), res.Stats.Duration)
		for _, p := range paths {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}
