package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

var (
	flagConfig         = flag.String("config", "", "Path to config file")
	flagDebug          = flag.Bool("debug", false, "Enable debug logging")
	flagGrid           = flag.String("grid", "", "Voxel grid resolution, N or WxHxD")
	flagBackend        = flag.String("backend", "", "Device backend: opengl or soft")
	flagNoConservative = flag.Bool("no-conservative", false, "Disable conservative rasterization")
	flagFirstMeshOnly  = flag.Bool("first-mesh-only", false, "Voxelize only the first mesh of the model")
	flagOut            = flag.String("out", "", "Export directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagGrid != "" {
		grid, err := ParseGrid(*flagGrid)
		if err != nil {
			return err
		}
		cfg.Voxelizer.Grid = grid
	}
	if *flagBackend != "" {
		cfg.Voxelizer.Backend = *flagBackend
	}
	if *flagNoConservative {
		cfg.Voxelizer.ConservativeRaster = false
	}
	if *flagFirstMeshOnly {
		cfg.Voxelizer.FirstMeshOnly = true
	}
	if *flagOut != "" {
		cfg.Export.Dir = *flagOut
	}
	return nil
}

// ParseGrid parses "N" (a cube) or "WxHxD" into a grid resolution.
func ParseGrid(s string) (GridConfig, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 1 && len(parts) != 3 {
		return GridConfig{}, fmt.Errorf("grid %q: want N or WxHxD", s)
	}

	vals := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return GridConfig{}, fmt.Errorf("grid %q: %w", s, err)
		}
		if v <= 0 {
			return GridConfig{}, fmt.Errorf("grid %q: dimensions must be positive", s)
		}
		vals[i] = v
	}

	if len(vals) == 1 {
		return GridConfig{Width: vals[0], Height: vals[0], Depth: vals[0]}, nil
	}
	return GridConfig{Width: vals[0], Height: vals[1], Depth: vals[2]}, nil
}
