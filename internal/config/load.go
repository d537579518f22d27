package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	if err := applyFlags(cfg); err != nil {
		return nil, fmt.Errorf("applying flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports settings the voxelizer cannot run with.
func (c *Config) Validate() error {
	g := c.Voxelizer.Grid
	if g.Width <= 0 || g.Height <= 0 || g.Depth <= 0 {
		return fmt.Errorf("voxelizer.grid must be positive, got %dx%dx%d", g.Width, g.Height, g.Depth)
	}
	switch c.Voxelizer.Backend {
	case "opengl", "soft":
	default:
		return fmt.Errorf("voxelizer.backend %q: want opengl or soft", c.Voxelizer.Backend)
	}
	switch c.Export.Slices {
	case "", "webp", "png", "tga":
	default:
		return fmt.Errorf("export.slices %q: want webp, png or tga", c.Export.Slices)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./voxelizer.yaml",
		filepath.Join(ConfigDir(), "voxelizer.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Voxelizer")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Voxelizer")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "voxelizer")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "voxelizer")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
