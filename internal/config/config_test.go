package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Voxelizer.Grid != (GridConfig{Width: 128, Height: 128, Depth: 128}) {
		t.Errorf("expected 128^3 grid, got %+v", cfg.Voxelizer.Grid)
	}
	if cfg.Voxelizer.Backend != "opengl" {
		t.Errorf("expected opengl backend, got %s", cfg.Voxelizer.Backend)
	}
	if !cfg.Voxelizer.ConservativeRaster {
		t.Error("expected conservative raster to be requested by default")
	}
	if cfg.Voxelizer.FirstMeshOnly {
		t.Error("expected all meshes to be voxelized by default")
	}
	if cfg.Voxelizer.PreviewScale != 0.1 {
		t.Errorf("expected preview scale 0.1, got %f", cfg.Voxelizer.PreviewScale)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "voxelizer.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080

voxelizer:
  backend: soft
  grid:
    width: 64
    height: 32
    depth: 16
  conservative_raster: false
  first_mesh_only: true

export:
  dir: "/tmp/voxels"
  slices: png
  glb: true

logging:
  level: "debug"
  log_file: "voxelizer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("expected 1920x1080 window, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Window.Title != "Voxelizer" {
		t.Errorf("expected title default to survive partial file, got %q", cfg.Window.Title)
	}
	if cfg.Voxelizer.Backend != "soft" {
		t.Errorf("expected soft backend, got %s", cfg.Voxelizer.Backend)
	}
	if cfg.Voxelizer.Grid != (GridConfig{Width: 64, Height: 32, Depth: 16}) {
		t.Errorf("expected 64x32x16 grid, got %+v", cfg.Voxelizer.Grid)
	}
	if cfg.Voxelizer.ConservativeRaster {
		t.Error("expected conservative_raster to be false")
	}
	if !cfg.Voxelizer.FirstMeshOnly {
		t.Error("expected first_mesh_only to be true")
	}
	if cfg.Export.Slices != "png" || !cfg.Export.GLB {
		t.Errorf("unexpected export settings: %+v", cfg.Export)
	}
	if cfg.Logging.LogFile != "voxelizer.log" {
		t.Errorf("expected log file 'voxelizer.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
voxelizer:
  grid: [not, a, grid
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error for invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/voxelizer.yaml"); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestSaveAndLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "subdir", "voxelizer.yaml")

	cfg := Default()
	cfg.Voxelizer.Grid = GridConfig{Width: 32, Height: 48, Depth: 64}
	cfg.Export.SliceScale = 8

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, configPath); err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}

	if loaded.Voxelizer.Grid != cfg.Voxelizer.Grid {
		t.Errorf("expected grid %+v, got %+v", cfg.Voxelizer.Grid, loaded.Voxelizer.Grid)
	}
	if loaded.Export.SliceScale != 8 {
		t.Errorf("expected slice scale 8, got %d", loaded.Export.SliceScale)
	}
}

func TestParseGrid(t *testing.T) {
	tests := []struct {
		in      string
		want    GridConfig
		wantErr bool
	}{
		{in: "64", want: GridConfig{64, 64, 64}},
		{in: "64x32x16", want: GridConfig{64, 32, 16}},
		{in: " 8X8X4 ", want: GridConfig{8, 8, 4}},
		{in: "64x32", wantErr: true},
		{in: "0", wantErr: true},
		{in: "-4x4x4", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGrid(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseGrid(%q) expected error, got %+v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseGrid(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseGrid(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		teardown func()
		verify   func(t *testing.T, cfg *Config)
	}{
		{
			name:     "debug flag sets level",
			setup:    func() { *flagDebug = true },
			teardown: func() { *flagDebug = false },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected debug level, got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name:     "grid flag overrides grid",
			setup:    func() { *flagGrid = "16x8x4" },
			teardown: func() { *flagGrid = "" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Voxelizer.Grid != (GridConfig{16, 8, 4}) {
					t.Errorf("expected 16x8x4, got %+v", cfg.Voxelizer.Grid)
				}
			},
		},
		{
			name: "backend and conservative flags",
			setup: func() {
				*flagBackend = "soft"
				*flagNoConservative = true
			},
			teardown: func() {
				*flagBackend = ""
				*flagNoConservative = false
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Voxelizer.Backend != "soft" {
					t.Errorf("expected soft backend, got %s", cfg.Voxelizer.Backend)
				}
				if cfg.Voxelizer.ConservativeRaster {
					t.Error("expected conservative raster disabled")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			if err := applyFlags(cfg); err != nil {
				t.Fatalf("applyFlags: %v", err)
			}
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "voxelizer.yaml")

	yamlContent := `
voxelizer:
  grid:
    width: 32
    height: 32
    depth: 32
export:
  dir: from-file
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagGrid = "8"
	defer func() {
		*flagConfig = ""
		*flagGrid = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Voxelizer.Grid != (GridConfig{8, 8, 8}) {
		t.Errorf("expected grid 8^3 from flag, got %+v", cfg.Voxelizer.Grid)
	}
	if cfg.Export.Dir != "from-file" {
		t.Errorf("expected export dir from file, got %s", cfg.Export.Dir)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Voxelizer.Backend = "vulkan"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown backend")
	}

	cfg = Default()
	cfg.Export.Slices = "gif"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown slice format")
	}
}
