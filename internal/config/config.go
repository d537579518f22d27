// Package config handles voxelizer configuration loading and management.
package config

// Config holds all voxelizer settings.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Voxelizer VoxelizerConfig `yaml:"voxelizer"`
	Export    ExportConfig    `yaml:"export"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// WindowConfig holds display settings for the viewer and the batch context.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	VSync  bool   `yaml:"vsync"`
}

// GridConfig is a voxel grid resolution.
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Depth  int `yaml:"depth"`
}

// VoxelizerConfig holds voxelization pipeline settings.
type VoxelizerConfig struct {
	Backend            string     `yaml:"backend"` // "opengl" or "soft"
	Grid               GridConfig `yaml:"grid"`
	ConservativeRaster bool       `yaml:"conservative_raster"`
	FirstMeshOnly      bool       `yaml:"first_mesh_only"`
	PlaceholderSize    int        `yaml:"placeholder_size"`
	PreviewScale       float32    `yaml:"preview_scale"`
	FitPadding         float32    `yaml:"fit_padding"`      // fraction of the grid left empty around the model
	MaxTextureSize     int        `yaml:"max_texture_size"` // soft backend only
}

// ExportConfig holds settings for writing voxelization results.
type ExportConfig struct {
	Dir        string `yaml:"dir"`
	Snapshot   bool   `yaml:"snapshot"`
	Slices     string `yaml:"slices"` // "", "webp", "png" or "tga"
	SliceScale int    `yaml:"slice_scale"`
	GLB        bool   `yaml:"glb"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Voxelizer",
			Width:  1280,
			Height: 800,
			VSync:  true,
		},
		Voxelizer: VoxelizerConfig{
			Backend:            "opengl",
			Grid:               GridConfig{Width: 128, Height: 128, Depth: 128},
			ConservativeRaster: true,
			FirstMeshOnly:      false,
			PlaceholderSize:    128,
			PreviewScale:       0.1,
			FitPadding:         0.05,
			MaxTextureSize:     2048,
		},
		Export: ExportConfig{
			Dir:        "out",
			Snapshot:   true,
			Slices:     "webp",
			SliceScale: 4,
			GLB:        false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
