// Package config holds the settings of the CLI renderer and the inspection
// server. Files are YAML unless the name ends in .toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-volume-iterators/pkg/core"
	"github.com/df07/go-volume-iterators/pkg/driver"
	"github.com/df07/go-volume-iterators/pkg/iterator"
	"github.com/df07/go-volume-iterators/pkg/renderer"
	"github.com/df07/go-volume-iterators/pkg/scene"
	"github.com/df07/go-volume-iterators/pkg/volume"
)

// Config is the complete application configuration
type Config struct {
	Driver DriverConfig `yaml:"driver" toml:"driver"`
	Volume VolumeConfig `yaml:"volume" toml:"volume"`
	Hit    HitConfig    `yaml:"hit" toml:"hit"`
	Log    LogConfig    `yaml:"log" toml:"log"`
	Render RenderConfig `yaml:"render" toml:"render"`
	Server ServerConfig `yaml:"server" toml:"server"`
}

// DriverConfig selects the traversal driver and its batch widths
type DriverConfig struct {
	Name        string `yaml:"name" toml:"name"`
	NativeWidth int    `yaml:"native_width" toml:"native_width"`
	MaxWidth    int    `yaml:"max_width" toml:"max_width"`
}

// VolumeConfig controls volume commit
type VolumeConfig struct {
	MacrocellWidth int    `yaml:"macrocell_width" toml:"macrocell_width"` // voxels per macrocell edge
	BuildWorkers   int    `yaml:"build_workers" toml:"build_workers"`     // 0 = CPU count
	Filter         string `yaml:"filter" toml:"filter"`                   // trilinear or nearest
}

// HitConfig bounds iso-surface refinement
type HitConfig struct {
	MaxIterations int     `yaml:"max_iterations" toml:"max_iterations"`
	Tolerance     float32 `yaml:"tolerance" toml:"tolerance"`
}

// LogConfig configures structured logging. With File set, output goes to a
// rotating log file instead of stdout.
type LogConfig struct {
	Level   string `yaml:"level" toml:"level"`
	File    string `yaml:"file" toml:"file"`
	MaxSize int    `yaml:"max_log_size" toml:"max_log_size"` // megabytes
	MaxAge  int    `yaml:"max_log_age" toml:"max_log_age"`   // days
}

// RenderConfig controls the CLI iso-surface renderer
type RenderConfig struct {
	Width    int `yaml:"width" toml:"width"`
	Height   int `yaml:"height" toml:"height"`
	TileSize int `yaml:"tile_size" toml:"tile_size"`
	Workers  int `yaml:"workers" toml:"workers"` // 0 = CPU count
	Lanes    int `yaml:"lanes" toml:"lanes"`     // rays per batch, 0 = driver native width
}

// ServerConfig controls the inspection web server
type ServerConfig struct {
	Port int `yaml:"port" toml:"port"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Driver: DriverConfig{
			Name:        "go",
			NativeWidth: 8,
			MaxWidth:    16,
		},
		Volume: VolumeConfig{
			MacrocellWidth: 16,
			Filter:         "trilinear",
		},
		Hit: HitConfig{
			MaxIterations: 32,
			Tolerance:     1e-6,
		},
		Log: LogConfig{
			Level:   "info",
			MaxSize: 100,
			MaxAge:  30,
		},
		Render: RenderConfig{
			Width:    400,
			Height:   400,
			TileSize: 32,
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// Load reads a config file over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges. Width support is checked by the driver.
func (c Config) Validate() error {
	if c.Driver.Name == "" {
		return fmt.Errorf("driver.name must be set")
	}
	if c.Volume.MacrocellWidth < 1 {
		return fmt.Errorf("volume.macrocell_width must be at least 1, got %d", c.Volume.MacrocellWidth)
	}
	if c.Volume.BuildWorkers < 0 {
		return fmt.Errorf("volume.build_workers must not be negative, got %d", c.Volume.BuildWorkers)
	}
	if c.Hit.MaxIterations < 0 {
		return fmt.Errorf("hit.max_iterations must not be negative, got %d", c.Hit.MaxIterations)
	}
	if c.Hit.Tolerance < 0 {
		return fmt.Errorf("hit.tolerance must not be negative, got %g", c.Hit.Tolerance)
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render size must be positive, got %dx%d", c.Render.Width, c.Render.Height)
	}
	if c.Render.TileSize <= 0 {
		return fmt.Errorf("render.tile_size must be positive, got %d", c.Render.TileSize)
	}
	if c.Render.Workers < 0 || c.Render.Lanes < 0 {
		return fmt.Errorf("render.workers and render.lanes must not be negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// DriverOptions converts the driver and hit sections
func (c Config) DriverOptions(logger core.Logger) driver.Options {
	return driver.Options{
		NativeWidth: c.Driver.NativeWidth,
		MaxWidth:    c.Driver.MaxWidth,
		Refine: iterator.RefineConfig{
			MaxIterations: c.Hit.MaxIterations,
			Tolerance:     c.Hit.Tolerance,
		},
		Logger: logger,
	}
}

// SceneOptions converts the volume section
func (c Config) SceneOptions() (scene.Options, error) {
	filter, err := volume.ParseFilter(c.Volume.Filter)
	if err != nil {
		return scene.Options{}, err
	}
	return scene.Options{
		MacrocellWidth: c.Volume.MacrocellWidth,
		BuildWorkers:   c.Volume.BuildWorkers,
		Filter:         filter,
	}, nil
}

// RendererConfig converts the render section
func (c Config) RendererConfig() renderer.Config {
	return renderer.Config{
		Width:      c.Render.Width,
		Height:     c.Render.Height,
		TileSize:   c.Render.TileSize,
		NumWorkers: c.Render.Workers,
		Lanes:      c.Render.Lanes,
	}
}
