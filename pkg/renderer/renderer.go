// Package renderer draws the iso-surfaces of a scene. Primary rays are traced
// in lane batches through a driver's hit iterators, tiles are spread over a
// worker pool, and the result is a depth and shading frame.
package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/df07/go-volume-iterators/pkg/core"
	"github.com/df07/go-volume-iterators/pkg/driver"
	"github.com/df07/go-volume-iterators/pkg/scene"
	"github.com/df07/go-volume-iterators/pkg/simd"
)

// Config contains configuration for a render
type Config struct {
	Width      int
	Height     int
	TileSize   int
	NumWorkers int // Number of parallel workers (0 = use CPU count)
	Lanes      int // Rays per driver batch (0 = driver native width)
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Width:    400,
		Height:   400,
		TileSize: 32,
	}
}

// Renderer renders one scene through one driver
type Renderer struct {
	scene  *scene.Scene
	driver driver.Driver
	config Config
	camera *Camera
	logger core.Logger
}

// NewRenderer checks that the driver accepts the configured lane width
func NewRenderer(sc *scene.Scene, drv driver.Driver, config Config, logger core.Logger) (*Renderer, error) {
	if config.Width <= 0 || config.Height <= 0 || config.TileSize <= 0 {
		return nil, fmt.Errorf("invalid render size %dx%d, tile %d", config.Width, config.Height, config.TileSize)
	}
	if config.Lanes == 0 {
		config.Lanes = drv.NativeSIMDWidth()
	}
	if err := simd.ValidateWidth(config.Lanes); err != nil {
		return nil, err
	}
	if !drv.SupportsWidth(config.Lanes) {
		return nil, fmt.Errorf("%w: %s driver cannot run %d lanes", driver.ErrNotImplemented, drv.Name(), config.Lanes)
	}
	if logger == nil {
		logger = core.NopLogger{}
	}

	aspect := float32(config.Width) / float32(config.Height)
	return &Renderer{
		scene:  sc,
		driver: drv,
		config: config,
		camera: NewCamera(sc.Camera, aspect),
		logger: logger,
	}, nil
}

// Lanes returns the batch width used for tracing
func (r *Renderer) Lanes() int {
	return r.config.Lanes
}

// Render traces every pixel and returns the frame and the merged statistics
func (r *Renderer) Render(ctx context.Context) (*Frame, RenderStats, error) {
	start := time.Now()
	frame := NewFrame(r.config.Width, r.config.Height)
	tiles := NewTileGrid(r.config.Width, r.config.Height, r.config.TileSize)
	sel := r.scene.Selector()

	pool := NewWorkerPool(func() *TileRenderer {
		return NewTileRenderer(r.driver, r.scene.Volume, sel, r.camera, r.config.Width, r.config.Height, r.config.Lanes)
	}, len(tiles), r.config.NumWorkers)

	r.logger.Printf("Rendering %s: %dx%d, %d tiles, %d lanes, %d workers...\n",
		r.scene.Name, r.config.Width, r.config.Height, len(tiles), r.config.Lanes, pool.GetNumWorkers())

	pool.Start(ctx)
	for i, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, TaskID: i, Frame: frame})
	}

	var stats RenderStats
	var firstErr error
	for range tiles {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		if result.Error != nil && firstErr == nil {
			firstErr = fmt.Errorf("tile %d: %w", result.TaskID, result.Error)
		}
		stats.Merge(result.Stats)
	}
	pool.Stop()

	if firstErr != nil {
		return nil, stats, firstErr
	}
	r.logger.Printf("Render of %s completed in %v\n", r.scene.Name, time.Since(start))
	return frame, stats, nil
}
