package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/df07/go-volume-iterators/pkg/config"
	"github.com/df07/go-volume-iterators/pkg/driver"
	"github.com/df07/go-volume-iterators/pkg/logging"
	"github.com/df07/go-volume-iterators/pkg/renderer"
	"github.com/df07/go-volume-iterators/pkg/scene"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to YAML or TOML config file")
	sceneType := flag.String("scene", "zramp", "Scene type: 'zramp', 'wavelet' or 'sphere'")
	driverName := flag.String("driver", "", "Traversal driver (overrides config): 'go' or 'scalar'")
	lanes := flag.Int("lanes", -1, "Rays per batch: 1, 4, 8 or 16, 0 for the driver native width (overrides config)")
	resolution := flag.Int("resolution", 0, "Voxels per axis (0 = scene default)")
	outputDir := flag.String("output", "output", "Directory for rendered images")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("Volume Iterators")
		fmt.Println("Usage: volume-iterators [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Available scenes:")
		for _, info := range scene.List() {
			fmt.Printf("  %-8s - %s (%d^3)\n", info.ID, info.Description, info.Resolution)
		}
		fmt.Println()
		fmt.Println("Available drivers:")
		for _, name := range driver.Names() {
			fmt.Printf("  %s\n", name)
		}
		fmt.Println()
		fmt.Println("Output will be saved to <output>/<scene_type>/render_<timestamp>.png")
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *driverName != "" {
		cfg.Driver.Name = *driverName
	}
	if *lanes >= 0 {
		cfg.Render.Lanes = *lanes
	}

	logger, closer, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		fmt.Printf("Error configuring logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	drv, err := driver.New(cfg.Driver.Name, cfg.DriverOptions(logging.NewPrintfLogger(logger)))
	if err != nil {
		fmt.Printf("Error creating driver: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("Starting volume traversal render...")

	startTime := time.Now()
	selectedScene, err := createScene(ctx, cfg, *sceneType, *resolution)
	if err != nil {
		fmt.Printf("Error creating scene: %v\n", err)
		os.Exit(1)
	}
	grid := selectedScene.Volume.Accelerator()
	fmt.Printf("Built %s volume %v in %v (%s macrocells, %s)\n",
		selectedScene.Name, selectedScene.Volume.Dimensions(), time.Since(startTime),
		humanize.Comma(int64(grid.NumCells())), humanize.Bytes(grid.SizeBytes()))

	rend, err := renderer.NewRenderer(selectedScene, drv, cfg.RendererConfig(), logging.NewPrintfLogger(logger))
	if err != nil {
		fmt.Printf("Error creating renderer: %v\n", err)
		os.Exit(1)
	}

	startTime = time.Now()
	frame, stats, err := rend.Render(ctx)
	if err != nil {
		fmt.Printf("Error rendering: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Render completed in %v\n", time.Since(startTime))
	fmt.Printf("Stats: %v\n", stats)
	fmt.Printf("Lane occupancy: %.1f%% of %d lanes\n", 100*stats.LaneOccupancy(rend.Lanes()), rend.Lanes())

	filename, err := savePNG(filepath.Join(*outputDir, selectedScene.Name), frame.Image(), time.Now())
	if err != nil {
		fmt.Printf("Error saving PNG: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Render saved as %s\n", filename)
}

// createScene builds the named scene with the volume settings from cfg
func createScene(ctx context.Context, cfg config.Config, sceneType string, resolution int) (*scene.Scene, error) {
	opts, err := cfg.SceneOptions()
	if err != nil {
		return nil, err
	}
	opts.Resolution = resolution
	return scene.New(ctx, sceneType, opts)
}

// savePNG writes img to dir/render_<timestamp>.png, creating dir as needed
func savePNG(dir string, img image.Image, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("render_%s.png", now.Format("20060102_150405")))
	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", err
	}
	return filename, nil
}
