package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/df07/go-volume-iterators/pkg/config"
	"github.com/df07/go-volume-iterators/pkg/driver"
	"github.com/df07/go-volume-iterators/pkg/logging"
	"github.com/df07/go-volume-iterators/web/server"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to YAML or TOML config file")
	port := flag.Int("port", 0, "Port to serve on (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logger, closer, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		slog.Error("configuring logging", "error", err)
		os.Exit(1)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	sceneOpts, err := cfg.SceneOptions()
	if err != nil {
		logger.Error("invalid volume config", "error", err)
		os.Exit(1)
	}

	drv, err := driver.New(cfg.Driver.Name, cfg.DriverOptions(logging.NewPrintfLogger(logger)))
	if err != nil {
		logger.Error("creating driver", "error", err)
		os.Exit(1)
	}

	webServer := server.NewServer(server.Options{
		Port:   cfg.Server.Port,
		Driver: drv,
		Scene:  sceneOpts,
		Render: cfg.RendererConfig(),
		Logger: logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("volume inspection server", "port", cfg.Server.Port, "driver", drv.Name())
	if err := webServer.Start(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
