package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alkime/intervals/internal/config"
	"github.com/alkime/intervals/internal/discovery"
	"github.com/alkime/intervals/internal/logger"
	"github.com/alkime/intervals/internal/plan"
	"github.com/alkime/intervals/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	appLog := logger.SetupLogger(cfg, os.Stdout, logger.FormatJSON)

	// Log startup information
	appLog.Info("Starting intervals server",
		"env", cfg.Env,
		"port", cfg.Port,
		"frame_rate", cfg.FrameRate,
	)

	presets, err := plan.LoadPresets(cfg.PresetsFile)
	if err != nil {
		log.Fatalf("Failed to load presets: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Containers have no speakers; cues reach browsers over the event stream
	srv := server.New(cfg, appLog, server.WithPresets(presets))

	if cfg.MDNSEnabled {
		advertiser := discovery.NewAdvertiser()
		defer advertiser.Stop()

		if port, err := discovery.ParsePort(cfg.Port); err != nil {
			appLog.Warn("mdns advertisement skipped", "error", err)
		} else if err := advertiser.Advertise(discovery.Config{Instance: cfg.MDNSInstance, Port: port}); err != nil {
			appLog.Warn("mdns advertisement failed", "error", err)
		}
	}

	if err := server.Run(ctx, srv); err != nil {
		appLog.Error("Failed to start server", "error", err)
		stop()
		log.Fatalf("Fatal: %v", err) //nolint:gocritic // stop already called
	}
}
