package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/soltixdb/roly/internal/catalog"
	"github.com/soltixdb/roly/internal/config"
	"github.com/soltixdb/roly/internal/deliver"
	"github.com/soltixdb/roly/internal/events"
	"github.com/soltixdb/roly/internal/logging"
	"github.com/soltixdb/roly/internal/router"
	"github.com/soltixdb/roly/internal/services"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Catalog service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Fatal("Failed to create metadata directory", "error", err)
	}

	sources, err := cfg.SourceRouter()
	if err != nil {
		logger.Fatal("Failed to set up byte sources", "error", err)
	}
	logger.Info("Byte sources ready",
		"mmap", cfg.Delivery.UseMmap,
		"s3", cfg.Sources.S3.Enabled,
		"http", cfg.Sources.HTTP.Enabled)

	cat, err := catalog.New(cfg.Catalog.MetadataDir, sources, cfg.Catalog.CacheSize, logger)
	if err != nil {
		logger.Fatal("Failed to open catalog", "error", err)
	}
	logger.Info("Catalog opened", "root", cat.Root(), "cache_size", cfg.Catalog.CacheSize)

	engine := deliver.NewEngine(sources, nil, logger, deliver.Options{
		Concurrency:     cfg.Delivery.Concurrency,
		VerifyChecksums: cfg.Delivery.VerifyChecksums,
	})
	datasetService := services.NewDatasetService(logger, cat, engine, cfg.Delivery.MaxEntries)

	bus, err := events.New(cfg.Events, logger)
	if err != nil {
		logger.Fatal("Failed to connect to event bus", "type", cfg.Events.Type, "error", err)
	}
	defer func() { _ = bus.Close() }()
	if err := datasetService.AttachEvents(bus); err != nil {
		logger.Fatal("Failed to subscribe to catalog events", "error", err)
	}
	logger.Info("Catalog events attached", "type", cfg.Events.Type, "subject", cfg.Events.Subject, "bus_id", bus.ID())

	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	app := router.New(logger, datasetService, *cfg, Version)

	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
