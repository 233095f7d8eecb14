package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/wr-burden-mcp-server/internal/api"
	"github.com/wr-burden-mcp-server/internal/config"
	"github.com/wr-burden-mcp-server/internal/logging"
	"github.com/wr-burden-mcp-server/internal/presets"
	"github.com/wr-burden-mcp-server/internal/service"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := logging.New(cfg.Logging)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Preset catalog
	catalog, src, err := presets.Open(ctx, cfg.Presets, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open preset catalog")
	}
	refresher, err := presets.StartRefresher(catalog, src, cfg.Presets, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to start preset refresher")
	}
	if refresher != nil {
		defer refresher.Stop()
	}

	evaluator := service.NewEvaluationService(logger, cfg.Evaluation)
	server := api.NewServer(configManager, logger, api.Services{
		Evaluator: evaluator,
		Reports:   service.NewReportService(logger, evaluator, cfg.Evaluation.Locale),
		Presets:   catalog,
	})

	logger.WithFields(logrus.Fields{
		"host":        cfg.Server.Host,
		"port":        cfg.Server.Port,
		"environment": cfg.Environment,
		"presets":     catalog.Meta().Count,
	}).Info("Starting work-relatedness evaluation server")

	// Start server
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}

	logger.Info("Server stopped")
}
