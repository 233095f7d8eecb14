package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wr-burden-mcp-server/internal/config"
	"github.com/wr-burden-mcp-server/internal/logging"
	"github.com/wr-burden-mcp-server/internal/mcp"
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

	// stdout carries the MCP protocol
	logCfg := cfg.Logging
	logCfg.Output = "stderr"
	logger := logging.New(logCfg)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down MCP server...")
		cancel()
	}()

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

	// Create MCP server
	mcpServer, err := mcp.NewServer(mcp.ServerInfo{
		Name:    cfg.MCP.ServerName,
		Version: cfg.MCP.ServerVersion,
	}, mcp.Services{
		Evaluator: evaluator,
		Reports:   service.NewReportService(logger, evaluator, cfg.Evaluation.Locale),
		Presets:   catalog,
	}, cfg.Evaluation.Locale, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create MCP server")
	}

	// Start MCP server
	if err := mcpServer.Run(ctx); err != nil {
		logger.WithError(err).Fatal("MCP server failed")
	}
}
