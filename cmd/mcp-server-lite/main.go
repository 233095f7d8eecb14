// Package main provides the lightweight entry point for the MCP server.
// It is configured from WRB_* environment variables only and needs no
// config file.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wr-burden-mcp-server/internal/config"
	"github.com/wr-burden-mcp-server/internal/domain"
	"github.com/wr-burden-mcp-server/internal/logging"
	"github.com/wr-burden-mcp-server/internal/mcp"
	"github.com/wr-burden-mcp-server/internal/presets"
	"github.com/wr-burden-mcp-server/internal/service"
	"github.com/wr-burden-mcp-server/internal/version"
)

func main() {
	// Load lightweight configuration
	cfg := config.LoadLiteConfig()
	logger := logging.NewWithWriter(cfg.LogLevel, cfg.LogFormat, os.Stderr)

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

	catalog, _, err := presets.Open(ctx, cfg.PresetsConfig(), logger)
	if err != nil {
		log.Fatalf("Failed to open preset catalog: %v", err)
	}

	evaluator := service.NewEvaluationService(logger, domain.EvaluationConfig{
		Locale:         cfg.Locale,
		MaxParallelism: cfg.MaxParallelism,
	})

	// Create lite MCP server
	server, err := mcp.NewServer(mcp.ServerInfo{
		Name:    "wr-burden-mcp-server-lite",
		Version: version.ServerVersion(),
	}, mcp.Services{
		Evaluator: evaluator,
		Reports:   service.NewReportService(logger, evaluator, cfg.Locale),
		Presets:   catalog,
	}, cfg.Locale, logger)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	// Start MCP server
	if err := server.Run(ctx); err != nil {
		log.Fatalf("MCP server failed: %v", err)
	}
}
