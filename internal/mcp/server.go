package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/wr-burden-mcp-server/internal/domain"
	"github.com/wr-burden-mcp-server/internal/locale"
	"github.com/wr-burden-mcp-server/internal/service"
)

// Services are the collaborators the MCP tools delegate to.
type Services struct {
	Evaluator domain.Evaluator
	Reports   *service.ReportService
	Presets   domain.PresetCatalog
}

// ServerInfo contains MCP server metadata
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Server exposes the burden evaluator as MCP tools over stdio.
type Server struct {
	info        ServerInfo
	mcpServer   *mcp.Server
	services    Services
	defaultLang string
	logger      *logrus.Logger
}

// NewServer creates a new MCP server instance with every tool and
// resource registered.
func NewServer(info ServerInfo, services Services, defaultLang string, logger *logrus.Logger) (*Server, error) {
	if services.Evaluator == nil || services.Reports == nil || services.Presets == nil {
		return nil, fmt.Errorf("mcp server requires evaluator, report and preset services")
	}
	if info.Name == "" {
		info.Name = "wr-burden-mcp-server"
	}
	if info.Version == "" {
		info.Version = "v0.1.0"
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    info.Name,
		Version: info.Version,
	}, nil)

	server := &Server{
		info:        info,
		mcpServer:   mcpServer,
		services:    services,
		defaultLang: locale.Normalize(defaultLang),
		logger:      logger,
	}

	server.registerTools()
	server.registerResources()

	return server, nil
}

// Info returns the server metadata.
func (s *Server) Info() ServerInfo {
	return s.info
}

// Run serves MCP requests on stdin/stdout until ctx is cancelled or the
// client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.RunTransport(ctx, &mcp.StdioTransport{})
}

// RunTransport serves MCP requests on t.
func (s *Server) RunTransport(ctx context.Context, t mcp.Transport) error {
	s.logger.WithFields(logrus.Fields{
		"name":    s.info.Name,
		"version": s.info.Version,
		"tools":   len(toolNames),
	}).Info("Starting MCP server")

	if err := s.mcpServer.Run(ctx, t); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	s.logger.Info("MCP server stopped")
	return nil
}

func (s *Server) lang(requested string) string {
	if requested == "" {
		return s.defaultLang
	}
	return locale.Normalize(requested)
}
