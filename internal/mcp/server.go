// Package mcp exposes the drift analyses as Model Context Protocol tools
// over the stdio transport.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"driftwatch/internal/config"
)

// Server wraps the MCP server with the application configuration.
type Server struct {
	cfg *config.AppConfig
	mcp *mcp.Server
}

// NewServer creates the MCP server and registers all tools.
func NewServer(cfg *config.AppConfig) *Server {
	impl := &mcp.Implementation{
		Name:    "driftwatch",
		Title:   "Schedule drift and status residency analysis",
		Version: "0.1.0",
	}
	srv := mcp.NewServer(impl, nil)

	s := &Server{cfg: cfg, mcp: srv}
	s.registerTools()
	return s
}

// Run serves MCP over stdio until the context is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	log.Info().Msg("MCP server listening on stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}
