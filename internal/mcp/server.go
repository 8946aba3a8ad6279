// ABOUTME: MCP server implementation for feedreader
// ABOUTME: Exposes the reader's feeds, menu, loaded page, and behavioral checks to AI agents

package mcp

import (
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/harper/feedreader/internal/reader"
)

// Server wraps the MCP server with reader-specific context
type Server struct {
	mcpServer    *server.MCPServer
	reader       *reader.Reader
	checkTimeout time.Duration
	log          *slog.Logger
}

// NewServer creates a new MCP server instance over r. checkTimeout bounds
// each spec run by the run_checks tool; zero disables the bound.
func NewServer(r *reader.Reader, checkTimeout time.Duration, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		reader:       r,
		checkTimeout: checkTimeout,
		log:          log,
	}

	s.mcpServer = server.NewMCPServer(
		"feedreader",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerTools()
	s.registerResources()

	return s
}

// ServeStdio starts the MCP server on stdio
func (s *Server) ServeStdio() error {
	s.log.Info("mcp server starting", slog.String("component", "mcp"), slog.String("transport", "stdio"))
	return server.ServeStdio(s.mcpServer)
}
