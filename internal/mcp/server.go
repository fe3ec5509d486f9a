// Package mcp exposes the token classifier and the signature extractor as
// Model Context Protocol tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/project-lexis/internal/analyzer"
)

// ServerName is reported to MCP clients.
const ServerName = "lexis-mcp"

// Server manages the MCP server lifecycle.
type Server struct {
	analyzer *analyzer.Analyzer
	mcp      *server.MCPServer
}

// NewServer creates an MCP server with the lexis_classify and lexis_methods
// tools registered. The analyzer supplies the project root, grammars and
// numeric mode.
func NewServer(a *analyzer.Analyzer, version string) (*Server, error) {
	if a == nil {
		return nil, fmt.Errorf("analyzer is required")
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)

	AddClassifyTool(mcpServer, a)
	AddMethodsTool(mcpServer, a)

	return &Server{
		analyzer: a,
		mcp:      mcpServer,
	}, nil
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
