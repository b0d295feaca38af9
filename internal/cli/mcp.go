package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/unveil/pkg/adapters/mcp"
)

// MCPOptions configures the mcp command.
type MCPOptions struct {
	GlobalOptions
	StoreOptions
	Transport string
	Addr      string
	BaseURL   string
}

// ServeMCP exposes the view tools to agents over stdio or SSE.
func ServeMCP(ctx context.Context, opts MCPOptions) error {
	logger, err := createLogger(opts.LogLevel, false)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	engine, err := createEngine(cfg, logger, opts.Debug)
	if err != nil {
		return err
	}
	sessions, closeStore, err := openSessions(ctx, opts.StoreOptions, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := mcp.NewServer(engine, sessions, mcp.WithLogger(logger))

	switch opts.Transport {
	case "", "stdio":
		// Logs go to stderr; stdout carries JSON-RPC.
		logger.Info("Starting Unveil MCP Server (Stdio)")
		return srv.ServeStdio()
	case "sse":
		return handleExecutionError(srv.ServeSSE(ctx, opts.Addr, opts.BaseURL))
	}
	return fmt.Errorf("unknown transport %q (supported: stdio, sse)", opts.Transport)
}
