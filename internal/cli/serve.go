package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpadapter "github.com/aretw0/unveil/pkg/adapters/http"
	"github.com/aretw0/unveil/pkg/adapters/mcp"
	"github.com/aretw0/unveil/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// ServeOptions configures the serve command.
type ServeOptions struct {
	GlobalOptions
	StoreOptions
	Addr          string
	SweepInterval time.Duration
	// MCPAddr, when set, also serves the MCP tools over SSE, sharing the view store.
	MCPAddr    string
	MCPBaseURL string
}

// Serve hosts views over HTTP until ctx is cancelled.
func Serve(ctx context.Context, opts ServeOptions) error {
	logger, err := createLogger(opts.LogLevel, true)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)

	engine, err := createEngine(cfg, logger, opts.Debug, metrics.Hooks())
	if err != nil {
		return err
	}

	sessions, closeStore, err := openSessions(ctx, opts.StoreOptions, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("failed to close store", "err", err)
		}
	}()

	srv, err := httpadapter.NewServer(engine, sessions,
		httpadapter.WithLogger(logger),
		httpadapter.WithMetrics(metrics, reg),
		httpadapter.WithSweepInterval(opts.SweepInterval),
	)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              opts.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Unveil server listening", "address", opts.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return srv.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		logger.Info("Unveil server stopped")
		return nil
	})

	if opts.MCPAddr != "" {
		mcpSrv := mcp.NewServer(engine, sessions, mcp.WithLogger(logger))
		g.Go(func() error {
			return mcpSrv.ServeSSE(ctx, opts.MCPAddr, opts.MCPBaseURL)
		})
	}

	return g.Wait()
}
