package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/memgraph-query/mcp/internal/analytics"
	"github.com/memgraph-query/mcp/internal/cli"
	"github.com/memgraph-query/mcp/internal/config"
	"github.com/memgraph-query/mcp/internal/database"
	"github.com/memgraph-query/mcp/internal/logger"
	"github.com/memgraph-query/mcp/internal/server"
)

// go build -ldflags "-X 'main.Version=1.0.0'"
var Version = "development"

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, Version, os.Args[1:], run)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, overrides *config.CLIOverrides) error {
	cfg, err := config.LoadConfig(overrides)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// stdout belongs to the stdio transport, logs always go to stderr
	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	mcpServer := server.NewQueryMCPServer(Version, cfg, database.NewNeo4jService(Version, log), newAnalytics(cfg, log), log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- mcpServer.Start(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server error", "error", err)
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mcpServer.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping server", "error", err)
			return err
		}
		return <-errCh
	}
}

func newAnalytics(cfg *config.Config, log *logger.Service) analytics.Service {
	if !cfg.Telemetry {
		return analytics.NewDisabled()
	}
	if cfg.TelemetryEndpoint == "" {
		log.Warn("Telemetry is enabled but MEMGRAPH_MCP_TELEMETRY_ENDPOINT is not set; telemetry stays off")
		return analytics.NewDisabled()
	}

	service, err := analytics.NewAnalytics(cfg.TelemetryToken, cfg.TelemetryEndpoint, Version, log)
	if err != nil {
		log.Warn("Telemetry could not be initialized", "error", err)
		return analytics.NewDisabled()
	}
	log.Info("Telemetry is enabled", "endpoint", cfg.TelemetryEndpoint)
	return service
}
