package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/memgraph-query/mcp/internal/analytics"
	"github.com/memgraph-query/mcp/internal/config"
	"github.com/memgraph-query/mcp/internal/database"
	"github.com/memgraph-query/mcp/internal/logger"
)

const (
	serverName            = "memgraph-query-mcp"
	httpReadHeaderTimeout = 10 * time.Second
)

// QueryMCPServer represents the MCP server instance
type QueryMCPServer struct {
	MCPServer *server.MCPServer
	config    *config.Config
	dbService database.Service
	anService analytics.Service
	log       *logger.Service
	version   string

	registerOnce sync.Once

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	stopped    bool
	// HTTPServerReady is closed once the HTTP listener is bound.
	HTTPServerReady chan struct{}
}

// NewQueryMCPServer creates a new MCP server instance.
// The config parameter is expected to be already validated.
func NewQueryMCPServer(version string, cfg *config.Config, dbService database.Service, anService analytics.Service, log *logger.Service) *QueryMCPServer {
	if anService == nil {
		anService = analytics.NewDisabled()
	}

	s := &QueryMCPServer{
		config:          cfg,
		dbService:       dbService,
		anService:       anService,
		log:             log,
		version:         version,
		HTTPServerReady: make(chan struct{}),
	}

	hooks := &server.Hooks{}
	hooks.AddAfterSetLevel(s.onAfterSetLevelHook)
	hooks.AddBeforeCallTool(s.onBeforeCallToolHook)

	s.MCPServer = server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
		server.WithRecovery(),
		server.WithHooks(hooks),
		server.WithInstructions("This server runs Cypher queries against a Memgraph or Neo4j database with the generic_cypher_query tool. "+
			"Connection details (bolt URI, username, password) are passed with every call; results come back as a JSON success/error envelope."),
	)

	return s
}

// Start registers the tools and serves the configured transport. It blocks
// until the transport stops; ctx only ends the stdio transport, the HTTP
// transport is ended by Stop.
func (s *QueryMCPServer) Start(ctx context.Context) error {
	s.log.Info("Starting Memgraph Query MCP Server", "transport", s.config.TransportMode, "version", s.version)

	if err := s.RegisterTools(); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	if s.anService.IsEnabled() {
		s.anService.EmitEvent(s.anService.NewStartupEvent(string(s.config.TransportMode)))
	}

	switch s.config.TransportMode {
	case config.TransportModeHTTP:
		return s.startHTTP()
	case config.TransportModeStdio:
		return s.startStdio(ctx)
	default:
		return fmt.Errorf("unsupported transport mode: %s", s.config.TransportMode)
	}
}

func (s *QueryMCPServer) startStdio(ctx context.Context) error {
	stdio := server.NewStdioServer(s.MCPServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.log.Handler(), slog.LevelError))

	s.log.Info("Started Memgraph Query MCP Server. Now listening for input...")
	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (s *QueryMCPServer) startHTTP() error {
	streamable := server.NewStreamableHTTPServer(
		s.MCPServer,
		server.WithEndpointPath(s.config.HTTPPath),
		server.WithStateLess(true),
	)

	listener, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address(), err)
	}

	httpServer := &http.Server{
		Handler:           chainMiddleware(s.config, s.log, streamable),
		ReadHeaderTimeout: httpReadHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		s.log.Info("Server was stopped before the HTTP listener started")
		return listener.Close()
	}
	s.httpServer = httpServer
	s.listener = listener
	s.mu.Unlock()
	close(s.HTTPServerReady)

	scheme := "http"
	if s.config.HTTPTLSEnabled {
		scheme = "https"
	}
	s.log.Info("Started Memgraph Query MCP HTTP Server",
		"url", fmt.Sprintf("%s://%s%s", scheme, listener.Addr(), s.config.HTTPPath),
		"allowed_origins", len(s.config.AllowedOrigins()),
		"rate_limit", s.config.RateLimit,
	)

	if s.config.HTTPTLSEnabled {
		httpServer.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		err = httpServer.ServeTLS(listener, s.config.HTTPTLSCertFile, s.config.HTTPTLSKeyFile)
	} else {
		err = httpServer.Serve(listener)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Addr returns the bound HTTP address, or nil before the listener exists.
func (s *QueryMCPServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop gracefully shuts the HTTP server down. Called before the listener is
// up, it makes a pending Start return without serving. It is a no-op for
// stdio.
func (s *QueryMCPServer) Stop(ctx context.Context) error {
	s.log.Info("Stopping Memgraph Query MCP Server...")

	s.mu.Lock()
	s.stopped = true
	httpServer := s.httpServer
	s.mu.Unlock()

	if httpServer == nil {
		return nil
	}
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}
