//go:build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/memgraph-query/mcp/internal/analytics"
	"github.com/memgraph-query/mcp/internal/config"
	"github.com/memgraph-query/mcp/internal/database"
	"github.com/memgraph-query/mcp/internal/logger"
	"github.com/memgraph-query/mcp/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, cfg *config.Config) *server.QueryMCPServer {
	t.Helper()
	log := logger.New("debug", "text", io.Discard)
	return server.NewQueryMCPServer("integration", cfg, database.NewNeo4jService("integration", log), analytics.NewDisabled(), log)
}

func initialize(t *testing.T, ctx context.Context, c *client.Client) {
	t.Helper()
	request := mcp.InitializeRequest{}
	request.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	request.Params.ClientInfo = mcp.Implementation{Name: "integration-client", Version: "1.0.0"}
	_, err := c.Initialize(ctx, request)
	require.NoError(t, err)
}

func callQuery(t *testing.T, ctx context.Context, c *client.Client, args map[string]any) string {
	t.Helper()
	request := mcp.CallToolRequest{}
	request.Params.Name = "generic_cypher_query"
	request.Params.Arguments = args

	result, err := c.CallTool(ctx, request)
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestServer_InProcess(t *testing.T) {
	tc := newTestContext(t)
	s := newServer(t, &config.Config{TransportMode: config.TransportModeStdio})
	require.NoError(t, s.RegisterTools())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := client.NewInProcessClient(s.MCPServer)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Start(ctx))
	initialize(t, ctx, c)

	t.Run("scalar query", func(t *testing.T) {
		got := callQuery(t, ctx, c, map[string]any{"uri": tc.Params.URI, "query": "RETURN 1 AS x"})
		assert.Equal(t, `{"status":"success","data":[{"x":1}]}`, got)
	})

	t.Run("create then read", func(t *testing.T) {
		created := callQuery(t, ctx, c, map[string]any{
			"uri":   tc.Params.URI,
			"query": tc.Query("CREATE (n:%[1]s {name: 'Carol'}) RETURN n.name AS name"),
		})
		assert.Equal(t, `{"status":"success","data":[{"name":"Carol"}]}`, created)

		read := callQuery(t, ctx, c, map[string]any{
			"uri":   tc.Params.URI,
			"query": tc.Query("MATCH (n:%[1]s) RETURN n.name AS name"),
		})
		assert.Equal(t, created, read)
	})

	t.Run("syntax error is an error envelope", func(t *testing.T) {
		env := decode(t, callQuery(t, ctx, c, map[string]any{"uri": tc.Params.URI, "query": "RETURN"}))
		assert.Equal(t, "error", env.Status)
		assert.NotEmpty(t, env.Message)
	})

	t.Run("missing uri is reported without dialing", func(t *testing.T) {
		env := decode(t, callQuery(t, ctx, c, map[string]any{"uri": "", "query": "RETURN 1"}))
		assert.Equal(t, "error", env.Status)
		assert.Contains(t, env.Message, "uri parameter is required")
	})
}

func TestServer_HTTP(t *testing.T) {
	tc := newTestContext(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	s := newServer(t, &config.Config{
		TransportMode: config.TransportModeHTTP,
		HTTPHost:      "127.0.0.1",
		HTTPPort:      strconv.Itoa(port),
		HTTPPath:      "/mcp",
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Start(context.Background())
	}()
	select {
	case <-s.HTTPServerReady:
	case err := <-errChan:
		t.Fatalf("Start() failed: %v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for the HTTP server")
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, s.Stop(ctx))
		assert.NoError(t, <-errChan)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	httpTransport, err := transport.NewStreamableHTTP(fmt.Sprintf("http://127.0.0.1:%d/mcp", port), transport.WithHTTPTimeout(30*time.Second))
	require.NoError(t, err)
	c := client.NewClient(httpTransport)
	defer c.Close()
	require.NoError(t, c.Start(ctx))
	initialize(t, ctx, c)

	got := callQuery(t, ctx, c, map[string]any{"uri": tc.Params.URI, "query": "RETURN 'a<b' AS s"})
	assert.Equal(t, `{"status":"success","data":[{"s":"a<b"}]}`, got)
}
