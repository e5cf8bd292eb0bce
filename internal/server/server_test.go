package server_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	amocks "github.com/memgraph-query/mcp/internal/analytics/mocks"
	"github.com/memgraph-query/mcp/internal/config"
	"github.com/memgraph-query/mcp/internal/database"
	db "github.com/memgraph-query/mcp/internal/database/mocks"
	"github.com/memgraph-query/mcp/internal/envelope"
	"github.com/memgraph-query/mcp/internal/logger"
	"github.com/memgraph-query/mcp/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestServer(t *testing.T, cfg *config.Config) (*server.QueryMCPServer, *db.MockService, *logger.Service) {
	t.Helper()
	ctrl := gomock.NewController(t)

	mockDB := db.NewMockService(ctrl)
	analyticsService := amocks.NewMockService(ctrl)
	analyticsService.EXPECT().IsEnabled().Return(true).AnyTimes()
	analyticsService.EXPECT().NewStartupEvent(gomock.Any()).AnyTimes()
	analyticsService.EXPECT().NewToolsEvent(gomock.Any()).AnyTimes()
	analyticsService.EXPECT().NewQueryOutcomeEvent(gomock.Any()).AnyTimes()
	analyticsService.EXPECT().EmitEvent(gomock.Any()).AnyTimes()

	log := logger.New("info", "text", io.Discard)
	return server.NewQueryMCPServer("test-version", cfg, mockDB, analyticsService, log), mockDB, log
}

func TestQueryMCPServer_RegisterTools(t *testing.T) {
	s, _, _ := newTestServer(t, &config.Config{TransportMode: config.TransportModeStdio})

	require.NoError(t, s.RegisterTools())
	require.NoError(t, s.RegisterTools())

	registered := s.MCPServer.ListTools()
	require.Len(t, registered, 1)
	for name, tool := range registered {
		assert.Equal(t, "generic_cypher_query", name)
		assert.Equal(t, "generic_cypher_query", tool.Tool.Name)
	}
}

func TestQueryMCPServer_InProcess(t *testing.T) {
	s, mockDB, log := newTestServer(t, &config.Config{TransportMode: config.TransportModeStdio})
	require.NoError(t, s.RegisterTools())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := client.NewInProcessClient(s.MCPServer)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Start(ctx))

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{Name: "test-client", Version: "1.0.0"}
	initResult, err := c.Initialize(ctx, initRequest)
	require.NoError(t, err)
	assert.Equal(t, "memgraph-query-mcp", initResult.ServerInfo.Name)
	assert.Equal(t, "test-version", initResult.ServerInfo.Version)

	t.Run("lists the single tool", func(t *testing.T) {
		list, err := c.ListTools(ctx, mcp.ListToolsRequest{})
		require.NoError(t, err)
		require.Len(t, list.Tools, 1)
		assert.Equal(t, "generic_cypher_query", list.Tools[0].Name)
	})

	t.Run("setLevel changes the logger level", func(t *testing.T) {
		request := mcp.SetLevelRequest{}
		request.Params.Level = mcp.LoggingLevelDebug
		require.NoError(t, c.SetLevel(ctx, request))
		assert.Equal(t, slog.LevelDebug, log.Level())
	})

	t.Run("panicking service still yields an error envelope", func(t *testing.T) {
		mockDB.EXPECT().ExecuteQuery(gomock.Any(), gomock.Any(), "RETURN 1").
			DoAndReturn(func(context.Context, database.ConnectionParams, string) ([]envelope.Row, error) {
				panic("driver exploded")
			})

		request := mcp.CallToolRequest{}
		request.Params.Name = "generic_cypher_query"
		request.Params.Arguments = map[string]any{"uri": "bolt://localhost:7687", "query": "RETURN 1"}

		result, err := c.CallTool(ctx, request)
		require.NoError(t, err)
		require.Len(t, result.Content, 1)
		text, ok := mcp.AsTextContent(result.Content[0])
		require.True(t, ok)
		assert.Contains(t, text.Text, `"status":"error"`)
		assert.Contains(t, text.Text, "driver exploded")
	})
}

func TestQueryMCPServer_StopWithoutStart(t *testing.T) {
	s, _, _ := newTestServer(t, &config.Config{TransportMode: config.TransportModeHTTP})

	assert.Nil(t, s.Addr())
	assert.NoError(t, s.Stop(context.Background()))
}

func TestQueryMCPServer_UnsupportedTransport(t *testing.T) {
	s, _, _ := newTestServer(t, &config.Config{TransportMode: "carrier-pigeon"})

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transport mode")
}
