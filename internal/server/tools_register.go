package server

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/memgraph-query/mcp/internal/tools"
	"github.com/memgraph-query/mcp/internal/tools/cypher"
)

// RegisterTools adds every tool of the registry to the MCP server. The set is
// fixed: calling it again does nothing.
func (s *QueryMCPServer) RegisterTools() error {
	s.registerOnce.Do(func() {
		deps := &tools.ToolDependencies{
			DBService:        s.dbService,
			AnalyticsService: s.anService,
			Log:              s.log,
		}
		s.MCPServer.AddTools(toolRegistry(deps)...)
	})
	return nil
}

// toolRegistry is the static table of exposed tools.
func toolRegistry(deps *tools.ToolDependencies) []server.ServerTool {
	return []server.ServerTool{
		{
			Tool:    cypher.GenericCypherSpec(),
			Handler: cypher.GenericCypherHandler(deps),
		},
	}
}
