package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// onAfterSetLevelHook applies a logging/setLevel request to the server logger.
func (s *QueryMCPServer) onAfterSetLevelHook(ctx context.Context, _ any, message *mcp.SetLevelRequest, _ *mcp.EmptyResult) {
	newLevel := string(message.Params.Level)
	s.log.SetLevel(newLevel)
	s.log.InfoContext(ctx, "Log level changed via MCP", "new_level", newLevel)
}

func (s *QueryMCPServer) onBeforeCallToolHook(ctx context.Context, _ any, message *mcp.CallToolRequest) {
	s.log.DebugContext(ctx, "tool call", "tool", message.Params.Name, "request_id", RequestIDFromContext(ctx))
	if s.anService.IsEnabled() {
		s.anService.EmitEvent(s.anService.NewToolsEvent(message.Params.Name))
	}
}
