package cypher

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/memgraph-query/mcp/internal/auth"
	"github.com/memgraph-query/mcp/internal/database"
	"github.com/memgraph-query/mcp/internal/envelope"
	"github.com/memgraph-query/mcp/internal/tools"
)

func GenericCypherHandler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGenericCypher(ctx, request, deps), nil
	}
}

// handleGenericCypher always answers with the envelope as text, for failures
// too: callers parse the status field rather than the MCP error flag.
func handleGenericCypher(ctx context.Context, request mcp.CallToolRequest, deps *tools.ToolDependencies) *mcp.CallToolResult {
	env := runGenericCypher(ctx, request, deps)

	if deps != nil {
		if deps.Log != nil {
			if env.IsSuccess() {
				deps.Log.InfoContext(ctx, "cypher query succeeded", "tool", GenericCypherToolName, "rows", len(env.Rows()))
			} else {
				deps.Log.WarnContext(ctx, "cypher query failed", "tool", GenericCypherToolName, "error", env.Message())
			}
		}
		if deps.AnalyticsService != nil {
			deps.AnalyticsService.EmitEvent(deps.AnalyticsService.NewQueryOutcomeEvent(string(env.Status())))
		}
	}

	return mcp.NewToolResultText(env.ToJSON())
}

func runGenericCypher(ctx context.Context, request mcp.CallToolRequest, deps *tools.ToolDependencies) envelope.Envelope {
	if deps == nil || deps.DBService == nil {
		return envelope.Failure("database service is not initialized")
	}

	var args GenericCypherInput
	if err := request.BindArguments(&args); err != nil {
		return envelope.Failure("invalid arguments: " + err.Error())
	}
	if strings.TrimSpace(args.URI) == "" {
		return envelope.Failure("uri parameter is required and cannot be empty")
	}
	if args.Query == "" {
		return envelope.Failure("query parameter is required and cannot be empty")
	}

	username, password := auth.Resolve(ctx, args.Username, args.Password)
	params := database.ConnectionParams{
		URI:      args.URI,
		Username: username,
		Password: password,
		Database: args.Database,
	}

	if deps.Log != nil {
		deps.Log.DebugContext(ctx, "cypher query received", "target", params.String(), "query", args.Query)
	}

	return database.RunQuery(ctx, deps.DBService, params, args.Query)
}
