package tools

import (
	"github.com/memgraph-query/mcp/internal/analytics"
	"github.com/memgraph-query/mcp/internal/database"
	"github.com/memgraph-query/mcp/internal/logger"
)

// ToolDependencies contains all dependencies needed by tools
type ToolDependencies struct {
	DBService        database.Service
	AnalyticsService analytics.Service
	Log              *logger.Service
}
