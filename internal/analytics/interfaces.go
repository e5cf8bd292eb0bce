package analytics

import (
	"io"
	"net/http"
)

//go:generate mockgen -destination=mocks/mock_analytics.go -package=analytics_mocks github.com/memgraph-query/mcp/internal/analytics Service,HTTPClient

// Service emits usage events. Implementations must never surface send
// failures to callers.
type Service interface {
	Disable()
	Enable()
	IsEnabled() bool
	EmitEvent(event TrackEvent)
	NewStartupEvent(transport string) TrackEvent
	NewToolsEvent(toolName string) TrackEvent
	NewQueryOutcomeEvent(status string) TrackEvent
}

// HTTPClient is the subset of *http.Client used to post events.
type HTTPClient interface {
	Post(url, contentType string, body io.Reader) (*http.Response, error)
}
