package analytics_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/memgraph-query/mcp/internal/analytics"
	amocks "github.com/memgraph-query/mcp/internal/analytics/mocks"
	"github.com/memgraph-query/mcp/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func okResponse() *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Body:       io.NopCloser(strings.NewReader("1")),
	}
}

func newService(t *testing.T, client analytics.HTTPClient) *analytics.Analytics {
	t.Helper()
	svc, err := analytics.NewAnalyticsWithClient("test_token", "http://localhost/", "1.0.0", client, logger.New("debug", "text", io.Discard))
	require.NoError(t, err)
	return svc
}

// decodeEvents reads the posted body as a list of generic events.
func decodeEvents(t *testing.T, body io.Reader) []map[string]any {
	t.Helper()
	var events []map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&events))
	return events
}

func TestAnalytics_EmitEvent(t *testing.T) {
	t.Run("posts the event to the track endpoint", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := amocks.NewMockHTTPClient(ctrl)
		svc := newService(t, client)

		client.EXPECT().Post("http://localhost/track", "application/json; charset=utf-8", gomock.Any()).
			DoAndReturn(func(_, _ string, body io.Reader) (*http.Response, error) {
				events := decodeEvents(t, body)
				require.Len(t, events, 1)
				assert.Equal(t, analytics.EventToolUsed, events[0]["event"])

				props := events[0]["properties"].(map[string]any)
				assert.Equal(t, "generic_cypher_query", props["tools_used"])
				assert.Equal(t, "test_token", props["token"])
				assert.NotEmpty(t, props["distinct_id"])
				assert.NotEmpty(t, props["$insert_id"])
				return okResponse(), nil
			})

		svc.EmitEvent(svc.NewToolsEvent("generic_cypher_query"))
	})

	t.Run("disabled service sends nothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := amocks.NewMockHTTPClient(ctrl)
		svc := newService(t, client)

		svc.Disable()
		assert.False(t, svc.IsEnabled())
		svc.EmitEvent(svc.NewStartupEvent("http"))

		svc.Enable()
		assert.True(t, svc.IsEnabled())
	})

	t.Run("send failures are swallowed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := amocks.NewMockHTTPClient(ctrl)
		svc := newService(t, client)

		client.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))
		client.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any()).Return(&http.Response{
			StatusCode: http.StatusBadRequest,
			Status:     "400 Bad Request",
			Body:       io.NopCloser(strings.NewReader("0")),
		}, nil)

		assert.NotPanics(t, func() {
			svc.EmitEvent(svc.NewQueryOutcomeEvent("error"))
			svc.EmitEvent(svc.NewQueryOutcomeEvent("error"))
		})
	})
}

func TestAnalytics_Events(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := newService(t, amocks.NewMockHTTPClient(ctrl))

	startup := svc.NewStartupEvent("HTTP")
	assert.Equal(t, "MGQUERY_MCP_STARTUP", startup.Event)
	raw, err := json.Marshal(startup.Properties)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"transport":"http"`)
	assert.Contains(t, string(raw), `"version":"1.0.0"`)

	outcome := svc.NewQueryOutcomeEvent("success")
	assert.Equal(t, "MGQUERY_MCP_QUERY_OUTCOME", outcome.Event)
	raw, err = json.Marshal(outcome.Properties)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"status":"success"`)

	first := svc.NewToolsEvent("a")
	second := svc.NewToolsEvent("a")
	firstRaw, _ := json.Marshal(first.Properties)
	secondRaw, _ := json.Marshal(second.Properties)
	assert.NotEqual(t, string(firstRaw), string(secondRaw), "insert ids must differ")
}

func TestNewAnalytics_RequiresEndpoint(t *testing.T) {
	_, err := analytics.NewAnalytics("token", "", "1.0.0", nil)
	require.Error(t, err)
}

func TestNewDisabled(t *testing.T) {
	svc := analytics.NewDisabled()
	svc.Enable()
	assert.False(t, svc.IsEnabled())
	assert.NotPanics(t, func() { svc.EmitEvent(svc.NewToolsEvent("x")) })
}
