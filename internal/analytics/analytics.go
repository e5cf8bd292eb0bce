// Package analytics sends optional, anonymous usage events to a track
// endpoint. Query text, URIs and credentials are never part of an event.
package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/memgraph-query/mcp/internal/logger"
)

const sendTimeout = 5 * time.Second

type Analytics struct {
	token       string
	endpoint    string
	distinctID  string
	version     string
	startupTime int64
	client      HTTPClient
	log         *logger.Service
	enabled     atomic.Bool
}

// NewAnalytics returns an enabled service posting to endpoint/track.
func NewAnalytics(token, endpoint, version string, log *logger.Service) (*Analytics, error) {
	return NewAnalyticsWithClient(token, endpoint, version, &http.Client{Timeout: sendTimeout}, log)
}

// NewAnalyticsWithClient is NewAnalytics with a custom HTTP client.
func NewAnalyticsWithClient(token, endpoint, version string, client HTTPClient, log *logger.Service) (*Analytics, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("analytics endpoint is required")
	}
	distinctID, err := uuid.NewV6()
	if err != nil {
		return nil, fmt.Errorf("error while generating distinct id for analytics purpose: %w", err)
	}

	a := &Analytics{
		token:       token,
		endpoint:    strings.TrimRight(endpoint, "/"),
		distinctID:  distinctID.String(),
		version:     version,
		startupTime: time.Now().Unix(),
		client:      client,
		log:         log,
	}
	a.enabled.Store(true)
	return a, nil
}

func (a *Analytics) Enable()         { a.enabled.Store(true) }
func (a *Analytics) Disable()        { a.enabled.Store(false) }
func (a *Analytics) IsEnabled() bool { return a.enabled.Load() }

// EmitEvent posts the event synchronously. Errors are logged and dropped.
func (a *Analytics) EmitEvent(event TrackEvent) {
	if !a.IsEnabled() {
		return
	}

	a.logDebug("sending analytics event", "event", event.Event)
	if err := a.sendTrackEvent([]TrackEvent{event}); err != nil {
		a.logDebug("analytics event not sent", "event", event.Event, "error", err)
	}
}

func (a *Analytics) sendTrackEvent(events []TrackEvent) error {
	b, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("error while marshalling track event: %w", err)
	}

	resp, err := a.client.Post(a.endpoint+"/track", "application/json; charset=utf-8", bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("error while emitting analytics: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("analytics endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}

func (a *Analytics) logDebug(msg string, args ...any) {
	if a.log != nil {
		a.log.Debug(msg, args...)
	}
}

// disabledService is used when telemetry is off. Every call is a no-op.
type disabledService struct{}

// NewDisabled returns a Service that never sends anything.
func NewDisabled() Service { return disabledService{} }

func (disabledService) Enable()                                {}
func (disabledService) Disable()                               {}
func (disabledService) IsEnabled() bool                        { return false }
func (disabledService) EmitEvent(TrackEvent)                   {}
func (disabledService) NewStartupEvent(string) TrackEvent      { return TrackEvent{} }
func (disabledService) NewToolsEvent(string) TrackEvent        { return TrackEvent{} }
func (disabledService) NewQueryOutcomeEvent(string) TrackEvent { return TrackEvent{} }
