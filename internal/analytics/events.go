package analytics

import (
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
)

const eventNamePrefix = "MGQUERY_MCP"

const (
	EventStartup      = eventNamePrefix + "_STARTUP"
	EventToolUsed     = eventNamePrefix + "_TOOL_USED"
	EventQueryOutcome = eventNamePrefix + "_QUERY_OUTCOME"
)

// baseProperties are attached to every track event. DistinctID tells process
// runs apart; InsertID lets the endpoint deduplicate retries.
type baseProperties struct {
	Token      string `json:"token"`
	Time       int64  `json:"time"`
	DistinctID string `json:"distinct_id"`
	InsertID   string `json:"$insert_id"`
	Uptime     int64  `json:"uptime"`
}

type startupProperties struct {
	baseProperties
	Version   string `json:"version"`
	OS        string `json:"os"`
	OSArch    string `json:"os_arch"`
	Transport string `json:"transport"`
}

type toolsProperties struct {
	baseProperties
	ToolUsed string `json:"tools_used"`
}

type queryOutcomeProperties struct {
	baseProperties
	Status string `json:"status"`
}

type TrackEvent struct {
	Event      string `json:"event"`
	Properties any    `json:"properties"`
}

func (a *Analytics) NewStartupEvent(transport string) TrackEvent {
	return TrackEvent{
		Event: EventStartup,
		Properties: startupProperties{
			baseProperties: a.baseProperties(),
			Version:        a.version,
			OS:             runtime.GOOS,
			OSArch:         runtime.GOARCH,
			Transport:      strings.ToLower(transport),
		},
	}
}

func (a *Analytics) NewToolsEvent(toolName string) TrackEvent {
	return TrackEvent{
		Event: EventToolUsed,
		Properties: toolsProperties{
			baseProperties: a.baseProperties(),
			ToolUsed:       toolName,
		},
	}
}

// NewQueryOutcomeEvent records only whether a query succeeded.
func (a *Analytics) NewQueryOutcomeEvent(status string) TrackEvent {
	return TrackEvent{
		Event: EventQueryOutcome,
		Properties: queryOutcomeProperties{
			baseProperties: a.baseProperties(),
			Status:         status,
		},
	}
}

func (a *Analytics) baseProperties() baseProperties {
	return baseProperties{
		Token:      a.token,
		Time:       time.Now().UnixMilli(),
		DistinctID: a.distinctID,
		InsertID:   a.newInsertID(),
		Uptime:     time.Now().Unix() - a.startupTime,
	}
}

func (a *Analytics) newInsertID() string {
	insertID, err := uuid.NewV6()
	if err != nil {
		a.logDebug("error while generating analytics insert id", "error", err)
		return ""
	}
	return insertID.String()
}
