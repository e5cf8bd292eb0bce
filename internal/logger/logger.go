// Package logger wraps log/slog with a level that can be changed while the
// server is running, e.g. from an MCP logging/setLevel request.
package logger

import (
	"io"
	"log/slog"
	"slices"
	"strings"
)

// MCP log levels that have no slog counterpart.
const (
	LevelNotice    = slog.Level(2)
	LevelCritical  = slog.Level(10)
	LevelAlert     = slog.Level(12)
	LevelEmergency = slog.Level(16)
)

// ValidLogLevels lists the accepted level names (MCP logging levels plus "warn").
var ValidLogLevels = []string{"debug", "info", "notice", "warn", "warning", "error", "critical", "alert", "emergency"}

// ValidLogFormats lists the accepted handler formats.
var ValidLogFormats = []string{"text", "json"}

// Service is a *slog.Logger whose level is backed by a LevelVar.
type Service struct {
	*slog.Logger
	level *slog.LevelVar
}

// New builds a logging service writing to w in the given format ("text" or "json").
func New(level, format string, w io.Writer) *Service {
	levelVar := &slog.LevelVar{}
	levelVar.Set(parseLevel(level))

	opts := &slog.HandlerOptions{
		Level:       levelVar,
		ReplaceAttr: replaceAttr,
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Service{
		Logger: slog.New(handler),
		level:  levelVar,
	}
}

// SetLevel changes the minimum level. Unknown names fall back to info.
func (s *Service) SetLevel(level string) {
	s.level.Set(parseLevel(level))
}

// Level returns the current minimum level.
func (s *Service) Level() slog.Level {
	return s.level.Level()
}

// IsValidLevel reports whether level is one of ValidLogLevels (case-insensitive).
func IsValidLevel(level string) bool {
	return slices.Contains(ValidLogLevels, strings.ToLower(level))
}

// IsValidFormat reports whether format is one of ValidLogFormats (case-insensitive).
func IsValidFormat(format string) bool {
	return slices.Contains(ValidLogFormats, strings.ToLower(format))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "notice":
		return LevelNotice
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "critical":
		return LevelCritical
	case "alert":
		return LevelAlert
	case "emergency":
		return LevelEmergency
	default:
		return slog.LevelInfo
	}
}

var levelNames = map[slog.Level]string{
	slog.LevelDebug: "DEBUG",
	slog.LevelInfo:  "INFO",
	LevelNotice:     "NOTICE",
	slog.LevelWarn:  "WARN",
	slog.LevelError: "ERROR",
	LevelCritical:   "CRITICAL",
	LevelAlert:      "ALERT",
	LevelEmergency:  "EMERGENCY",
}

// replaceAttr prints the custom MCP levels by name instead of e.g. "ERROR+2".
func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	if name, found := levelNames[level]; found {
		a.Value = slog.StringValue(name)
	}
	return a
}
