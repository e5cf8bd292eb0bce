package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/memgraph-query/mcp/internal/logger"
)

type TransportMode string

const (
	TransportModeStdio TransportMode = "stdio"
	TransportModeHTTP  TransportMode = "http"

	DefaultEnvFile   = ".env"
	DefaultHTTPHost  = "0.0.0.0"
	DefaultHTTPPort  = "9000"
	DefaultHTTPPath  = "/mcp"
	DefaultRateBurst = 20
)

// ValidTransportModes defines the allowed transport mode values
var ValidTransportModes = []TransportMode{TransportModeStdio, TransportModeHTTP}

// Config holds the server configuration. Database connection parameters are
// not part of it: they arrive with every tool call.
type Config struct {
	TransportMode      TransportMode
	HTTPHost           string
	HTTPPort           string
	HTTPPath           string
	HTTPAllowedOrigins string // Comma-separated, "*" for all
	HTTPTLSEnabled     bool
	HTTPTLSCertFile    string
	HTTPTLSKeyFile     string
	RateLimit          float64 // Requests per second per client, 0 disables
	RateBurst          int
	LogLevel           string
	LogFormat          string
	Telemetry          bool
	TelemetryEndpoint  string
	TelemetryToken     string
}

// Address is the host:port the HTTP transport listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.HTTPHost, c.HTTPPort)
}

// AllowedOrigins splits HTTPAllowedOrigins into trimmed, non-empty entries.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.HTTPAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("configuration is required but was nil")
	}

	if c.TransportMode == "" {
		c.TransportMode = TransportModeHTTP
	}
	if !slices.Contains(ValidTransportModes, c.TransportMode) {
		return fmt.Errorf("invalid transport mode '%s', must be one of %v", c.TransportMode, ValidTransportModes)
	}

	if c.TransportMode != TransportModeHTTP {
		return nil
	}

	port, err := strconv.Atoi(c.HTTPPort)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid HTTP port '%s', must be a number between 1 and 65535", c.HTTPPort)
	}

	if c.HTTPPath == "" || !strings.HasPrefix(c.HTTPPath, "/") {
		return fmt.Errorf("invalid HTTP path '%s', must start with '/'", c.HTTPPath)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative, got %v", c.RateLimit)
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1 when rate limiting is enabled, got %d", c.RateBurst)
	}

	if c.HTTPTLSEnabled {
		if c.HTTPTLSCertFile == "" {
			return fmt.Errorf("TLS certificate file is required when TLS is enabled (set MEMGRAPH_MCP_TLS_CERT_FILE)")
		}
		if c.HTTPTLSKeyFile == "" {
			return fmt.Errorf("TLS key file is required when TLS is enabled (set MEMGRAPH_MCP_TLS_KEY_FILE)")
		}
		if _, err := tls.LoadX509KeyPair(c.HTTPTLSCertFile, c.HTTPTLSKeyFile); err != nil {
			return fmt.Errorf("failed to load TLS certificate and key: %w", err)
		}
	}

	return nil
}

// CLIOverrides holds optional configuration values from CLI flags
type CLIOverrides struct {
	EnvFile        string
	TransportMode  string
	Host           string
	Port           string
	HTTPPath       string
	AllowedOrigins string
	TLSEnabled     string
	TLSCertFile    string
	TLSKeyFile     string
	LogLevel       string
	LogFormat      string
}

// LoadEnvFile loads variables from path into the process environment without
// overriding variables that are already set. A missing default file is not an
// error; a missing explicitly named file is.
func LoadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// LoadConfig loads the env file, reads environment variables, applies CLI
// overrides and validates. Precedence is CLI flags, then the environment,
// then the env file.
func LoadConfig(cliOverrides *CLIOverrides) (*Config, error) {
	envFile := ""
	if cliOverrides != nil {
		envFile = cliOverrides.EnvFile
	}
	if err := LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg := &Config{
		TransportMode:      TransportMode(GetEnvWithDefault("MEMGRAPH_MCP_TRANSPORT", string(TransportModeHTTP))),
		HTTPHost:           GetEnvWithDefault("FASTMCP_HOST", DefaultHTTPHost),
		HTTPPort:           GetEnvWithDefault("FASTMCP_PORT", GetEnvWithDefault("PORT", DefaultHTTPPort)),
		HTTPPath:           GetEnvWithDefault("MEMGRAPH_MCP_HTTP_PATH", DefaultHTTPPath),
		HTTPAllowedOrigins: GetEnv("MEMGRAPH_MCP_ALLOWED_ORIGINS"),
		HTTPTLSEnabled:     ParseBool(GetEnv("MEMGRAPH_MCP_TLS_ENABLED"), false),
		HTTPTLSCertFile:    GetEnv("MEMGRAPH_MCP_TLS_CERT_FILE"),
		HTTPTLSKeyFile:     GetEnv("MEMGRAPH_MCP_TLS_KEY_FILE"),
		RateLimit:          ParseFloat(GetEnv("MEMGRAPH_MCP_RATE_LIMIT"), 0),
		RateBurst:          ParseInt(GetEnv("MEMGRAPH_MCP_RATE_BURST"), DefaultRateBurst),
		LogLevel:           GetEnvWithDefault("MEMGRAPH_MCP_LOG_LEVEL", "info"),
		LogFormat:          GetEnvWithDefault("MEMGRAPH_MCP_LOG_FORMAT", "text"),
		Telemetry:          ParseBool(GetEnv("MEMGRAPH_MCP_TELEMETRY"), false),
		TelemetryEndpoint:  GetEnv("MEMGRAPH_MCP_TELEMETRY_ENDPOINT"),
		TelemetryToken:     GetEnv("MEMGRAPH_MCP_TELEMETRY_TOKEN"),
	}

	if cliOverrides != nil {
		if cliOverrides.TransportMode != "" {
			cfg.TransportMode = TransportMode(cliOverrides.TransportMode)
		}
		if cliOverrides.Host != "" {
			cfg.HTTPHost = cliOverrides.Host
		}
		if cliOverrides.Port != "" {
			cfg.HTTPPort = cliOverrides.Port
		}
		if cliOverrides.HTTPPath != "" {
			cfg.HTTPPath = cliOverrides.HTTPPath
		}
		if cliOverrides.AllowedOrigins != "" {
			cfg.HTTPAllowedOrigins = cliOverrides.AllowedOrigins
		}
		if cliOverrides.TLSEnabled != "" {
			cfg.HTTPTLSEnabled = ParseBool(cliOverrides.TLSEnabled, false)
		}
		if cliOverrides.TLSCertFile != "" {
			cfg.HTTPTLSCertFile = cliOverrides.TLSCertFile
		}
		if cliOverrides.TLSKeyFile != "" {
			cfg.HTTPTLSKeyFile = cliOverrides.TLSKeyFile
		}
		if cliOverrides.LogLevel != "" {
			cfg.LogLevel = cliOverrides.LogLevel
		}
		if cliOverrides.LogFormat != "" {
			cfg.LogFormat = cliOverrides.LogFormat
		}
	}

	// Invalid log settings fall back to defaults; the logger does not exist yet.
	if !logger.IsValidLevel(cfg.LogLevel) {
		fmt.Fprintf(os.Stderr, "Warning: invalid log level '%s', using default 'info'. Valid values: %v\n", cfg.LogLevel, logger.ValidLogLevels)
		cfg.LogLevel = "info"
	}
	if !logger.IsValidFormat(cfg.LogFormat) {
		fmt.Fprintf(os.Stderr, "Warning: invalid log format '%s', using default 'text'. Valid values: %v\n", cfg.LogFormat, logger.ValidLogFormats)
		cfg.LogFormat = "text"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// GetEnv returns the value of an environment variable or empty string if not set
func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetEnvWithDefault returns the value of an environment variable or a default value
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ParseBool parses a string to bool using strconv.ParseBool.
// Returns the default value if the string is empty or invalid.
func ParseBool(value string, defaultValue bool) bool {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: Invalid boolean value %q, using default: %v", value, defaultValue)
		return defaultValue
	}
	return parsed
}

// ParseInt returns the default value if the string is empty or invalid.
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: Invalid integer value %q, using default: %v", value, defaultValue)
		return defaultValue
	}
	return parsed
}

// ParseFloat returns the default value if the string is empty or invalid.
func ParseFloat(value string, defaultValue float64) float64 {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Warning: Invalid number value %q, using default: %v", value, defaultValue)
		return defaultValue
	}
	return parsed
}
