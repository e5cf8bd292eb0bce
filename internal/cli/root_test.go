package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/memgraph-query/mcp/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVersion = "1.2.3"

// recordRun returns a RunFunc that stores the overrides it was called with.
func recordRun(got **config.CLIOverrides) RunFunc {
	return func(_ context.Context, overrides *config.CLIOverrides) error {
		*got = overrides
		return nil
	}
}

func TestRootCmd_Flags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want config.CLIOverrides
	}{
		{
			name: "no flags",
			args: nil,
			want: config.CLIOverrides{},
		},
		{
			name: "http settings",
			args: []string{"--transport", "http", "--host", "127.0.0.1", "--port", "9100", "--http-path", "/query", "--allowed-origins", "*"},
			want: config.CLIOverrides{
				TransportMode:  "http",
				Host:           "127.0.0.1",
				Port:           "9100",
				HTTPPath:       "/query",
				AllowedOrigins: "*",
			},
		},
		{
			name: "tls enabled",
			args: []string{"--tls-enabled", "--tls-cert-file", "cert.pem", "--tls-key-file", "key.pem"},
			want: config.CLIOverrides{TLSEnabled: "true", TLSCertFile: "cert.pem", TLSKeyFile: "key.pem"},
		},
		{
			name: "tls explicitly disabled",
			args: []string{"--tls-enabled=false"},
			want: config.CLIOverrides{TLSEnabled: "false"},
		},
		{
			name: "logging and env file",
			args: []string{"--log-level", "debug", "--log-format", "json", "--env-file", "prod.env"},
			want: config.CLIOverrides{LogLevel: "debug", LogFormat: "json", EnvFile: "prod.env"},
		},
		{
			name: "stdio",
			args: []string{"--transport=stdio"},
			want: config.CLIOverrides{TransportMode: "stdio"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *config.CLIOverrides
			cmd := NewRootCmd(testVersion, recordRun(&got))
			cmd.SetArgs(tt.args)

			require.NoError(t, cmd.Execute())
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestRootCmd_Version(t *testing.T) {
	for _, args := range [][]string{{"--version"}, {"version"}} {
		t.Run(args[0], func(t *testing.T) {
			called := false
			cmd := NewRootCmd(testVersion, func(context.Context, *config.CLIOverrides) error {
				called = true
				return nil
			})
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetArgs(args)

			require.NoError(t, cmd.Execute())
			assert.Equal(t, "memgraph-query-mcp version: 1.2.3\n", out.String())
			assert.False(t, called, "server must not start")
		})
	}
}

func TestRootCmd_Errors(t *testing.T) {
	t.Run("unknown flag", func(t *testing.T) {
		cmd := NewRootCmd(testVersion, recordRun(new(*config.CLIOverrides)))
		cmd.SetArgs([]string{"--neo4j-uri", "bolt://x"})
		cmd.SetErr(&bytes.Buffer{})

		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown flag")
	})

	t.Run("positional argument", func(t *testing.T) {
		cmd := NewRootCmd(testVersion, recordRun(new(*config.CLIOverrides)))
		cmd.SetArgs([]string{"serve"})
		cmd.SetErr(&bytes.Buffer{})

		require.Error(t, cmd.Execute())
	})
}

func TestExecute(t *testing.T) {
	t.Run("success exits 0", func(t *testing.T) {
		code := Execute(context.Background(), testVersion, []string{"--port", "9001"}, func(ctx context.Context, overrides *config.CLIOverrides) error {
			assert.NotNil(t, ctx)
			assert.Equal(t, "9001", overrides.Port)
			return nil
		})
		assert.Equal(t, 0, code)
	})

	t.Run("run error exits 1", func(t *testing.T) {
		code := Execute(context.Background(), testVersion, nil, func(context.Context, *config.CLIOverrides) error {
			return errors.New("listen tcp: address already in use")
		})
		assert.Equal(t, 1, code)
	})
}
