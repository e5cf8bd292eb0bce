// Package cli builds the command line of the server. Flags only override
// configuration; everything else comes from the environment.
package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/memgraph-query/mcp/internal/config"
	"github.com/spf13/cobra"
)

const programName = "memgraph-query-mcp"

// RunFunc starts the server with the flag overrides collected by the root
// command. It blocks until the server stops.
type RunFunc func(ctx context.Context, overrides *config.CLIOverrides) error

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, version string, args []string, run RunFunc) int {
	rootCmd := NewRootCmd(version, run)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		rootCmd.PrintErrf("Error: %v\n", err)
		return 1
	}
	return 0
}

// NewRootCmd returns the server command with its flags and subcommands.
func NewRootCmd(version string, run RunFunc) *cobra.Command {
	var (
		overrides  config.CLIOverrides
		tlsEnabled bool
	)

	rootCmd := &cobra.Command{
		Use:   programName,
		Short: "MCP server running Cypher queries against Memgraph or Neo4j",
		Long: `memgraph-query-mcp exposes a single MCP tool, generic_cypher_query, that runs a
Cypher query against a bolt endpoint given with every call and returns the rows
as a JSON success/error envelope.

Configuration is read from a .env file, then the environment (FASTMCP_HOST,
FASTMCP_PORT, MEMGRAPH_MCP_*), then these flags. Flags take precedence.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("tls-enabled") {
				overrides.TLSEnabled = strconv.FormatBool(tlsEnabled)
			}
			if run == nil {
				return fmt.Errorf("no server entrypoint configured")
			}
			return run(cmd.Context(), &overrides)
		},
	}
	rootCmd.SetVersionTemplate(programName + " version: {{.Version}}\n")

	flags := rootCmd.Flags()
	flags.StringVar(&overrides.TransportMode, "transport", "", "MCP transport: http or stdio (env MEMGRAPH_MCP_TRANSPORT)")
	flags.StringVar(&overrides.Host, "host", "", "HTTP bind host (env FASTMCP_HOST)")
	flags.StringVar(&overrides.Port, "port", "", "HTTP port (env FASTMCP_PORT or PORT)")
	flags.StringVar(&overrides.HTTPPath, "http-path", "", "HTTP endpoint path (env MEMGRAPH_MCP_HTTP_PATH)")
	flags.StringVar(&overrides.AllowedOrigins, "allowed-origins", "", "comma-separated CORS origins, * for all (env MEMGRAPH_MCP_ALLOWED_ORIGINS)")
	flags.BoolVar(&tlsEnabled, "tls-enabled", false, "serve HTTPS (env MEMGRAPH_MCP_TLS_ENABLED)")
	flags.StringVar(&overrides.TLSCertFile, "tls-cert-file", "", "TLS certificate file (env MEMGRAPH_MCP_TLS_CERT_FILE)")
	flags.StringVar(&overrides.TLSKeyFile, "tls-key-file", "", "TLS key file (env MEMGRAPH_MCP_TLS_KEY_FILE)")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "log level (env MEMGRAPH_MCP_LOG_LEVEL)")
	flags.StringVar(&overrides.LogFormat, "log-format", "", "log format: text or json (env MEMGRAPH_MCP_LOG_FORMAT)")
	flags.StringVar(&overrides.EnvFile, "env-file", "", "env file to load (default .env, optional)")

	rootCmd.AddCommand(newVersionCmd(version))

	return rootCmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s\n", programName, version)
			return err
		},
	}
}
