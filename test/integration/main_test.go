//go:build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/memgraph-query/mcp/test/containerrunner"
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	containerrunner.Start(ctx)

	code := m.Run()

	containerrunner.Close(ctx)

	os.Exit(code)
}
