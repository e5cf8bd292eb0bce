//go:build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/memgraph-query/mcp/internal/database"
	"github.com/memgraph-query/mcp/internal/logger"
	"github.com/memgraph-query/mcp/test/containerrunner"
)

// testContext carries a per-test label so tests can share one instance
// without seeing each other's data.
type testContext struct {
	t       *testing.T
	ctx     context.Context
	Label   string
	Params  database.ConnectionParams
	Service *database.Neo4jService
}

func newTestContext(t *testing.T) *testContext {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	tc := &testContext{
		t:       t,
		ctx:     ctx,
		Label:   "Test_" + strings.ReplaceAll(uuid.NewString(), "-", "_"),
		Params:  containerrunner.Params(),
		Service: database.NewNeo4jService("integration", logger.New("debug", "text", io.Discard)),
	}

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cleanupCancel()
		query := fmt.Sprintf("MATCH (n:%s) DETACH DELETE n", tc.Label)
		if _, err := tc.Service.ExecuteQuery(cleanupCtx, tc.Params, query); err != nil {
			t.Logf("Warning: failed to clean up label %s: %v", tc.Label, err)
		}
		cancel()
	})

	return tc
}

// Query formats the query with the test label substituted for every %[1]s.
func (tc *testContext) Query(format string) string {
	return fmt.Sprintf(format, tc.Label)
}

func (tc *testContext) Run(query string) string {
	tc.t.Helper()
	return database.RunQuery(tc.ctx, tc.Service, tc.Params, query).ToJSON()
}
