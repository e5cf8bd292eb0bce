package database

import (
	"context"
	"fmt"

	"github.com/memgraph-query/mcp/internal/envelope"
)

// RunQuery is the call boundary: whatever happens while connecting,
// authenticating or executing, including a panic, ends up as an error
// envelope. A successful run becomes a success envelope.
func RunQuery(ctx context.Context, svc Service, params ConnectionParams, query string) (env envelope.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			env = envelope.Failure(fmt.Sprintf("unexpected failure while executing query: %v", r))
		}
	}()

	if svc == nil {
		return envelope.Failure("database service is not initialized")
	}

	rows, err := svc.ExecuteQuery(ctx, params, query)
	if err != nil {
		return envelope.FromError(err)
	}
	return envelope.Success(rows)
}
