package database

//go:generate mockgen -destination=mocks/mock_database.go -package=mocks github.com/memgraph-query/mcp/internal/database Service,Connector,Connection

import (
	"context"

	"github.com/memgraph-query/mcp/internal/envelope"
	"github.com/neo4j/neo4j-go-driver/v6/neo4j"
)

// Service executes a single query against the database described by params.
type Service interface {
	// ExecuteQuery opens a connection, runs query once and returns every row in
	// result order. The connection is released before it returns.
	ExecuteQuery(ctx context.Context, params ConnectionParams, query string) ([]envelope.Row, error)
}

// Connector opens a connection scoped to one call.
type Connector interface {
	Open(ctx context.Context, params ConnectionParams) (Connection, error)
}

// Connection runs queries in auto-commit sessions. Close must be called once
// the caller is done with it.
type Connection interface {
	Run(ctx context.Context, database, query string) ([]*neo4j.Record, error)
	Close(ctx context.Context) error
}
