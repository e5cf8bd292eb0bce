package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/memgraph-query/mcp/internal/envelope"
	"github.com/memgraph-query/mcp/internal/logger"
	"github.com/neo4j/neo4j-go-driver/v6/neo4j"
	drivercfg "github.com/neo4j/neo4j-go-driver/v6/neo4j/config"
)

// Neo4jService is the Service implementation backed by the bolt driver. It
// keeps no connection between calls.
type Neo4jService struct {
	connector Connector
	log       *logger.Service
}

// NewNeo4jService returns a service that dials a fresh driver for every call.
func NewNeo4jService(version string, log *logger.Service) *Neo4jService {
	return NewNeo4jServiceWithConnector(&Neo4jConnector{UserAgent: "memgraph-query-mcp/" + version}, log)
}

// NewNeo4jServiceWithConnector is used by tests to swap the connector.
func NewNeo4jServiceWithConnector(connector Connector, log *logger.Service) *Neo4jService {
	return &Neo4jService{
		connector: connector,
		log:       log,
	}
}

// ExecuteQuery opens a connection, runs query in an auto-commit transaction,
// converts all records and closes the connection on every path. There is a
// single attempt; failures are returned as is.
func (s *Neo4jService) ExecuteQuery(ctx context.Context, params ConnectionParams, query string) (rows []envelope.Row, err error) {
	if s.connector == nil {
		return nil, errors.New("database connector is not initialized")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if query == "" {
		return nil, errors.New("query is required but was empty")
	}

	s.debug(ctx, "executing cypher query", "target", params.String(), "query", query)

	conn, err := s.connector.Open(ctx, params)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := conn.Close(ctx); closeErr != nil && err == nil {
			rows = nil
			err = fmt.Errorf("failed to close connection: %w", closeErr)
		}
	}()

	records, err := conn.Run(ctx, params.Database, query)
	if err != nil {
		return nil, err
	}

	rows = RecordsToRows(records)
	s.debug(ctx, "cypher query completed", "rows", len(rows))
	return rows, nil
}

func (s *Neo4jService) debug(ctx context.Context, msg string, args ...any) {
	if s.log != nil {
		s.log.DebugContext(ctx, msg, args...)
	}
}

// Neo4jConnector creates one driver per Open call, limited to a single pooled
// connection.
type Neo4jConnector struct {
	UserAgent string
}

// Open creates the driver. Basic auth is used when a username or password is
// present, no auth otherwise.
func (c *Neo4jConnector) Open(_ context.Context, params ConnectionParams) (Connection, error) {
	configure := func(cfg *drivercfg.Config) {
		cfg.MaxConnectionPoolSize = 1
		if c.UserAgent != "" {
			cfg.UserAgent = c.UserAgent
		}
	}

	var (
		driver neo4j.Driver
		err    error
	)
	if params.HasCredentials() {
		driver, err = neo4j.NewDriver(params.URI, neo4j.BasicAuth(params.Username, params.Password, ""), configure)
	} else {
		driver, err = neo4j.NewDriver(params.URI, neo4j.NoAuth(), configure)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	return &neo4jConnection{driver: driver}, nil
}

type neo4jConnection struct {
	driver neo4j.Driver
}

// Run opens a session, runs the query, collects every record and closes the
// session. A failing close turns a successful run into an error.
func (c *neo4jConnection) Run(ctx context.Context, database, query string) (records []*neo4j.Record, err error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: database})
	defer func() {
		if closeErr := session.Close(ctx); closeErr != nil && err == nil {
			records = nil
			err = fmt.Errorf("failed to close session: %w", closeErr)
		}
	}()

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}

	records, err = result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect results: %w", err)
	}
	return records, nil
}

func (c *neo4jConnection) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}
