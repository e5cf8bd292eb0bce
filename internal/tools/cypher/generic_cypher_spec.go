package cypher

import (
	"github.com/mark3labs/mcp-go/mcp"
)

const GenericCypherToolName = "generic_cypher_query"

type GenericCypherInput struct {
	URI      string `json:"uri" jsonschema:"required,description=Bolt URI of the Memgraph or Neo4j server (e.g. bolt://localhost:7687)"`
	Username string `json:"username,omitempty" jsonschema:"description=Database username; leave empty for servers without authentication"`
	Password string `json:"password,omitempty" jsonschema:"description=Database password"`
	Query    string `json:"query" jsonschema:"required,description=The full Cypher query to run"`
	Database string `json:"database,omitempty" jsonschema:"description=Name of the database to use; empty means the server default"`
}

func GenericCypherSpec() mcp.Tool {
	return mcp.NewTool(GenericCypherToolName,
		mcp.WithDescription(`generic_cypher_query runs any Cypher query against the Memgraph or Neo4j server at the given URI and returns the result as JSON.
On success the result is {"status":"success","data":[...rows...]}, each row keyed by the aliases of the RETURN clause in order.
On failure the result is {"status":"error","message":"..."}. The query is sent as is, in a single auto-commit transaction.`),
		mcp.WithInputSchema[GenericCypherInput](),
		mcp.WithTitleAnnotation("Generic Cypher Query"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}
