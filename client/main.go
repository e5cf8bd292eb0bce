package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

// go run ./client http://localhost:9000/mcp bolt://localhost:7687 ["MATCH (n) RETURN count(n) AS nodes"]
//
// MEMGRAPH_USERNAME and MEMGRAPH_PASSWORD are passed as tool arguments when set.
func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: go run ./client <server_url> <bolt_uri> [query]")
	}
	serverURL := os.Args[1]
	boltURI := os.Args[2]
	query := "RETURN 1 AS x"
	if len(os.Args) > 3 {
		query = os.Args[3]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	httpTransport, err := transport.NewStreamableHTTP(serverURL, transport.WithHTTPTimeout(30*time.Second))
	if err != nil {
		log.Fatalf("Failed to create transport: %v", err)
	}
	c := client.NewClient(httpTransport)
	defer c.Close()

	fmt.Println("Initializing client...")
	if err := c.Start(ctx); err != nil {
		log.Fatalf("Failed to start client: %v", err)
	}

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "memgraph-query-smoke-client",
		Version: "1.0.0",
	}

	serverInfo, err := c.Initialize(ctx, initRequest)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	fmt.Printf("Initialized with server: %s %s\n\n", serverInfo.ServerInfo.Name, serverInfo.ServerInfo.Version)

	if err := c.Ping(ctx); err != nil {
		log.Fatalf("Health check failed: %v", err)
	}

	toolsResult, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		log.Fatalf("Failed to list tools: %v", err)
	}
	for i, tool := range toolsResult.Tools {
		fmt.Printf("  %d. %s\n", i+1, tool.Name)
	}

	request := mcp.CallToolRequest{}
	request.Params.Name = "generic_cypher_query"
	request.Params.Arguments = map[string]any{
		"uri":      boltURI,
		"username": os.Getenv("MEMGRAPH_USERNAME"),
		"password": os.Getenv("MEMGRAPH_PASSWORD"),
		"query":    query,
	}

	result, err := c.CallTool(ctx, request)
	if err != nil {
		log.Fatalf("Tool call failed: %v", err)
	}
	for _, content := range result.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			fmt.Println(text.Text)
		}
	}
}
