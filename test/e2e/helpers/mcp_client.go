//go:build e2e

package helpers

import "github.com/mark3labs/mcp-go/mcp"

// BuildInitializeRequest returns an initialize request for the latest protocol version.
func BuildInitializeRequest() mcp.InitializeRequest {
	InitializeRequest := mcp.InitializeRequest{}
	InitializeRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	InitializeRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "e2e-client",
		Version: "1.0.0",
	}
	return InitializeRequest
}
