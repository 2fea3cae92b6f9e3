// Package mcpserver assembles the MCP protocol server around the tool
// gateway, using the official MCP Go SDK. It is a thin wrapper: tool
// semantics live in internal/domain/tool, transport framing in the SDK.
package mcpserver

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/QuentinCody/pharos-mcp-server/internal/domain/tool"
	"github.com/QuentinCody/pharos-mcp-server/internal/version"
)

// Server exposes the pharos_graphql_query tool over MCP transports.
type Server struct {
	impl *mcp.Server
}

// New builds the MCP server and registers the gateway's tool. The input
// schema is inferred from tool.QueryParams by the SDK.
func New(gateway *tool.Gateway) *Server {
	impl := mcp.NewServer(&mcp.Implementation{
		Name:    "pharos-mcp-server",
		Version: version.Version,
	}, nil)

	mcp.AddTool(impl, gateway.Definition(), gateway.Handle)

	return &Server{impl: impl}
}

// HTTPHandler returns the streamable-HTTP handler (the event-stream
// transport). The router mounts it at the single well-known path.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.impl
	}, nil)
}

// RunStdio serves MCP over stdin/stdout until the client disconnects or
// ctx is cancelled.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.impl.Run(ctx, &mcp.StdioTransport{})
}
