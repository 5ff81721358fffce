// Package mcp provides an MCP (Model Context Protocol) server that lets
// agents ask the database questions through sqlchat.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/sqlchat/api/sessions"
	"github.com/papercomputeco/sqlchat/pkg/schema"
	"github.com/papercomputeco/sqlchat/pkg/utils"
)

// SchemaDescriber reads the live schema.
type SchemaDescriber interface {
	Describe(ctx context.Context) (schema.Description, error)
}

type Config struct {
	// Sessions holds the conversations ask_database continues
	Sessions *sessions.Registry

	// Schema backs the describe_schema tool
	Schema SchemaDescriber

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the ask_database and
// describe_schema tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "sqlchat",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if c.Noop {
		// tools stay unregistered when MCP is disabled
		s.mcpServer = mcpServer
		s.handler = newHandler(mcpServer)
		return s, nil
	}

	if c.Sessions == nil {
		return nil, errors.New("session registry is required")
	}
	if c.Schema == nil {
		return nil, errors.New("schema describer is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        askToolName,
		Description: askDescription,
	}, s.handleAsk)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        describeSchemaToolName,
		Description: describeSchemaDescription,
	}, s.handleDescribeSchema)

	s.mcpServer = mcpServer
	s.handler = newHandler(mcpServer)

	return s, nil
}

// newHandler creates a streamable HTTP net/http handler for stateless operations.
func newHandler(server *mcp.Server) *mcp.StreamableHTTPHandler {
	return mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return server
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// MCPServer returns the underlying server, for in-process transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}
