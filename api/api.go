package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/sqlchat/api/sessions"
	"github.com/papercomputeco/sqlchat/pkg/schema"
)

// SchemaDescriber reads the live schema.
type SchemaDescriber interface {
	Describe(ctx context.Context) (schema.Description, error)
}

// Server is the API server for sqlchat sessions.
type Server struct {
	config   Config
	sessions *sessions.Registry
	schema   SchemaDescriber
	logger   *slog.Logger
	app      *fiber.App
}

// NewServer creates a new API server. The registry is injected so the MCP
// tools can share sessions with the HTTP routes.
func NewServer(config Config, registry *sessions.Registry, describer SchemaDescriber, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:   config,
		sessions: registry,
		schema:   describer,
		logger:   logger,
		app:      app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/v1/schema", s.handleSchema)
	app.Get("/v1/sessions", s.handleListSessions)
	app.Post("/v1/sessions", s.handleCreateSession)
	app.Get("/v1/sessions/:id", s.handleGetSession)
	app.Delete("/v1/sessions/:id", s.handleDeleteSession)
	app.Post("/v1/sessions/:id/questions", s.handleAsk)

	if config.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(config.MetricsHandler))
	}
	if config.MCPHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(config.MCPHandler))
	}

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
