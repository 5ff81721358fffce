package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/sqlchat/pkg/conversation"
	"github.com/papercomputeco/sqlchat/pkg/schema"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionResponse is a session and its full transcript.
type SessionResponse struct {
	ID         string              `json:"id"`
	CreatedAt  time.Time           `json:"created_at"`
	Transcript []conversation.Turn `json:"transcript"`
}

// SessionSummary describes a session without its transcript.
type SessionSummary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Turns     int       `json:"turns"`
}

// QuestionRequest is the body of POST /v1/sessions/:id/questions.
type QuestionRequest struct {
	Question string `json:"question"`
}

// SchemaResponse is the live schema in both rendered and structured form.
type SchemaResponse struct {
	Schema string         `json:"schema"`
	Tables []schema.Table `json:"tables"`
}

func sessionResponse(s *conversation.Session) SessionResponse {
	return SessionResponse{
		ID:         s.ID(),
		CreatedAt:  s.CreatedAt(),
		Transcript: s.Transcript(),
	}
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleSchema describes the database. Unlike the prompt path, inspection
// failures are reported as errors here.
func (s *Server) handleSchema(c *fiber.Ctx) error {
	desc, err := s.schema.Describe(c.Context())
	if err != nil {
		s.logger.Warn("schema inspection failed", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
	}

	tables := []schema.Table(desc)
	if tables == nil {
		tables = []schema.Table{}
	}
	return c.JSON(SchemaResponse{Schema: desc.String(), Tables: tables})
}

func (s *Server) handleListSessions(c *fiber.Ctx) error {
	list := s.sessions.List()
	summaries := make([]SessionSummary, 0, len(list))
	for _, session := range list {
		summaries = append(summaries, SessionSummary{
			ID:        session.ID(),
			CreatedAt: session.CreatedAt(),
			Turns:     len(session.Transcript()),
		})
	}

	return c.JSON(map[string]any{
		"count":    len(summaries),
		"sessions": summaries,
	})
}

func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	session := s.sessions.Create()
	return c.Status(fiber.StatusCreated).JSON(sessionResponse(session))
}

func (s *Server) handleGetSession(c *fiber.Ctx) error {
	session, ok := s.sessions.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "session not found"})
	}
	return c.JSON(sessionResponse(session))
}

func (s *Server) handleDeleteSession(c *fiber.Ctx) error {
	if !s.sessions.Delete(c.Params("id")) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "session not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleAsk runs a question through the session and returns the assistant
// turn. Translation and execution failures are ordinary 200 answers.
func (s *Server) handleAsk(c *fiber.Ctx) error {
	session, ok := s.sessions.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "session not found"})
	}

	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "question is required"})
	}

	turn := session.Submit(c.Context(), req.Question)
	return c.JSON(turn)
}
