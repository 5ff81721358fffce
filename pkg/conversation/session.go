// Package conversation runs the question pipeline for a session and keeps
// its transcript: describe the schema, translate the question, execute the
// SQL and append the outcome as an assistant turn.
package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/sqlchat/pkg/errkind"
	"github.com/papercomputeco/sqlchat/pkg/executor"
	"github.com/papercomputeco/sqlchat/pkg/utils"
)

// SchemaDescriber renders the current schema, degrading to error text.
type SchemaDescriber interface {
	DescribeSchema(ctx context.Context) string
}

// Translator turns a question into SQL.
type Translator interface {
	Translate(ctx context.Context, schema, question string) (string, error)
}

// Executor runs SQL and never fails outright.
type Executor interface {
	Execute(ctx context.Context, sql string) executor.Result
}

// Session owns one transcript and the components a question flows through.
type Session struct {
	id        string
	createdAt time.Time

	mu         sync.Mutex
	transcript *Transcript
	inspector  SchemaDescriber
	translator Translator
	executor   Executor
	observers  []Observer
	logger     *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithObservers registers observers notified after every Submit.
func WithObservers(observers ...Observer) Option {
	return func(s *Session) { s.observers = append(s.observers, observers...) }
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

func NewSession(inspector SchemaDescriber, translator Translator, exec Executor, opts ...Option) *Session {
	s := &Session{
		id:         uuid.NewString(),
		createdAt:  time.Now(),
		transcript: NewTranscript(),
		inspector:  inspector,
		translator: translator,
		executor:   exec,
		logger:     slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.id)

	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Transcript returns a copy of the session's turns.
func (s *Session) Transcript() []Turn {
	return s.transcript.Turns()
}

// Submit runs question through the pipeline and returns the assistant turn
// it appended. Exactly two turns are appended per call: the question and one
// assistant turn. Calls on one session are serialised.
func (s *Session) Submit(ctx context.Context, question string) Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	ex := Exchange{
		SessionID: s.id,
		Question:  question,
		StartedAt: time.Now(),
	}

	s.transcript.Append(UserTurn(question))

	ex.Schema = s.inspector.DescribeSchema(ctx)
	s.logger.Debug("schema described", "length", len(ex.Schema))

	var reply Turn
	sql, err := s.translator.Translate(ctx, ex.Schema, question)
	if err != nil {
		ex.Outcome = OutcomeTranslationError
		ex.Error = errkind.Detail(err)
		reply = AssistantTurn("Could not generate SQL: "+ex.Error, nil)
	} else {
		ex.SQL = sql
		reply = s.run(ctx, sql, &ex)
	}

	s.transcript.Append(reply)

	ex.Duration = time.Since(ex.StartedAt)
	s.logger.Debug("question answered", "question", utils.Truncate(question, 80), "outcome", string(ex.Outcome), "rows", ex.RowCount, "duration", ex.Duration)

	for _, o := range s.observers {
		o.Observe(ctx, ex)
	}

	return reply
}

func (s *Session) run(ctx context.Context, sql string, ex *Exchange) Turn {
	result := s.executor.Execute(ctx, sql)

	switch {
	case result.Failed():
		ex.Outcome = OutcomeExecutionError
		ex.Error = result.Failure.Message
		return AssistantTurn(fmt.Sprintf("Generated SQL: %s\n\nError: %s", sql, result.Failure.Message), nil)

	case result.RowCount() == 0:
		ex.Outcome = OutcomeEmpty
		return AssistantTurn(fmt.Sprintf("Generated SQL: %s\n\nNo results found.", sql), nil)

	default:
		ex.Outcome = OutcomeRows
		ex.RowCount = result.RowCount()
		return AssistantTurn(fmt.Sprintf("Generated SQL: %s\n\nResults:", sql), &Payload{
			Columns: result.Success.Columns,
			Rows:    result.Success.Rows,
		})
	}
}
