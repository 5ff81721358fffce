package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/sqlchat/pkg/conversation"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeQuestionAnswered is emitted after a session answers a question.
	EventTypeQuestionAnswered = "sqlchat.question.answered"
)

// QuestionAnsweredEvent is a transport-neutral event payload for one
// answered question.
type QuestionAnsweredEvent struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	EventID       string       `json:"event_id"`
	EmittedAt     time.Time    `json:"emitted_at"`
	Source        EventSource  `json:"source"`
	Exchange      ExchangeMeta `json:"exchange"`
}

// EventSource identifies the database and model that answered.
type EventSource struct {
	Service  string `json:"service,omitempty"`
	Dialect  string `json:"dialect"`
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
}

// ExchangeMeta is the question, its SQL and how it ended.
type ExchangeMeta struct {
	SessionID  string    `json:"session_id"`
	Question   string    `json:"question"`
	SQL        string    `json:"sql,omitempty"`
	Outcome    string    `json:"outcome"`
	RowCount   int       `json:"row_count"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
}

// NewQuestionAnsweredEvent builds an event for ex. The schema text is left
// out of the payload.
func NewQuestionAnsweredEvent(source EventSource, ex conversation.Exchange) *QuestionAnsweredEvent {
	return &QuestionAnsweredEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeQuestionAnswered,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        source,
		Exchange: ExchangeMeta{
			SessionID:  ex.SessionID,
			Question:   ex.Question,
			SQL:        ex.SQL,
			Outcome:    string(ex.Outcome),
			RowCount:   ex.RowCount,
			Error:      ex.Error,
			StartedAt:  ex.StartedAt.UTC(),
			DurationMs: ex.Duration.Milliseconds(),
		},
	}
}
