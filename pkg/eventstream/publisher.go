// Package eventstream publishes answered-question events to an audit stream.
package eventstream

import (
	"context"
	"log/slog"

	"github.com/papercomputeco/sqlchat/pkg/conversation"
)

// Publisher publishes question events to an event stream backend.
type Publisher interface {
	PublishQuestion(ctx context.Context, event *QuestionAnsweredEvent) error
	Close() error
}

// Observer publishes every exchange it sees. Publish failures are logged and
// never reach the session.
type Observer struct {
	publisher Publisher
	source    EventSource
	logger    *slog.Logger
}

var _ conversation.Observer = (*Observer)(nil)

func NewObserver(publisher Publisher, source EventSource, logger *slog.Logger) *Observer {
	return &Observer{publisher: publisher, source: source, logger: logger}
}

func (o *Observer) Observe(ctx context.Context, ex conversation.Exchange) {
	event := NewQuestionAnsweredEvent(o.source, ex)
	if err := o.publisher.PublishQuestion(ctx, event); err != nil {
		o.logger.Warn("failed to publish question event",
			"event_id", event.EventID,
			"session", ex.SessionID,
			"error", err,
		)
	}
}
