package conversation

import (
	"context"
	"time"
)

// Outcome classifies how a question ended.
type Outcome string

const (
	OutcomeRows             Outcome = "rows"
	OutcomeEmpty            Outcome = "empty"
	OutcomeExecutionError   Outcome = "execution_error"
	OutcomeTranslationError Outcome = "translation_error"
)

// Exchange records one completed Submit.
type Exchange struct {
	SessionID string
	Question  string
	Schema    string
	SQL       string
	Outcome   Outcome
	RowCount  int
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

// Observer is notified after every Submit. Observers run synchronously on
// the submitting goroutine and must not block.
type Observer interface {
	Observe(ctx context.Context, ex Exchange)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ex Exchange)

func (f ObserverFunc) Observe(ctx context.Context, ex Exchange) { f(ctx, ex) }
