package conversation

import "sync"

// Role tags who produced a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Greeting is the synthetic assistant turn every transcript starts with.
const Greeting = "Hello! I'm a SQL assistant. Ask me anything about your database."

// Payload is the tabular result attached to an assistant turn.
type Payload struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Turn is one entry of a transcript. Only assistant turns carry a Payload.
type Turn struct {
	Role    Role     `json:"role"`
	Content string   `json:"content"`
	Payload *Payload `json:"payload,omitempty"`
}

// UserTurn creates a user turn.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Content: text}
}

// AssistantTurn creates an assistant turn with an optional payload.
func AssistantTurn(text string, payload *Payload) Turn {
	return Turn{Role: RoleAssistant, Content: text, Payload: payload}
}

// Transcript is an append-only, ordered list of turns.
type Transcript struct {
	mu    sync.RWMutex
	turns []Turn
}

// NewTranscript returns a transcript holding only the greeting.
func NewTranscript() *Transcript {
	return &Transcript{
		turns: []Turn{AssistantTurn(Greeting, nil)},
	}
}

// Append adds turn to the end of the transcript.
func (t *Transcript) Append(turn Turn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = append(t.turns, turn)
}

// Turns returns a copy of every turn in order.
func (t *Transcript) Turns() []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len is the number of turns, greeting included.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}

// Last returns the most recent turn.
func (t *Transcript) Last() Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.turns[len(t.turns)-1]
}
