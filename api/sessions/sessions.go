// Package sessions keeps the server's open conversation sessions by id.
package sessions

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/papercomputeco/sqlchat/pkg/conversation"
)

// Factory creates sessions wired to the shared pipeline.
type Factory interface {
	NewSession(opts ...conversation.Option) *conversation.Session
}

// Gauge tracks the number of open sessions.
type Gauge interface {
	SessionOpened()
	SessionClosed()
}

type nopGauge struct{}

func (nopGauge) SessionOpened() {}
func (nopGauge) SessionClosed() {}

// Registry is a concurrency safe map of session id to session.
type Registry struct {
	factory Factory
	gauge   Gauge
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*conversation.Session
}

// Option configures a Registry.
type Option func(*Registry)

// WithGauge reports opened and closed sessions to g.
func WithGauge(g Gauge) Option {
	return func(r *Registry) { r.gauge = g }
}

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

func NewRegistry(factory Factory, opts ...Option) *Registry {
	r := &Registry{
		factory:  factory,
		gauge:    nopGauge{},
		logger:   slog.New(slog.DiscardHandler),
		sessions: make(map[string]*conversation.Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create opens and registers a new session.
func (r *Registry) Create() *conversation.Session {
	s := r.factory.NewSession()

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()

	r.gauge.SessionOpened()
	r.logger.Debug("session opened", "session", s.ID())
	return s
}

func (r *Registry) Get(id string) (*conversation.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Delete forgets a session. It reports whether the session existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		r.gauge.SessionClosed()
		r.logger.Debug("session closed", "session", id)
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// List returns the open sessions, oldest first.
func (r *Registry) List() []*conversation.Session {
	r.mu.RLock()
	list := make([]*conversation.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		list = append(list, s)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt().Equal(list[j].CreatedAt()) {
			return list[i].ID() < list[j].ID()
		}
		return list[i].CreatedAt().Before(list[j].CreatedAt())
	})
	return list
}
