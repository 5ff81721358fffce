// Package worker provides an asynchronous worker pool that publishes
// question events through a wrapped eventstream.Publisher.
//
// The pool decouples the event backend from the question pipeline so a slow
// or unreachable broker never delays an answer.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/papercomputeco/sqlchat/pkg/eventstream"
)

var (
	defaultNumWorkers   uint = 2
	defaultJobQueueSize uint = 256
)

// ErrQueueFull is returned by PublishQuestion when the event was dropped.
var ErrQueueFull = errors.New("event queue full, event dropped")

// ErrClosed is returned by PublishQuestion after Close.
var ErrClosed = errors.New("event pool closed")

// Config is the configuration options for the worker pool.
type Config struct {
	// Publisher is the backend events are handed to.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered event channel (defaults to 256).
	QueueSize uint

	Logger *slog.Logger
}

// Pool publishes events asynchronously via a worker pool. It is itself an
// eventstream.Publisher.
type Pool struct {
	publisher eventstream.Publisher
	queue     chan *eventstream.QuestionAnsweredEvent
	wg        sync.WaitGroup
	logger    *slog.Logger

	mu     sync.RWMutex
	closed bool
}

var _ eventstream.Publisher = (*Pool)(nil)

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Publisher == nil {
		return nil, errors.New("publisher is required")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	wp := &Pool{
		publisher: c.Publisher,
		queue:     make(chan *eventstream.QuestionAnsweredEvent, c.QueueSize),
		logger:    logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// PublishQuestion queues event for publishing and returns immediately.
// A full queue drops the event and returns ErrQueueFull.
func (p *Pool) PublishQuestion(_ context.Context, event *eventstream.QuestionAnsweredEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	select {
	case p.queue <- event:
		p.logger.Debug("event queued", "event_id", event.EventID)
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events, waits for queued events to drain, then
// closes the wrapped publisher.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	return p.publisher.Close()
}

func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("event worker started", "worker_id", id)

	for event := range p.queue {
		// The request that produced the event may already be gone.
		if err := p.publisher.PublishQuestion(context.Background(), event); err != nil {
			p.logger.Error("async event publish failed",
				"event_id", event.EventID,
				"session", event.Exchange.SessionID,
				"error", err,
			)
			continue
		}
		p.logger.Debug("event published", "event_id", event.EventID)
	}

	p.logger.Debug("event worker stopped", "worker_id", id)
}
