package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"coldchain/internal/supplychain/metrics"
	id "coldchain/pkg/domain"
)

var (
	// ErrBufferFull is returned by Emit in async mode when the buffer is full.
	ErrBufferFull = errors.New("event buffer full")
	ErrClosed     = errors.New("publisher closed")
)

// Publisher stamps events and hands them to a Sink, either inline or through
// a bounded buffer drained by a Worker.
type Publisher struct {
	sink    Sink
	history Store
	logger  *slog.Logger
	metrics *metrics.Metrics

	bufferSize int
	inbox      chan Event
	done       chan struct{}

	mu     sync.RWMutex
	closed bool
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with a buffer of n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.bufferSize = n
		}
	}
}

// WithHistory records every event in store before it is handed to the sink,
// so the history is readable as soon as Emit returns.
func WithHistory(store Store) Option {
	return func(p *Publisher) {
		p.history = store
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func NewPublisher(sink Sink, opts ...Option) *Publisher {
	p := &Publisher{sink: sink, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		p.inbox = make(chan Event, p.bufferSize)
		p.done = make(chan struct{})
		w := NewWorker(sink, p.inbox, p.onDelivered)
		go func() {
			defer close(p.done)
			w.Run()
		}()
	}
	return p
}

// Emit publishes event. ID and Timestamp are filled in when unset.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if p.history != nil {
		if err := p.history.Append(ctx, event); err != nil {
			p.logger.WarnContext(ctx, "lifecycle event not recorded", "kind", event.Kind, "error", err)
		}
	}

	if p.inbox == nil {
		err := p.sink.Append(ctx, event)
		p.onDelivered(event, err)
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		p.metrics.IncrementEvents("dropped")
		p.logger.WarnContext(ctx, "lifecycle event dropped",
			"kind", event.Kind,
			"contract_id", event.ContractID,
			"request_id", event.RequestID,
		)
		return ErrBufferFull
	}
}

func (p *Publisher) onDelivered(event Event, err error) {
	if err != nil {
		p.metrics.IncrementEvents("failed")
		p.logger.Error("failed to publish lifecycle event",
			"kind", event.Kind,
			"contract_id", event.ContractID,
			"request_id", event.RequestID,
			"error", err,
		)
		return
	}
	p.metrics.IncrementEvents("published")
}

// List returns the events of a contract from the history, or from the sink
// when the sink is queryable.
func (p *Publisher) List(ctx context.Context, contractID id.ContractID) ([]Event, error) {
	if p.history != nil {
		return p.history.ListByContract(ctx, contractID)
	}
	store, ok := p.sink.(Store)
	if !ok {
		return nil, errors.New("event sink is not queryable")
	}
	return store.ListByContract(ctx, contractID)
}

// Close stops accepting events and, in async mode, waits until the buffer is
// drained.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.inbox != nil {
		close(p.inbox)
	}
	p.mu.Unlock()

	if p.done != nil {
		<-p.done
	}
}
