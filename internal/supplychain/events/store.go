package events

import (
	"context"
	"errors"
	"sync"

	id "coldchain/pkg/domain"
)

// Sink receives published events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store is a Sink that can be queried.
type Store interface {
	Sink
	ListByContract(ctx context.Context, contractID id.ContractID) ([]Event, error)
}

// InMemoryStore keeps events per contract in publication order.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.ContractID][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.ContractID][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ContractID] = append(s.events[event.ContractID], event)
	return nil
}

func (s *InMemoryStore) ListByContract(_ context.Context, contractID id.ContractID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[contractID]...), nil
}

// Fanout appends to every sink and joins their errors. A failing sink does
// not stop the others.
type Fanout []Sink

func (f Fanout) Append(ctx context.Context, event Event) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
