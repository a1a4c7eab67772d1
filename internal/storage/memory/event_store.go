// Package memory provides in-memory store implementations, used by the
// analysis pipeline and as reference behavior for the SQL-backed stores.
package memory

import (
	"context"
	"sort"
	"sync"

	"order-book-lab/internal/domain"
	"order-book-lab/internal/storage"
)

// EventStore is an in-memory implementation of storage.EventStore.
type EventStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Event // keyed by event_id
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		data: make(map[string]*domain.Event),
	}
}

var _ storage.EventStore = (*EventStore)(nil)

// Insert adds a new event. Returns ErrDuplicateKey if event_id exists.
func (s *EventStore) Insert(_ context.Context, e *domain.Event) error {
	if e == nil || e.EventID == "" || e.Symbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.EventID]; exists {
		return storage.ErrDuplicateKey
	}

	clone := *e
	s.data[e.EventID] = &clone
	return nil
}

// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
func (s *EventStore) InsertBulk(_ context.Context, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(events))
	for _, e := range events {
		if e == nil || e.EventID == "" || e.Symbol == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[e.EventID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[e.EventID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[e.EventID] = struct{}{}
	}

	for _, e := range events {
		clone := *e
		s.data[e.EventID] = &clone
	}
	return nil
}

// GetBySymbol retrieves all events for a symbol, ordered by timestamp ASC.
func (s *EventStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Event
	for _, e := range s.data {
		if e.Symbol == symbol {
			clone := *e
			result = append(result, &clone)
		}
	}
	sortEvents(result)
	return result, nil
}

// GetByTimeRange retrieves events for a symbol within [start, end] (inclusive).
func (s *EventStore) GetByTimeRange(_ context.Context, symbol string, start, end int64) ([]*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Event
	for _, e := range s.data {
		if e.Symbol == symbol && e.TimestampMs >= start && e.TimestampMs <= end {
			clone := *e
			result = append(result, &clone)
		}
	}
	sortEvents(result)
	return result, nil
}

// sortEvents orders by timestamp, event_id breaking ties deterministically.
func sortEvents(events []*domain.Event) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].TimestampMs != events[j].TimestampMs {
			return events[i].TimestampMs < events[j].TimestampMs
		}
		return events[i].EventID < events[j].EventID
	})
}
