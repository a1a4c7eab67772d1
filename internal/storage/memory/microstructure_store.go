package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"order-book-lab/internal/domain"
	"order-book-lab/internal/storage"
)

// MicrostructureStore is an in-memory implementation of storage.MicrostructureStore.
type MicrostructureStore struct {
	mu   sync.RWMutex
	data map[string]*domain.MicrostructureSample // keyed by symbol|timestamp_ms
}

// NewMicrostructureStore creates a new in-memory microstructure store.
func NewMicrostructureStore() *MicrostructureStore {
	return &MicrostructureStore{
		data: make(map[string]*domain.MicrostructureSample),
	}
}

var _ storage.MicrostructureStore = (*MicrostructureStore)(nil)

func microstructureKey(symbol string, timestampMs int64) string {
	return fmt.Sprintf("%s|%d", symbol, timestampMs)
}

// InsertBulk adds multiple samples. Fails entire batch on duplicate (symbol, timestamp_ms).
func (s *MicrostructureStore) InsertBulk(_ context.Context, samples []*domain.MicrostructureSample) error {
	if len(samples) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(samples))
	for _, m := range samples {
		if m == nil || m.Symbol == "" {
			return storage.ErrInvalidInput
		}
		key := microstructureKey(m.Symbol, m.TimestampMs)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, m := range samples {
		clone := *m
		s.data[microstructureKey(m.Symbol, m.TimestampMs)] = &clone
	}
	return nil
}

// GetBySymbol retrieves all samples for a symbol, ordered by timestamp ASC.
func (s *MicrostructureStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.MicrostructureSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MicrostructureSample
	for _, m := range s.data {
		if m.Symbol == symbol {
			clone := *m
			result = append(result, &clone)
		}
	}
	sortSamples(result)
	return result, nil
}

// GetByTimeRange retrieves samples for a symbol within [start, end] (inclusive).
func (s *MicrostructureStore) GetByTimeRange(_ context.Context, symbol string, start, end int64) ([]*domain.MicrostructureSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MicrostructureSample
	for _, m := range s.data {
		if m.Symbol == symbol && m.TimestampMs >= start && m.TimestampMs <= end {
			clone := *m
			result = append(result, &clone)
		}
	}
	sortSamples(result)
	return result, nil
}

func sortSamples(samples []*domain.MicrostructureSample) {
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].TimestampMs < samples[j].TimestampMs
	})
}
