package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"order-book-lab/internal/domain"
	"order-book-lab/internal/storage"
)

// PricePointStore is an in-memory implementation of storage.PricePointStore.
type PricePointStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PricePoint // keyed by symbol|timestamp_ms
}

// NewPricePointStore creates a new in-memory price point store.
func NewPricePointStore() *PricePointStore {
	return &PricePointStore{
		data: make(map[string]*domain.PricePoint),
	}
}

var _ storage.PricePointStore = (*PricePointStore)(nil)

func pricePointKey(symbol string, timestampMs int64) string {
	return fmt.Sprintf("%s|%d", symbol, timestampMs)
}

// InsertBulk adds multiple points. Fails entire batch on duplicate (symbol, timestamp_ms).
func (s *PricePointStore) InsertBulk(_ context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.Symbol == "" {
			return storage.ErrInvalidInput
		}
		key := pricePointKey(p.Symbol, p.TimestampMs)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		clone := *p
		s.data[pricePointKey(p.Symbol, p.TimestampMs)] = &clone
	}
	return nil
}

// GetBySymbol retrieves all points for a symbol, ordered by timestamp ASC.
func (s *PricePointStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PricePoint
	for _, p := range s.data {
		if p.Symbol == symbol {
			clone := *p
			result = append(result, &clone)
		}
	}
	sortPricePoints(result)
	return result, nil
}

// GetByTimeRange retrieves points for a symbol within [start, end] (inclusive).
func (s *PricePointStore) GetByTimeRange(_ context.Context, symbol string, start, end int64) ([]*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PricePoint
	for _, p := range s.data {
		if p.Symbol == symbol && p.TimestampMs >= start && p.TimestampMs <= end {
			clone := *p
			result = append(result, &clone)
		}
	}
	sortPricePoints(result)
	return result, nil
}

func sortPricePoints(points []*domain.PricePoint) {
	sort.Slice(points, func(i, j int) bool {
		return points[i].TimestampMs < points[j].TimestampMs
	})
}
