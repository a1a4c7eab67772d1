package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"order-book-lab/internal/domain"
	"order-book-lab/internal/storage"
)

// OFIWindowStore is an in-memory implementation of storage.OFIWindowStore.
type OFIWindowStore struct {
	mu   sync.RWMutex
	data map[string]*domain.OFIWindow // keyed by symbol|timestamp_ms|window_ms
}

// NewOFIWindowStore creates a new in-memory OFI window store.
func NewOFIWindowStore() *OFIWindowStore {
	return &OFIWindowStore{
		data: make(map[string]*domain.OFIWindow),
	}
}

var _ storage.OFIWindowStore = (*OFIWindowStore)(nil)

func ofiWindowKey(symbol string, timestampMs, windowMs int64) string {
	return fmt.Sprintf("%s|%d|%d", symbol, timestampMs, windowMs)
}

// InsertBulk adds multiple windows. Fails entire batch on duplicate.
func (s *OFIWindowStore) InsertBulk(_ context.Context, windows []*domain.OFIWindow) error {
	if len(windows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(windows))
	for _, w := range windows {
		if w == nil || w.Symbol == "" || w.WindowMs <= 0 {
			return storage.ErrInvalidInput
		}
		key := ofiWindowKey(w.Symbol, w.TimestampMs, w.WindowMs)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, w := range windows {
		clone := *w
		s.data[ofiWindowKey(w.Symbol, w.TimestampMs, w.WindowMs)] = &clone
	}
	return nil
}

// GetBySymbol retrieves all windows for a symbol, ordered by timestamp ASC.
func (s *OFIWindowStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.OFIWindow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.OFIWindow
	for _, w := range s.data {
		if w.Symbol == symbol {
			clone := *w
			result = append(result, &clone)
		}
	}
	sortOFIWindows(result)
	return result, nil
}

// GetByTimeRange retrieves windows for a symbol within [start, end] (inclusive).
func (s *OFIWindowStore) GetByTimeRange(_ context.Context, symbol string, start, end int64) ([]*domain.OFIWindow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.OFIWindow
	for _, w := range s.data {
		if w.Symbol == symbol && w.TimestampMs >= start && w.TimestampMs <= end {
			clone := *w
			result = append(result, &clone)
		}
	}
	sortOFIWindows(result)
	return result, nil
}

func sortOFIWindows(windows []*domain.OFIWindow) {
	sort.Slice(windows, func(i, j int) bool {
		if windows[i].TimestampMs != windows[j].TimestampMs {
			return windows[i].TimestampMs < windows[j].TimestampMs
		}
		return windows[i].WindowMs < windows[j].WindowMs
	})
}
