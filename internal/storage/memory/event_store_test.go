package memory

import (
	"context"
	"errors"
	"testing"

	"order-book-lab/internal/domain"
	"order-book-lab/internal/storage"
)

func testEvent(eventID string, ts int64) *domain.Event {
	return &domain.Event{
		EventID:     eventID,
		Symbol:      "BTCUSDT",
		TimestampMs: ts,
		Type:        domain.EventNewBid,
		Side:        domain.SideBid,
		Price:       100,
		Volume:      1,
		USDValue:    100,
	}
}

func TestEventStore_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore()

	if err := store.Insert(ctx, testEvent("a", 3)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.Insert(ctx, testEvent("b", 1)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	events, err := store.GetBySymbol(ctx, "BTCUSDT")
	if err != nil {
		t.Fatalf("get by symbol: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].EventID != "b" || events[1].EventID != "a" {
		t.Errorf("expected timestamp ordering, got %s, %s", events[0].EventID, events[1].EventID)
	}
}

func TestEventStore_DuplicateKey(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore()

	if err := store.Insert(ctx, testEvent("a", 1)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.Insert(ctx, testEvent("a", 2)); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestEventStore_InvalidInput(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil, got %v", err)
	}
	e := testEvent("", 1)
	if err := store.Insert(ctx, e); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty event_id, got %v", err)
	}
}

func TestEventStore_InsertBulkAtomic(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore()

	if err := store.Insert(ctx, testEvent("dup", 1)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	batch := []*domain.Event{testEvent("x", 2), testEvent("dup", 3)}
	if err := store.InsertBulk(ctx, batch); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	// Nothing from the failed batch may be visible.
	events, err := store.GetBySymbol(ctx, "BTCUSDT")
	if err != nil {
		t.Fatalf("get by symbol: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected failed batch rolled back, got %d events", len(events))
	}
}

func TestEventStore_InsertBulkIntraBatchDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore()

	batch := []*domain.Event{testEvent("x", 1), testEvent("x", 2)}
	if err := store.InsertBulk(ctx, batch); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey for intra-batch duplicate, got %v", err)
	}
}

func TestEventStore_GetByTimeRange(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore()

	for i, id := range []string{"a", "b", "c", "d"} {
		if err := store.Insert(ctx, testEvent(id, int64(i)*10)); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	events, err := store.GetByTimeRange(ctx, "BTCUSDT", 10, 20)
	if err != nil {
		t.Fatalf("get by time range: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events in inclusive range, got %d", len(events))
	}
	if events[0].TimestampMs != 10 || events[1].TimestampMs != 20 {
		t.Errorf("unexpected range boundaries: %d, %d", events[0].TimestampMs, events[1].TimestampMs)
	}
}

func TestEventStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore()

	if err := store.Insert(ctx, testEvent("a", 1)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	events, _ := store.GetBySymbol(ctx, "BTCUSDT")
	events[0].Price = 999

	again, _ := store.GetBySymbol(ctx, "BTCUSDT")
	if again[0].Price != 100 {
		t.Errorf("expected stored event unchanged, got price %f", again[0].Price)
	}
}
