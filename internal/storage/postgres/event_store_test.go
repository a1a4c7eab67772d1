package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-book-lab/internal/domain"
	"order-book-lab/internal/storage"
)

func testEvent(eventID string, ts int64) *domain.Event {
	return &domain.Event{
		EventID:            eventID,
		Symbol:             "BTCUSDT",
		TimestampMs:        ts,
		Type:               domain.EventNewBid,
		Side:               domain.SideBid,
		Price:              42000.5,
		Volume:             1.25,
		USDValue:           52500.625,
		DistanceFromMidPct: -0.05,
		MidPrice:           42021.5,
		BestBid:            42020.0,
		BestAsk:            42023.0,
	}
}

func TestEventStore_InsertAndGetBySymbol(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEventStore(pool)

	event := testEvent("ev-1", 1700000001000)
	require.NoError(t, store.Insert(ctx, event))

	events, err := store.GetBySymbol(ctx, "BTCUSDT")
	require.NoError(t, err)

	require.Len(t, events, 1)
	got := events[0]
	assert.Equal(t, event.EventID, got.EventID)
	assert.Equal(t, event.Symbol, got.Symbol)
	assert.Equal(t, event.TimestampMs, got.TimestampMs)
	assert.Equal(t, event.Type, got.Type)
	assert.Equal(t, event.Side, got.Side)
	assert.InDelta(t, event.Price, got.Price, 1e-9)
	assert.InDelta(t, event.Volume, got.Volume, 1e-9)
	assert.InDelta(t, event.USDValue, got.USDValue, 1e-9)
	assert.InDelta(t, event.DistanceFromMidPct, got.DistanceFromMidPct, 1e-9)
	assert.NotZero(t, got.ID)
	assert.NotZero(t, got.CreatedAt)
}

func TestEventStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEventStore(pool)

	event := testEvent("ev-dup", 1700000001000)
	require.NoError(t, store.Insert(ctx, event))

	err := store.Insert(ctx, event)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestEventStore_InsertBulkAtomic(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEventStore(pool)

	require.NoError(t, store.Insert(ctx, testEvent("ev-existing", 1700000001000)))

	batch := []*domain.Event{
		testEvent("ev-new", 1700000002000),
		testEvent("ev-existing", 1700000003000),
	}
	err := store.InsertBulk(ctx, batch)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// The whole batch must be rolled back.
	events, err := store.GetBySymbol(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestEventStore_GetByTimeRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEventStore(pool)

	batch := []*domain.Event{
		testEvent("ev-a", 1000),
		testEvent("ev-b", 2000),
		testEvent("ev-c", 3000),
	}
	require.NoError(t, store.InsertBulk(ctx, batch))

	events, err := store.GetByTimeRange(ctx, "BTCUSDT", 1000, 2000)
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, int64(1000), events[0].TimestampMs)
	assert.Equal(t, int64(2000), events[1].TimestampMs)
}
