package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-book-lab/internal/domain"
	"order-book-lab/internal/storage"
)

func testWindow(ts, windowMs int64) *domain.OFIWindow {
	return &domain.OFIWindow{
		Symbol:           "BTCUSDT",
		TimestampMs:      ts,
		WindowMs:         windowMs,
		OFI:              12.5,
		OFIWithTrades:    10.0,
		BidPressure:      20.0,
		AskPressure:      7.5,
		MarketBuyVolume:  1.0,
		MarketSellVolume: 3.5,
		DepthImbalance:   0.4545,
		MidPrice:         42021.5,
		EventCount:       17,
		OFIMA5:           11.0,
		OFIMA20:          9.0,
		OFIStd20:         2.5,
		OFIZScore:        1.4,
		OFITrend:         0.5,
		OFICumulative:    100.0,
	}
}

func TestOFIWindowStore_InsertBulkAndGetBySymbol(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOFIWindowStore(conn)

	batch := []*domain.OFIWindow{testWindow(2000, 1000), testWindow(1000, 1000)}
	require.NoError(t, store.InsertBulk(ctx, batch))

	windows, err := store.GetBySymbol(ctx, "BTCUSDT")
	require.NoError(t, err)

	require.Len(t, windows, 2)
	assert.Equal(t, int64(1000), windows[0].TimestampMs)
	got := windows[1]
	assert.Equal(t, int64(2000), got.TimestampMs)
	assert.Equal(t, int64(1000), got.WindowMs)
	assert.InDelta(t, 12.5, got.OFI, 1e-9)
	assert.InDelta(t, 10.0, got.OFIWithTrades, 1e-9)
	assert.InDelta(t, 0.4545, got.DepthImbalance, 1e-9)
	assert.Equal(t, 17, got.EventCount)
	assert.InDelta(t, 1.4, got.OFIZScore, 1e-9)
}

func TestOFIWindowStore_DuplicateKey(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOFIWindowStore(conn)

	require.NoError(t, store.InsertBulk(ctx, []*domain.OFIWindow{testWindow(1000, 1000)}))

	err := store.InsertBulk(ctx, []*domain.OFIWindow{testWindow(1000, 1000)})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Same bucket start at a different width is a distinct key.
	require.NoError(t, store.InsertBulk(ctx, []*domain.OFIWindow{testWindow(1000, 5000)}))
}

func TestOFIWindowStore_IntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOFIWindowStore(conn)

	batch := []*domain.OFIWindow{testWindow(1000, 1000), testWindow(1000, 1000)}
	err := store.InsertBulk(ctx, batch)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestOFIWindowStore_GetByTimeRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOFIWindowStore(conn)

	var batch []*domain.OFIWindow
	for i := int64(0); i < 5; i++ {
		batch = append(batch, testWindow(i*1000, 1000))
	}
	require.NoError(t, store.InsertBulk(ctx, batch))

	windows, err := store.GetByTimeRange(ctx, "BTCUSDT", 1000, 3000)
	require.NoError(t, err)
	assert.Len(t, windows, 3)
}
