package clickhouse

import (
	"context"
	"fmt"

	"order-book-lab/internal/domain"
	"order-book-lab/internal/storage"
)

// OFIWindowStore implements storage.OFIWindowStore using ClickHouse.
type OFIWindowStore struct {
	conn *Conn
}

// NewOFIWindowStore creates a new OFIWindowStore.
func NewOFIWindowStore(conn *Conn) *OFIWindowStore {
	return &OFIWindowStore{conn: conn}
}

// Compile-time interface check.
var _ storage.OFIWindowStore = (*OFIWindowStore)(nil)

// chRows is the subset of driver.Rows the scanners need.
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// InsertBulk adds multiple windows. Fails entire batch on duplicate
// (symbol, timestamp_ms, window_ms). MergeTree does not enforce
// uniqueness, so duplicates are rejected with explicit checks.
func (s *OFIWindowStore) InsertBulk(ctx context.Context, windows []*domain.OFIWindow) error {
	if len(windows) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		symbol      string
		timestampMs int64
		windowMs    int64
	}
	seen := make(map[key]struct{})
	for _, w := range windows {
		if w == nil || w.Symbol == "" || w.WindowMs <= 0 {
			return storage.ErrInvalidInput
		}
		k := key{w.Symbol, w.TimestampMs, w.WindowMs}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, w := range windows {
		exists, err := s.exists(ctx, w.Symbol, w.TimestampMs, w.WindowMs)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO ofi_windows (
			symbol, timestamp_ms, window_ms, ofi, ofi_with_trades,
			bid_pressure, ask_pressure, market_buy_volume, market_sell_volume,
			depth_imbalance, mid_price, event_count,
			ofi_ma5, ofi_ma20, ofi_std20, ofi_zscore, ofi_trend, ofi_cumulative
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, w := range windows {
		err = batch.Append(
			w.Symbol, uint64(w.TimestampMs), uint64(w.WindowMs),
			w.OFI, w.OFIWithTrades,
			w.BidPressure, w.AskPressure, w.MarketBuyVolume, w.MarketSellVolume,
			w.DepthImbalance, w.MidPrice, uint32(w.EventCount),
			w.OFIMA5, w.OFIMA20, w.OFIStd20, w.OFIZScore, w.OFITrend, w.OFICumulative,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

const selectOFIWindowColumns = `
	SELECT symbol, timestamp_ms, window_ms, ofi, ofi_with_trades,
	       bid_pressure, ask_pressure, market_buy_volume, market_sell_volume,
	       depth_imbalance, mid_price, event_count,
	       ofi_ma5, ofi_ma20, ofi_std20, ofi_zscore, ofi_trend, ofi_cumulative
	FROM ofi_windows
`

// GetBySymbol retrieves all windows for a symbol, ordered by timestamp ASC.
func (s *OFIWindowStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.OFIWindow, error) {
	query := selectOFIWindowColumns + `
		WHERE symbol = ?
		ORDER BY timestamp_ms ASC, window_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("query by symbol: %w", err)
	}
	defer rows.Close()

	return scanOFIWindows(rows)
}

// GetByTimeRange retrieves windows for a symbol within [start, end] (inclusive).
func (s *OFIWindowStore) GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.OFIWindow, error) {
	query := selectOFIWindowColumns + `
		WHERE symbol = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC, window_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanOFIWindows(rows)
}

// exists checks if a window with the given key exists.
func (s *OFIWindowStore) exists(ctx context.Context, symbol string, timestampMs, windowMs int64) (bool, error) {
	query := `
		SELECT count(*) FROM ofi_windows
		WHERE symbol = ? AND timestamp_ms = ? AND window_ms = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, symbol, uint64(timestampMs), uint64(windowMs)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanOFIWindows scans multiple rows.
func scanOFIWindows(rows chRows) ([]*domain.OFIWindow, error) {
	var windows []*domain.OFIWindow

	for rows.Next() {
		var w domain.OFIWindow
		var timestampMs, windowMs uint64
		var eventCount uint32

		err := rows.Scan(
			&w.Symbol, &timestampMs, &windowMs, &w.OFI, &w.OFIWithTrades,
			&w.BidPressure, &w.AskPressure, &w.MarketBuyVolume, &w.MarketSellVolume,
			&w.DepthImbalance, &w.MidPrice, &eventCount,
			&w.OFIMA5, &w.OFIMA20, &w.OFIStd20, &w.OFIZScore, &w.OFITrend, &w.OFICumulative,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ofi window row: %w", err)
		}

		w.TimestampMs = int64(timestampMs)
		w.WindowMs = int64(windowMs)
		w.EventCount = int(eventCount)
		windows = append(windows, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ofi window rows: %w", err)
	}

	return windows, nil
}
