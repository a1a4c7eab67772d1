package clickhouse

import (
	"context"
	"fmt"

	"order-book-lab/internal/domain"
	"order-book-lab/internal/storage"
)

// MicrostructureStore implements storage.MicrostructureStore using ClickHouse.
type MicrostructureStore struct {
	conn *Conn
}

// NewMicrostructureStore creates a new MicrostructureStore.
func NewMicrostructureStore(conn *Conn) *MicrostructureStore {
	return &MicrostructureStore{conn: conn}
}

// Compile-time interface check.
var _ storage.MicrostructureStore = (*MicrostructureStore)(nil)

// InsertBulk adds multiple samples. Fails entire batch on duplicate
// (symbol, timestamp_ms).
func (s *MicrostructureStore) InsertBulk(ctx context.Context, samples []*domain.MicrostructureSample) error {
	if len(samples) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		symbol      string
		timestampMs int64
	}
	seen := make(map[key]struct{})
	for _, m := range samples {
		if m == nil || m.Symbol == "" {
			return storage.ErrInvalidInput
		}
		k := key{m.Symbol, m.TimestampMs}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, m := range samples {
		exists, err := s.exists(ctx, m.Symbol, m.TimestampMs)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO microstructure_samples (
			symbol, timestamp_ms, mid_price, best_bid, best_ask,
			simple_return, log_return,
			spread_bps, spread_bps_mean60, spread_bps_std60, spread_zscore, relative_spread,
			volatility_1m, volatility_5m, realized_vol_1m, realized_vol_5m, range_vol,
			velocity_1s, velocity_5s, velocity_30s, acceleration, momentum_1m, momentum_5m,
			bid_ask_bounce, effective_spread,
			trade_count_60, trade_volume_60, trade_usd_60, buy_volume, sell_volume, trade_imbalance
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, m := range samples {
		err = batch.Append(
			m.Symbol, uint64(m.TimestampMs), m.MidPrice, m.BestBid, m.BestAsk,
			m.Return, m.LogReturn,
			m.SpreadBps, m.SpreadBpsMean60, m.SpreadBpsStd60, m.SpreadZScore, m.RelativeSpread,
			m.Volatility1m, m.Volatility5m, m.RealizedVol1m, m.RealizedVol5m, m.RangeVol,
			m.Velocity1s, m.Velocity5s, m.Velocity30s, m.Acceleration, m.Momentum1m, m.Momentum5m,
			m.BidAskBounce, m.EffectiveSpread,
			m.TradeCount60, m.TradeVolume60, m.TradeUSD60, m.BuyVolume, m.SellVolume, m.TradeImbalance,
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

const selectMicrostructureColumns = `
	SELECT symbol, timestamp_ms, mid_price, best_bid, best_ask,
	       simple_return, log_return,
	       spread_bps, spread_bps_mean60, spread_bps_std60, spread_zscore, relative_spread,
	       volatility_1m, volatility_5m, realized_vol_1m, realized_vol_5m, range_vol,
	       velocity_1s, velocity_5s, velocity_30s, acceleration, momentum_1m, momentum_5m,
	       bid_ask_bounce, effective_spread,
	       trade_count_60, trade_volume_60, trade_usd_60, buy_volume, sell_volume, trade_imbalance
	FROM microstructure_samples
`

// GetBySymbol retrieves all samples for a symbol, ordered by timestamp ASC.
func (s *MicrostructureStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.MicrostructureSample, error) {
	query := selectMicrostructureColumns + `
		WHERE symbol = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("query by symbol: %w", err)
	}
	defer rows.Close()

	return scanMicrostructureSamples(rows)
}

// GetByTimeRange retrieves samples for a symbol within [start, end] (inclusive).
func (s *MicrostructureStore) GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.MicrostructureSample, error) {
	query := selectMicrostructureColumns + `
		WHERE symbol = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanMicrostructureSamples(rows)
}

// exists checks if a sample with the given key exists.
func (s *MicrostructureStore) exists(ctx context.Context, symbol string, timestampMs int64) (bool, error) {
	query := `
		SELECT count(*) FROM microstructure_samples
		WHERE symbol = ? AND timestamp_ms = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, symbol, uint64(timestampMs)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanMicrostructureSamples scans multiple rows.
func scanMicrostructureSamples(rows chRows) ([]*domain.MicrostructureSample, error) {
	var samples []*domain.MicrostructureSample

	for rows.Next() {
		var m domain.MicrostructureSample
		var timestampMs uint64

		err := rows.Scan(
			&m.Symbol, &timestampMs, &m.MidPrice, &m.BestBid, &m.BestAsk,
			&m.Return, &m.LogReturn,
			&m.SpreadBps, &m.SpreadBpsMean60, &m.SpreadBpsStd60, &m.SpreadZScore, &m.RelativeSpread,
			&m.Volatility1m, &m.Volatility5m, &m.RealizedVol1m, &m.RealizedVol5m, &m.RangeVol,
			&m.Velocity1s, &m.Velocity5s, &m.Velocity30s, &m.Acceleration, &m.Momentum1m, &m.Momentum5m,
			&m.BidAskBounce, &m.EffectiveSpread,
			&m.TradeCount60, &m.TradeVolume60, &m.TradeUSD60, &m.BuyVolume, &m.SellVolume, &m.TradeImbalance,
		)
		if err != nil {
			return nil, fmt.Errorf("scan microstructure row: %w", err)
		}

		m.TimestampMs = int64(timestampMs)
		samples = append(samples, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate microstructure rows: %w", err)
	}

	return samples, nil
}
