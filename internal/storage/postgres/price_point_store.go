package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"order-book-lab/internal/domain"
	"order-book-lab/internal/storage"
)

// PricePointStore implements storage.PricePointStore using PostgreSQL.
type PricePointStore struct {
	pool *Pool
}

// NewPricePointStore creates a new PricePointStore.
func NewPricePointStore(pool *Pool) *PricePointStore {
	return &PricePointStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PricePointStore = (*PricePointStore)(nil)

const insertPricePointQuery = `
	INSERT INTO price_points (
		symbol, timestamp_ms, mid_price, best_bid, best_ask, spread
	) VALUES ($1, $2, $3, $4, $5, $6)
`

const selectPricePointColumns = `
	SELECT id, symbol, timestamp_ms, mid_price, best_bid, best_ask, spread, created_at
	FROM price_points
`

// InsertBulk adds multiple points. Fails entire batch on duplicate (symbol, timestamp_ms).
func (s *PricePointStore) InsertBulk(ctx context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range points {
		_, err := tx.Exec(ctx, insertPricePointQuery,
			p.Symbol,
			p.TimestampMs,
			p.MidPrice,
			p.BestBid,
			p.BestAsk,
			p.Spread,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert price point in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetBySymbol retrieves all points for a symbol, ordered by timestamp ASC.
func (s *PricePointStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.PricePoint, error) {
	query := selectPricePointColumns + `
		WHERE symbol = $1
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("get price points by symbol: %w", err)
	}
	defer rows.Close()

	return scanPricePoints(rows)
}

// GetByTimeRange retrieves points for a symbol within [start, end] (inclusive).
func (s *PricePointStore) GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.PricePoint, error) {
	query := selectPricePointColumns + `
		WHERE symbol = $1 AND timestamp_ms >= $2 AND timestamp_ms <= $3
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("get price points by time range: %w", err)
	}
	defer rows.Close()

	return scanPricePoints(rows)
}

// scanPricePoints scans multiple rows into a slice of PricePoint.
func scanPricePoints(rows pgx.Rows) ([]*domain.PricePoint, error) {
	var points []*domain.PricePoint

	for rows.Next() {
		var p domain.PricePoint

		err := rows.Scan(
			&p.ID,
			&p.Symbol,
			&p.TimestampMs,
			&p.MidPrice,
			&p.BestBid,
			&p.BestAsk,
			&p.Spread,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan price point row: %w", err)
		}

		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price point rows: %w", err)
	}

	return points, nil
}
