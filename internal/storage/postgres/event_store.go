package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"order-book-lab/internal/domain"
	"order-book-lab/internal/storage"
)

// EventStore implements storage.EventStore using PostgreSQL.
type EventStore struct {
	pool *Pool
}

// NewEventStore creates a new EventStore.
func NewEventStore(pool *Pool) *EventStore {
	return &EventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

const insertEventQuery = `
	INSERT INTO order_book_events (
		event_id, symbol, timestamp_ms, event_type, side, price, volume,
		usd_value, distance_from_mid_pct, mid_price, best_bid, best_ask
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

const selectEventColumns = `
	SELECT id, event_id, symbol, timestamp_ms, event_type, side, price, volume,
	       usd_value, distance_from_mid_pct, mid_price, best_bid, best_ask, created_at
	FROM order_book_events
`

// Insert adds a new event. Returns ErrDuplicateKey if event_id exists.
func (s *EventStore) Insert(ctx context.Context, e *domain.Event) error {
	_, err := s.pool.Exec(ctx, insertEventQuery,
		e.EventID,
		e.Symbol,
		e.TimestampMs,
		e.Type,
		e.Side,
		e.Price,
		e.Volume,
		e.USDValue,
		e.DistanceFromMidPct,
		e.MidPrice,
		e.BestBid,
		e.BestAsk,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
func (s *EventStore) InsertBulk(ctx context.Context, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range events {
		_, err := tx.Exec(ctx, insertEventQuery,
			e.EventID,
			e.Symbol,
			e.TimestampMs,
			e.Type,
			e.Side,
			e.Price,
			e.Volume,
			e.USDValue,
			e.DistanceFromMidPct,
			e.MidPrice,
			e.BestBid,
			e.BestAsk,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert event in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetBySymbol retrieves all events for a symbol, ordered by timestamp ASC.
func (s *EventStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.Event, error) {
	query := selectEventColumns + `
		WHERE symbol = $1
		ORDER BY timestamp_ms ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("get events by symbol: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetByTimeRange retrieves events for a symbol within [start, end] (inclusive).
func (s *EventStore) GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.Event, error) {
	query := selectEventColumns + `
		WHERE symbol = $1 AND timestamp_ms >= $2 AND timestamp_ms <= $3
		ORDER BY timestamp_ms ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("get events by time range: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// scanEvents scans multiple rows into a slice of Event.
func scanEvents(rows pgx.Rows) ([]*domain.Event, error) {
	var events []*domain.Event

	for rows.Next() {
		var e domain.Event

		err := rows.Scan(
			&e.ID,
			&e.EventID,
			&e.Symbol,
			&e.TimestampMs,
			&e.Type,
			&e.Side,
			&e.Price,
			&e.Volume,
			&e.USDValue,
			&e.DistanceFromMidPct,
			&e.MidPrice,
			&e.BestBid,
			&e.BestAsk,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}

		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}

	return events, nil
}
