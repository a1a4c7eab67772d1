package storage

import (
	"context"

	"order-book-lab/internal/domain"
)

// EventStore provides access to order_book_events storage.
type EventStore interface {
	// Insert adds a new event. Returns ErrDuplicateKey if event_id exists.
	Insert(ctx context.Context, e *domain.Event) error

	// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, events []*domain.Event) error

	// GetBySymbol retrieves all events for a symbol, ordered by timestamp ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.Event, error)

	// GetByTimeRange retrieves events for a symbol within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.Event, error)
}

// PricePointStore provides access to price_points storage.
type PricePointStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate (symbol, timestamp_ms).
	InsertBulk(ctx context.Context, points []*domain.PricePoint) error

	// GetBySymbol retrieves all points for a symbol, ordered by timestamp ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.PricePoint, error)

	// GetByTimeRange retrieves points for a symbol within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.PricePoint, error)
}

// OFIWindowStore provides access to ofi_windows storage.
type OFIWindowStore interface {
	// InsertBulk adds multiple windows. Fails entire batch on duplicate (symbol, timestamp_ms, window_ms).
	InsertBulk(ctx context.Context, windows []*domain.OFIWindow) error

	// GetBySymbol retrieves all windows for a symbol, ordered by timestamp ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.OFIWindow, error)

	// GetByTimeRange retrieves windows for a symbol within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.OFIWindow, error)
}

// MicrostructureStore provides access to microstructure_samples storage.
type MicrostructureStore interface {
	// InsertBulk adds multiple samples. Fails entire batch on duplicate (symbol, timestamp_ms).
	InsertBulk(ctx context.Context, samples []*domain.MicrostructureSample) error

	// GetBySymbol retrieves all samples for a symbol, ordered by timestamp ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.MicrostructureSample, error)

	// GetByTimeRange retrieves samples for a symbol within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.MicrostructureSample, error)
}
