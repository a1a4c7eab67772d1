package ingestion

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"order-book-lab/internal/domain"
	"order-book-lab/internal/storage"
)

// IngesterConfig configures ingestion batching.
type IngesterConfig struct {
	// MinUSDValue filters book-level changes below this notional.
	MinUSDValue float64
	// BatchSize triggers a flush once this many events are buffered.
	BatchSize int
	// FlushInterval flushes partial batches on this cadence.
	FlushInterval time.Duration
}

// DefaultIngesterConfig returns default ingestion configuration.
func DefaultIngesterConfig() IngesterConfig {
	return IngesterConfig{
		MinUSDValue:   500,
		BatchSize:     200,
		FlushInterval: 2 * time.Second,
	}
}

// Ingester consumes raw feed frames, classifies them through a book
// differ and persists the resulting events and price points.
type Ingester struct {
	config IngesterConfig
	differ *BookDiffer
	events storage.EventStore
	prices storage.PricePointStore
	log    *zap.Logger

	eventBuf []*domain.Event
	priceBuf []*domain.PricePoint
}

// NewIngester creates an ingester writing to the given stores.
func NewIngester(config IngesterConfig, events storage.EventStore, prices storage.PricePointStore, log *zap.Logger) *Ingester {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingester{
		config: config,
		differ: NewBookDiffer(config.MinUSDValue),
		events: events,
		prices: prices,
		log:    log,
	}
}

// Run consumes frames until the channel closes or the context is
// cancelled, flushing any buffered rows before returning.
func (in *Ingester) Run(ctx context.Context, frames <-chan []byte) error {
	ticker := time.NewTicker(in.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			in.flush(context.WithoutCancel(ctx))
			return ctx.Err()

		case <-ticker.C:
			in.flush(ctx)

		case frame, ok := <-frames:
			if !ok {
				in.flush(ctx)
				return nil
			}
			in.handleFrame(frame)
			if len(in.eventBuf) >= in.config.BatchSize {
				in.flush(ctx)
			}
		}
	}
}

// handleFrame parses one frame and buffers the derived rows.
func (in *Ingester) handleFrame(frame []byte) {
	snap, trade, err := parseMessage(frame)
	if err != nil {
		in.log.Warn("dropping feed frame", zap.Error(err))
		return
	}

	if snap != nil {
		events, point := in.differ.ApplySnapshot(snap)
		in.eventBuf = append(in.eventBuf, events...)
		if point != nil {
			in.priceBuf = append(in.priceBuf, point)
		}
		return
	}

	in.eventBuf = append(in.eventBuf, in.differ.ApplyTrade(trade))
}

// flush writes buffered rows to storage. Duplicate-key failures are
// expected on stream replays and leave the buffers cleared.
func (in *Ingester) flush(ctx context.Context) {
	if len(in.eventBuf) > 0 {
		if err := in.events.InsertBulk(ctx, in.eventBuf); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				in.log.Debug("skipping replayed events", zap.Int("count", len(in.eventBuf)))
			} else {
				in.log.Error("event flush failed", zap.Int("count", len(in.eventBuf)), zap.Error(err))
			}
		} else {
			in.log.Debug("flushed events", zap.Int("count", len(in.eventBuf)))
		}
		in.eventBuf = nil
	}

	if len(in.priceBuf) > 0 {
		if err := in.prices.InsertBulk(ctx, in.priceBuf); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				in.log.Debug("skipping replayed price points", zap.Int("count", len(in.priceBuf)))
			} else {
				in.log.Error("price point flush failed", zap.Int("count", len(in.priceBuf)), zap.Error(err))
			}
		} else {
			in.log.Debug("flushed price points", zap.Int("count", len(in.priceBuf)))
		}
		in.priceBuf = nil
	}
}
