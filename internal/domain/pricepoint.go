package domain

// PricePoint represents a best-bid/offer snapshot.
// Irregularly sampled as produced upstream; the microstructure calculator
// resamples onto a uniform grid internally.
// Corresponds to the price_points table in PostgreSQL.
type PricePoint struct {
	ID          int64   // BIGSERIAL primary key
	Symbol      string  // instrument identifier
	TimestampMs int64   // Unix timestamp in milliseconds
	MidPrice    float64 // (best_bid + best_ask) / 2
	BestBid     float64
	BestAsk     float64
	Spread      float64 // best_ask - best_bid
	CreatedAt   int64   // record creation timestamp (ms)
}
