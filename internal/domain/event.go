package domain

// EventType classifies an order-book event.
type EventType string

// Event type constants.
const (
	EventNewBid     EventType = "new_bid"
	EventNewAsk     EventType = "new_ask"
	EventIncrease   EventType = "increase"
	EventDecrease   EventType = "decrease"
	EventMarketBuy  EventType = "market_buy"
	EventMarketSell EventType = "market_sell"
)

// Side identifies the book side an event belongs to.
// Resting-order events use bid/ask; trade-derived rows may use buy/sell.
type Side string

// Side constants.
const (
	SideBid  Side = "bid"
	SideAsk  Side = "ask"
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Event represents a single order-book event: a large resting-order
// placement/change or an executed market trade.
// Append-only, ordered by timestamp; read-only to all analyzers.
// Corresponds to the order_book_events table in PostgreSQL.
type Event struct {
	ID                 int64     // BIGSERIAL primary key
	EventID            string    // deterministic dedup key, see idhash
	Symbol             string    // instrument identifier
	TimestampMs        int64     // Unix timestamp in milliseconds
	Type               EventType // event classification
	Side               Side      // bid/ask, or buy/sell for trade rows
	Price              float64   // level or execution price, > 0
	Volume             float64   // base volume, >= 0
	USDValue           float64   // price * volume at event time
	DistanceFromMidPct float64   // signed distance from mid price, percent
	MidPrice           float64   // mid price at event time
	BestBid            float64   // best bid at event time
	BestAsk            float64   // best ask at event time
	CreatedAt          int64     // record creation timestamp (ms)
}

// IsLiquidityAdding reports whether the event adds resting liquidity
// (new placement or size increase).
func (e *Event) IsLiquidityAdding() bool {
	switch e.Type {
	case EventNewBid, EventNewAsk, EventIncrease:
		return true
	default:
		return false
	}
}

// IsMarketOrder reports whether the event is an executed market trade.
func (e *Event) IsMarketOrder() bool {
	return e.Type == EventMarketBuy || e.Type == EventMarketSell
}
