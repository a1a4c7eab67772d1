package ingestion

import (
	"order-book-lab/internal/domain"
	"order-book-lab/internal/idhash"
)

// BookDiffer turns successive depth snapshots into classified events.
// The first snapshot per symbol is a baseline and produces no events.
// Only changes worth at least MinUSDValue are emitted; trades always are.
// Not safe for concurrent use.
type BookDiffer struct {
	minUSDValue float64
	books       map[string]*bookState
}

type bookState struct {
	bids map[float64]float64 // price -> quantity
	asks map[float64]float64
	mid  float64
	bid  float64
	ask  float64
}

// NewBookDiffer creates a differ with the given minimum usd value filter.
func NewBookDiffer(minUSDValue float64) *BookDiffer {
	return &BookDiffer{
		minUSDValue: minUSDValue,
		books:       make(map[string]*bookState),
	}
}

// ApplySnapshot diffs the snapshot against the previous state and
// returns the classified events plus the book's price point. Events are
// ordered bids then asks, best levels first.
func (d *BookDiffer) ApplySnapshot(snap *BookSnapshot) ([]*domain.Event, *domain.PricePoint) {
	state := &bookState{
		bids: make(map[float64]float64, len(snap.Bids)),
		asks: make(map[float64]float64, len(snap.Asks)),
	}
	for _, l := range snap.Bids {
		state.bids[l.Price] = l.Quantity
	}
	for _, l := range snap.Asks {
		state.asks[l.Price] = l.Quantity
	}
	if len(snap.Bids) > 0 {
		state.bid = snap.Bids[0].Price
	}
	if len(snap.Asks) > 0 {
		state.ask = snap.Asks[0].Price
	}
	if state.bid > 0 && state.ask > 0 {
		state.mid = (state.bid + state.ask) / 2
	}

	prev, seen := d.books[snap.Symbol]
	d.books[snap.Symbol] = state

	var point *domain.PricePoint
	if state.mid > 0 {
		point = &domain.PricePoint{
			Symbol:      snap.Symbol,
			TimestampMs: snap.TimestampMs,
			MidPrice:    state.mid,
			BestBid:     state.bid,
			BestAsk:     state.ask,
			Spread:      state.ask - state.bid,
		}
	}

	if !seen {
		return nil, point
	}

	var events []*domain.Event
	for _, l := range snap.Bids {
		if e := d.diffLevel(snap, state, prev.bids, l, domain.SideBid); e != nil {
			events = append(events, e)
		}
	}
	for _, l := range snap.Asks {
		if e := d.diffLevel(snap, state, prev.asks, l, domain.SideAsk); e != nil {
			events = append(events, e)
		}
	}
	return events, point
}

// diffLevel classifies one level against the previous book side.
func (d *BookDiffer) diffLevel(snap *BookSnapshot, state *bookState, prevSide map[float64]float64, l BookLevel, side domain.Side) *domain.Event {
	prevQty, existed := prevSide[l.Price]

	var eventType domain.EventType
	var volume float64
	switch {
	case !existed:
		if side == domain.SideBid {
			eventType = domain.EventNewBid
		} else {
			eventType = domain.EventNewAsk
		}
		volume = l.Quantity
	case l.Quantity > prevQty:
		eventType = domain.EventIncrease
		volume = l.Quantity - prevQty
	case l.Quantity < prevQty:
		eventType = domain.EventDecrease
		volume = prevQty - l.Quantity
	default:
		return nil
	}

	usd := l.Price * volume
	if usd < d.minUSDValue {
		return nil
	}

	return d.buildEvent(snap.Symbol, snap.TimestampMs, eventType, side, l.Price, volume, state)
}

// ApplyTrade converts an execution into a market-order event against the
// current book state.
func (d *BookDiffer) ApplyTrade(t *Trade) *domain.Event {
	eventType := domain.EventMarketSell
	side := domain.SideSell
	if t.IsBuy {
		eventType = domain.EventMarketBuy
		side = domain.SideBuy
	}

	state := d.books[t.Symbol]
	if state == nil {
		state = &bookState{}
	}
	return d.buildEvent(t.Symbol, t.TimestampMs, eventType, side, t.Price, t.Quantity, state)
}

func (d *BookDiffer) buildEvent(symbol string, ts int64, eventType domain.EventType, side domain.Side, price, volume float64, state *bookState) *domain.Event {
	e := &domain.Event{
		EventID:     idhash.ComputeEventID(symbol, ts, string(eventType), string(side), price, volume),
		Symbol:      symbol,
		TimestampMs: ts,
		Type:        eventType,
		Side:        side,
		Price:       price,
		Volume:      volume,
		USDValue:    price * volume,
		MidPrice:    state.mid,
		BestBid:     state.bid,
		BestAsk:     state.ask,
	}
	if state.mid > 0 {
		e.DistanceFromMidPct = (price - state.mid) / state.mid * 100
	}
	return e
}
