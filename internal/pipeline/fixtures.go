package pipeline

import (
	"context"
	"fmt"
	"math"

	"order-book-lab/internal/domain"
	"order-book-lab/internal/idhash"
	"order-book-lab/internal/storage"
)

// FixtureSymbol is the instrument the synthetic feed describes.
const FixtureSymbol = "BTCUSDT"

const (
	fixtureSeconds   = 600
	fixtureStartMs   = 1704067200000 // 2024-01-01 00:00:00 UTC
	fixtureBasePrice = 42000.0
)

// LoadFixtures populates the raw stores with a deterministic synthetic
// feed: a drifting mid price with clustered resting orders on both
// sides and trades whose direction leads the next move. Repeated loads
// into the same store fail with ErrDuplicateKey.
func LoadFixtures(ctx context.Context, events storage.EventStore, prices storage.PricePointStore) error {
	if err := prices.InsertBulk(ctx, fixturePricePoints()); err != nil {
		return fmt.Errorf("load price point fixtures: %w", err)
	}
	if err := events.InsertBulk(ctx, fixtureEvents()); err != nil {
		return fmt.Errorf("load event fixtures: %w", err)
	}
	return nil
}

// fixtureMid returns the synthetic mid price at second i: a slow drift
// plus two oscillations, pseudo-random but fully reproducible.
func fixtureMid(i int) float64 {
	drift := 0.02 * float64(i)
	wave := 8*math.Sin(float64(i)/45) + 3*math.Sin(float64(i)/7)
	noise := float64((i*37)%11-5) * 0.3
	return fixtureBasePrice + drift + wave + noise
}

func fixturePricePoints() []*domain.PricePoint {
	points := make([]*domain.PricePoint, 0, fixtureSeconds)
	for i := 0; i < fixtureSeconds; i++ {
		mid := fixtureMid(i)
		spread := 1.0 + 0.4*math.Abs(math.Sin(float64(i)/30))
		points = append(points, &domain.PricePoint{
			Symbol:      FixtureSymbol,
			TimestampMs: fixtureStartMs + int64(i)*1000,
			MidPrice:    mid,
			BestBid:     mid - spread/2,
			BestAsk:     mid + spread/2,
			Spread:      spread,
		})
	}
	return points
}

func fixtureEvents() []*domain.Event {
	var events []*domain.Event

	add := func(i int, eventType domain.EventType, side domain.Side, price, volume float64) {
		ts := fixtureStartMs + int64(i)*1000
		mid := fixtureMid(i)
		e := &domain.Event{
			EventID:     idhash.ComputeEventID(FixtureSymbol, ts, string(eventType), string(side), price, volume),
			Symbol:      FixtureSymbol,
			TimestampMs: ts,
			Type:        eventType,
			Side:        side,
			Price:       price,
			Volume:      volume,
			USDValue:    price * volume,
			MidPrice:    mid,
			BestBid:     mid - 0.5,
			BestAsk:     mid + 0.5,
		}
		if mid > 0 {
			e.DistanceFromMidPct = (price - mid) / mid * 100
		}
		events = append(events, e)
	}

	for i := 0; i < fixtureSeconds; i++ {
		mid := fixtureMid(i)

		// Resting liquidity clustered at two support/resistance bands
		// per side, refreshed every few seconds.
		if i%3 == 0 {
			bandOffset := 10.0 + float64((i*13)%5)*0.5
			add(i, domain.EventNewBid, domain.SideBid, mid-bandOffset, 0.4+float64(i%4)*0.1)
			add(i, domain.EventNewAsk, domain.SideAsk, mid+bandOffset, 0.4+float64(i%3)*0.1)
		}
		if i%7 == 0 {
			add(i, domain.EventNewBid, domain.SideBid, mid-25, 1.2)
			add(i, domain.EventNewAsk, domain.SideAsk, mid+25, 1.1)
		}
		if i%11 == 0 {
			add(i, domain.EventIncrease, domain.SideBid, mid-10, 0.3)
		}
		if i%13 == 0 {
			add(i, domain.EventDecrease, domain.SideAsk, mid+10, 0.2)
		}

		// Trades lean in the direction of the next second's move, so the
		// derived flow signals carry real predictive structure.
		if i+1 < fixtureSeconds && i%2 == 0 {
			next := fixtureMid(i + 1)
			size := 0.15 + float64((i*7)%5)*0.05
			if next > mid {
				add(i, domain.EventMarketBuy, domain.SideBuy, mid+0.5, size)
			} else {
				add(i, domain.EventMarketSell, domain.SideSell, mid-0.5, size)
			}
		}
	}
	return events
}
