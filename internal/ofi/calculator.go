// Package ofi computes windowed order-flow-imbalance series from
// order-book events. All functions are pure batch computations over
// immutable, time-ordered snapshots.
package ofi

import (
	"time"

	"order-book-lab/internal/domain"
	"order-book-lab/internal/rolling"
)

// Rolling horizons for the derived OFI fields, in buckets.
const (
	shortMAWindow = 5
	longMAWindow  = 20
)

// Interpretation labels for z-scored OFI.
const (
	InterpExtremeBullish  = "Extreme bullish pressure"
	InterpStrongBullish   = "Strong bullish pressure"
	InterpModerateBullish = "Moderate bullish pressure"
	InterpNeutral         = "Neutral"
	InterpModerateBearish = "Moderate bearish pressure"
	InterpStrongBearish   = "Strong bearish pressure"
	InterpExtremeBearish  = "Extreme bearish pressure"
)

// Calculate buckets events into fixed wall-clock-aligned windows and
// computes the OFI series with its rolling derived fields. Buckets are
// contiguous: empty buckets between the first and last event are emitted
// with zero pressures and mid price 0. Returns an empty series for empty
// input. Events must be sorted by timestamp ascending.
func Calculate(events []*domain.Event, window time.Duration) []*domain.OFIWindow {
	if len(events) == 0 || window <= 0 {
		return nil
	}
	windowMs := window.Milliseconds()

	firstBucket := alignBucket(events[0].TimestampMs, windowMs)
	lastBucket := alignBucket(events[len(events)-1].TimestampMs, windowMs)
	n := int((lastBucket-firstBucket)/windowMs) + 1

	symbol := events[0].Symbol
	windows := make([]*domain.OFIWindow, n)
	for i := range windows {
		windows[i] = &domain.OFIWindow{
			Symbol:      symbol,
			TimestampMs: firstBucket + int64(i)*windowMs,
			WindowMs:    windowMs,
		}
	}

	for _, e := range events {
		w := windows[(alignBucket(e.TimestampMs, windowMs)-firstBucket)/windowMs]
		w.EventCount++
		if e.MidPrice > 0 {
			w.MidPrice = e.MidPrice
		}

		switch e.Type {
		case domain.EventNewBid:
			w.BidPressure += e.Volume
		case domain.EventNewAsk:
			w.AskPressure += e.Volume
		case domain.EventIncrease:
			// The upstream feed may label trade-derived rows buy/sell
			// instead of bid/ask; accept both encodings.
			switch e.Side {
			case domain.SideBid, domain.SideBuy:
				w.BidPressure += e.Volume
			case domain.SideAsk, domain.SideSell:
				w.AskPressure += e.Volume
			}
		case domain.EventMarketBuy:
			w.MarketBuyVolume += e.Volume
		case domain.EventMarketSell:
			w.MarketSellVolume += e.Volume
		}
	}

	for _, w := range windows {
		w.OFI = w.BidPressure - w.AskPressure
		w.OFIWithTrades = w.OFI + (w.MarketBuyVolume - w.MarketSellVolume)
		total := w.BidPressure + w.AskPressure
		if total > 0 {
			w.DepthImbalance = (w.BidPressure - w.AskPressure) / total
		}
	}

	attachRollingFields(windows)
	return windows
}

// attachRollingFields computes the moving averages, z-score, trend and
// cumulative sum once the bucket series is assembled.
func attachRollingFields(windows []*domain.OFIWindow) {
	ofi := make([]float64, len(windows))
	for i, w := range windows {
		ofi[i] = w.OFI
	}

	ma5 := rolling.Mean(ofi, shortMAWindow)
	ma20 := rolling.Mean(ofi, longMAWindow)
	std20 := rolling.Std(ofi, longMAWindow)
	trend := rolling.Diff(ofi, 1)
	cum := rolling.CumSum(ofi)

	for i, w := range windows {
		w.OFIMA5 = ma5[i]
		w.OFIMA20 = ma20[i]
		w.OFIStd20 = std20[i]
		w.OFIZScore = (ofi[i] - ma20[i]) / (std20[i] + 1e-9)
		w.OFITrend = trend[i]
		w.OFICumulative = cum[i]
	}
}

// Interpret maps a z-scored OFI to a qualitative label using fixed
// threshold bands at plus/minus 1, 2 and 3.
func Interpret(zscore float64) string {
	switch {
	case zscore > 3:
		return InterpExtremeBullish
	case zscore > 2:
		return InterpStrongBullish
	case zscore > 1:
		return InterpModerateBullish
	case zscore < -3:
		return InterpExtremeBearish
	case zscore < -2:
		return InterpStrongBearish
	case zscore < -1:
		return InterpModerateBearish
	default:
		return InterpNeutral
	}
}

// alignBucket truncates a timestamp to its wall-clock-aligned bucket start.
func alignBucket(timestampMs, windowMs int64) int64 {
	return timestampMs - timestampMs%windowMs
}
