package ofi

import (
	"math"
	"testing"
	"time"

	"order-book-lab/internal/domain"
)

func flowEvent(ts int64, eventType domain.EventType, side domain.Side, volume float64) *domain.Event {
	return &domain.Event{
		Symbol:      "BTCUSDT",
		TimestampMs: ts,
		Type:        eventType,
		Side:        side,
		Price:       100.0,
		Volume:      volume,
		MidPrice:    100.0,
	}
}

func TestCalculate_EmptyInput(t *testing.T) {
	if got := Calculate(nil, time.Second); len(got) != 0 {
		t.Errorf("expected empty series, got %d windows", len(got))
	}
}

func TestCalculate_BucketAlignment(t *testing.T) {
	events := []*domain.Event{
		flowEvent(1234, domain.EventNewBid, domain.SideBid, 1),
		flowEvent(1999, domain.EventNewAsk, domain.SideAsk, 2),
	}
	windows := Calculate(events, time.Second)

	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	w := windows[0]
	if w.TimestampMs != 1000 {
		t.Errorf("expected bucket start 1000, got %d", w.TimestampMs)
	}
	if w.WindowMs != 1000 {
		t.Errorf("expected window 1000ms, got %d", w.WindowMs)
	}
	if w.EventCount != 2 {
		t.Errorf("expected 2 events in bucket, got %d", w.EventCount)
	}
	if math.Abs(w.OFI-(-1)) > 1e-9 {
		t.Errorf("expected ofi -1, got %f", w.OFI)
	}
}

func TestCalculate_ContiguousWithEmptyBuckets(t *testing.T) {
	// Events in buckets 0 and 3; buckets 1 and 2 must still be emitted.
	events := []*domain.Event{
		flowEvent(100, domain.EventNewBid, domain.SideBid, 5),
		flowEvent(3200, domain.EventNewBid, domain.SideBid, 7),
	}
	windows := Calculate(events, time.Second)

	if len(windows) != 4 {
		t.Fatalf("expected 4 contiguous windows, got %d", len(windows))
	}
	for i, w := range windows {
		if want := int64(i) * 1000; w.TimestampMs != want {
			t.Errorf("window %d: expected start %d, got %d", i, want, w.TimestampMs)
		}
	}
	for _, i := range []int{1, 2} {
		w := windows[i]
		if w.EventCount != 0 || w.OFI != 0 || w.MidPrice != 0 {
			t.Errorf("window %d: expected empty bucket, got %+v", i, w)
		}
	}
	total := 0
	for _, w := range windows {
		total += w.EventCount
	}
	if total != len(events) {
		t.Errorf("expected every event in exactly one window, got %d of %d", total, len(events))
	}
}

func TestCalculate_TradeInvariant(t *testing.T) {
	events := []*domain.Event{
		flowEvent(0, domain.EventNewBid, domain.SideBid, 10),
		flowEvent(100, domain.EventNewAsk, domain.SideAsk, 4),
		flowEvent(200, domain.EventMarketBuy, domain.SideBuy, 3),
		flowEvent(300, domain.EventMarketSell, domain.SideSell, 8),
		flowEvent(1100, domain.EventMarketBuy, domain.SideBuy, 2),
	}
	windows := Calculate(events, time.Second)

	for i, w := range windows {
		got := w.OFIWithTrades - w.OFI
		want := w.MarketBuyVolume - w.MarketSellVolume
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("window %d: ofi_with_trades - ofi = %f, want %f", i, got, want)
		}
	}
	if math.Abs(windows[0].OFI-6) > 1e-9 {
		t.Errorf("expected ofi 6, got %f", windows[0].OFI)
	}
	if math.Abs(windows[0].OFIWithTrades-1) > 1e-9 {
		t.Errorf("expected ofi_with_trades 1, got %f", windows[0].OFIWithTrades)
	}
}

func TestCalculate_IncreaseAcceptsBothSideEncodings(t *testing.T) {
	events := []*domain.Event{
		flowEvent(0, domain.EventIncrease, domain.SideBid, 1),
		flowEvent(1, domain.EventIncrease, domain.SideBuy, 2),
		flowEvent(2, domain.EventIncrease, domain.SideAsk, 3),
		flowEvent(3, domain.EventIncrease, domain.SideSell, 4),
	}
	w := Calculate(events, time.Second)[0]

	if math.Abs(w.BidPressure-3) > 1e-9 {
		t.Errorf("expected bid pressure 3, got %f", w.BidPressure)
	}
	if math.Abs(w.AskPressure-7) > 1e-9 {
		t.Errorf("expected ask pressure 7, got %f", w.AskPressure)
	}
}

func TestCalculate_DepthImbalanceGuarded(t *testing.T) {
	events := []*domain.Event{
		flowEvent(0, domain.EventMarketBuy, domain.SideBuy, 5),
	}
	w := Calculate(events, time.Second)[0]
	if w.DepthImbalance != 0 {
		t.Errorf("expected 0 imbalance with no resting pressure, got %f", w.DepthImbalance)
	}

	events = []*domain.Event{
		flowEvent(0, domain.EventNewBid, domain.SideBid, 3),
		flowEvent(1, domain.EventNewAsk, domain.SideAsk, 1),
	}
	w = Calculate(events, time.Second)[0]
	if math.Abs(w.DepthImbalance-0.5) > 1e-9 {
		t.Errorf("expected imbalance 0.5, got %f", w.DepthImbalance)
	}
}

func TestCalculate_RollingFields(t *testing.T) {
	var events []*domain.Event
	for i := 0; i < 10; i++ {
		events = append(events, flowEvent(int64(i)*1000, domain.EventNewBid, domain.SideBid, float64(i+1)))
	}
	windows := Calculate(events, time.Second)
	if len(windows) != 10 {
		t.Fatalf("expected 10 windows, got %d", len(windows))
	}

	// OFI series is 1..10; cumulative sum of the first k values is k(k+1)/2.
	if math.Abs(windows[9].OFICumulative-55) > 1e-9 {
		t.Errorf("expected cumulative 55, got %f", windows[9].OFICumulative)
	}
	if math.Abs(windows[9].OFITrend-1) > 1e-9 {
		t.Errorf("expected trend 1, got %f", windows[9].OFITrend)
	}
	// 5-bucket MA at index 9 covers 6..10.
	if math.Abs(windows[9].OFIMA5-8) > 1e-9 {
		t.Errorf("expected ma5 8, got %f", windows[9].OFIMA5)
	}
	if windows[0].OFITrend != 0 {
		t.Errorf("expected first trend 0, got %f", windows[0].OFITrend)
	}
}

func TestInterpret_Bands(t *testing.T) {
	cases := []struct {
		z    float64
		want string
	}{
		{3.5, InterpExtremeBullish},
		{2.5, InterpStrongBullish},
		{1.5, InterpModerateBullish},
		{0.5, InterpNeutral},
		{-0.5, InterpNeutral},
		{-1.5, InterpModerateBearish},
		{-2.5, InterpStrongBearish},
		{-3.5, InterpExtremeBearish},
	}
	for _, c := range cases {
		if got := Interpret(c.z); got != c.want {
			t.Errorf("Interpret(%f) = %q, want %q", c.z, got, c.want)
		}
	}
}

func TestDetectDivergence_BullishAndBearish(t *testing.T) {
	// OFI rises 0..9 while price falls, then OFI falls while price rises.
	var windows []*domain.OFIWindow
	var prices []*domain.PricePoint
	for i := 0; i < 10; i++ {
		windows = append(windows, &domain.OFIWindow{
			TimestampMs: int64(i) * 1000,
			OFI:         float64(i),
		})
		prices = append(prices, &domain.PricePoint{
			TimestampMs: int64(i) * 1000,
			MidPrice:    100.0 - float64(i)*0.1,
		})
	}

	divs := DetectDivergence(windows, prices)
	if len(divs) != 5 {
		t.Fatalf("expected 5 bullish divergences, got %d", len(divs))
	}
	for _, d := range divs {
		if d.Type != domain.DivergenceBullish {
			t.Errorf("expected bullish divergence, got %s", d.Type)
		}
		if d.OFIChange <= 0 || d.PriceChange >= 0 {
			t.Errorf("bullish divergence needs ofi up, price down: %+v", d)
		}
	}

	for i := range windows {
		windows[i].OFI = -windows[i].OFI
		prices[i].MidPrice = 100.0 + float64(i)*0.1
	}
	divs = DetectDivergence(windows, prices)
	for _, d := range divs {
		if d.Type != domain.DivergenceBearish {
			t.Errorf("expected bearish divergence, got %s", d.Type)
		}
	}
}

func TestDetectDivergence_NoSignalWhenAligned(t *testing.T) {
	var windows []*domain.OFIWindow
	var prices []*domain.PricePoint
	for i := 0; i < 10; i++ {
		windows = append(windows, &domain.OFIWindow{TimestampMs: int64(i) * 1000, OFI: float64(i)})
		prices = append(prices, &domain.PricePoint{TimestampMs: int64(i) * 1000, MidPrice: 100.0 + float64(i)})
	}
	if divs := DetectDivergence(windows, prices); len(divs) != 0 {
		t.Errorf("expected no divergence when ofi and price agree, got %d", len(divs))
	}
}

func TestDetectDivergence_ShortSeries(t *testing.T) {
	windows := []*domain.OFIWindow{{TimestampMs: 0, OFI: 1}}
	prices := []*domain.PricePoint{{TimestampMs: 0, MidPrice: 100}}
	if divs := DetectDivergence(windows, prices); len(divs) != 0 {
		t.Errorf("expected empty result below lookback, got %d", len(divs))
	}
}
