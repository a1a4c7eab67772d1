package pipeline

import (
	"context"
	"math"
	"testing"

	"order-book-lab/internal/domain"
	"order-book-lab/internal/storage/memory"
)

func newFixturePipeline(t *testing.T) (*Pipeline, *memory.OFIWindowStore, *memory.MicrostructureStore) {
	t.Helper()

	events := memory.NewEventStore()
	prices := memory.NewPricePointStore()
	windows := memory.NewOFIWindowStore()
	samples := memory.NewMicrostructureStore()

	if err := LoadFixtures(context.Background(), events, prices); err != nil {
		t.Fatalf("LoadFixtures: %v", err)
	}

	return New(DefaultConfig(), events, prices, windows, samples, nil), windows, samples
}

func TestPipeline_RunProducesAllSections(t *testing.T) {
	p, _, _ := newFixturePipeline(t)

	result, err := p.Run(context.Background(), FixtureSymbol)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.EventCount == 0 || result.PriceCount != fixtureSeconds {
		t.Fatalf("unexpected input counts: %d events, %d prices", result.EventCount, result.PriceCount)
	}

	if len(result.Clusters[domain.SideBid]) == 0 || len(result.Clusters[domain.SideAsk]) == 0 {
		t.Error("expected clusters on both sides")
	}
	if result.LiquidityRatio == nil || result.LiquidityRatio.TotalLiquidityUSD <= 0 {
		t.Error("expected a populated liquidity ratio")
	}

	if len(result.OFIWindows) == 0 {
		t.Fatal("expected OFI windows")
	}
	for _, w := range result.OFIWindows {
		diff := w.OFIWithTrades - w.OFI
		if math.Abs(diff-(w.MarketBuyVolume-w.MarketSellVolume)) > 1e-9 {
			t.Fatalf("trade identity violated at ts %d", w.TimestampMs)
		}
	}

	if len(result.Samples) == 0 {
		t.Fatal("expected microstructure samples")
	}
	if len(result.Regimes) != len(result.Samples) {
		t.Errorf("expected one regime label per sample, got %d/%d",
			len(result.Regimes), len(result.Samples))
	}

	if len(result.Correlations) == 0 {
		t.Error("expected correlation results")
	}
	if len(result.Distributions) == 0 {
		t.Error("expected distribution stats")
	}
	if result.Performance == nil || result.Performance.SampleSize == 0 {
		t.Error("expected signal performance over the fixture series")
	}
}

func TestPipeline_PersistsDerivedSeries(t *testing.T) {
	p, windows, samples := newFixturePipeline(t)

	result, err := p.Run(context.Background(), FixtureSymbol)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	stored, err := windows.GetBySymbol(context.Background(), FixtureSymbol)
	if err != nil {
		t.Fatalf("GetBySymbol windows: %v", err)
	}
	if len(stored) != len(result.OFIWindows) {
		t.Errorf("expected %d stored windows, got %d", len(result.OFIWindows), len(stored))
	}

	storedSamples, err := samples.GetBySymbol(context.Background(), FixtureSymbol)
	if err != nil {
		t.Fatalf("GetBySymbol samples: %v", err)
	}
	if len(storedSamples) != len(result.Samples) {
		t.Errorf("expected %d stored samples, got %d", len(result.Samples), len(storedSamples))
	}
}

func TestPipeline_RerunIsIdempotent(t *testing.T) {
	p, windows, _ := newFixturePipeline(t)

	first, err := p.Run(context.Background(), FixtureSymbol)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := p.Run(context.Background(), FixtureSymbol)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if len(first.OFIWindows) != len(second.OFIWindows) {
		t.Errorf("expected identical window counts, got %d vs %d",
			len(first.OFIWindows), len(second.OFIWindows))
	}

	stored, err := windows.GetBySymbol(context.Background(), FixtureSymbol)
	if err != nil {
		t.Fatalf("GetBySymbol: %v", err)
	}
	if len(stored) != len(first.OFIWindows) {
		t.Errorf("rerun duplicated stored windows: %d vs %d", len(stored), len(first.OFIWindows))
	}
}

func TestPipeline_EmptySymbol(t *testing.T) {
	p, _, _ := newFixturePipeline(t)

	result, err := p.Run(context.Background(), "UNKNOWN")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.EventCount != 0 || len(result.OFIWindows) != 0 || len(result.Samples) != 0 {
		t.Errorf("expected empty result for unknown symbol: %+v", result)
	}
}

func TestFixtures_AreDeterministic(t *testing.T) {
	a, b := fixtureEvents(), fixtureEvents()
	if len(a) != len(b) {
		t.Fatalf("fixture sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].EventID != b[i].EventID {
			t.Fatalf("fixture event %d differs between generations", i)
		}
	}
}
