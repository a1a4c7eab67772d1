package ingestion

import (
	"context"
	"testing"
	"time"

	"order-book-lab/internal/storage/memory"
)

func TestIngester_PersistsEventsAndPrices(t *testing.T) {
	events := memory.NewEventStore()
	prices := memory.NewPricePointStore()

	in := NewIngester(IngesterConfig{
		MinUSDValue:   0,
		BatchSize:     100,
		FlushInterval: time.Hour, // flush only on channel close
	}, events, prices, nil)

	frames := make(chan []byte, 8)
	frames <- []byte(`{"type":"book","symbol":"BTCUSDT","ts":1000,` +
		`"bids":[["100","5"]],"asks":[["102","5"]]}`)
	frames <- []byte(`{"type":"book","symbol":"BTCUSDT","ts":2000,` +
		`"bids":[["100","5"],["99","2"]],"asks":[["102","5"]]}`)
	frames <- []byte(`{"type":"trade","symbol":"BTCUSDT","ts":2500,` +
		`"price":"102","qty":"0.5","side":"buy"}`)
	close(frames)

	if err := in.Run(context.Background(), frames); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, err := events.GetBySymbol(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("GetBySymbol: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events (new bid + market buy), got %d", len(got))
	}

	points, err := prices.GetBySymbol(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("GetBySymbol prices: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 price points, got %d", len(points))
	}
	if points[0].MidPrice != 101 {
		t.Errorf("expected mid 101, got %v", points[0].MidPrice)
	}
}

func TestIngester_FlushOnBatchSize(t *testing.T) {
	events := memory.NewEventStore()
	prices := memory.NewPricePointStore()

	in := NewIngester(IngesterConfig{
		BatchSize:     1,
		FlushInterval: time.Hour,
	}, events, prices, nil)

	frames := make(chan []byte, 4)
	frames <- []byte(`{"type":"trade","symbol":"BTCUSDT","ts":1000,"price":"100","qty":"1","side":"buy"}`)
	frames <- []byte(`{"type":"trade","symbol":"BTCUSDT","ts":2000,"price":"100","qty":"2","side":"sell"}`)
	close(frames)

	if err := in.Run(context.Background(), frames); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, err := events.GetBySymbol(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("GetBySymbol: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
}

func TestIngester_ReplayedFramesAreIdempotent(t *testing.T) {
	events := memory.NewEventStore()
	prices := memory.NewPricePointStore()

	frame := []byte(`{"type":"trade","symbol":"BTCUSDT","ts":1000,"price":"100","qty":"1","side":"buy"}`)

	run := func() {
		in := NewIngester(IngesterConfig{BatchSize: 100, FlushInterval: time.Hour}, events, prices, nil)
		frames := make(chan []byte, 1)
		frames <- frame
		close(frames)
		if err := in.Run(context.Background(), frames); err != nil {
			t.Fatalf("Run: %v", err)
		}
	}

	run()
	run() // replay of the same frame produces the same event id

	got, err := events.GetBySymbol(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("GetBySymbol: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 event after replay, got %d", len(got))
	}
}

func TestIngester_MalformedFramesAreDropped(t *testing.T) {
	events := memory.NewEventStore()
	prices := memory.NewPricePointStore()

	in := NewIngester(IngesterConfig{BatchSize: 100, FlushInterval: time.Hour}, events, prices, nil)

	frames := make(chan []byte, 2)
	frames <- []byte(`not json`)
	frames <- []byte(`{"type":"trade","symbol":"BTCUSDT","ts":1000,"price":"100","qty":"1","side":"buy"}`)
	close(frames)

	if err := in.Run(context.Background(), frames); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, err := events.GetBySymbol(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("GetBySymbol: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the valid frame only, got %d events", len(got))
	}
}

func TestIngester_ContextCancellation(t *testing.T) {
	events := memory.NewEventStore()
	prices := memory.NewPricePointStore()

	in := NewIngester(IngesterConfig{BatchSize: 100, FlushInterval: time.Hour}, events, prices, nil)

	ctx, cancel := context.WithCancel(context.Background())
	frames := make(chan []byte)

	done := make(chan error, 1)
	go func() { done <- in.Run(ctx, frames) }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
