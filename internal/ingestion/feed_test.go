package ingestion

import (
	"testing"
)

func TestParseMessage_Book(t *testing.T) {
	frame := []byte(`{"type":"book","symbol":"BTCUSDT","ts":1700000000000,` +
		`"bids":[["42020.0","1.5"],["42010.0","3.0"]],` +
		`"asks":[["42023.0","0.5"]]}`)

	snap, trade, err := parseMessage(frame)
	if err != nil {
		t.Fatalf("parseMessage: %v", err)
	}
	if trade != nil {
		t.Fatal("expected nil trade for book frame")
	}
	if snap.Symbol != "BTCUSDT" || snap.TimestampMs != 1700000000000 {
		t.Errorf("unexpected header: %+v", snap)
	}
	if len(snap.Bids) != 2 || len(snap.Asks) != 1 {
		t.Fatalf("expected 2 bids and 1 ask, got %d/%d", len(snap.Bids), len(snap.Asks))
	}
	if snap.Bids[0].Price != 42020.0 || snap.Bids[0].Quantity != 1.5 {
		t.Errorf("unexpected best bid: %+v", snap.Bids[0])
	}
	if snap.Asks[0].Price != 42023.0 {
		t.Errorf("unexpected best ask: %+v", snap.Asks[0])
	}
}

func TestParseMessage_Trade(t *testing.T) {
	frame := []byte(`{"type":"trade","symbol":"BTCUSDT","ts":1700000001000,` +
		`"price":"42021.5","qty":"0.25","side":"buy"}`)

	snap, trade, err := parseMessage(frame)
	if err != nil {
		t.Fatalf("parseMessage: %v", err)
	}
	if snap != nil {
		t.Fatal("expected nil snapshot for trade frame")
	}
	if trade.Price != 42021.5 || trade.Quantity != 0.25 {
		t.Errorf("unexpected trade: %+v", trade)
	}
	if !trade.IsBuy {
		t.Error("expected buy trade")
	}
}

func TestParseMessage_SellTrade(t *testing.T) {
	frame := []byte(`{"type":"trade","symbol":"BTCUSDT","ts":1,"price":"100","qty":"1","side":"sell"}`)

	_, trade, err := parseMessage(frame)
	if err != nil {
		t.Fatalf("parseMessage: %v", err)
	}
	if trade.IsBuy {
		t.Error("expected sell trade")
	}
}

func TestParseMessage_Errors(t *testing.T) {
	cases := []struct {
		name  string
		frame string
	}{
		{"invalid json", `{"type":"book"`},
		{"missing symbol", `{"type":"book","ts":1}`},
		{"unknown type", `{"type":"heartbeat","symbol":"BTCUSDT"}`},
		{"bad level price", `{"type":"book","symbol":"BTCUSDT","ts":1,"bids":[["abc","1"]]}`},
		{"bad trade qty", `{"type":"trade","symbol":"BTCUSDT","ts":1,"price":"100","qty":"x","side":"buy"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap, trade, err := parseMessage([]byte(tc.frame))
			if err == nil {
				t.Errorf("expected error, got snap=%v trade=%v", snap, trade)
			}
		})
	}
}
