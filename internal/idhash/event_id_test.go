package idhash

import "testing"

func TestComputeEventID_Deterministic(t *testing.T) {
	a := ComputeEventID("BTCUSDT", 1700000000000, "new_bid", "bid", 42000.5, 1.25)
	b := ComputeEventID("BTCUSDT", 1700000000000, "new_bid", "bid", 42000.5, 1.25)

	if a != b {
		t.Errorf("expected identical IDs, got %s and %s", a, b)
	}
	if a == "" {
		t.Error("expected non-empty ID")
	}
}

func TestComputeEventID_DistinctInputs(t *testing.T) {
	base := ComputeEventID("BTCUSDT", 1700000000000, "new_bid", "bid", 42000.5, 1.25)

	variants := []string{
		ComputeEventID("ETHUSDT", 1700000000000, "new_bid", "bid", 42000.5, 1.25),
		ComputeEventID("BTCUSDT", 1700000000001, "new_bid", "bid", 42000.5, 1.25),
		ComputeEventID("BTCUSDT", 1700000000000, "new_ask", "ask", 42000.5, 1.25),
		ComputeEventID("BTCUSDT", 1700000000000, "new_bid", "bid", 42000.6, 1.25),
		ComputeEventID("BTCUSDT", 1700000000000, "new_bid", "bid", 42000.5, 1.26),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d: expected distinct ID, got collision %s", i, v)
		}
	}
}
