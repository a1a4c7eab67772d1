package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// ComputeEventID computes a deterministic event_id used as the append-only
// storage dedup key.
// Formula: base58(SHA256(symbol|timestamp_ms|type|side|price|volume)[:16])
func ComputeEventID(
	symbol string,
	timestampMs int64,
	eventType string,
	side string,
	price float64,
	volume float64,
) string {
	data := fmt.Sprintf("%s|%d|%s|%s|%.10f|%.10f",
		symbol,
		timestampMs,
		eventType,
		side,
		price,
		volume,
	)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:16])
}
