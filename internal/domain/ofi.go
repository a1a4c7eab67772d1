package domain

// OFIWindow holds order-flow imbalance for one fixed, wall-clock-aligned,
// non-overlapping time bucket, plus rolling derived fields.
// Invariant: OFIWithTrades - OFI = MarketBuyVolume - MarketSellVolume.
// Corresponds to the ofi_windows table in ClickHouse.
type OFIWindow struct {
	Symbol           string
	TimestampMs      int64 // bucket start, Unix milliseconds
	WindowMs         int64 // bucket width in milliseconds
	OFI              float64
	OFIWithTrades    float64
	BidPressure      float64
	AskPressure      float64
	MarketBuyVolume  float64
	MarketSellVolume float64
	DepthImbalance   float64 // (bid - ask) / (bid + ask), 0 if denominator 0
	MidPrice         float64 // last observed mid in window, 0 if none
	EventCount       int

	// Rolling fields, derived after the series is assembled.
	OFIMA5        float64 // 5-bucket moving average
	OFIMA20       float64 // 20-bucket moving average
	OFIStd20      float64 // 20-bucket rolling standard deviation
	OFIZScore     float64 // (ofi - ma20) / (std20 + 1e-9)
	OFITrend      float64 // first difference
	OFICumulative float64 // running cumulative sum
}

// DivergenceType classifies an OFI/price divergence.
type DivergenceType string

// Divergence type constants.
const (
	DivergenceBullish DivergenceType = "bullish"
	DivergenceBearish DivergenceType = "bearish"
)

// Divergence marks a bucket where OFI and price move in opposite directions.
type Divergence struct {
	TimestampMs int64
	Type        DivergenceType
	OFIChange   float64 // 5-bucket OFI difference
	PriceChange float64 // 5-bucket price difference
	OFI         float64
	MidPrice    float64
}
