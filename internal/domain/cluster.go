package domain

// Cluster represents a dense price region of resting-order liquidity,
// produced by density-based clustering over event prices.
// Invariant: PriceMin <= PriceLevel <= PriceMax.
type Cluster struct {
	Side                  Side
	PriceLevel            float64 // mean price of member events
	PriceMin              float64
	PriceMax              float64
	PriceStd              float64
	TotalUSDValue         float64
	AvgUSDValue           float64
	EventCount            int // >= configured min samples
	AvgDistanceFromMidPct float64
	TimeSpanMs            int64 // LastSeenMs - FirstSeenMs
	FirstSeenMs           int64
	LastSeenMs            int64
}

// DepthLevel represents one equal-width price bucket of the depth profile.
type DepthLevel struct {
	Side                  Side
	PriceLevel            float64 // bucket midpoint
	Volume                float64
	USDValue              float64
	OrderCount            int
	AvgDistanceFromMidPct float64
}

// LiquidityHole represents a price gap between consecutive resting orders
// wider than the configured threshold.
type LiquidityHole struct {
	Side               Side
	PriceLow           float64
	PriceHigh          float64
	GapSize            float64 // PriceHigh - PriceLow
	GapPct             float64 // GapSize / mean mid price * 100
	DistanceFromMidPct float64 // gap midpoint distance from mean mid, percent
}

// LiquidityRatio summarizes bid vs ask resting liquidity near the mid price.
// BidRatio + AskRatio = 1 whenever TotalLiquidityUSD > 0.
type LiquidityRatio struct {
	BidLiquidityUSD   float64
	AskLiquidityUSD   float64
	TotalLiquidityUSD float64
	BidRatio          float64
	AskRatio          float64
	Imbalance         float64 // (bid - ask) / (bid + ask)
	Interpretation    string
}
