package domain

// MicrostructureSample is one row of the uniform 1-second feature grid.
// Gaps in the upstream snapshots are forward-filled.
// Corresponds to the microstructure_samples table in ClickHouse.
type MicrostructureSample struct {
	Symbol      string
	TimestampMs int64 // grid tick, Unix milliseconds
	MidPrice    float64
	BestBid     float64
	BestAsk     float64

	// Returns
	Return    float64 // simple return vs previous tick
	LogReturn float64

	// Spread metrics
	SpreadBps       float64 // spread in basis points of mid
	SpreadBpsMean60 float64 // 60-sample rolling mean
	SpreadBpsStd60  float64 // 60-sample rolling std
	SpreadZScore    float64 // (spread - mean60) / (std60 + 1e-9)
	RelativeSpread  float64 // spread_bps / (mean60 + 1e-9)

	// Volatility estimators
	Volatility1m  float64 // rolling std of returns * sqrt(60)
	Volatility5m  float64 // rolling std of returns * sqrt(300)
	RealizedVol1m float64 // sqrt(rolling sum of squared returns, 60)
	RealizedVol5m float64 // sqrt(rolling sum of squared returns, 300)
	RangeVol      float64 // log(ask/bid) / sqrt(4*ln2)

	// Price dynamics
	Velocity1s   float64 // 1-tick difference
	Velocity5s   float64 // 5-tick difference / 5
	Velocity30s  float64 // 30-tick difference / 30
	Acceleration float64 // difference of Velocity1s
	Momentum1m   float64 // percent change over 60 ticks
	Momentum5m   float64 // percent change over 300 ticks

	// Noise proxies
	BidAskBounce    float64 // sqrt(-rolling cov(ret, lag-1 ret), 60), 0 if cov >= 0
	EffectiveSpread float64 // 2 * |return|

	// Trade-intensity features, merged by nearest timestamp when events
	// are present; zero otherwise.
	TradeCount60   float64 // 60-bucket rolling sum of trade count
	TradeVolume60  float64 // 60-bucket rolling sum of traded volume
	TradeUSD60     float64 // 60-bucket rolling sum of traded usd value
	BuyVolume      float64
	SellVolume     float64
	TradeImbalance float64 // (buy - sell) / (buy + sell + 1e-9)
}

// Regime is a qualitative volatility state.
type Regime string

// Regime constants. Labels are exhaustive and mutually exclusive.
const (
	RegimeNormal  Regime = "normal"
	RegimeHighVol Regime = "high_volatility"
	RegimeLowVol  Regime = "low_volatility"
)

// RegimeChange marks a transition between volatility regimes.
type RegimeChange struct {
	TimestampMs int64
	FromRegime  Regime
	ToRegime    Regime
	Volatility  float64 // 1-minute volatility at the transition
	ZScore      float64
}

// PriceImpact records the price move following a large market order.
type PriceImpact struct {
	TimestampMs       int64
	Side              Side
	USDValue          float64
	PriceBefore       float64
	PriceAfter        float64
	Impact            float64 // PriceAfter - PriceBefore
	ImpactPct         float64
	ExpectedDirection int  // +1 buy, -1 sell
	ImpactMatch       bool // sign(Impact) == ExpectedDirection
}

// SpreadVolCorrelation is one rolling-window correlation sample between
// spread and short-horizon volatility.
type SpreadVolCorrelation struct {
	TimestampMs int64
	Correlation float64
	RSquared    float64
}
