// Package micro computes price microstructure features on a uniform
// 1-second grid: returns, spread dynamics, volatility estimators, price
// velocity and trade-intensity features, plus regime detection and
// post-trade price impact.
package micro

import (
	"math"
	"sort"
	"time"

	"order-book-lab/internal/domain"
	"order-book-lab/internal/lookup"
	"order-book-lab/internal/rolling"
)

// Grid and rolling-window constants, in seconds.
const (
	gridStepMs     = int64(1000)
	spreadWindow   = 60
	volShortWindow = 60
	volLongWindow  = 300
	regimeWindow   = 300
	regimeMinObs   = 30
)

// rangeVolDenominator is sqrt(4 * ln 2), the Parkinson scaling factor.
var rangeVolDenominator = math.Sqrt(4 * math.Ln2)

// CalculateAll resamples the price series onto a 1-second grid with
// forward fill and computes the full feature set per tick. Trade-derived
// features come from market-order events bucketed onto the same grid;
// they are zero when events is empty. Returns nil when fewer than two
// price points exist or the observations span fewer than two grid ticks.
func CalculateAll(prices []*domain.PricePoint, events []*domain.Event) []*domain.MicrostructureSample {
	if len(prices) < 2 {
		return nil
	}

	grid := resample(prices)
	if len(grid) < 2 {
		return nil
	}
	n := len(grid)

	mids := make([]float64, n)
	returns := make([]float64, n)
	spreads := make([]float64, n)
	retSq := make([]float64, n)
	for i, s := range grid {
		mids[i] = s.MidPrice
		if i > 0 && grid[i-1].MidPrice > 0 {
			s.Return = s.MidPrice/grid[i-1].MidPrice - 1
			s.LogReturn = math.Log(s.MidPrice / grid[i-1].MidPrice)
		}
		returns[i] = s.Return
		retSq[i] = s.Return * s.Return
		if s.MidPrice > 0 {
			s.SpreadBps = (s.BestAsk - s.BestBid) / s.MidPrice * 10000
		}
		spreads[i] = s.SpreadBps
		if s.BestBid > 0 {
			s.RangeVol = math.Log(s.BestAsk/s.BestBid) / rangeVolDenominator
		}
		s.EffectiveSpread = 2 * math.Abs(s.Return)
	}

	attachSpreadStats(grid, spreads)
	attachVolatility(grid, returns, retSq)
	attachDynamics(grid, mids, returns)
	attachTradeFeatures(grid, events)

	return grid
}

// resample builds the forward-filled 1-second grid. The first tick is the
// first grid point at or after the first observation, so every tick has a
// preceding observation to carry.
func resample(prices []*domain.PricePoint) []*domain.MicrostructureSample {
	first := prices[0].TimestampMs
	start := first
	if rem := first % gridStepMs; rem != 0 {
		start = first - rem + gridStepMs
	}
	end := prices[len(prices)-1].TimestampMs
	ts := lookup.PriceTimestamps(prices)

	var grid []*domain.MicrostructureSample
	for t := start; t <= end; t += gridStepMs {
		p := prices[lookup.IndexAtOrBefore(ts, t)]
		grid = append(grid, &domain.MicrostructureSample{
			Symbol:      p.Symbol,
			TimestampMs: t,
			MidPrice:    p.MidPrice,
			BestBid:     p.BestBid,
			BestAsk:     p.BestAsk,
		})
	}
	return grid
}

func attachSpreadStats(grid []*domain.MicrostructureSample, spreads []float64) {
	mean60 := rolling.Mean(spreads, spreadWindow)
	std60 := rolling.Std(spreads, spreadWindow)
	for i, s := range grid {
		s.SpreadBpsMean60 = mean60[i]
		s.SpreadBpsStd60 = std60[i]
		s.SpreadZScore = (s.SpreadBps - mean60[i]) / (std60[i] + 1e-9)
		s.RelativeSpread = s.SpreadBps / (mean60[i] + 1e-9)
	}
}

func attachVolatility(grid []*domain.MicrostructureSample, returns, retSq []float64) {
	std1m := rolling.Std(returns, volShortWindow)
	std5m := rolling.Std(returns, volLongWindow)
	sum1m := rolling.Sum(retSq, volShortWindow)
	sum5m := rolling.Sum(retSq, volLongWindow)
	for i, s := range grid {
		s.Volatility1m = std1m[i] * math.Sqrt(volShortWindow)
		s.Volatility5m = std5m[i] * math.Sqrt(volLongWindow)
		s.RealizedVol1m = math.Sqrt(sum1m[i])
		s.RealizedVol5m = math.Sqrt(sum5m[i])
	}
}

func attachDynamics(grid []*domain.MicrostructureSample, mids, returns []float64) {
	vel1 := rolling.Diff(mids, 1)
	vel5 := rolling.Diff(mids, 5)
	vel30 := rolling.Diff(mids, 30)
	accel := rolling.Diff(vel1, 1)

	// Lag-one returns for the bounce estimator.
	lagged := make([]float64, len(returns))
	copy(lagged[1:], returns)
	cov := rolling.Covariance(returns, lagged, spreadWindow)

	for i, s := range grid {
		s.Velocity1s = vel1[i]
		s.Velocity5s = vel5[i] / 5
		s.Velocity30s = vel30[i] / 30
		s.Acceleration = accel[i]
		if i >= volShortWindow && mids[i-volShortWindow] > 0 {
			s.Momentum1m = (mids[i] - mids[i-volShortWindow]) / mids[i-volShortWindow] * 100
		}
		if i >= volLongWindow && mids[i-volLongWindow] > 0 {
			s.Momentum5m = (mids[i] - mids[i-volLongWindow]) / mids[i-volLongWindow] * 100
		}
		if cov[i] < 0 {
			s.BidAskBounce = math.Sqrt(-cov[i])
		}
	}
}

// attachTradeFeatures buckets market orders onto the grid and attaches
// 60-second rolling trade-intensity sums.
func attachTradeFeatures(grid []*domain.MicrostructureSample, events []*domain.Event) {
	if len(events) == 0 {
		return
	}
	n := len(grid)
	start := grid[0].TimestampMs

	count := make([]float64, n)
	volume := make([]float64, n)
	usd := make([]float64, n)
	buy := make([]float64, n)
	sell := make([]float64, n)
	for _, e := range events {
		if !e.IsMarketOrder() {
			continue
		}
		idx := int((e.TimestampMs - e.TimestampMs%gridStepMs - start) / gridStepMs)
		if idx < 0 || idx >= n {
			continue
		}
		count[idx]++
		volume[idx] += e.Volume
		usd[idx] += e.USDValue
		if e.Type == domain.EventMarketBuy {
			buy[idx] += e.Volume
		} else {
			sell[idx] += e.Volume
		}
	}

	count60 := rolling.Sum(count, spreadWindow)
	volume60 := rolling.Sum(volume, spreadWindow)
	usd60 := rolling.Sum(usd, spreadWindow)
	buy60 := rolling.Sum(buy, spreadWindow)
	sell60 := rolling.Sum(sell, spreadWindow)
	for i, s := range grid {
		s.TradeCount60 = count60[i]
		s.TradeVolume60 = volume60[i]
		s.TradeUSD60 = usd60[i]
		s.BuyVolume = buy60[i]
		s.SellVolume = sell60[i]
		s.TradeImbalance = (buy60[i] - sell60[i]) / (buy60[i] + sell60[i] + 1e-9)
	}
}

// SpreadVolatilityCorrelation returns the 300-sample rolling Pearson
// correlation between spread and 1-minute volatility, one sample per tick
// once at least two observations exist.
func SpreadVolatilityCorrelation(samples []*domain.MicrostructureSample) []*domain.SpreadVolCorrelation {
	if len(samples) < 2 {
		return nil
	}
	spreads := make([]float64, len(samples))
	vols := make([]float64, len(samples))
	for i, s := range samples {
		spreads[i] = s.SpreadBps
		vols[i] = s.Volatility1m
	}
	corr := rolling.Correlation(spreads, vols, regimeWindow)

	out := make([]*domain.SpreadVolCorrelation, len(samples))
	for i, s := range samples {
		out[i] = &domain.SpreadVolCorrelation{
			TimestampMs: s.TimestampMs,
			Correlation: corr[i],
			RSquared:    corr[i] * corr[i],
		}
	}
	return out
}

// DetectRegimeChanges labels each tick with a volatility regime by
// z-scoring 1-minute volatility against its 300-sample rolling baseline
// (at least 30 observations) and returns the per-tick labels plus the
// transitions. zThreshold 2.0 is the conventional choice.
func DetectRegimeChanges(samples []*domain.MicrostructureSample, zThreshold float64) ([]domain.Regime, []*domain.RegimeChange) {
	n := len(samples)
	if n == 0 {
		return nil, nil
	}
	vols := make([]float64, n)
	for i, s := range samples {
		vols[i] = s.Volatility1m
	}
	mean := rolling.MeanMin(vols, regimeWindow, regimeMinObs)
	std := rolling.StdMin(vols, regimeWindow, regimeMinObs)

	regimes := make([]domain.Regime, n)
	var changes []*domain.RegimeChange
	for i := range samples {
		regimes[i] = domain.RegimeNormal
		z := 0.0
		if i+1 >= regimeMinObs {
			z = (vols[i] - mean[i]) / (std[i] + 1e-9)
			switch {
			case z > zThreshold:
				regimes[i] = domain.RegimeHighVol
			case z < -zThreshold:
				regimes[i] = domain.RegimeLowVol
			}
		}
		if i > 0 && regimes[i] != regimes[i-1] {
			changes = append(changes, &domain.RegimeChange{
				TimestampMs: samples[i].TimestampMs,
				FromRegime:  regimes[i-1],
				ToRegime:    regimes[i],
				Volatility:  vols[i],
				ZScore:      z,
			})
		}
	}
	return regimes, changes
}

// MeasurePriceImpact measures the mid-price move following large market
// orders. Large means usd value at or above the 75th percentile of all
// market orders. Price before is the last observation at or before the
// trade; price after is the first observation at or after trade time plus
// window. Trades without both observations are skipped.
func MeasurePriceImpact(events []*domain.Event, prices []*domain.PricePoint, window time.Duration) []*domain.PriceImpact {
	var trades []*domain.Event
	var usdValues []float64
	for _, e := range events {
		if e.IsMarketOrder() {
			trades = append(trades, e)
			usdValues = append(usdValues, e.USDValue)
		}
	}
	if len(trades) == 0 || len(prices) == 0 {
		return nil
	}
	threshold := percentile(usdValues, 75)
	windowMs := window.Milliseconds()

	var out []*domain.PriceImpact
	for _, e := range trades {
		if e.USDValue < threshold {
			continue
		}
		before, err := lookup.PriceAtOrBefore(e.TimestampMs, prices)
		if err != nil || before <= 0 {
			continue
		}
		after, err := lookup.PriceAtOrAfter(e.TimestampMs+windowMs, prices)
		if err != nil || after <= 0 {
			continue
		}

		direction := 1
		if e.Type == domain.EventMarketSell {
			direction = -1
		}
		impact := after - before
		out = append(out, &domain.PriceImpact{
			TimestampMs:       e.TimestampMs,
			Side:              e.Side,
			USDValue:          e.USDValue,
			PriceBefore:       before,
			PriceAfter:        after,
			Impact:            impact,
			ImpactPct:         impact / before * 100,
			ExpectedDirection: direction,
			ImpactMatch:       (impact > 0 && direction > 0) || (impact < 0 && direction < 0),
		})
	}
	return out
}

// percentile is the linear-interpolation percentile over a copy of xs.
func percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
