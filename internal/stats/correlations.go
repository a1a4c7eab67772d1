package stats

import (
	"order-book-lab/internal/domain"
	"order-book-lab/internal/lookup"
)

// Predictor names reported by the correlation and regression screens.
const (
	PredictorOFI            = "ofi"
	PredictorOFIWithTrades  = "ofi_with_trades"
	PredictorDepthImbalance = "depth_imbalance"
	PredictorTradeImbalance = "trade_imbalance"
	PredictorSpreadVsVol    = "spread_vs_volatility"
	PredictorOFIAutocorr    = "ofi_autocorr"
)

// Forward-return horizons, in seconds.
var (
	ofiHorizons   = []int{1, 5, 30, 60}
	tradeHorizons = []int{1, 5, 30}
	autocorrLags  = []int{1, 5, 10, 20}
)

// AnalyzeCorrelations screens every signal against forward mid-price
// returns: the three OFI-window predictors over 1/5/30/60s horizons,
// trade imbalance over 1/5/30s, OFI autocorrelation at lags 1/5/10/20
// and the contemporaneous spread/volatility relation. Pairs with fewer
// than 10 observations are omitted. Forward returns come from the
// 1-second feature grid, joined by nearest timestamp.
func AnalyzeCorrelations(windows []*domain.OFIWindow, samples []*domain.MicrostructureSample) []*domain.CorrelationResult {
	var out []*domain.CorrelationResult

	mids, sampleTs := midSeries(samples)

	for _, horizon := range ofiHorizons {
		for _, predictor := range []string{PredictorOFI, PredictorOFIWithTrades, PredictorDepthImbalance} {
			xs, ys := pairForwardReturns(windows, predictor, horizon, mids, sampleTs)
			if r := correlate(predictor, horizon, xs, ys); r != nil {
				out = append(out, r)
			}
		}
	}

	for _, horizon := range tradeHorizons {
		xs, ys := tradeImbalancePairs(samples, horizon, mids, sampleTs)
		if r := correlate(PredictorTradeImbalance, horizon, xs, ys); r != nil {
			out = append(out, r)
		}
	}

	for _, lag := range autocorrLags {
		xs, ys := autocorrPairs(windows, lag)
		if r := correlate(PredictorOFIAutocorr, lag, xs, ys); r != nil {
			out = append(out, r)
		}
	}

	if r := spreadVolPairs(samples); r != nil {
		out = append(out, r)
	}

	return out
}

// correlate wraps pearson into a CorrelationResult, nil below the
// observation floor.
func correlate(predictor string, horizon int, xs, ys []float64) *domain.CorrelationResult {
	if len(xs) < minCorrelationObs {
		return nil
	}
	r, p := pearson(xs, ys)
	return &domain.CorrelationResult{
		Predictor:   predictor,
		HorizonSec:  horizon,
		Coefficient: r,
		PValue:      p,
		RSquared:    r * r,
		Significant: p < significanceLevel,
		SampleSize:  len(xs),
	}
}

// pairForwardReturns joins each OFI window with the forward mid-price
// return starting at the nearest grid tick. Windows without a defined
// forward return are skipped.
func pairForwardReturns(windows []*domain.OFIWindow, predictor string, horizonSec int, mids []float64, sampleTs []int64) (xs, ys []float64) {
	for _, w := range windows {
		fwd, ok := forwardReturn(w.TimestampMs, horizonSec, mids, sampleTs)
		if !ok {
			continue
		}
		var x float64
		switch predictor {
		case PredictorOFI:
			x = w.OFI
		case PredictorOFIWithTrades:
			x = w.OFIWithTrades
		case PredictorDepthImbalance:
			x = w.DepthImbalance
		}
		xs = append(xs, x)
		ys = append(ys, fwd)
	}
	return xs, ys
}

// tradeImbalancePairs joins each grid tick's trade imbalance with its
// forward return.
func tradeImbalancePairs(samples []*domain.MicrostructureSample, horizonSec int, mids []float64, sampleTs []int64) (xs, ys []float64) {
	for _, s := range samples {
		fwd, ok := forwardReturn(s.TimestampMs, horizonSec, mids, sampleTs)
		if !ok {
			continue
		}
		xs = append(xs, s.TradeImbalance)
		ys = append(ys, fwd)
	}
	return xs, ys
}

// autocorrPairs pairs the OFI series with itself shifted by lag buckets.
func autocorrPairs(windows []*domain.OFIWindow, lag int) (xs, ys []float64) {
	for i := lag; i < len(windows); i++ {
		xs = append(xs, windows[i-lag].OFI)
		ys = append(ys, windows[i].OFI)
	}
	return xs, ys
}

// spreadVolPairs correlates spread with 1-minute volatility across the
// whole grid, nil below the observation floor.
func spreadVolPairs(samples []*domain.MicrostructureSample) *domain.CorrelationResult {
	var xs, ys []float64
	for _, s := range samples {
		xs = append(xs, s.SpreadBps)
		ys = append(ys, s.Volatility1m)
	}
	return correlate(PredictorSpreadVsVol, 0, xs, ys)
}

// forwardReturn computes the mid-price return from the nearest grid tick
// at ts to the nearest tick at ts + horizon. Returns ok=false when the
// horizon runs past the grid or the anchor mid is zero.
func forwardReturn(ts int64, horizonSec int, mids []float64, sampleTs []int64) (float64, bool) {
	if len(sampleTs) == 0 {
		return 0, false
	}
	start := lookup.IndexNearest(sampleTs, ts)
	target := ts + int64(horizonSec)*1000
	if sampleTs[len(sampleTs)-1] < target {
		return 0, false
	}
	end := lookup.IndexNearest(sampleTs, target)
	if mids[start] <= 0 || end <= start {
		return 0, false
	}
	return (mids[end] - mids[start]) / mids[start], true
}

// midSeries extracts the mid-price and timestamp columns from the grid.
func midSeries(samples []*domain.MicrostructureSample) ([]float64, []int64) {
	mids := make([]float64, len(samples))
	ts := make([]int64, len(samples))
	for i, s := range samples {
		mids[i] = s.MidPrice
		ts[i] = s.TimestampMs
	}
	return mids, ts
}
