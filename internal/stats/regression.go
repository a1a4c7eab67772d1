package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"order-book-lab/internal/domain"
)

// minRegressionObs is the minimum paired observations for an OLS fit.
const minRegressionObs = 30

// TestPredictivePower fits ordinary least squares of each OFI-window
// predictor against the forward mid-price return at the given horizon.
// Predictors with fewer than 30 paired observations are omitted.
func TestPredictivePower(windows []*domain.OFIWindow, samples []*domain.MicrostructureSample, horizonSec int) []*domain.RegressionResult {
	mids, sampleTs := midSeries(samples)

	var out []*domain.RegressionResult
	for _, predictor := range []string{PredictorOFI, PredictorOFIWithTrades, PredictorDepthImbalance} {
		xs, ys := pairForwardReturns(windows, predictor, horizonSec, mids, sampleTs)
		if len(xs) < minRegressionObs {
			continue
		}
		out = append(out, fitOLS(predictor, horizonSec, xs, ys))
	}
	return out
}

// fitOLS runs a simple linear regression of ys on xs and derives the
// slope inference, fit quality and AIC.
func fitOLS(predictor string, horizonSec int, xs, ys []float64) *domain.RegressionResult {
	n := len(xs)
	fn := float64(n)
	intercept, slope := stat.LinearRegression(xs, ys, nil, false)

	meanX := stat.Mean(xs, nil)
	var sse, sxx float64
	for i := range xs {
		resid := ys[i] - (intercept + slope*xs[i])
		sse += resid * resid
		dx := xs[i] - meanX
		sxx += dx * dx
	}

	var stdErr, pValue, tStat float64
	pValue = 1
	if sxx > 0 && n > 2 {
		mseResid := sse / float64(n-2)
		stdErr = math.Sqrt(mseResid / sxx)
		if stdErr > 0 {
			tStat = slope / stdErr
			dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
			pValue = 2 * dist.Survival(math.Abs(tStat))
			if pValue > 1 {
				pValue = 1
			}
		}
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		r = 0
	}

	mse := sse / fn
	aic := math.Inf(-1)
	if mse > 0 {
		// Two estimated parameters: intercept and slope.
		aic = fn*math.Log(mse) + 2*2
	}

	return &domain.RegressionResult{
		Predictor:   predictor,
		HorizonSec:  horizonSec,
		Slope:       slope,
		Intercept:   intercept,
		R:           r,
		RSquared:    r * r,
		PValue:      pValue,
		StdErr:      stdErr,
		RMSE:        math.Sqrt(mse),
		AIC:         aic,
		SampleSize:  n,
		Significant: pValue < significanceLevel,
	}
}
