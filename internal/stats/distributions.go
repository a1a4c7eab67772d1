package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"order-book-lab/internal/domain"
)

// Distribution names reported by AnalyzeDistributions.
const (
	DistOFI          = "ofi"
	DistTradeSizeUSD = "trade_size_usd"
)

// minNormalityObs is the minimum sample size for the K-squared normality
// test; below it NormalityPValue stays nil.
const minNormalityObs = 20

// AnalyzeDistributions summarizes the OFI distribution with a normality
// test and the market-order trade-size distribution without one. Empty
// inputs produce no entry for the corresponding series.
func AnalyzeDistributions(windows []*domain.OFIWindow, events []*domain.Event) []*domain.DistributionStats {
	var out []*domain.DistributionStats

	var ofi []float64
	for _, w := range windows {
		ofi = append(ofi, w.OFI)
	}
	if len(ofi) > 0 {
		d := describe(DistOFI, ofi)
		if p, ok := normalityPValue(ofi); ok {
			d.NormalityPValue = &p
			d.IsNormal = p > significanceLevel
		}
		out = append(out, d)
	}

	// Location stats stay in USD. Trade sizes are heavy-tailed, so the
	// shape moments come from the log10 series instead, where sample skew
	// and kurtosis are not dominated by a handful of whale orders.
	var sizes, logSizes []float64
	for _, e := range events {
		if e.IsMarketOrder() && e.USDValue > 0 {
			sizes = append(sizes, e.USDValue)
			logSizes = append(logSizes, math.Log10(e.USDValue))
		}
	}
	if len(sizes) > 0 {
		d := describe(DistTradeSizeUSD, sizes)
		if len(logSizes) > 1 {
			d.Skewness = stat.Skew(logSizes, nil)
			d.Kurtosis = stat.ExKurtosis(logSizes, nil)
		}
		out = append(out, d)
	}

	return out
}

// describe computes moments and percentiles for one series.
func describe(name string, xs []float64) *domain.DistributionStats {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	d := &domain.DistributionStats{
		Name:       name,
		SampleSize: len(xs),
		Mean:       stat.Mean(xs, nil),
		Min:        sorted[0],
		Max:        sorted[len(sorted)-1],
		Median:     quantile(sorted, 0.50),
		P25:        quantile(sorted, 0.25),
		P75:        quantile(sorted, 0.75),
		P95:        quantile(sorted, 0.95),
		P99:        quantile(sorted, 0.99),
	}
	if len(xs) > 1 {
		d.Std = stat.StdDev(xs, nil)
		d.Skewness = stat.Skew(xs, nil)
		d.Kurtosis = stat.ExKurtosis(xs, nil)
	}
	return d
}

// quantile is the linear-interpolation quantile over an already sorted
// slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := q * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// normalityPValue runs the D'Agostino K-squared omnibus test. The
// statistic combines z-transformed sample skewness and kurtosis and is
// chi-squared with 2 degrees of freedom under normality. ok=false below
// the minimum sample size or on a degenerate sample.
func normalityPValue(xs []float64) (p float64, ok bool) {
	n := len(xs)
	if n < minNormalityObs {
		return 0, false
	}

	mean := stat.Mean(xs, nil)
	var m2, m3, m4 float64
	for _, x := range xs {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	fn := float64(n)
	m2 /= fn
	m3 /= fn
	m4 /= fn
	if m2 == 0 {
		return 0, false
	}

	z1 := skewnessZ(m3/math.Pow(m2, 1.5), fn)
	z2 := kurtosisZ(m4/(m2*m2), fn)
	k2 := z1*z1 + z2*z2

	chi2 := distuv.ChiSquared{K: 2}
	return chi2.Survival(k2), true
}

// skewnessZ is D'Agostino's z-transform of sample skewness.
func skewnessZ(b1, n float64) float64 {
	y := b1 * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := 3 * (n*n + 27*n - 70) * (n + 1) * (n + 3) /
		((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	delta := 1 / math.Sqrt(math.Log(math.Sqrt(w2)))
	alpha := math.Sqrt(2 / (w2 - 1))
	return delta * math.Asinh(y/alpha)
}

// kurtosisZ is the Anscombe-Glynn z-transform of sample kurtosis.
func kurtosisZ(b2, n float64) float64 {
	e := 3 * (n - 1) / (n + 1)
	variance := 24 * n * (n - 2) * (n - 3) /
		((n + 1) * (n + 1) * (n + 3) * (n + 5))
	x := (b2 - e) / math.Sqrt(variance)

	sqrtBeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) *
		math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))

	term := (1 - 2/a) / (1 + x*math.Sqrt(2/(a-4)))
	return ((1 - 2/(9*a)) - math.Cbrt(term)) / math.Sqrt(2/(9*a))
}
