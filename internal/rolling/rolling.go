// Package rolling provides deterministic sliding-window statistics over
// float64 series. Windows shorter than the configured size are computed
// over the samples available so far, so every output index is defined.
package rolling

import "math"

// Mean returns the rolling mean of xs over the trailing window.
// window must be >= 1.
func Mean(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	sum := 0.0
	for i, x := range xs {
		sum += x
		if i >= window {
			sum -= xs[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sum returns the rolling sum of xs over the trailing window.
func Sum(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	sum := 0.0
	for i, x := range xs {
		sum += x
		if i >= window {
			sum -= xs[i-window]
		}
		out[i] = sum
	}
	return out
}

// Std returns the rolling sample standard deviation (n-1 denominator)
// of xs over the trailing window. Indices with fewer than 2 samples are 0.
func Std(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		lo := i + 1 - window
		if lo < 0 {
			lo = 0
		}
		out[i] = sampleStd(xs[lo : i+1])
	}
	return out
}

// StdMin behaves like Std but leaves indices with fewer than minPeriods
// samples at 0.
func StdMin(xs []float64, window, minPeriods int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		lo := i + 1 - window
		if lo < 0 {
			lo = 0
		}
		if i+1-lo < minPeriods {
			continue
		}
		out[i] = sampleStd(xs[lo : i+1])
	}
	return out
}

// MeanMin behaves like Mean but leaves indices with fewer than minPeriods
// samples at 0.
func MeanMin(xs []float64, window, minPeriods int) []float64 {
	out := make([]float64, len(xs))
	sum := 0.0
	for i, x := range xs {
		sum += x
		if i >= window {
			sum -= xs[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		if n < minPeriods {
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Covariance returns the rolling sample covariance (n-1 denominator)
// between xs and ys over the trailing window. Indices with fewer than
// 2 samples are 0. xs and ys must have equal length.
func Covariance(xs, ys []float64, window int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		lo := i + 1 - window
		if lo < 0 {
			lo = 0
		}
		out[i] = sampleCov(xs[lo:i+1], ys[lo:i+1])
	}
	return out
}

// Correlation returns the rolling Pearson correlation between xs and ys
// over the trailing window. Indices where either side has zero variance
// are 0.
func Correlation(xs, ys []float64, window int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		lo := i + 1 - window
		if lo < 0 {
			lo = 0
		}
		sx := sampleStd(xs[lo : i+1])
		sy := sampleStd(ys[lo : i+1])
		if sx == 0 || sy == 0 {
			continue
		}
		out[i] = sampleCov(xs[lo:i+1], ys[lo:i+1]) / (sx * sy)
	}
	return out
}

// Diff returns the n-step first difference: xs[i] - xs[i-n].
// The first n indices are 0.
func Diff(xs []float64, n int) []float64 {
	out := make([]float64, len(xs))
	for i := n; i < len(xs); i++ {
		out[i] = xs[i] - xs[i-n]
	}
	return out
}

// CumSum returns the running cumulative sum of xs.
func CumSum(xs []float64) []float64 {
	out := make([]float64, len(xs))
	sum := 0.0
	for i, x := range xs {
		sum += x
		out[i] = sum
	}
	return out
}

func sampleStd(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(n)

	sumSq := 0.0
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

func sampleCov(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	mx, my := 0.0, 0.0
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(n)
	my /= float64(n)

	sum := 0.0
	for i := range xs {
		sum += (xs[i] - mx) * (ys[i] - my)
	}
	return sum / float64(n-1)
}
