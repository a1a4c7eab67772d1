package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"order-book-lab/internal/domain"
	"order-book-lab/internal/lookup"
)

// EvaluateOFISignal runs the threshold strategy on the OFI z-score
// series. Per-bucket returns come from the feature grid mid price at
// each window's timestamp. Returns an empty result when the series are
// too short to pair.
func EvaluateOFISignal(windows []*domain.OFIWindow, samples []*domain.MicrostructureSample, threshold float64) *domain.SignalPerformance {
	const name = "ofi_zscore"
	if len(windows) < 2 || len(samples) == 0 {
		return &domain.SignalPerformance{SignalName: name, Threshold: threshold}
	}

	mids, sampleTs := midSeries(samples)

	signal := make([]float64, len(windows))
	returns := make([]float64, len(windows))
	for i, w := range windows {
		signal[i] = w.OFIZScore
		if i == 0 {
			continue
		}
		prev := mids[lookup.IndexNearest(sampleTs, windows[i-1].TimestampMs)]
		cur := mids[lookup.IndexNearest(sampleTs, w.TimestampMs)]
		if prev > 0 {
			returns[i] = (cur - prev) / prev
		}
	}

	intervalSec := float64(windows[0].WindowMs) / 1000
	return SignalPerformance(name, signal, returns, threshold, intervalSec)
}

// secondsPerDay converts a sampling interval to trading periods per day.
const secondsPerDay = 86400.0

// SignalPerformance evaluates a threshold strategy on a signal series
// paired with per-period returns. The position at period i is set by the
// signal at i-1: long above threshold, short below -threshold, flat
// otherwise, so the strategy never looks ahead. intervalSec is the
// sampling interval used for annualization. signal and returns must have
// equal length.
func SignalPerformance(name string, signal, returns []float64, threshold, intervalSec float64) *domain.SignalPerformance {
	perf := &domain.SignalPerformance{
		SignalName: name,
		Threshold:  threshold,
	}
	n := len(signal)
	if n < 2 || len(returns) != n || intervalSec <= 0 {
		return perf
	}
	perf.PeriodsPerDay = secondsPerDay / intervalSec

	stratReturns := make([]float64, 0, n-1)
	var wins, losses int
	cumulative, peak, maxDrawdown := 0.0, 0.0, 0.0
	for i := 1; i < n; i++ {
		position := 0.0
		switch {
		case signal[i-1] > threshold:
			position = 1
		case signal[i-1] < -threshold:
			position = -1
		}
		ret := position * returns[i]
		stratReturns = append(stratReturns, ret)

		switch {
		case ret > 0:
			wins++
		case ret < 0:
			losses++
		}

		cumulative += ret
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}

	perf.SampleSize = len(stratReturns)
	perf.TotalReturn = cumulative
	perf.MaxDrawdown = maxDrawdown
	if wins+losses > 0 {
		perf.WinRate = float64(wins) / float64(wins+losses)
	}

	mean := stat.Mean(stratReturns, nil)
	std := stat.StdDev(stratReturns, nil)
	if std > 0 {
		perf.SharpeRatio = mean / std
		perf.AnnualizedSharpe = perf.SharpeRatio * math.Sqrt(perf.PeriodsPerDay)
	}
	return perf
}
