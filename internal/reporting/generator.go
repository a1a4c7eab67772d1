// Package reporting assembles stored derived series into markdown and
// CSV reports.
package reporting

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"order-book-lab/internal/domain"
	"order-book-lab/internal/micro"
	"order-book-lab/internal/stats"
	"order-book-lab/internal/storage"
)

// Generator produces reports from stored derived series.
type Generator struct {
	windowStore storage.OFIWindowStore
	sampleStore storage.MicrostructureStore
	now         func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(windowStore storage.OFIWindowStore, sampleStore storage.MicrostructureStore) *Generator {
	return &Generator{
		windowStore: windowStore,
		sampleStore: sampleStore,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate assembles the report for one symbol from the stored OFI
// window and microstructure series.
func (g *Generator) Generate(ctx context.Context, symbol string) (*Report, error) {
	windows, err := g.windowStore.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load ofi windows: %w", err)
	}
	samples, err := g.sampleStore.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load microstructure samples: %w", err)
	}

	report := &Report{
		GeneratedAt: g.now(),
		Symbol:      symbol,
		DataSummary: generateDataSummary(windows, samples),
		OFISummary:  generateOFISummary(windows),
		Regimes:     generateRegimeSummary(samples),
	}

	report.Correlations = stats.AnalyzeCorrelations(windows, samples)
	report.Regressions = stats.TestPredictivePower(windows, samples, 5)
	report.Distributions = stats.AnalyzeDistributions(windows, nil)
	report.Performance = stats.EvaluateOFISignal(windows, samples, 1.0)

	return report, nil
}

func generateDataSummary(windows []*domain.OFIWindow, samples []*domain.MicrostructureSample) DataSummary {
	summary := DataSummary{
		WindowCount: len(windows),
		SampleCount: len(samples),
	}
	if len(windows) > 0 {
		summary.WindowMs = windows[0].WindowMs
		summary.DateRangeStart = windows[0].TimestampMs
		summary.DateRangeEnd = windows[len(windows)-1].TimestampMs
	}
	return summary
}

func generateOFISummary(windows []*domain.OFIWindow) OFISummary {
	var summary OFISummary
	if len(windows) == 0 {
		return summary
	}

	series := make([]float64, len(windows))
	for i, w := range windows {
		series[i] = w.OFI
		if math.Abs(w.OFIZScore) > 2 {
			summary.ExtremeWindows++
		}
	}

	summary.Mean = stat.Mean(series, nil)
	if len(series) > 1 {
		summary.Std = stat.StdDev(series, nil)
	}
	summary.Min, summary.Max = series[0], series[0]
	for _, v := range series {
		if v < summary.Min {
			summary.Min = v
		}
		if v > summary.Max {
			summary.Max = v
		}
	}
	summary.CumulativeLast = windows[len(windows)-1].OFICumulative
	return summary
}

func generateRegimeSummary(samples []*domain.MicrostructureSample) RegimeSummary {
	regimes, changes := micro.DetectRegimeChanges(samples, 2.0)

	summary := RegimeSummary{Transitions: changes}
	for _, r := range regimes {
		switch r {
		case domain.RegimeLowVol:
			summary.LowVolSamples++
		case domain.RegimeHighVol:
			summary.HighVolSamples++
		default:
			summary.NormalSamples++
		}
	}
	return summary
}
