package reporting

import (
	"time"

	"order-book-lab/internal/domain"
)

// Report is the assembled analysis report for one symbol.
type Report struct {
	GeneratedAt time.Time
	Symbol      string

	DataSummary DataSummary
	OFISummary  OFISummary
	Regimes     RegimeSummary

	Correlations  []*domain.CorrelationResult
	Regressions   []*domain.RegressionResult
	Distributions []*domain.DistributionStats
	Performance   *domain.SignalPerformance
}

// DataSummary describes the stored derived series the report covers.
type DataSummary struct {
	WindowCount    int
	SampleCount    int
	WindowMs       int64
	DateRangeStart int64 // Unix ms
	DateRangeEnd   int64 // Unix ms
}

// OFISummary aggregates the stored OFI window series.
type OFISummary struct {
	Mean           float64
	Std            float64
	Min            float64
	Max            float64
	CumulativeLast float64
	ExtremeWindows int // |z-score| > 2
}

// RegimeSummary counts volatility regime membership and transitions.
type RegimeSummary struct {
	LowVolSamples  int
	NormalSamples  int
	HighVolSamples int
	Transitions    []*domain.RegimeChange
}
