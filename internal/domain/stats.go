package domain

// CorrelationResult holds a single Pearson correlation measurement.
type CorrelationResult struct {
	Predictor   string // series the forward return was correlated against
	HorizonSec  int    // forward-return horizon in seconds, 0 if not applicable
	Coefficient float64
	PValue      float64
	RSquared    float64
	Significant bool // p < 0.05
	SampleSize  int
}

// RegressionResult holds an ordinary-least-squares fit of one predictor
// against the forward return.
type RegressionResult struct {
	Predictor   string
	HorizonSec  int
	Slope       float64
	Intercept   float64
	R           float64
	RSquared    float64
	PValue      float64
	StdErr      float64 // standard error of the slope
	RMSE        float64
	AIC         float64 // n*ln(mse) + 2k, k = 2 parameters
	SampleSize  int
	Significant bool
}

// DistributionStats summarizes a sample distribution.
// NormalityPValue is nil when no normality test was run.
type DistributionStats struct {
	Name       string
	SampleSize int
	Mean       float64
	Std        float64
	Median     float64
	Min        float64
	Max        float64
	Skewness   float64
	Kurtosis   float64 // excess kurtosis
	P25        float64
	P75        float64
	P95        float64
	P99        float64

	NormalityPValue *float64
	IsNormal        bool // p > 0.05; false when no test was run
}

// SignalPerformance holds threshold-strategy quality metrics for a signal.
// Strategy returns are lagged by one period, so position at i depends only
// on the signal up to i-1.
type SignalPerformance struct {
	SignalName       string
	Threshold        float64
	SharpeRatio      float64 // mean / std of strategy returns, 0 if std = 0
	AnnualizedSharpe float64 // SharpeRatio * sqrt(periods per day)
	PeriodsPerDay    float64
	WinRate          float64 // wins / (wins + losses), zero-return periods excluded
	MaxDrawdown      float64 // worst drop from running peak of cumulative return
	TotalReturn      float64
	SampleSize       int
}
