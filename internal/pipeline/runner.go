// Package pipeline runs the full batch analysis: load raw events and
// price points from storage, derive the OFI and microstructure series,
// persist them and assemble the statistical screens into one result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"order-book-lab/internal/domain"
	"order-book-lab/internal/liquidity"
	"order-book-lab/internal/micro"
	"order-book-lab/internal/ofi"
	"order-book-lab/internal/stats"
	"order-book-lab/internal/storage"
)

// Config holds the analysis parameters.
type Config struct {
	// OFIWindow is the bucketing window for order-flow imbalance.
	OFIWindow time.Duration
	// ClusterEpsPct is the DBSCAN neighborhood radius, percent of price.
	ClusterEpsPct float64
	// ClusterMinSamples is the DBSCAN core-point floor.
	ClusterMinSamples int
	// RegimeZThreshold triggers a volatility regime transition.
	RegimeZThreshold float64
	// ImpactWindow is the price-impact measurement horizon.
	ImpactWindow time.Duration
	// SignalThreshold is the OFI z-score entry threshold.
	SignalThreshold float64
	// PredictiveHorizonSec is the regression forward-return horizon.
	PredictiveHorizonSec int
}

// DefaultConfig returns the default analysis parameters.
func DefaultConfig() Config {
	return Config{
		OFIWindow:            time.Second,
		ClusterEpsPct:        0.1,
		ClusterMinSamples:    3,
		RegimeZThreshold:     2.0,
		ImpactWindow:         5 * time.Second,
		SignalThreshold:      1.0,
		PredictiveHorizonSec: 5,
	}
}

// AnalysisResult is the assembled output of one pipeline run.
type AnalysisResult struct {
	Symbol     string
	EventCount int
	PriceCount int

	Clusters       map[domain.Side][]*domain.Cluster
	DepthProfile   map[domain.Side][]*domain.DepthLevel
	Holes          map[domain.Side][]*domain.LiquidityHole
	LiquidityRatio *domain.LiquidityRatio

	OFIWindows  []*domain.OFIWindow
	Divergences []*domain.Divergence

	Samples       []*domain.MicrostructureSample
	Regimes       []domain.Regime
	RegimeChanges []*domain.RegimeChange
	PriceImpacts  []*domain.PriceImpact
	SpreadVolCorr []*domain.SpreadVolCorrelation

	Correlations  []*domain.CorrelationResult
	Distributions []*domain.DistributionStats
	Regressions   []*domain.RegressionResult
	Performance   *domain.SignalPerformance
}

// Pipeline loads raw series, runs the analyzers and persists the
// derived series.
type Pipeline struct {
	config  Config
	events  storage.EventStore
	prices  storage.PricePointStore
	windows storage.OFIWindowStore
	samples storage.MicrostructureStore
	log     *zap.Logger
}

// New creates a pipeline over the given stores. The derived-series
// stores may be nil, in which case persistence is skipped.
func New(config Config, events storage.EventStore, prices storage.PricePointStore,
	windows storage.OFIWindowStore, samples storage.MicrostructureStore, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		config:  config,
		events:  events,
		prices:  prices,
		windows: windows,
		samples: samples,
		log:     log,
	}
}

// Run executes the full analysis for one symbol.
func (p *Pipeline) Run(ctx context.Context, symbol string) (*AnalysisResult, error) {
	events, err := p.events.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	prices, err := p.prices.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load price points: %w", err)
	}
	p.log.Info("analysis input loaded",
		zap.String("symbol", symbol),
		zap.Int("events", len(events)),
		zap.Int("price_points", len(prices)))

	result := &AnalysisResult{
		Symbol:     symbol,
		EventCount: len(events),
		PriceCount: len(prices),
	}

	result.Clusters = liquidity.AnalyzeClustering(events, p.config.ClusterEpsPct, p.config.ClusterMinSamples)
	result.DepthProfile = liquidity.DepthProfile(events, 20)
	result.Holes = liquidity.DetectHoles(events, p.config.ClusterEpsPct)
	result.LiquidityRatio = liquidity.Ratio(events, 2.0)

	result.OFIWindows = ofi.Calculate(events, p.config.OFIWindow)
	result.Divergences = ofi.DetectDivergence(result.OFIWindows, prices)

	result.Samples = micro.CalculateAll(prices, events)
	result.Regimes, result.RegimeChanges = micro.DetectRegimeChanges(result.Samples, p.config.RegimeZThreshold)
	result.PriceImpacts = micro.MeasurePriceImpact(events, prices, p.config.ImpactWindow)
	result.SpreadVolCorr = micro.SpreadVolatilityCorrelation(result.Samples)

	result.Correlations = stats.AnalyzeCorrelations(result.OFIWindows, result.Samples)
	result.Distributions = stats.AnalyzeDistributions(result.OFIWindows, events)
	result.Regressions = stats.TestPredictivePower(result.OFIWindows, result.Samples, p.config.PredictiveHorizonSec)
	result.Performance = stats.EvaluateOFISignal(result.OFIWindows, result.Samples, p.config.SignalThreshold)

	if err := p.persist(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// persist writes the derived series to the aggregate stores. Duplicate
// keys are tolerated so re-running over the same raw data is a no-op.
func (p *Pipeline) persist(ctx context.Context, result *AnalysisResult) error {
	if p.windows != nil && len(result.OFIWindows) > 0 {
		if err := p.windows.InsertBulk(ctx, result.OFIWindows); err != nil {
			if !errors.Is(err, storage.ErrDuplicateKey) {
				return fmt.Errorf("persist ofi windows: %w", err)
			}
			p.log.Debug("ofi windows already persisted", zap.Int("count", len(result.OFIWindows)))
		}
	}
	if p.samples != nil && len(result.Samples) > 0 {
		if err := p.samples.InsertBulk(ctx, result.Samples); err != nil {
			if !errors.Is(err, storage.ErrDuplicateKey) {
				return fmt.Errorf("persist microstructure samples: %w", err)
			}
			p.log.Debug("microstructure samples already persisted", zap.Int("count", len(result.Samples)))
		}
	}
	return nil
}
