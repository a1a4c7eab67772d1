package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"order-book-lab/internal/domain"
	"order-book-lab/internal/pipeline"
	"order-book-lab/internal/storage"
	chstore "order-book-lab/internal/storage/clickhouse"
	"order-book-lab/internal/storage/memory"
	"order-book-lab/internal/storage/migrations"
	pgstore "order-book-lab/internal/storage/postgres"
)

func main() {
	symbol := flag.String("symbol", pipeline.FixtureSymbol, "Instrument to analyze")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (raw events and price points)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (derived series)")
	useFixtures := flag.Bool("use-fixtures", false, "Use in-memory fixtures instead of databases")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	if !*useFixtures && (*postgresDSN == "" || *clickhouseDSN == "") {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn and --clickhouse-dsn are required when not using fixtures")
		fmt.Fprintln(os.Stderr, "Use --use-fixtures to run with demo data instead")
		os.Exit(1)
	}

	var (
		eventStore  storage.EventStore
		priceStore  storage.PricePointStore
		windowStore storage.OFIWindowStore
		sampleStore storage.MicrostructureStore
	)

	if *useFixtures {
		memEvents := memory.NewEventStore()
		memPrices := memory.NewPricePointStore()
		if err := pipeline.LoadFixtures(ctx, memEvents, memPrices); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading fixtures: %v\n", err)
			os.Exit(1)
		}
		eventStore = memEvents
		priceStore = memPrices
		windowStore = memory.NewOFIWindowStore()
		sampleStore = memory.NewMicrostructureStore()
	} else {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()

		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to clickhouse: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()

		eventStore = pgstore.NewEventStore(pool)
		priceStore = pgstore.NewPricePointStore(pool)
		windowStore = chstore.NewOFIWindowStore(conn)
		sampleStore = chstore.NewMicrostructureStore(conn)
	}

	p := pipeline.New(pipeline.DefaultConfig(), eventStore, priceStore, windowStore, sampleStore, logger)

	result, err := p.Run(ctx, *symbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running analysis: %v\n", err)
		os.Exit(1)
	}

	printSummary(result)
}

// printSummary writes a human-readable digest of the run to stdout.
func printSummary(r *pipeline.AnalysisResult) {
	fmt.Printf("Analysis: %s\n", r.Symbol)
	fmt.Printf("  events: %d, price points: %d\n", r.EventCount, r.PriceCount)
	fmt.Printf("  OFI windows: %d, divergences: %d\n", len(r.OFIWindows), len(r.Divergences))
	fmt.Printf("  grid samples: %d, regime transitions: %d\n", len(r.Samples), len(r.RegimeChanges))
	fmt.Printf("  bid clusters: %d, ask clusters: %d\n",
		len(r.Clusters[domain.SideBid]), len(r.Clusters[domain.SideAsk]))
	if r.LiquidityRatio != nil {
		fmt.Printf("  liquidity imbalance: %.4f (%s)\n",
			r.LiquidityRatio.Imbalance, r.LiquidityRatio.Interpretation)
	}

	significant := 0
	for _, c := range r.Correlations {
		if c.Significant {
			significant++
		}
	}
	fmt.Printf("  correlations: %d screened, %d significant\n", len(r.Correlations), significant)

	for _, reg := range r.Regressions {
		fmt.Printf("  regression %s @%ds: slope=%.6g r2=%.4f p=%.4f n=%d\n",
			reg.Predictor, reg.HorizonSec, reg.Slope, reg.RSquared, reg.PValue, reg.SampleSize)
	}

	if p := r.Performance; p != nil && p.SampleSize > 0 {
		fmt.Printf("  signal %s: sharpe=%.4f annualized=%.4f winrate=%.4f maxdd=%.6f\n",
			p.SignalName, p.SharpeRatio, p.AnnualizedSharpe, p.WinRate, p.MaxDrawdown)
	}
}
