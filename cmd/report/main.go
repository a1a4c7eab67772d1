package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"order-book-lab/internal/pipeline"
	"order-book-lab/internal/reporting"
	"order-book-lab/internal/storage"
	chstore "order-book-lab/internal/storage/clickhouse"
	"order-book-lab/internal/storage/memory"
)

func main() {
	symbol := flag.String("symbol", pipeline.FixtureSymbol, "Instrument to report on")
	outputDir := flag.String("output-dir", "reports", "Output directory for generated files")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (derived series)")
	useFixtures := flag.Bool("use-fixtures", false, "Analyze in-memory fixtures instead of stored series")
	fixedTime := flag.String("generated-at", "", "Override report timestamp (RFC3339) for deterministic output")
	flag.Parse()

	ctx := context.Background()

	if !*useFixtures && *clickhouseDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --clickhouse-dsn is required when not using fixtures")
		fmt.Fprintln(os.Stderr, "Use --use-fixtures to run with demo data instead")
		os.Exit(1)
	}

	var (
		windowStore storage.OFIWindowStore
		sampleStore storage.MicrostructureStore
	)

	if *useFixtures {
		var err error
		windowStore, sampleStore, err = buildFixtureStores(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building fixture series: %v\n", err)
			os.Exit(1)
		}
	} else {
		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to clickhouse: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()

		windowStore = chstore.NewOFIWindowStore(conn)
		sampleStore = chstore.NewMicrostructureStore(conn)
	}

	gen := reporting.NewGenerator(windowStore, sampleStore)
	if *fixedTime != "" {
		t, err := time.Parse(time.RFC3339, *fixedTime)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing --generated-at: %v\n", err)
			os.Exit(1)
		}
		gen = gen.WithClock(func() time.Time { return t })
	}

	report, err := gen.Generate(ctx, *symbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	if err := writeOutputs(ctx, *outputDir, report, windowStore, *symbol); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report files: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Report generated successfully:")
	fmt.Printf("  - %s/REPORT.md\n", *outputDir)
	fmt.Printf("  - %s/correlations.csv\n", *outputDir)
	fmt.Printf("  - %s/ofi_windows.csv\n", *outputDir)
	fmt.Printf("  - %s/regime_changes.csv\n", *outputDir)
}

// buildFixtureStores runs the full analysis over the synthetic feed and
// returns stores holding the derived series.
func buildFixtureStores(ctx context.Context) (storage.OFIWindowStore, storage.MicrostructureStore, error) {
	events := memory.NewEventStore()
	prices := memory.NewPricePointStore()
	if err := pipeline.LoadFixtures(ctx, events, prices); err != nil {
		return nil, nil, err
	}

	windows := memory.NewOFIWindowStore()
	samples := memory.NewMicrostructureStore()
	p := pipeline.New(pipeline.DefaultConfig(), events, prices, windows, samples, nil)
	if _, err := p.Run(ctx, pipeline.FixtureSymbol); err != nil {
		return nil, nil, err
	}
	return windows, samples, nil
}

// writeOutputs renders the markdown report and CSV exports.
func writeOutputs(ctx context.Context, outputDir string, report *reporting.Report, windows storage.OFIWindowStore, symbol string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	md := reporting.RenderMarkdown(report)
	if err := os.WriteFile(filepath.Join(outputDir, "REPORT.md"), []byte(md), 0644); err != nil {
		return err
	}

	corrCSV := reporting.RenderCorrelationsCSV(report.Correlations)
	if err := os.WriteFile(filepath.Join(outputDir, "correlations.csv"), []byte(corrCSV), 0644); err != nil {
		return err
	}

	series, err := windows.GetBySymbol(ctx, symbol)
	if err != nil {
		return err
	}
	windowCSV := reporting.RenderOFIWindowsCSV(series)
	if err := os.WriteFile(filepath.Join(outputDir, "ofi_windows.csv"), []byte(windowCSV), 0644); err != nil {
		return err
	}

	regimeCSV := reporting.RenderRegimeChangesCSV(report.Regimes.Transitions)
	return os.WriteFile(filepath.Join(outputDir, "regime_changes.csv"), []byte(regimeCSV), 0644)
}
