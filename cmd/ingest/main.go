package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"order-book-lab/internal/ingestion"
	"order-book-lab/internal/storage"
	"order-book-lab/internal/storage/memory"
	"order-book-lab/internal/storage/migrations"
	pgstore "order-book-lab/internal/storage/postgres"
)

func main() {
	wsEndpoint := flag.String("ws-endpoint", "", "Feed WebSocket endpoint")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	minUSD := flag.Float64("min-usd", 500, "Minimum usd value for book-level events")
	batchSize := flag.Int("batch-size", 200, "Events per storage batch")
	flushInterval := flag.Duration("flush-interval", 2*time.Second, "Partial batch flush interval")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *wsEndpoint == "" {
		fmt.Fprintln(os.Stderr, "Error: --ws-endpoint is required")
		os.Exit(1)
	}
	if !*useMemory && *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn is required (use --use-memory for in-memory storage)")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	var eventStore storage.EventStore = memory.NewEventStore()
	var priceStore storage.PricePointStore = memory.NewPricePointStore()

	if !*useMemory {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatal("connect to postgres", zap.Error(err))
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatal("apply postgres migrations", zap.Error(err))
		}

		eventStore = pgstore.NewEventStore(pool)
		priceStore = pgstore.NewPricePointStore(pool)
	}

	client, err := ingestion.NewWSClient(ctx, *wsEndpoint, nil, logger)
	if err != nil {
		logger.Fatal("connect to feed", zap.Error(err))
	}
	defer client.Close()

	ingester := ingestion.NewIngester(ingestion.IngesterConfig{
		MinUSDValue:   *minUSD,
		BatchSize:     *batchSize,
		FlushInterval: *flushInterval,
	}, eventStore, priceStore, logger)

	logger.Info("starting ingestion", zap.String("endpoint", *wsEndpoint))
	if err := ingester.Run(ctx, client.Messages()); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("ingestion failed", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
