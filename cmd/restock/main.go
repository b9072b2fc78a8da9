package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/feed"
	"storefront/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	path := flag.String("file", "", "restock feed to apply (gzipped product_id,quantity lines or an .xlsx workbook)")
	dryRun := flag.Bool("dry-run", false, "parse the feed without touching stock")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		return fmt.Errorf("-file is required")
	}

	if err := config.LoadEnvFiles(".env"); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fileLoader := feed.NewFileLoader(logger)
	var s3Loader feed.Loader
	if cfg.Feed.S3Enabled {
		s3Loader, err = feed.NewS3Loader(ctx, cfg.Feed.S3Bucket, cfg.Feed.S3Region, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialise S3 loader, using local file system only")
		}
	}
	loader := feed.NewFallbackLoader(s3Loader, fileLoader, cfg.Feed.S3Prefix, cfg.Feed.S3Enabled, logger)

	entries, err := loader.Load(ctx, *path)
	if err != nil {
		return err
	}

	if *dryRun {
		logger.Info().Int("entries", len(entries)).Msg("dry run, feed not applied")
		return nil
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	productRepo := repository.NewProductRepository(pool, logger)
	result, err := feed.NewApplier(pool, productRepo, logger).Apply(ctx, entries)
	if err != nil {
		return err
	}

	fmt.Printf("restocked %d units across %d entries\n", result.Units, result.Entries)
	return nil
}
