package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"re-crawler/config"
	"re-crawler/scraper/olx"
	"re-crawler/services"
	"re-crawler/storage"
	"re-crawler/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}
	logger = logger.WithLevel(utils.ParseLevel(cfg.LogLevel))

	seeds := cfg.Seeds()
	logger.Info("=== Real estate crawler starting ===")
	logger.Info("Config: seeds: %d | fetch: %s | concurrency: %d | rate: %dms | sinks: %s",
		len(seeds), cfg.FetchMode, cfg.MaxConcurrency, cfg.RateLimitMs, strings.Join(cfg.Sinks, ","))

	sinks, err := openSinks(cfg, logger)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	collected := storage.NewCollector()
	sink := storage.NewMultiSink(append(sinks, collected)...)
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Error("Closing sinks: %v", err)
		}
	}()

	pipeline := olx.NewPipeline(logger, sink, time.Now)

	var crawler olx.Crawler
	switch cfg.FetchMode {
	case config.FetchBrowser:
		crawler = olx.NewBrowserCrawler(cfg, pipeline, logger)
	default:
		crawler, err = olx.NewCollyCrawler(cfg, pipeline, logger)
		if err != nil {
			logger.Error("Failed to configure collector: %v", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if err := crawler.Crawl(ctx, seeds); err != nil {
		logger.Warn("Crawl interrupted: %v", err)
	}
	stats := crawler.Stats()
	logger.Info("Crawl finished in %s: %d ads extracted from %d results pages",
		time.Since(start).Round(time.Second), stats.Extracted, stats.Pages)

	insightSvc := services.NewInsightService(logger)
	report := insightSvc.Generate(collected.Records())
	insightSvc.Print(report, stats)

	if cfg.HasSink(config.SinkCSV) {
		fmt.Printf("  Done. Listings CSV → %s\n\n", cfg.CSVOutputPath)
	}
}

// openSinks connects every sink named in SINKS. A sink that cannot be opened
// aborts the run before any request is made.
func openSinks(cfg *config.Config, logger *utils.Logger) ([]storage.RecordSink, error) {
	var sinks []storage.RecordSink
	fail := func(err error) ([]storage.RecordSink, error) {
		for _, s := range sinks {
			s.Close()
		}
		return nil, err
	}

	if cfg.HasSink(config.SinkCSV) {
		w, err := storage.NewCSVWriter(cfg.CSVOutputPath)
		if err != nil {
			return fail(fmt.Errorf("failed to create CSV writer: %w", err))
		}
		sinks = append(sinks, w)
		logger.Info("Writing listings to %s", cfg.CSVOutputPath)
	}

	if cfg.HasSink(config.SinkJSONL) {
		w, err := storage.NewJSONLWriter(cfg.JSONLOutputPath)
		if err != nil {
			return fail(fmt.Errorf("failed to create JSONL writer: %w", err))
		}
		sinks = append(sinks, w)
		logger.Info("Writing listings to %s", cfg.JSONLOutputPath)
	}

	if cfg.HasSink(config.SinkPostgres) {
		w, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			return fail(fmt.Errorf("failed to connect to PostgreSQL: %w", err))
		}
		sinks = append(sinks, w)
		logger.Info("Writing listings to PostgreSQL (table: listings)")
	}

	if cfg.HasSink(config.SinkMongo) {
		w, err := storage.NewMongoWriter(cfg.MongoURI, cfg.MongoDB, cfg.MongoCollection)
		if err != nil {
			return fail(fmt.Errorf("failed to connect to MongoDB: %w", err))
		}
		sinks = append(sinks, w)
		logger.Info("Writing listings to MongoDB (%s.%s)", cfg.MongoDB, cfg.MongoCollection)
	}

	return sinks, nil
}
