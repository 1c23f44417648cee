package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/raaihank/medtag/internal/batch"
	"github.com/raaihank/medtag/internal/config"
	"github.com/raaihank/medtag/internal/entity"
	"github.com/raaihank/medtag/internal/history"
	"github.com/raaihank/medtag/internal/logger"
)

func main() {
	var (
		configPath    = flag.String("config", "", "Configuration file path")
		inputFile     = flag.String("input", "", "Input dataset file (CSV, Parquet, or JSON lines)")
		batchSize     = flag.Int("batch-size", 1000, "Batch size for processing")
		workers       = flag.Int("workers", 4, "Number of worker goroutines")
		recordHistory = flag.Bool("record-history", false, "Persist per-record results to the history store")
		showStats     = flag.Bool("stats", false, "Show history store statistics and exit")
	)
	flag.Parse()

	if *inputFile == "" && !*showStats {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --input notes.csv --batch-size 500\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --input notes.parquet --workers 8 --record-history\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --stats\n", os.Args[0])
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting medtag batch pipeline", zap.String("config", *configPath))

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, cancelling operations...")
		cancel()
	}()

	// Initialize the history store when needed
	var histStore *history.Store
	if *recordHistory || *showStats {
		if !cfg.History.Enabled {
			log.Fatal("History store is not enabled in configuration")
		}
		histStore, err = history.NewStore(&history.Config{
			DatabaseURL:     cfg.History.DatabaseURL,
			MaxOpenConns:    cfg.History.MaxOpenConns,
			MaxIdleConns:    cfg.History.MaxIdleConns,
			ConnMaxLifetime: cfg.History.ConnMaxLifetime,
		}, log.WithComponent("history").Logger)
		if err != nil {
			log.Fatal("Failed to initialize history store", zap.Error(err))
		}
		defer histStore.Close()
	}

	if *showStats {
		if err := showHistoryStats(ctx, histStore); err != nil {
			log.Fatal("Failed to show stats", zap.Error(err))
		}
		return
	}

	// Build the extractor with the same vocabulary wiring as the server
	vocab := entity.DefaultVocabulary()
	if len(cfg.Engine.ExtraTerms) > 0 || len(cfg.Engine.ExtraDosagePatterns) > 0 {
		extra := make(map[entity.Category][]string, len(cfg.Engine.ExtraTerms))
		for name, terms := range cfg.Engine.ExtraTerms {
			c, err := entity.ParseCategory(name)
			if err != nil {
				log.Fatal("Invalid extra_terms category", zap.Error(err))
			}
			extra[c] = terms
		}
		vocab = vocab.WithExtra(extra, cfg.Engine.ExtraDosagePatterns)
	}

	extractor, err := entity.New(vocab, log.WithComponent("entity").Logger)
	if err != nil {
		log.Fatal("Failed to create extractor", zap.Error(err))
	}

	if err := processDataset(ctx, extractor, histStore, *inputFile, *batchSize, *workers, *recordHistory, log); err != nil {
		log.Fatal("Batch processing failed", zap.Error(err))
	}

	log.Info("Batch pipeline completed successfully")
}

// processDataset runs the extraction pipeline over the input dataset
func processDataset(ctx context.Context, extractor *entity.Extractor, histStore *history.Store, inputFile string, batchSize, workers int, recordHistory bool, log *logger.Logger) error {
	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputFile)
	}

	pipeline := batch.NewPipeline(extractor, histStore, &batch.Config{
		BatchSize:     batchSize,
		WorkerCount:   workers,
		RecordHistory: recordHistory,
	}, log.Logger)

	result, err := pipeline.ProcessFile(ctx, inputFile)
	if err != nil {
		return fmt.Errorf("pipeline processing failed: %w", err)
	}

	log.Info("Dataset processing completed",
		zap.String("file", inputFile),
		zap.Int64("total_records", result.TotalRecords),
		zap.Int64("processed_ok", result.ProcessedOK),
		zap.Int64("processed_failed", result.ProcessedFailed),
		zap.Int64("total_entities", result.TotalEntities),
		zap.Duration("total_duration", result.Duration),
		zap.Float64("records_per_second", float64(result.TotalRecords)/result.Duration.Seconds()))

	if len(result.Errors) > 0 {
		log.Warn("Processing completed with errors", zap.Strings("errors", result.Errors))
	}

	fmt.Printf("\n=== medtag Batch Results ===\n")
	fmt.Printf("Total Records:    %d\n", result.TotalRecords)
	fmt.Printf("Processed OK:     %d\n", result.ProcessedOK)
	fmt.Printf("Processed Failed: %d\n", result.ProcessedFailed)
	fmt.Printf("Total Entities:   %d\n", result.TotalEntities)
	for _, cat := range entity.Categories() {
		if count := result.CategoryCounts[string(cat)]; count > 0 {
			fmt.Printf("  %-22s %d\n", cat, count)
		}
	}
	fmt.Printf("Duration:         %v\n", result.Duration)

	return nil
}

// showHistoryStats displays history store statistics
func showHistoryStats(ctx context.Context, histStore *history.Store) error {
	stats, err := histStore.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get history stats: %w", err)
	}

	fmt.Printf("\n=== medtag Analysis History ===\n")
	fmt.Printf("Total Analyses:   %d\n", stats.TotalAnalyses)
	fmt.Printf("Total Entities:   %d\n", stats.TotalEntities)
	fmt.Printf("Avg Entities:     %.1f\n", stats.AvgEntityCount)
	fmt.Printf("Distinct Texts:   %d\n", stats.DistinctTexts)
	if stats.FirstAnalysisAt != nil {
		fmt.Printf("First Analysis:   %v\n", stats.FirstAnalysisAt.Format("2006-01-02 15:04:05"))
	}
	if stats.LatestAnalysisAt != nil {
		fmt.Printf("Latest Analysis:  %v\n", stats.LatestAnalysisAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}
