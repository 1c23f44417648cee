package batch

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/parquet-go"
	"go.uber.org/zap"

	"github.com/raaihank/medtag/internal/entity"
	"github.com/raaihank/medtag/internal/history"
)

// Pipeline runs the extraction engine over text datasets offline
type Pipeline struct {
	extractor *entity.Extractor
	histStore *history.Store
	config    *Config
	logger    *zap.Logger
	mu        sync.Mutex
}

// NewPipeline creates a new batch pipeline. histStore may be nil; records
// are then tallied but not persisted.
func NewPipeline(extractor *entity.Extractor, histStore *history.Store, config *Config, logger *zap.Logger) *Pipeline {
	if config.BatchSize <= 0 {
		config.BatchSize = 1000
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 4
	}
	if config.ProgressReport <= 0 {
		config.ProgressReport = 1000
	}

	return &Pipeline{
		extractor: extractor,
		histStore: histStore,
		config:    config,
		logger:    logger,
	}
}

// ProcessFile processes a dataset file (CSV, Parquet, or JSON lines)
func (p *Pipeline) ProcessFile(ctx context.Context, filePath string) (*Result, error) {
	p.logger.Info("Starting batch pipeline",
		zap.String("file", filePath),
		zap.Int("batch_size", p.config.BatchSize),
		zap.Int("workers", p.config.WorkerCount))

	start := time.Now()
	result := &Result{CategoryCounts: make(map[string]int64)}

	format := DetectFileFormat(filePath)
	p.logger.Info("Detected file format", zap.String("format", string(format)))

	var err error
	switch format {
	case FormatCSV:
		err = p.processCSV(ctx, filePath, result)
	case FormatParquet:
		err = p.processParquet(ctx, filePath, result)
	case FormatJSON:
		err = p.processJSON(ctx, filePath, result)
	default:
		return result, fmt.Errorf("unsupported file format: %s", format)
	}
	if err != nil {
		return result, fmt.Errorf("%s processing failed: %w", format, err)
	}

	result.Duration = time.Since(start)

	p.logger.Info("Batch pipeline completed",
		zap.Int64("total_records", result.TotalRecords),
		zap.Int64("processed_ok", result.ProcessedOK),
		zap.Int64("processed_failed", result.ProcessedFailed),
		zap.Int64("total_entities", result.TotalEntities),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// processCSV processes CSV files with a "text" column
func (p *Pipeline) processCSV(ctx context.Context, filePath string, result *Result) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	textCol := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "text") {
			textCol = i
			break
		}
	}
	if textCol < 0 {
		return fmt.Errorf("CSV header has no text column: %v", header)
	}

	return p.processBatches(ctx, func() ([]DataRecord, error) {
		var batch []DataRecord
		for len(batch) < p.config.BatchSize {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				p.logger.Warn("Failed to read CSV record", zap.Error(err))
				p.recordError(result, fmt.Sprintf("csv read: %v", err))
				continue
			}
			if textCol >= len(record) {
				result.ProcessedFailed++
				continue
			}
			batch = append(batch, DataRecord{Text: strings.TrimSpace(record[textCol])})
		}
		return batch, nil
	}, result)
}

// processParquet processes Parquet files
func (p *Pipeline) processParquet(ctx context.Context, filePath string, result *Result) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open Parquet file: %w", err)
	}
	defer file.Close()

	reader := parquet.NewReader(file)
	defer reader.Close()

	return p.processBatches(ctx, func() ([]DataRecord, error) {
		var batch []DataRecord
		for len(batch) < p.config.BatchSize {
			var record DataRecord
			err := reader.Read(&record)
			if err == io.EOF {
				break
			}
			if err != nil {
				p.logger.Warn("Failed to read Parquet record", zap.Error(err))
				p.recordError(result, fmt.Sprintf("parquet read: %v", err))
				continue
			}
			batch = append(batch, record)
		}
		return batch, nil
	}, result)
}

// processJSON processes JSON-lines files
func (p *Pipeline) processJSON(ctx context.Context, filePath string, result *Result) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open JSON file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)

	return p.processBatches(ctx, func() ([]DataRecord, error) {
		var batch []DataRecord
		for len(batch) < p.config.BatchSize {
			var record DataRecord
			err := decoder.Decode(&record)
			if err == io.EOF {
				break
			}
			if err != nil {
				p.logger.Warn("Failed to read JSON record", zap.Error(err))
				p.recordError(result, fmt.Sprintf("json decode: %v", err))
				continue
			}
			batch = append(batch, record)
		}
		return batch, nil
	}, result)
}

// recordError counts a failed record and keeps the first few error messages
func (p *Pipeline) recordError(result *Result, msg string) {
	result.ProcessedFailed++
	if len(result.Errors) < 10 {
		result.Errors = append(result.Errors, msg)
	}
}

// processBatches reads batches with readBatch and fans them out to workers
func (p *Pipeline) processBatches(ctx context.Context, readBatch func() ([]DataRecord, error), result *Result) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch, err := readBatch()
		if err != nil {
			return fmt.Errorf("failed to read batch: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		p.processBatch(ctx, batch, result)

		if result.TotalRecords%int64(p.config.ProgressReport) < int64(len(batch)) {
			p.logger.Info("Progress",
				zap.Int64("records", result.TotalRecords),
				zap.Int64("entities", result.TotalEntities))
		}
	}

	return nil
}

// processBatch runs extraction over one batch with the configured worker count
func (p *Pipeline) processBatch(ctx context.Context, batch []DataRecord, result *Result) {
	jobs := make(chan DataRecord)
	var wg sync.WaitGroup

	for i := 0; i < p.config.WorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for record := range jobs {
				p.processRecord(ctx, record, result)
			}
		}()
	}

	for _, record := range batch {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		case jobs <- record:
		}
	}
	close(jobs)
	wg.Wait()
}

// processRecord extracts entities from one record and updates the tallies
func (p *Pipeline) processRecord(ctx context.Context, record DataRecord, result *Result) {
	if record.Text == "" {
		p.mu.Lock()
		result.TotalRecords++
		result.ProcessedFailed++
		p.mu.Unlock()
		return
	}

	spans := p.extractor.Extract(record.Text)

	p.mu.Lock()
	result.TotalRecords++
	result.ProcessedOK++
	result.TotalEntities += int64(len(spans))
	for _, s := range spans {
		result.CategoryCounts[string(s.Category)]++
	}
	p.mu.Unlock()

	if p.histStore != nil && p.config.RecordHistory {
		summaryJSON, err := json.Marshal(p.extractor.Summarize(record.Text))
		if err != nil {
			return
		}
		rec := &history.Record{
			TextHash:    history.HashText(record.Text),
			TextLength:  len(record.Text),
			EntityCount: len(spans),
			Summary:     string(summaryJSON),
		}
		if err := p.histStore.Record(ctx, rec); err != nil {
			p.logger.Warn("Failed to record batch analysis", zap.Error(err))
		}
	}
}
