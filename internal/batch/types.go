package batch

import (
	"path/filepath"
	"strings"
	"time"
)

// DataRecord represents a single text record from the input dataset
type DataRecord struct {
	Text string `csv:"text" parquet:"text" json:"text"`
}

// Result represents the outcome of processing a dataset
type Result struct {
	TotalRecords    int64            `json:"total_records"`
	ProcessedOK     int64            `json:"processed_ok"`
	ProcessedFailed int64            `json:"processed_failed"`
	TotalEntities   int64            `json:"total_entities"`
	CategoryCounts  map[string]int64 `json:"category_counts"`
	Duration        time.Duration    `json:"duration"`
	Errors          []string         `json:"errors,omitempty"`
}

// Config contains batch pipeline configuration
type Config struct {
	BatchSize      int  `yaml:"batch_size" mapstructure:"batch_size"`
	WorkerCount    int  `yaml:"worker_count" mapstructure:"worker_count"`
	RecordHistory  bool `yaml:"record_history" mapstructure:"record_history"`
	ProgressReport int  `yaml:"progress_report" mapstructure:"progress_report"`
}

// FileFormat identifies the input dataset format
type FileFormat string

const (
	FormatCSV     FileFormat = "csv"
	FormatParquet FileFormat = "parquet"
	FormatJSON    FileFormat = "json"
	FormatUnknown FileFormat = "unknown"
)

// DetectFileFormat guesses the dataset format from the file extension
func DetectFileFormat(path string) FileFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".parquet":
		return FormatParquet
	case ".json", ".jsonl", ".ndjson":
		return FormatJSON
	default:
		return FormatUnknown
	}
}
