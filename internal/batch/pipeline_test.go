package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/raaihank/medtag/internal/entity"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	extractor, err := entity.New(entity.DefaultVocabulary(), zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create extractor: %v", err)
	}
	return NewPipeline(extractor, nil, &Config{WorkerCount: 2, BatchSize: 10}, zap.NewNop())
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}

// TestDetectFileFormat tests dataset format detection
func TestDetectFileFormat(t *testing.T) {
	cases := map[string]FileFormat{
		"data.csv":     FormatCSV,
		"data.CSV":     FormatCSV,
		"data.parquet": FormatParquet,
		"data.json":    FormatJSON,
		"data.jsonl":   FormatJSON,
		"data.txt":     FormatUnknown,
	}
	for path, want := range cases {
		if got := DetectFileFormat(path); got != want {
			t.Errorf("DetectFileFormat(%q) = %s, want %s", path, got, want)
		}
	}
}

// TestProcessCSV tests CSV dataset processing
func TestProcessCSV(t *testing.T) {
	p := newTestPipeline(t)

	path := writeTempFile(t, "notes.csv", "id,text\n"+
		"1,patient takes aspirin for headache\n"+
		"2,no clinical content\n"+
		"3,diabetes and hypertension\n")

	result, err := p.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if result.TotalRecords != 3 {
		t.Errorf("Expected 3 records, got %d", result.TotalRecords)
	}
	if result.ProcessedOK != 3 {
		t.Errorf("Expected 3 processed, got %d", result.ProcessedOK)
	}
	// aspirin + headache + diabetes + hypertension
	if result.TotalEntities != 4 {
		t.Errorf("Expected 4 entities, got %d (counts: %v)", result.TotalEntities, result.CategoryCounts)
	}
	if result.CategoryCounts["DISEASE"] != 2 {
		t.Errorf("Expected 2 DISEASE entities, got %d", result.CategoryCounts["DISEASE"])
	}
}

// TestProcessJSON tests JSON-lines dataset processing
func TestProcessJSON(t *testing.T) {
	p := newTestPipeline(t)

	path := writeTempFile(t, "notes.jsonl",
		`{"text":"500 mg twice a day"}`+"\n"+
			`{"text":""}`+"\n")

	result, err := p.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if result.ProcessedOK != 1 {
		t.Errorf("Expected 1 processed record, got %d", result.ProcessedOK)
	}
	if result.ProcessedFailed != 1 {
		t.Errorf("Empty text should count as failed, got %d", result.ProcessedFailed)
	}
	if result.CategoryCounts["DOSAGE"] != 2 {
		t.Errorf("Expected 2 DOSAGE entities, got %d", result.CategoryCounts["DOSAGE"])
	}
}

// TestProcessUnsupportedFormat tests rejection of unknown dataset formats
func TestProcessUnsupportedFormat(t *testing.T) {
	p := newTestPipeline(t)
	path := writeTempFile(t, "notes.txt", "whatever")

	if _, err := p.ProcessFile(context.Background(), path); err == nil {
		t.Error("Unknown format should fail")
	}
}
