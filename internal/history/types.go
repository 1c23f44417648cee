package history

import "time"

// Record is one stored analysis. The original text is not persisted, only
// its hash and the derived counts; the history answers "what was analyzed
// and what came out", not "what did the patient note say".
type Record struct {
	ID          int64     `db:"id" json:"id"`
	TextHash    string    `db:"text_hash" json:"text_hash"`
	TextLength  int       `db:"text_length" json:"text_length"`
	EntityCount int       `db:"entity_count" json:"entity_count"`
	Summary     string    `db:"summary" json:"summary"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Stats aggregates the stored history
type Stats struct {
	TotalAnalyses    int64      `json:"total_analyses"`
	TotalEntities    int64      `json:"total_entities"`
	AvgEntityCount   float64    `json:"avg_entity_count"`
	DistinctTexts    int64      `json:"distinct_texts"`
	FirstAnalysisAt  *time.Time `json:"first_analysis_at,omitempty"`
	LatestAnalysisAt *time.Time `json:"latest_analysis_at,omitempty"`
}
