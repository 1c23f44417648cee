package server

import (
	"github.com/raaihank/medtag/internal/entity"
)

// AnalyzeRequest is the body of POST /api/analyze
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// AnalyzeResponse is the successful result of POST /api/analyze
type AnalyzeResponse struct {
	Success       bool           `json:"success"`
	OriginalText  string         `json:"original_text"`
	Entities      []entity.Span  `json:"entities"`
	AnnotatedText string         `json:"annotated_text"`
	Summary       entity.Summary `json:"summary"`
	TotalEntities int            `json:"total_entities"`
}

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// EntityTypesResponse is the result of GET /api/entity_types
type EntityTypesResponse struct {
	Success     bool              `json:"success"`
	EntityTypes map[string]string `json:"entity_types"`
}

// HealthResponse is the result of GET /api/health
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatsResponse is the result of GET /api/stats
type StatsResponse struct {
	Success   bool        `json:"success"`
	Uptime    string      `json:"uptime"`
	TermCount int         `json:"term_count"`
	Cache     interface{} `json:"cache,omitempty"`
	History   interface{} `json:"history,omitempty"`
	WebSocket interface{} `json:"websocket,omitempty"`
}

// HistoryResponse is the result of GET /api/history
type HistoryResponse struct {
	Success bool        `json:"success"`
	Records interface{} `json:"records"`
}
