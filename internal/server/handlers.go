package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/raaihank/medtag/internal/cache"
	"github.com/raaihank/medtag/internal/entity"
	"github.com/raaihank/medtag/internal/history"
	"github.com/raaihank/medtag/internal/logger"
	"github.com/raaihank/medtag/internal/websocket"
	"go.uber.org/zap"
)

// handleAnalyze runs the extraction engine over the submitted text
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())
	log := s.logger.WithRequestID(requestID)

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "No text provided",
			Message: "Please provide text to analyze",
		})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Empty text",
			Message: "Please provide non-empty text to analyze",
		})
		return
	}

	start := time.Now()

	resp, cacheHit := s.analyze(r.Context(), text, log)
	duration := time.Since(start)

	log.Info("Text analyzed",
		zap.Int("text_length", len(text)),
		zap.Int("total_entities", resp.TotalEntities),
		zap.Bool("cache_hit", cacheHit),
		zap.Duration("duration", duration),
	)

	s.wsHub.BroadcastEvent(websocket.Event{
		Type:      websocket.EventTypeAnalysis,
		Timestamp: time.Now(),
		RequestID: requestID,
		Data: websocket.AnalysisEvent{
			RequestID:     requestID,
			TextLength:    len(text),
			TotalEntities: resp.TotalEntities,
			Summary:       resp.Summary,
			CacheHit:      cacheHit,
			ProcessingMS:  float64(duration.Nanoseconds()) / 1e6,
		},
	})

	s.recordHistory(text, resp, log)

	writeJSON(w, http.StatusOK, resp)
}

// analyze produces the response for a text, consulting the result cache
// when one is configured. Cache trouble degrades to a fresh run.
func (s *Server) analyze(ctx context.Context, text string, log *logger.Logger) (*AnalyzeResponse, bool) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, text); ok {
			return &AnalyzeResponse{
				Success:       true,
				OriginalText:  text,
				Entities:      cached.Entities,
				AnnotatedText: cached.AnnotatedText,
				Summary:       cached.Summary,
				TotalEntities: cached.TotalEntities,
			}, true
		}
	}

	spans := s.extractor.Extract(text)
	if spans == nil {
		spans = []entity.Span{}
	}
	resp := &AnalyzeResponse{
		Success:       true,
		OriginalText:  text,
		Entities:      spans,
		AnnotatedText: s.extractor.Annotate(text),
		Summary:       s.extractor.Summarize(text),
		TotalEntities: len(spans),
	}

	if s.cache != nil {
		err := s.cache.Set(ctx, text, &cache.CachedAnalysis{
			Entities:      resp.Entities,
			AnnotatedText: resp.AnnotatedText,
			Summary:       resp.Summary,
			TotalEntities: resp.TotalEntities,
		})
		if err != nil {
			log.Warn("Failed to cache analysis", zap.Error(err))
		}
	}

	return resp, false
}

// recordHistory writes the analysis to the history store in the background.
// History is best-effort; a failed write never fails the request.
func (s *Server) recordHistory(text string, resp *AnalyzeResponse, log *logger.Logger) {
	if s.history == nil {
		return
	}

	summaryJSON, err := json.Marshal(resp.Summary)
	if err != nil {
		log.Warn("Failed to marshal summary for history", zap.Error(err))
		return
	}

	rec := &history.Record{
		TextHash:    history.HashText(text),
		TextLength:  len(text),
		EntityCount: resp.TotalEntities,
		Summary:     string(summaryJSON),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.history.Record(ctx, rec); err != nil {
			log.Warn("Failed to record analysis history", zap.Error(err))
		}
	}()
}

// handleEntityTypes returns the static category descriptions
func (s *Server) handleEntityTypes(w http.ResponseWriter, r *http.Request) {
	types := make(map[string]string, len(entity.Categories()))
	for _, c := range entity.Categories() {
		types[string(c)] = c.Description()
	}

	writeJSON(w, http.StatusOK, EntityTypesResponse{
		Success:     true,
		EntityTypes: types,
	})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Message: "medtag API is running",
	})
}

// handleStats reports runtime statistics for the dashboard
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Success:   true,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		TermCount: s.extractor.Vocabulary().TermCount(),
	}

	if s.cache != nil {
		if stats, err := s.cache.GetStats(r.Context()); err == nil {
			resp.Cache = stats
		}
	}
	if s.history != nil {
		if stats, err := s.history.GetStats(r.Context()); err == nil {
			resp.History = stats
		}
	}
	resp.WebSocket = s.wsHub.GetStats()

	writeJSON(w, http.StatusOK, resp)
}

// handleHistory returns the most recent analyses
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:   "History disabled",
			Message: "No history store is configured",
		})
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to query history", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "Processing error",
			Message: "Failed to query analysis history",
		})
		return
	}

	writeJSON(w, http.StatusOK, HistoryResponse{
		Success: true,
		Records: records,
	})
}

// writeJSON serializes v as the response body
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
