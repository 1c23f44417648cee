package websocket

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/raaihank/medtag/internal/entity"
)

// EventType represents the type of WebSocket event
type EventType string

const (
	// EventTypeAnalysis represents a completed text analysis
	EventTypeAnalysis EventType = "analysis"
	// EventTypeSystemStatus represents a system status event
	EventTypeSystemStatus EventType = "system_status"
	// EventTypeConnection represents connection events
	EventTypeConnection EventType = "connection"
)

// Event represents a WebSocket event sent to clients
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
}

// AnalysisEvent describes one extraction run. It carries counts and the
// summary, never the analyzed text itself; clinical text stays out of the
// dashboard feed.
type AnalysisEvent struct {
	RequestID     string         `json:"request_id"`
	TextLength    int            `json:"text_length"`
	TotalEntities int            `json:"total_entities"`
	Summary       entity.Summary `json:"summary"`
	CacheHit      bool           `json:"cache_hit"`
	ProcessingMS  float64        `json:"processing_ms"`
}

// SystemStatusEvent represents system status information
type SystemStatusEvent struct {
	Status           string `json:"status"`
	Uptime           string `json:"uptime"`
	TotalAnalyses    int64  `json:"total_analyses"`
	TotalEntities    int64  `json:"total_entities"`
	ConnectedClients int    `json:"connected_clients"`
}

// ConnectionEvent represents WebSocket connection events
type ConnectionEvent struct {
	Action   string `json:"action"` // "connected" or "disconnected"
	ClientID string `json:"client_id"`
	ClientIP string `json:"client_ip"`
	Message  string `json:"message,omitempty"`
}

// ClientMessage represents messages sent from clients to server
type ClientMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client represents a WebSocket client connection
type Client struct {
	ID          string
	Conn        *websocket.Conn
	Send        chan Event
	ConnectedAt time.Time
	LastPing    time.Time
	IP          string
	UserAgent   string
}
