package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/raaihank/medtag/internal/cache"
	"github.com/raaihank/medtag/internal/config"
	"github.com/raaihank/medtag/internal/entity"
	"github.com/raaihank/medtag/internal/history"
	"github.com/raaihank/medtag/internal/logger"
	"github.com/raaihank/medtag/internal/websocket"
	"go.uber.org/zap"
)

// Server is the HTTP front end of the extraction engine
type Server struct {
	config    *config.Config
	logger    *logger.Logger
	extractor *entity.Extractor
	router    *mux.Router
	server    *http.Server
	wsHub     *websocket.Hub
	cache     *cache.AnalysisCache
	history   *history.Store
	limiter   *rateLimiter
	started   time.Time
}

// New creates a new server instance
func New(cfg *config.Config, log *logger.Logger) (*Server, error) {
	// Build the vocabulary: defaults plus any configured extras
	vocab := entity.DefaultVocabulary()
	if len(cfg.Engine.ExtraTerms) > 0 || len(cfg.Engine.ExtraDosagePatterns) > 0 {
		extra := make(map[entity.Category][]string, len(cfg.Engine.ExtraTerms))
		for name, terms := range cfg.Engine.ExtraTerms {
			c, err := entity.ParseCategory(name)
			if err != nil {
				return nil, fmt.Errorf("invalid extra_terms category: %w", err)
			}
			extra[c] = terms
		}
		vocab = vocab.WithExtra(extra, cfg.Engine.ExtraDosagePatterns)
	}

	extractor, err := entity.New(vocab, log.WithComponent("entity").Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	wsHub := websocket.NewHub(&websocket.HubConfig{
		BroadcastAnalyses:    cfg.WebSocket.Events.BroadcastAnalyses,
		BroadcastSystem:      cfg.WebSocket.Events.BroadcastSystem,
		BroadcastConnections: cfg.WebSocket.Events.BroadcastConnections,
	}, log.WithComponent("websocket").Logger)

	s := &Server{
		config:    cfg,
		logger:    log.WithComponent("server"),
		extractor: extractor,
		router:    mux.NewRouter(),
		wsHub:     wsHub,
		limiter:   newRateLimiter(cfg.RateLimit),
		started:   time.Now(),
	}

	if cfg.Cache.Enabled {
		c, err := cache.New(&cache.Config{
			RedisURL:     cfg.Cache.RedisURL,
			MaxConns:     cfg.Cache.MaxConns,
			MinIdleConns: cfg.Cache.MinIdleConns,
			DefaultTTL:   cfg.Cache.DefaultTTL,
			KeyPrefix:    cfg.Cache.KeyPrefix,
		}, log.WithComponent("cache").Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create analysis cache: %w", err)
		}
		s.cache = c
	}

	if cfg.History.Enabled {
		h, err := history.NewStore(&history.Config{
			DatabaseURL:     cfg.History.DatabaseURL,
			MaxOpenConns:    cfg.History.MaxOpenConns,
			MaxIdleConns:    cfg.History.MaxIdleConns,
			ConnMaxLifetime: cfg.History.ConnMaxLifetime,
		}, log.WithComponent("history").Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create history store: %w", err)
		}
		s.history = h
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(s.corsMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.loggingMiddleware)
	api.Use(s.rateLimitMiddleware)
	api.HandleFunc("/analyze", s.handleAnalyze).Methods("POST", "OPTIONS")
	api.HandleFunc("/entity_types", s.handleEntityTypes).Methods("GET", "OPTIONS")
	api.HandleFunc("/health", s.handleHealth).Methods("GET", "OPTIONS")
	api.HandleFunc("/stats", s.handleStats).Methods("GET", "OPTIONS")
	api.HandleFunc("/history", s.handleHistory).Methods("GET", "OPTIONS")

	if s.config.WebSocket.Enabled {
		s.router.HandleFunc(s.config.WebSocket.Path, s.handleWebSocket).Methods("GET")
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting medtag server",
		zap.Int("port", s.config.Server.Port),
		zap.Bool("cache_enabled", s.cache != nil),
		zap.Bool("history_enabled", s.history != nil),
	)

	go s.wsHub.Run()
	if s.limiter != nil {
		s.limiter.startCleanup()
	}

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server and its backends
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping medtag server")

	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Warn("Failed to close cache", zap.Error(err))
		}
	}
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			s.logger.Warn("Failed to close history store", zap.Error(err))
		}
	}

	return s.server.Shutdown(ctx)
}

// handleWebSocket handles WebSocket connections for the dashboard
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}
