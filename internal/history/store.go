package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Store persists analysis records in PostgreSQL
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Config contains database configuration
type Config struct {
	DatabaseURL     string        `yaml:"database_url" mapstructure:"database_url"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}

const schema = `
	CREATE TABLE IF NOT EXISTS analyses (
		id           BIGSERIAL PRIMARY KEY,
		text_hash    TEXT NOT NULL,
		text_length  INTEGER NOT NULL,
		entity_count INTEGER NOT NULL,
		summary      TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses (created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_analyses_text_hash ON analyses (text_hash)`

// NewStore creates a new history store instance
func NewStore(config *Config, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("postgres", config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	store := &Store{
		db:     db,
		logger: logger,
	}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	logger.Info("History store initialized",
		zap.String("database_url", maskDatabaseURL(config.DatabaseURL)),
		zap.Int("max_open_conns", config.MaxOpenConns))

	return store, nil
}

// initialize checks the database connection and ensures the schema exists
func (s *Store) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	return nil
}

// Record inserts a new analysis record
func (s *Store) Record(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO analyses (text_hash, text_length, entity_count, summary)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query,
		rec.TextHash,
		rec.TextLength,
		rec.EntityCount,
		rec.Summary,
	).Scan(&rec.ID, &rec.CreatedAt)

	if err != nil {
		s.logger.Error("Failed to record analysis",
			zap.Error(err),
			zap.String("text_hash", rec.TextHash))
		return fmt.Errorf("failed to record analysis: %w", err)
	}

	s.logger.Debug("Analysis recorded",
		zap.Int64("id", rec.ID),
		zap.Int("entity_count", rec.EntityCount))

	return nil
}

// Recent returns the most recent analysis records, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	var records []Record
	query := `
		SELECT id, text_hash, text_length, entity_count, summary, created_at
		FROM analyses
		ORDER BY created_at DESC
		LIMIT $1`

	if err := s.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query recent analyses: %w", err)
	}

	return records, nil
}

// GetStats returns aggregate history statistics
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	query := `
		SELECT
			COUNT(*) as total,
			COALESCE(SUM(entity_count), 0) as entities,
			COALESCE(AVG(entity_count), 0) as avg_entities,
			COUNT(DISTINCT text_hash) as distinct_texts
		FROM analyses`

	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalAnalyses,
		&stats.TotalEntities,
		&stats.AvgEntityCount,
		&stats.DistinctTexts,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get history stats: %w", err)
	}

	var first, latest sql.NullTime
	boundsQuery := `SELECT MIN(created_at), MAX(created_at) FROM analyses`
	if err := s.db.QueryRowContext(ctx, boundsQuery).Scan(&first, &latest); err != nil {
		return nil, fmt.Errorf("failed to get history bounds: %w", err)
	}
	if first.Valid {
		stats.FirstAnalysisAt = &first.Time
	}
	if latest.Valid {
		stats.LatestAnalysisAt = &latest.Time
	}

	return stats, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// HashText derives the stored hash for an input text
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// maskDatabaseURL masks sensitive information in database URL for logging
func maskDatabaseURL(url string) string {
	if strings.Contains(url, "@") {
		parts := strings.Split(url, "@")
		if len(parts) >= 2 {
			userPart := parts[0]
			if strings.Contains(userPart, ":") {
				userParts := strings.Split(userPart, ":")
				if len(userParts) >= 3 {
					userParts[len(userParts)-1] = "***"
					parts[0] = strings.Join(userParts, ":")
				}
			}
			return strings.Join(parts, "@")
		}
	}
	return url
}
