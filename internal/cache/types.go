package cache

import (
	"time"

	"github.com/raaihank/medtag/internal/entity"
)

// CachedAnalysis is the cached result of one extraction run over a text.
// The text itself is not stored; the key is derived from its hash.
type CachedAnalysis struct {
	Entities      []entity.Span  `json:"entities"`
	AnnotatedText string         `json:"annotated_text"`
	Summary       entity.Summary `json:"summary"`
	TotalEntities int            `json:"total_entities"`
	CachedAt      time.Time      `json:"cached_at"`
}

// Stats represents cache performance statistics
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
	TotalKeys int64   `json:"total_keys"`
}

// Config contains cache configuration
type Config struct {
	RedisURL     string        `yaml:"redis_url" mapstructure:"redis_url"`
	MaxConns     int           `yaml:"max_conns" mapstructure:"max_conns"`
	MinIdleConns int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DefaultTTL   time.Duration `yaml:"default_ttl" mapstructure:"default_ttl"`
	KeyPrefix    string        `yaml:"key_prefix" mapstructure:"key_prefix"`
}
