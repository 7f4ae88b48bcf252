package embeddings

import "time"

// Config controls the embedding service behavior
type Config struct {
	// BaseURL points to the embedding service providing /embeddings
	BaseURL string
	// DefaultModel is the default embedding model (e.g., all-MiniLM-L6-v2)
	DefaultModel string
	// Timeout for outbound HTTP calls
	Timeout time.Duration
	// EnableRedis enables Redis-backed cache (optional)
	EnableRedis bool
	// RedisAddr in host:port form when EnableRedis is true
	RedisAddr string
	// CacheTTL sets TTL for embedding cache entries
	CacheTTL time.Duration
	// MaxLRU controls in-process LRU size
	MaxLRU int
}
