package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds the listener ports.
type ServerConfig struct {
	Port        int `mapstructure:"port"`
	MetricsPort int `mapstructure:"metrics_port"`
	HealthPort  int `mapstructure:"health_port"`
}

// VectorDBConfig configures the Qdrant connection.
type VectorDBConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Collection string `mapstructure:"collection"`
	TimeoutMs  int    `mapstructure:"timeout_ms"`
}

// EmbeddingsConfig configures the embedding service client and its caches.
type EmbeddingsConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Model       string `mapstructure:"model"`
	TimeoutMs   int    `mapstructure:"timeout_ms"`
	EnableRedis bool   `mapstructure:"enable_redis"`
	RedisAddr   string `mapstructure:"redis_addr"`
	CacheTTLSec int    `mapstructure:"cache_ttl_sec"`
	MaxLRU      int    `mapstructure:"max_lru"`
}

// LLMConfig configures the generation provider.
type LLMConfig struct {
	Provider          string  `mapstructure:"provider"`
	BaseURL           string  `mapstructure:"base_url"`
	Model             string  `mapstructure:"model"`
	TimeoutMs         int     `mapstructure:"timeout_ms"`
	MaxTokens         int     `mapstructure:"max_tokens"`
	Temperature       float64 `mapstructure:"temperature"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// RetrievalConfig tunes the context retriever.
type RetrievalConfig struct {
	DesiredCount int `mapstructure:"desired_count"`
}

// TracingConfig configures OTLP trace export.
type TracingConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// StreamingConfig tunes the in-memory event manager.
type StreamingConfig struct {
	RingCapacity int `mapstructure:"ring_capacity"`
}

// Features is the top-level configuration loaded from features.yaml.
type Features struct {
	Server       ServerConfig     `mapstructure:"server"`
	VectorDB     VectorDBConfig   `mapstructure:"vectordb"`
	Embeddings   EmbeddingsConfig `mapstructure:"embeddings"`
	LLM          LLMConfig        `mapstructure:"llm"`
	Retrieval    RetrievalConfig  `mapstructure:"retrieval"`
	Tracing      TracingConfig    `mapstructure:"tracing"`
	Streaming    StreamingConfig  `mapstructure:"streaming"`
	PersonasPath string           `mapstructure:"personas_path"`
}

// Load reads features.yaml from CONFIG_PATH or ./config/features.yaml and
// applies environment overrides for deployment-varying endpoints.
func Load() (*Features, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "./config/features.yaml"
	}

	v := viper.New()
	v.SetConfigFile(cfgPath)

	v.SetDefault("server.port", 8081)
	v.SetDefault("server.metrics_port", 2112)
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("vectordb.enabled", true)
	v.SetDefault("vectordb.host", "qdrant")
	v.SetDefault("vectordb.port", 6333)
	v.SetDefault("vectordb.collection", "project_archive")
	v.SetDefault("vectordb.timeout_ms", 5000)
	v.SetDefault("embeddings.base_url", "http://llm-service:8000")
	v.SetDefault("embeddings.model", "all-MiniLM-L6-v2")
	v.SetDefault("embeddings.timeout_ms", 5000)
	v.SetDefault("embeddings.cache_ttl_sec", 3600)
	v.SetDefault("embeddings.max_lru", 2048)
	v.SetDefault("llm.provider", "service")
	v.SetDefault("llm.base_url", "http://llm-service:8000")
	v.SetDefault("llm.timeout_ms", 120000)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("retrieval.desired_count", 3)
	v.SetDefault("tracing.service_name", "chorus")
	v.SetDefault("streaming.ring_capacity", 256)
	v.SetDefault("personas_path", "./config/personas.yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var f Features
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Per-deployment endpoints come from the environment when present.
	if h := os.Getenv("VECTOR_HOST"); h != "" {
		f.VectorDB.Host = h
	}
	if p := os.Getenv("VECTOR_PORT"); p != "" {
		var x int
		_, _ = fmt.Sscanf(p, "%d", &x)
		if x > 0 {
			f.VectorDB.Port = x
		}
	}
	if a := os.Getenv("REDIS_ADDR"); a != "" {
		f.Embeddings.RedisAddr = a
		f.Embeddings.EnableRedis = true
	}
	if u := os.Getenv("LLM_SERVICE_URL"); u != "" {
		f.LLM.BaseURL = u
		f.Embeddings.BaseURL = u
	}
	if e := os.Getenv("OTLP_ENDPOINT"); e != "" {
		f.Tracing.OTLPEndpoint = e
		f.Tracing.Enabled = true
	}
	if p := os.Getenv("PERSONAS_PATH"); p != "" {
		f.PersonasPath = p
	}

	return &f, nil
}

// Timeout converts a millisecond knob into a duration, with a fallback.
func Timeout(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
