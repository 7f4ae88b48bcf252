package llm

import (
	"context"
	"time"
)

// Request carries one generation call. AgentID is informational only; it
// lets the backing service attribute usage per persona.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
	AgentID     string
}

// Provider is the generation capability: fallible, latency-unbounded, and
// unreliable about output format. Callers own post-processing.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// Config selects and tunes the generation provider
type Config struct {
	// Provider is "service" (internal LLM service) or "openai"
	Provider string
	// BaseURL of the internal LLM service, or OpenAI-compatible endpoint
	BaseURL string
	// Model used for generation
	Model string
	// APIKey for the openai provider (falls back to OPENAI_API_KEY)
	APIKey string
	// Timeout for outbound calls
	Timeout time.Duration
	// MaxTokens default per request
	MaxTokens int
	// Temperature default per request
	Temperature float64
	// RequestsPerSecond caps outbound call rate; zero disables the limiter
	RequestsPerSecond float64
}
