package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	ometrics "github.com/archivium-lab/chorus/internal/metrics"
	"github.com/archivium-lab/chorus/internal/tracing"
	"go.uber.org/zap"
)

// ServiceProvider calls the internal LLM service's /agent/query endpoint
type ServiceProvider struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewServiceProvider constructs the internal LLM service client
func NewServiceProvider(cfg Config, logger *zap.Logger) *ServiceProvider {
	c := cfg
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://llm-service:8000"
	}
	return &ServiceProvider{
		cfg:    c,
		http:   &http.Client{Timeout: c.Timeout},
		logger: logger,
	}
}

func (p *ServiceProvider) Name() string { return "service" }

type serviceRequest struct {
	Query       string  `json:"query"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	AgentID     string  `json:"agent_id,omitempty"`
}

type serviceResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Generate sends the prompt and returns the raw model text
func (p *ServiceProvider) Generate(ctx context.Context, req Request) (string, error) {
	start := time.Now()

	url := fmt.Sprintf("%s/agent/query", p.cfg.BaseURL)
	ctx, span := tracing.StartHTTPSpan(ctx, "POST", url)
	defer span.End()

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.cfg.MaxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.cfg.Temperature
	}

	body := serviceRequest{
		Query:       req.Prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		AgentID:     req.AgentID,
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.AgentID != "" {
		httpReq.Header.Set("X-Agent-ID", req.AgentID)
	}
	tracing.InjectTraceparent(ctx, httpReq)

	resp, err := p.http.Do(httpReq)
	if err != nil {
		ometrics.RecordGenerationMetrics(p.Name(), "error", time.Since(start).Seconds())
		return "", fmt.Errorf("LLM service call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ometrics.RecordGenerationMetrics(p.Name(), "error", time.Since(start).Seconds())
		return "", fmt.Errorf("HTTP %d from LLM service", resp.StatusCode)
	}

	var sr serviceResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		ometrics.RecordGenerationMetrics(p.Name(), "error", time.Since(start).Seconds())
		return "", fmt.Errorf("failed to parse LLM response: %w", err)
	}
	if !sr.Success && sr.Error != "" {
		ometrics.RecordGenerationMetrics(p.Name(), "error", time.Since(start).Seconds())
		return "", fmt.Errorf("LLM service error: %s", sr.Error)
	}

	ometrics.RecordGenerationMetrics(p.Name(), "ok", time.Since(start).Seconds())
	return sr.Response, nil
}
