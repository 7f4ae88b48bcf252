package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	ometrics "github.com/archivium-lab/chorus/internal/metrics"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// OpenAIProvider generates via an OpenAI-compatible chat completions API
type OpenAIProvider struct {
	client *openai.Client
	cfg    Config
	logger *zap.Logger
}

// NewOpenAIProvider constructs the OpenAI-backed generation provider.
// APIKey falls back to the OPENAI_API_KEY environment variable.
func NewOpenAIProvider(cfg Config, logger *zap.Logger) (*OpenAIProvider, error) {
	c := cfg
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}

	apiKey := c.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key not provided in config or OPENAI_API_KEY environment variable")
		}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: c.Timeout}),
	}
	if c.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.BaseURL))
	}

	client := openai.NewClient(opts...)
	return &OpenAIProvider{client: &client, cfg: c, logger: logger}, nil
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Generate sends the prompt as a single user message
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	start := time.Now()

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.cfg.MaxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.cfg.Temperature
	}

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		Model: openai.ChatModel(p.cfg.Model),
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}
	if temperature > 0 {
		params.Temperature = openai.Float(temperature)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		ometrics.RecordGenerationMetrics(p.Name(), "error", time.Since(start).Seconds())
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		ometrics.RecordGenerationMetrics(p.Name(), "empty", time.Since(start).Seconds())
		return "", fmt.Errorf("openai returned no choices")
	}

	ometrics.RecordGenerationMetrics(p.Name(), "ok", time.Since(start).Seconds())
	return resp.Choices[0].Message.Content, nil
}
