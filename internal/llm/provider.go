package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// New builds the configured provider, wrapped with a rate limiter when
// RequestsPerSecond is set. Sequential persona execution already avoids
// most quota contention; the limiter protects against tight retry loops
// from callers.
func New(cfg Config, logger *zap.Logger) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case "", "service":
		p = NewServiceProvider(cfg, logger)
	case "openai":
		p, err = NewOpenAIProvider(cfg, logger)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}

	if cfg.RequestsPerSecond > 0 {
		p = NewLimitedProvider(p, cfg.RequestsPerSecond)
	}
	return p, nil
}

// LimitedProvider applies a client-side rate limit to another provider
type LimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewLimitedProvider wraps inner with an rps limiter (burst 1)
func NewLimitedProvider(inner Provider, rps float64) *LimitedProvider {
	return &LimitedProvider{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (p *LimitedProvider) Name() string { return p.inner.Name() }

// Generate waits for a limiter token, then delegates
func (p *LimitedProvider) Generate(ctx context.Context, req Request) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return p.inner.Generate(ctx, req)
}
