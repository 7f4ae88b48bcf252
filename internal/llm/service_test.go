package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServiceProviderGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/agent/query", r.URL.Path)
		require.Equal(t, "survivor", r.Header.Get("X-Agent-ID"))

		var req serviceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 256, req.MaxTokens)
		assert.Contains(t, req.Query, "fear")

		json.NewEncoder(w).Encode(serviceResponse{Success: true, Response: "The data smells like quarantine."})
	}))
	defer srv.Close()

	p := NewServiceProvider(Config{BaseURL: srv.URL, MaxTokens: 256, Temperature: 0.7}, zap.NewNop())
	out, err := p.Generate(context.Background(), Request{Prompt: "How did fear evolve?", AgentID: "survivor"})
	require.NoError(t, err)
	assert.Equal(t, "The data smells like quarantine.", out)
}

func TestServiceProviderHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewServiceProvider(Config{BaseURL: srv.URL}, zap.NewNop())
	_, err := p.Generate(context.Background(), Request{Prompt: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestServiceProviderReportedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(serviceResponse{Success: false, Error: "model unavailable"})
	}))
	defer srv.Close()

	p := NewServiceProvider(Config{BaseURL: srv.URL}, zap.NewNop())
	_, err := p.Generate(context.Background(), Request{Prompt: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")
}

type countingProvider struct {
	calls int
}

func (c *countingProvider) Name() string { return "counting" }
func (c *countingProvider) Generate(context.Context, Request) (string, error) {
	c.calls++
	return "ok", nil
}

func TestLimitedProviderThrottles(t *testing.T) {
	inner := &countingProvider{}
	p := NewLimitedProvider(inner, 50)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := p.Generate(context.Background(), Request{Prompt: "q"})
		require.NoError(t, err)
	}
	// 50 rps, burst 1: calls 2 and 3 each wait ~20ms
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, 3, inner.calls)
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "gemini-on-a-floppy"}, zap.NewNop())
	require.Error(t, err)
}
