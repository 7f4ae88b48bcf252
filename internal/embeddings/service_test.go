package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUninitializedService(t *testing.T) {
	var s *Service
	if _, err := s.GenerateEmbedding(context.Background(), "hello", ""); err == nil {
		t.Fatalf("expected error when service is nil")
	}
}

func newFakeEmbedder(t *testing.T, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req struct {
			Texts []string `json:"texts"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		embeddings := make([][]float64, len(req.Texts))
		for i := range req.Texts {
			embeddings[i] = []float64{float64(len(req.Texts[i])), 0.5}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"embeddings": embeddings,
			"dimensions": 2,
			"model_used": req.Model,
		})
	}))
}

func TestGenerateEmbeddingCachesResult(t *testing.T) {
	var calls atomic.Int64
	srv := newFakeEmbedder(t, &calls)
	defer srv.Close()

	s := NewService(Config{BaseURL: srv.URL}, nil)
	ctx := context.Background()

	v1, err := s.GenerateEmbedding(ctx, "hello", "")
	require.NoError(t, err)
	require.Len(t, v1, 2)

	v2, err := s.GenerateEmbedding(ctx, "hello", "")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, int64(1), calls.Load(), "second call must be served from LRU")
}

func TestGenerateBatchEmbeddingsSkipsCached(t *testing.T) {
	var calls atomic.Int64
	srv := newFakeEmbedder(t, &calls)
	defer srv.Close()

	s := NewService(Config{BaseURL: srv.URL}, nil)
	ctx := context.Background()

	_, err := s.GenerateEmbedding(ctx, "alpha", "")
	require.NoError(t, err)

	out, err := s.GenerateBatchEmbeddings(ctx, []string{"alpha", "beta", "gamma"}, "")
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i, v := range out {
		assert.NotEmptyf(t, v, "vector %d should be populated", i)
	}
	// one single call + one batch call for the two uncached texts
	assert.Equal(t, int64(2), calls.Load())
}

func TestGenerateEmbeddingServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewService(Config{BaseURL: srv.URL}, nil)
	_, err := s.GenerateEmbedding(context.Background(), "hello", "")
	require.Error(t, err)
}
