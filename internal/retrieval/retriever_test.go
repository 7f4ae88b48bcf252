package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/archivium-lab/chorus/internal/vectordb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) GenerateEmbedding(_ context.Context, text string, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text))}, nil
}

type fakeSearcher struct {
	docs      []vectordb.Document
	err       error
	lastTag   string
	lastLimit int
}

func (f *fakeSearcher) SearchByTag(_ context.Context, _ []float32, sourceTag string, limit int) ([]vectordb.Document, error) {
	f.lastTag = sourceTag
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func docs(contents ...string) []vectordb.Document {
	out := make([]vectordb.Document, len(contents))
	for i, c := range contents {
		out[i] = vectordb.Document{Content: c, SourceTag: "survivor_context", Score: 1 - float64(i)*0.1}
	}
	return out
}

func newTestRetriever(emb Embedder, store Searcher) *Retriever {
	return NewRetriever(emb, store, Config{DesiredCount: 3}, zap.NewNop())
}

func TestRetrieveDedupPreservesFirstSeenOrder(t *testing.T) {
	store := &fakeSearcher{docs: docs("a", "  b ", "a", "b", "c")}
	r := newTestRetriever(&fakeEmbedder{}, store)

	out := r.Retrieve(context.Background(), "how did fear evolve?", "survivor_context", 3)
	assert.Equal(t, []string{"a", "b", "c"}, out)
}

func TestRetrieveBoundedOutput(t *testing.T) {
	many := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		many = append(many, fmt.Sprintf("doc-%d", i))
	}
	store := &fakeSearcher{docs: docs(many...)}
	r := newTestRetriever(&fakeEmbedder{}, store)

	out := r.Retrieve(context.Background(), "q", "survivor_context", 3)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"doc-0", "doc-1", "doc-2"}, out)
}

func TestRetrieveFewerUniqueThanDesired(t *testing.T) {
	store := &fakeSearcher{docs: docs("a", "a", "a")}
	r := newTestRetriever(&fakeEmbedder{}, store)

	out := r.Retrieve(context.Background(), "q", "survivor_context", 3)
	assert.Equal(t, []string{"a"}, out, "no padding when fewer unique documents exist")
}

func TestRetrieveOverFetchRatio(t *testing.T) {
	store := &fakeSearcher{}
	r := newTestRetriever(&fakeEmbedder{}, store)

	r.Retrieve(context.Background(), "q", "survivor_context", 3)
	assert.Equal(t, 15, store.lastLimit, "fetch limit should be 5x the desired count")
	assert.Equal(t, "survivor_context", store.lastTag)
}

func TestRetrieveZeroMatchesIsEmptyNotError(t *testing.T) {
	store := &fakeSearcher{docs: nil}
	r := newTestRetriever(&fakeEmbedder{}, store)

	out := r.Retrieve(context.Background(), "q", "survivor_context", 3)
	assert.Empty(t, out)
}

func TestRetrieveDegradesOnSearchError(t *testing.T) {
	store := &fakeSearcher{err: errors.New("connection refused")}
	r := newTestRetriever(&fakeEmbedder{}, store)

	out := r.Retrieve(context.Background(), "q", "speculator_context", 3)
	assert.Equal(t, []string{ContextUnavailable}, out)
}

func TestRetrieveDegradesOnEmbeddingError(t *testing.T) {
	r := newTestRetriever(&fakeEmbedder{err: errors.New("embedding service down")}, &fakeSearcher{})

	out := r.Retrieve(context.Background(), "q", "auteur_context", 3)
	assert.Equal(t, []string{ContextUnavailable}, out)
}

func TestAugmentQuery(t *testing.T) {
	assert.Equal(t, "how did fear evolve? pandemic quarantine safety",
		AugmentQuery("how did fear evolve?", []string{"pandemic", "quarantine", "safety"}))
	assert.Equal(t, "plain", AugmentQuery("plain", nil))
}
