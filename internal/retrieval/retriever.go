package retrieval

import (
	"context"
	"strings"

	ometrics "github.com/archivium-lab/chorus/internal/metrics"
	"github.com/archivium-lab/chorus/internal/vectordb"
	"go.uber.org/zap"
)

// ContextUnavailable is the placeholder returned when the vector store
// cannot be reached. Retrieval failure must degrade, never abort a run.
const ContextUnavailable = "(context unavailable: vector store unreachable)"

// DefaultDesiredCount is how many documents each persona reads per question
const DefaultDesiredCount = 3

// fetchMultiplier widens the store query so exact-duplicate rows (common in
// the tweet corpus) can be dropped client-side without starving the result.
const fetchMultiplier = 5

// Embedder converts text into the shared embedding space
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string, model string) ([]float32, error)
}

// Searcher answers similarity queries scoped to one persona corpus
type Searcher interface {
	SearchByTag(ctx context.Context, embedding []float32, sourceTag string, limit int) ([]vectordb.Document, error)
}

// Config controls retrieval behavior
type Config struct {
	DesiredCount int
}

// Retriever turns a free-text query into a bounded, persona-scoped,
// deduplicated context set.
type Retriever struct {
	emb    Embedder
	store  Searcher
	cfg    Config
	logger *zap.Logger
}

// NewRetriever constructs a retriever over the given capabilities
func NewRetriever(emb Embedder, store Searcher, cfg Config, logger *zap.Logger) *Retriever {
	if cfg.DesiredCount <= 0 {
		cfg.DesiredCount = DefaultDesiredCount
	}
	return &Retriever{emb: emb, store: store, cfg: cfg, logger: logger}
}

// DesiredCount returns the configured per-persona document budget
func (r *Retriever) DesiredCount() int { return r.cfg.DesiredCount }

// AugmentQuery appends the persona's retrieval keyword hints to the raw
// query. The hints bias similarity toward the persona's territory; they
// never replace the question.
func AugmentQuery(query string, keywords []string) string {
	if len(keywords) == 0 {
		return query
	}
	return query + " " + strings.Join(keywords, " ")
}

// Retrieve returns up to desired deduplicated documents for the persona
// identified by sourceTag, most-similar first. Store or embedding failure
// degrades to a single placeholder entry; zero matches is a valid empty
// result.
func (r *Retriever) Retrieve(ctx context.Context, query string, sourceTag string, desired int) []string {
	if desired <= 0 {
		desired = r.cfg.DesiredCount
	}

	embedding, err := r.emb.GenerateEmbedding(ctx, query, "")
	if err != nil {
		r.logger.Warn("Retrieval degraded: embedding failed",
			zap.String("source_tag", sourceTag),
			zap.Error(err))
		ometrics.RetrievalDegraded.WithLabelValues(sourceTag).Inc()
		return []string{ContextUnavailable}
	}

	docs, err := r.store.SearchByTag(ctx, embedding, sourceTag, desired*fetchMultiplier)
	if err != nil {
		r.logger.Warn("Retrieval degraded: vector search failed",
			zap.String("source_tag", sourceTag),
			zap.Error(err))
		ometrics.RetrievalDegraded.WithLabelValues(sourceTag).Inc()
		return []string{ContextUnavailable}
	}

	out := dedupTrimmed(docs, desired, sourceTag)
	ometrics.RetrievalDocuments.WithLabelValues(sourceTag).Observe(float64(len(out)))
	return out
}

// dedupTrimmed drops exact duplicates (after whitespace trim) preserving
// the store's relevance order, and stops once desired entries are kept.
func dedupTrimmed(docs []vectordb.Document, desired int, sourceTag string) []string {
	seen := make(map[string]struct{}, desired)
	out := make([]string, 0, desired)
	for _, d := range docs {
		trimmed := strings.TrimSpace(d.Content)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			ometrics.RetrievalDuplicatesDropped.WithLabelValues(sourceTag).Inc()
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
		if len(out) == desired {
			break
		}
	}
	return out
}
