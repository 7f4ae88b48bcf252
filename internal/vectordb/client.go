package vectordb

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

// Client is a minimal Qdrant HTTP client
type Client struct {
	cfg  Config
	http *http.Client
	base string
	log  *zap.Logger
}

// NewClient constructs the Qdrant client. A disabled client is valid: every
// call returns an error and callers degrade instead of crashing.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	c := cfg
	if c.Port == 0 {
		c.Port = 6333
	}
	if c.Timeout == 0 {
		c.Timeout = 5 * time.Second
	}
	if c.Collection == "" {
		c.Collection = "project_archive"
	}
	return &Client{
		cfg:  c,
		http: &http.Client{Timeout: c.Timeout},
		base: fmt.Sprintf("http://%s:%d", c.Host, c.Port),
		log:  logger,
	}
}

// GetConfig returns the current configuration
func (c *Client) GetConfig() Config {
	if c == nil {
		return Config{Collection: "project_archive"}
	}
	return c.cfg
}

// qdrant search request/response (simplified)
type qdrantQueryRequest struct {
	Query       []float32              `json:"query"`
	Limit       int                    `json:"limit"`
	WithPayload bool                   `json:"with_payload"`
	Filter      map[string]interface{} `json:"filter,omitempty"`
}

type qdrantPoint struct {
	ID      interface{}            `json:"id"`
	Score   float64                `json:"score"`
	Payload map[string]interface{} `json:"payload"`
}

type qdrantSearchResponse struct {
	Result []qdrantPoint `json:"result"`
	Status string        `json:"status"`
}

// qdrantQueryResponse for the /points/query endpoint which has nested structure
type qdrantQueryResponse struct {
	Result struct {
		Points []qdrantPoint `json:"points"`
	} `json:"result"`
	Status string `json:"status"`
}

func (c *Client) search(ctx context.Context, vec []float32, limit int, filter map[string]interface{}) ([]qdrantPoint, error) {
	if c == nil || !c.cfg.Enabled {
		return nil, fmt.Errorf("vectordb: search called while disabled")
	}
	start := time.Now()
	collection := c.cfg.Collection

	ctx, span := tracing.StartHTTPSpan(ctx, "POST", fmt.Sprintf("%s/collections/%s/points/query", c.base, collection))
	defer span.End()

	reqBody := qdrantQueryRequest{Query: vec, Limit: limit, WithPayload: true, Filter: filter}
	buf, _ := json.Marshal(reqBody)

	call := func(url string, body []byte) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		tracing.InjectTraceparent(ctx, req)
		return c.http.Do(req)
	}

	// Prefer modern /points/query; on failure, fallback to /points/search for compatibility
	urlQuery := fmt.Sprintf("%s/collections/%s/points/query", c.base, collection)
	resp, err := call(urlQuery, buf)
	if err != nil {
		ometrics.RecordVectorSearchMetrics(collection, "error", time.Since(start).Seconds())
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		urlSearch := fmt.Sprintf("%s/collections/%s/points/search", c.base, collection)
		legacy := map[string]interface{}{"vector": vec, "limit": limit, "with_payload": true}
		if filter != nil {
			legacy["filter"] = filter
		}
		buf2, _ := json.Marshal(legacy)
		resp2, err2 := call(urlSearch, buf2)
		if err2 != nil {
			ometrics.RecordVectorSearchMetrics(collection, "error", time.Since(start).Seconds())
			return nil, fmt.Errorf("qdrant query/search failed: %w", err2)
		}
		defer resp2.Body.Close()
		if resp2.StatusCode != http.StatusOK {
			ometrics.RecordVectorSearchMetrics(collection, "error", time.Since(start).Seconds())
			return nil, fmt.Errorf("qdrant status %d", resp2.StatusCode)
		}
		var qr qdrantSearchResponse
		if err := json.NewDecoder(resp2.Body).Decode(&qr); err != nil {
			ometrics.RecordVectorSearchMetrics(collection, "error", time.Since(start).Seconds())
			return nil, err
		}
		ometrics.RecordVectorSearchMetrics(collection, "ok", time.Since(start).Seconds())
		return qr.Result, nil
	}
	var qr qdrantQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		ometrics.RecordVectorSearchMetrics(collection, "error", time.Since(start).Seconds())
		return nil, err
	}
	ometrics.RecordVectorSearchMetrics(collection, "ok", time.Since(start).Seconds())
	return qr.Result.Points, nil
}

// SearchByTag performs a similarity search restricted to documents whose
// payload source equals sourceTag, ordered most-similar first.
func (c *Client) SearchByTag(ctx context.Context, embedding []float32, sourceTag string, limit int) ([]Document, error) {
	filter := map[string]interface{}{
		"must": []map[string]interface{}{
			{
				"key": "source",
				"match": map[string]interface{}{
					"value": sourceTag,
				},
			},
		},
	}

	points, err := c.search(ctx, embedding, limit, filter)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(points))
	for _, point := range points {
		content, _ := point.Payload["content"].(string)
		if content == "" {
			// older ingests stored the text under "text"
			content, _ = point.Payload["text"].(string)
		}
		if content == "" {
			continue
		}
		tag, _ := point.Payload["source"].(string)
		docs = append(docs, Document{
			Content:   content,
			SourceTag: tag,
			Score:     point.Score,
		})
	}
	return docs, nil
}

// Upsert inserts or updates one or more points into the configured collection
func (c *Client) Upsert(ctx context.Context, points []UpsertItem) (*UpsertResponse, error) {
	if c == nil || !c.cfg.Enabled {
		return nil, fmt.Errorf("vectordb: upsert called while disabled")
	}

	url := fmt.Sprintf("%s/collections/%s/points", c.base, c.cfg.Collection)
	ctx, span := tracing.StartHTTPSpan(ctx, "PUT", url)
	defer span.End()

	body := map[string]interface{}{"points": points}
	buf, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	tracing.InjectTraceparent(ctx, req)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("qdrant upsert status %d", resp.StatusCode)
	}
	var r UpsertResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// RecreateCollection drops and recreates the configured collection with the
// given vector size. Used by the ingest job only.
func (c *Client) RecreateCollection(ctx context.Context, vectorSize int) error {
	if c == nil || !c.cfg.Enabled {
		return fmt.Errorf("vectordb: recreate called while disabled")
	}

	url := fmt.Sprintf("%s/collections/%s", c.base, c.cfg.Collection)

	del, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	if resp, err := c.http.Do(del); err == nil {
		resp.Body.Close()
	}

	body := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}
	buf, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant create collection status %d", resp.StatusCode)
	}
	return nil
}

// Healthz reports whether the Qdrant instance answers at all
func (c *Client) Healthz(ctx context.Context) error {
	if c == nil || !c.cfg.Enabled {
		return fmt.Errorf("vectordb disabled")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("qdrant healthz status %d", resp.StatusCode)
	}
	return nil
}
