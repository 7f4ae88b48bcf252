package vectordb

import "time"

// Config controls Qdrant client behavior
type Config struct {
	Enabled    bool
	Host       string
	Port       int
	Collection string
	Timeout    time.Duration
}

// Document is one retrieved archive entry. Content is the raw text the
// personas read; SourceTag records which persona corpus it came from.
type Document struct {
	Content   string  `json:"content"`
	SourceTag string  `json:"source_tag"`
	Score     float64 `json:"score"`
}

// UpsertItem represents a single point to insert into Qdrant
type UpsertItem struct {
	ID      interface{}            `json:"id,omitempty"`
	Vector  []float32              `json:"vector"`
	Payload map[string]interface{} `json:"payload"`
}

// UpsertResponse captures basic Qdrant upsert response
type UpsertResponse struct {
	Status string  `json:"status"`
	Time   float64 `json:"time"`
}
