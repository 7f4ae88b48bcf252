// Command ingest loads the persona corpora from CSV files into the vector
// store. Each dataset is embedded in batches and upserted with the payload
// the retrieval path filters on.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/archivium-lab/chorus/internal/config"
	"github.com/archivium-lab/chorus/internal/embeddings"
	"github.com/archivium-lab/chorus/internal/vectordb"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// batchSize bounds one embed-and-upsert round trip.
const batchSize = 500

// Dataset maps one CSV file onto a persona corpus.
type Dataset struct {
	File      string `yaml:"file"`
	SourceTag string `yaml:"source_tag"`
	Type      string `yaml:"type"`
}

type ingestManifest struct {
	Datasets []Dataset `yaml:"datasets"`
}

type record struct {
	content  string
	date     string
	location string
}

func main() {
	manifestPath := flag.String("manifest", "./config/datasets.yaml", "dataset manifest")
	recreate := flag.Bool("recreate", false, "drop and recreate the collection before loading")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	features, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	manifest, err := loadManifest(*manifestPath)
	if err != nil {
		logger.Fatal("Failed to load dataset manifest",
			zap.String("path", *manifestPath),
			zap.Error(err))
	}

	embedder := embeddings.NewService(embeddings.Config{
		BaseURL:      features.Embeddings.BaseURL,
		DefaultModel: features.Embeddings.Model,
		Timeout:      config.Timeout(features.Embeddings.TimeoutMs, 30*time.Second),
	}, nil)

	store := vectordb.NewClient(vectordb.Config{
		Enabled:    true,
		Host:       features.VectorDB.Host,
		Port:       features.VectorDB.Port,
		Collection: features.VectorDB.Collection,
		Timeout:    config.Timeout(features.VectorDB.TimeoutMs, 30*time.Second),
	}, logger)

	ctx := context.Background()
	if err := store.Healthz(ctx); err != nil {
		logger.Fatal("Vector store unreachable", zap.Error(err))
	}

	if *recreate {
		// Probe the embedding space once to size the collection.
		probe, err := embedder.GenerateEmbedding(ctx, "dimension probe", "")
		if err != nil {
			logger.Fatal("Embedding service unreachable", zap.Error(err))
		}
		if err := store.RecreateCollection(ctx, len(probe)); err != nil {
			logger.Fatal("Failed to recreate collection", zap.Error(err))
		}
		logger.Info("Collection recreated",
			zap.String("collection", features.VectorDB.Collection),
			zap.Int("vector_size", len(probe)))
	}

	total := 0
	for _, ds := range manifest.Datasets {
		n, err := ingestDataset(ctx, logger, embedder, store, ds)
		if err != nil {
			logger.Fatal("Dataset ingestion failed",
				zap.String("file", ds.File),
				zap.Error(err))
		}
		total += n
	}
	logger.Info("Ingestion complete", zap.Int("documents", total))
}

func loadManifest(path string) (*ingestManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m ingestManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Datasets) == 0 {
		return nil, fmt.Errorf("manifest lists no datasets")
	}
	for i, ds := range m.Datasets {
		if ds.File == "" || ds.SourceTag == "" {
			return nil, fmt.Errorf("dataset %d: file and source_tag are required", i)
		}
	}
	return &m, nil
}

func ingestDataset(ctx context.Context, logger *zap.Logger, embedder *embeddings.Service, store *vectordb.Client, ds Dataset) (int, error) {
	f, err := os.Open(ds.File)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	contentIdx, dateIdx, locIdx := resolveColumns(header)
	if contentIdx < 0 {
		return 0, fmt.Errorf("no content column in %s (want tweet, text or content)", ds.File)
	}

	total := 0
	batch := make([]record, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := upsertBatch(ctx, embedder, store, ds, batch); err != nil {
			return err
		}
		total += len(batch)
		logger.Info("Batch loaded",
			zap.String("source_tag", ds.SourceTag),
			zap.Int("loaded", total))
		batch = batch[:0]
		return nil
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, fmt.Errorf("read row: %w", err)
		}
		rec := record{content: strings.TrimSpace(field(row, contentIdx))}
		if rec.content == "" {
			continue
		}
		rec.date = field(row, dateIdx)
		rec.location = field(row, locIdx)
		batch = append(batch, rec)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

// resolveColumns finds the content, date and location columns by their
// common names. Date and location are optional.
func resolveColumns(header []string) (content, date, location int) {
	content, date, location = -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "tweet", "text", "content":
			if content < 0 {
				content = i
			}
		case "date", "timestamp":
			if date < 0 {
				date = i
			}
		case "location", "place":
			if location < 0 {
				location = i
			}
		}
	}
	return content, date, location
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func upsertBatch(ctx context.Context, embedder *embeddings.Service, store *vectordb.Client, ds Dataset, batch []record) error {
	texts := make([]string, len(batch))
	for i, rec := range batch {
		texts[i] = rec.content
	}
	vectors, err := embedder.GenerateBatchEmbeddings(ctx, texts, "")
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}

	points := make([]vectordb.UpsertItem, len(batch))
	for i, rec := range batch {
		payload := map[string]interface{}{
			"content": rec.content,
			"source":  ds.SourceTag,
			"type":    ds.Type,
		}
		if rec.date != "" {
			payload["date"] = rec.date
		}
		if rec.location != "" {
			payload["location"] = rec.location
		}
		points[i] = vectordb.UpsertItem{
			ID:      uuid.NewString(),
			Vector:  vectors[i],
			Payload: payload,
		}
	}
	if _, err := store.Upsert(ctx, points); err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}
	return nil
}
