// Package embedding turns training data points into text chunks and vector
// embeddings stored in the knowledge base for later semantic retrieval.
package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/summitchronicles/summit-tracker/internal/insight"
	"github.com/summitchronicles/summit-tracker/internal/sqlite"
)

const batchSize = 10

// Indexer renders data points into text chunks, embeds them and stores the
// result. Indexing is best effort: a failed batch is logged and skipped,
// and the caller never sees an error.
type Indexer struct {
	client openai.Client
	db     *sqlite.Database
	logger *slog.Logger
}

// NewIndexer creates an indexer backed by the embeddings API.
func NewIndexer(apiKey string, db *sqlite.Database, logger *slog.Logger) *Indexer {
	return &Indexer{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		db:     db,
		logger: logger,
	}
}

type chunk struct {
	content  string
	metadata map[string]any
}

// IndexTrainingData embeds the points in batches and stores each batch in
// the knowledge base tagged source=training_data. Insight generation must
// never depend on this succeeding, so errors stay inside.
func (ix *Indexer) IndexTrainingData(ctx context.Context, points []insight.DataPoint) {
	chunks := make([]chunk, 0, len(points))
	for _, point := range points {
		chunks = append(chunks, buildChunk(point))
	}

	for start := 0; start < len(chunks); start += batchSize {
		end := min(start+batchSize, len(chunks))
		if err := ix.processBatch(ctx, chunks[start:end]); err != nil {
			ix.logger.LogAttrs(ctx, slog.LevelError, "embedding batch failed",
				slog.Int("batch_start", start),
				slog.Int("batch_size", end-start),
				slog.Any("error", err))
		}
	}
}

// buildChunk renders a fixed-template multi-line description of a point.
// Lines appear only when the corresponding field carries a value.
func buildChunk(point insight.DataPoint) chunk {
	var content strings.Builder
	fmt.Fprintf(&content, "Training Session: %s on %s\n", point.Activity, point.Date)
	fmt.Fprintf(&content, "Type: %s\n", point.Type)

	if v := point.Metrics.Duration; v != nil && *v != 0 {
		fmt.Fprintf(&content, "Duration: %g minutes\n", *v)
	}
	if v := point.Metrics.Volume; v != nil && *v != 0 {
		unit := "km distance"
		if point.Type == insight.TypeStrength {
			unit = "kg total volume"
		}
		fmt.Fprintf(&content, "Volume: %g %s\n", *v, unit)
	}
	if v := point.Metrics.Intensity; v != nil && *v != 0 {
		fmt.Fprintf(&content, "Intensity: %g/10 RPE\n", *v)
	}
	if v := point.Metrics.Elevation; v != nil && *v != 0 {
		fmt.Fprintf(&content, "Elevation gain: %gm\n", *v)
	}
	if v := point.Metrics.BackpackWeight; v != nil && *v != 0 {
		fmt.Fprintf(&content, "Backpack weight: %gkg\n", *v)
	}
	if v := point.Context.Phase; v != nil && *v != "" {
		fmt.Fprintf(&content, "Training phase: %s\n", *v)
	}
	if v := point.Context.Location; v != nil && *v != "" {
		fmt.Fprintf(&content, "Location/Type: %s\n", *v)
	}
	if v := point.Context.Notes; v != nil && *v != "" {
		fmt.Fprintf(&content, "Notes: %s\n", *v)
	}

	return chunk{
		content: content.String(),
		metadata: map[string]any{
			"date":     point.Date,
			"type":     point.Type,
			"activity": point.Activity,
			"metrics":  point.Metrics,
			"context":  point.Context,
			"source":   "training_data",
		},
	}
}

func (ix *Indexer) processBatch(ctx context.Context, batch []chunk) error {
	inputs := make([]string, len(batch))
	for i, c := range batch {
		inputs[i] = c.content
	}

	response, err := ix.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModelTextEmbedding3Small,
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: inputs,
		},
	})
	if err != nil {
		return fmt.Errorf("create embeddings: %w", err)
	}
	if len(response.Data) != len(batch) {
		return fmt.Errorf("expected %d embeddings, got %d", len(batch), len(response.Data))
	}

	for i, c := range batch {
		vector, err := json.Marshal(response.Data[i].Embedding)
		if err != nil {
			return fmt.Errorf("marshal embedding: %w", err)
		}
		c.metadata["type"] = "training_session"
		metadata, err := json.Marshal(c.metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}

		_, err = ix.db.ReadWrite.ExecContext(ctx, `
			INSERT INTO knowledge_base (content, embedding, metadata)
			VALUES (?, ?, ?)`,
			c.content, string(vector), string(metadata))
		if err != nil {
			return fmt.Errorf("store embedding: %w", err)
		}
	}
	return nil
}
