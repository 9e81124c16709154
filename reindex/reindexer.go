// Copyright 2025 SentinelAI Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sentinelai/sentinel/ai"
	"github.com/sentinelai/sentinel/core"
	"github.com/sentinelai/sentinel/storage"
)

// Config holds configuration for the reindexing operation.
type Config struct {
	// BatchSize is the number of chunks embedded per model request
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed embedding calls
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      50,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer regenerates the embedding vectors of every stored chunk.
type Reindexer struct {
	documents storage.DocumentRepository
	chunks    storage.ChunkRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(
	documents storage.DocumentRepository,
	chunks storage.ChunkRepository,
	embedder ai.Embedder,
	config *Config,
	progress io.Writer,
) (*Reindexer, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}

	return &Reindexer{
		documents: documents,
		chunks:    chunks,
		embedder:  embedder,
		config:    config,
		progress:  progress,
	}, nil
}

// Run reembeds every chunk of every document. Chunk text is stored in
// masked form, so this never re-reads or re-extracts the source files.
// Progress is reported to the configured writer.
func (r *Reindexer) Run(ctx context.Context) error {
	docs, err := r.documents.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	total, err := r.chunks.CountChunks(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No chunks found in database (0 chunks)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reindexing of %d chunks across %d documents (batch size: %d)\n",
		total, len(docs), r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	for _, doc := range docs {
		chunks, err := r.chunks.GetChunksByDocument(ctx, doc.Id)
		if err != nil {
			return fmt.Errorf("failed to load chunks for document %s: %w", doc.Id, err)
		}

		for start := 0; start < len(chunks); start += r.config.BatchSize {
			end := min(start+r.config.BatchSize, len(chunks))

			if err := r.processBatch(ctx, chunks[start:end]); err != nil {
				return fmt.Errorf("document %s: %w", doc.Id, err)
			}

			processed += end - start
			tracker.Update(processed)

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindexing complete. Processed %d chunks in %v (%.1f chunks/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}

// processBatch embeds a batch of chunks with retry and writes them back.
// Chunk IDs are content-based and unchanged, so the write replaces the
// stored records in place.
func (r *Reindexer) processBatch(ctx context.Context, batch []*core.Chunk) error {
	if len(batch) == 0 {
		return nil
	}

	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		embeddings, embedErr = r.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", r.config.MaxRetries, err)
	}

	if len(embeddings) != len(batch) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(embeddings))
	}

	for i := range batch {
		batch[i].Vector = embeddings[i]
	}

	if _, err := r.chunks.AddChunks(ctx, batch...); err != nil {
		return fmt.Errorf("failed to update chunks: %w", err)
	}

	return nil
}
