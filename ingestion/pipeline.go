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

package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/sentinelai/sentinel/ai"
	"github.com/sentinelai/sentinel/chunk"
	"github.com/sentinelai/sentinel/core"
	"github.com/sentinelai/sentinel/extract"
	"github.com/sentinelai/sentinel/pii"
	"github.com/sentinelai/sentinel/storage"
)

const (
	// DefaultMaxDocumentSize is the upload size limit in bytes.
	DefaultMaxDocumentSize = 50 * 1024 * 1024

	// embedBatchSize is the number of chunk texts sent to the embedder
	// per request.
	embedBatchSize = 10
)

// Pipeline orchestrates document ingestion: extract, chunk, mask, embed,
// persist, audit. Embedding batches run concurrently on a worker pool;
// everything else is synchronous so the caller gets a complete document
// record back.
type Pipeline struct {
	documents storage.DocumentRepository
	chunks    storage.ChunkRepository
	audit     storage.AuditRepository
	embedder  ai.Embedder
	detector  *pii.Detector
	chunker   *chunk.Chunker
	pool      *ants.Pool
	maxSize   int64
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding batches.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithChunker replaces the default chunker.
func WithChunker(c *chunk.Chunker) Option {
	return func(p *Pipeline) error {
		if c != nil {
			p.chunker = c
		}
		return nil
	}
}

// WithDetector replaces the default PII detector. Pass a disabled
// detector to ingest without masking.
func WithDetector(d *pii.Detector) Option {
	return func(p *Pipeline) error {
		if d != nil {
			p.detector = d
		}
		return nil
	}
}

// WithMaxDocumentSize sets the upload size limit in bytes.
func WithMaxDocumentSize(limit int64) Option {
	return func(p *Pipeline) error {
		if limit > 0 {
			p.maxSize = limit
		}
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	documents storage.DocumentRepository,
	chunks storage.ChunkRepository,
	audit storage.AuditRepository,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if audit == nil {
		return nil, ErrAuditRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		documents: documents,
		chunks:    chunks,
		audit:     audit,
		embedder:  provider.Embedder(),
		detector:  pii.NewDetector(true),
		chunker:   chunk.New(chunk.DefaultSize, chunk.DefaultOverlap),
		pool:      pool,
		maxSize:   DefaultMaxDocumentSize,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	p.logger = p.logger.With("component", "ingestion")

	return p, nil
}

// Ingest processes an uploaded document end to end and returns the stored
// document record. userId is the uploader; empty means the system itself.
// Duplicate uploads are detected by content checksum before any model
// call happens.
func (p *Pipeline) Ingest(ctx context.Context, filename string, data []byte, userId string) (*core.Document, error) {
	if userId == "" {
		userId = core.SystemUser
	}
	if int64(len(data)) > p.maxSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrDocumentTooLarge, len(data), p.maxSize)
	}

	fileType := extract.FileType(filename)

	checksum := core.IDFromBytes(data)
	if existing, err := p.documents.FindDocumentByChecksum(ctx, checksum); err == nil {
		return nil, fmt.Errorf("%w: same content as %q (%s)", ErrDuplicateDocument, existing.Filename, existing.Id)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	text, err := extract.Extract(data, fileType)
	if err != nil {
		return nil, err
	}

	texts := p.chunker.SplitFor(fileType, text)

	results := p.detector.DetectAll(texts)
	masked := make([]string, len(results))
	combined := &pii.Result{}
	detected := false
	for i, r := range results {
		masked[i] = r.MaskedText
		combined.Matches = append(combined.Matches, r.Matches...)
		if r.Detected {
			detected = true
		}
	}

	vectors, err := p.embedAll(ctx, masked)
	if err != nil {
		return nil, err
	}

	doc := &core.Document{
		Id:          uuid.NewString(),
		Filename:    filename,
		FileType:    fileType,
		Status:      core.StatusNew,
		SizeBytes:   int64(len(data)),
		CharCount:   len(text),
		ChunkCount:  len(masked),
		PIIDetected: detected,
		PIISummary:  combined.Summary(),
		Checksum:    checksum,
		UserId:      userId,
	}

	records := make([]*core.Chunk, len(masked))
	for i := range masked {
		records[i] = &core.Chunk{
			DocumentId: doc.Id,
			Seq:        i,
			Text:       masked[i],
			Vector:     vectors[i],
			PIIMasked:  results[i].Detected,
		}
	}

	if _, err := p.chunks.AddChunks(ctx, records...); err != nil {
		return nil, err
	}

	if _, err := p.documents.AddDocuments(ctx, doc); err != nil {
		// Don't leave orphaned chunks behind
		if _, cleanupErr := p.chunks.DeleteChunksByDocument(ctx, doc.Id); cleanupErr != nil {
			p.logger.Error("error removing chunks after failed document insert",
				"document", doc.Id, "err", cleanupErr)
		}
		return nil, err
	}

	if _, err := p.audit.AppendEntries(ctx, &core.AuditEntry{
		UserId:  userId,
		Action:  core.ActionDocumentUpload,
		Details: filename,
		Metadata: map[string]string{
			"document_id": doc.Id,
			"chunks":      fmt.Sprintf("%d", len(records)),
			"pii":         doc.PIISummary,
		},
	}); err != nil {
		return nil, err
	}

	p.logger.Info("document ingested",
		"document", doc.Id,
		"filename", filename,
		"chunks", len(records),
		"pii", detected)

	return doc, nil
}

// Remove deletes a document, its chunks, and records the deletion in the
// audit trail.
func (p *Pipeline) Remove(ctx context.Context, documentId, userId string) error {
	if userId == "" {
		userId = core.SystemUser
	}

	doc, err := p.documents.GetDocument(ctx, documentId)
	if err != nil {
		return err
	}

	removed, err := p.chunks.DeleteChunksByDocument(ctx, documentId)
	if err != nil {
		return err
	}

	if err := p.documents.DeleteDocuments(ctx, documentId); err != nil {
		return err
	}

	_, err = p.audit.AppendEntries(ctx, &core.AuditEntry{
		UserId:  userId,
		Action:  core.ActionDocumentDelete,
		Details: doc.Filename,
		Metadata: map[string]string{
			"document_id": documentId,
			"chunks":      fmt.Sprintf("%d", removed),
		},
	})
	return err
}

// embedAll generates embeddings for all texts, submitting fixed-size
// batches to the worker pool and assembling results in input order.
func (p *Pipeline) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error

	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))

		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()

			batch, embedErr := p.embedder.EmbedTexts(ctx, texts[start:end])
			if embedErr == nil && len(batch) != end-start {
				embedErr = fmt.Errorf("embedding result mismatch. expected %d, received %d", end-start, len(batch))
			}
			if embedErr != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("batch starting at chunk %d: %w", start, embedErr))
				mu.Unlock()
				return
			}
			copy(vectors[start:end], batch)
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
	}

	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
