package search

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/sentinelai/sentinel/ai"
	"github.com/sentinelai/sentinel/core"
	"github.com/sentinelai/sentinel/storage"
)

const (
	// DefaultMinSimilarity is the similarity floor for retrieval.
	DefaultMinSimilarity float32 = 0.30

	// DefaultMaxHits is the number of results returned when the caller
	// passes a non-positive limit.
	DefaultMaxHits = 5

	// verbatimBoost is added to the score of chunks that contain every
	// non-stop-word of the query.
	verbatimBoost float32 = 0.3
)

// Result is a retrieved chunk together with its source document.
type Result struct {
	Chunk    *core.Chunk
	Document *core.Document
	Score    float32
}

// DocumentMatch is a document ranked by centroid similarity.
type DocumentMatch struct {
	Document *core.Document
	Score    float32
}

// Searcher provides semantic retrieval over stored chunks.
type Searcher struct {
	documents     storage.DocumentRepository
	chunks        storage.ChunkRepository
	embedder      ai.Embedder
	minSimilarity float32
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMinSimilarity overrides the retrieval similarity floor.
func WithMinSimilarity(min float32) Option {
	return func(s *Searcher) error {
		s.minSimilarity = min
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	documents storage.DocumentRepository,
	chunks storage.ChunkRepository,
	provider ai.Provider,
	opts ...Option,
) (*Searcher, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		documents:     documents,
		chunks:        chunks,
		embedder:      provider.Embedder(),
		minSimilarity: DefaultMinSimilarity,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindRelevant searches for chunks relevant to the query.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindRelevant(ctx context.Context, query string, maxHits int) ([]*Result, error) {
	return s.FindRelevantWithMonitor(ctx, query, maxHits, nil)
}

// FindRelevantWithMonitor searches for chunks relevant to the query with
// monitoring. The monitor receives callbacks at each stage of the search.
func (s *Searcher) FindRelevantWithMonitor(ctx context.Context, query string, maxHits int, monitor SearchMonitor) ([]*Result, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if maxHits <= 0 {
		maxHits = DefaultMaxHits
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}
	monitor.AfterEmbedding(len(embedding))

	// Over-fetch so the verbatim boost can reorder before truncation
	matches, err := s.chunks.FindSimilar(ctx, embedding, s.minSimilarity, maxHits*2)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}
	monitor.AfterVectorSearch(matches)

	docs := make(map[string]*core.Document)
	results := make([]*Result, 0, len(matches))

	for _, match := range matches {
		score := match.Score
		if containsAllQueryWords(match.Chunk.Text, query) {
			score += verbatimBoost
			monitor.VerbatimHit(match.Chunk)
		}

		doc, ok := docs[match.Chunk.DocumentId]
		if !ok {
			doc, err = s.documents.GetDocument(ctx, match.Chunk.DocumentId)
			if err != nil {
				// Chunk without a document record: skip rather than fail the search
				s.logger.Warn("chunk references missing document",
					"chunk", match.Chunk.Id, "document", match.Chunk.DocumentId, "err", err)
				continue
			}
			docs[match.Chunk.DocumentId] = doc
		}

		results = append(results, &Result{
			Chunk:    match.Chunk,
			Document: doc,
			Score:    score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	monitor.Finish(results)

	return results, nil
}

// SimilarDocuments ranks other documents by cosine similarity between
// chunk centroids. The reference document itself is excluded.
func (s *Searcher) SimilarDocuments(ctx context.Context, documentId string, limit int) ([]*DocumentMatch, error) {
	if limit <= 0 {
		limit = DefaultMaxHits
	}

	centroid, err := s.chunks.DocumentCentroid(ctx, documentId)
	if err != nil {
		return nil, err
	}

	docs, err := s.documents.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]*DocumentMatch, 0, len(docs))
	for _, doc := range docs {
		if doc.Id == documentId {
			continue
		}

		other, err := s.chunks.DocumentCentroid(ctx, doc.Id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, err
		}

		matches = append(matches, &DocumentMatch{
			Document: doc,
			Score:    cosineSimilarity(centroid, other),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Centroids are means of unit vectors and so are not unit length
// themselves; the norms cannot be skipped here.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
