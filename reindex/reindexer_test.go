package reindex

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sentinelai/sentinel/ai/mock"
	"github.com/sentinelai/sentinel/core"
	"github.com/sentinelai/sentinel/storage"
	"github.com/sentinelai/sentinel/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepos(t *testing.T) (storage.DocumentRepository, storage.ChunkRepository) {
	t.Helper()

	docRepo, chunkRepo, auditRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		auditRepo.Close()
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
	})

	return docRepo, chunkRepo
}

func seedDocumentWithChunks(t *testing.T, docRepo storage.DocumentRepository, chunkRepo storage.ChunkRepository, id string, n int) {
	t.Helper()
	ctx := context.Background()

	_, err := docRepo.AddDocuments(ctx, &core.Document{
		Id:       id,
		Filename: id + ".txt",
		FileType: ".txt",
		Status:   core.StatusNew,
		Checksum: core.IDFromContent(id),
		UserId:   "alice",
	})
	require.NoError(t, err)

	chunks := make([]*core.Chunk, n)
	for i := range chunks {
		chunks[i] = &core.Chunk{
			DocumentId: id,
			Seq:        i,
			Text:       "chunk text " + string(rune('a'+i)),
			Vector:     []float32{1, 0, 0},
		}
	}
	_, err = chunkRepo.AddChunks(ctx, chunks...)
	require.NoError(t, err)
}

func TestNewReindexer(t *testing.T) {
	docRepo, chunkRepo := setupRepos(t)
	embedder := mock.NewMockEmbedder()

	t.Run("valid", func(t *testing.T) {
		r, err := NewReindexer(docRepo, chunkRepo, embedder, nil, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig().BatchSize, r.config.BatchSize)
	})

	t.Run("nil document repository", func(t *testing.T) {
		_, err := NewReindexer(nil, chunkRepo, embedder, nil, &bytes.Buffer{})
		assert.Equal(t, ErrDocumentRepositoryRequired, err)
	})

	t.Run("nil chunk repository", func(t *testing.T) {
		_, err := NewReindexer(docRepo, nil, embedder, nil, &bytes.Buffer{})
		assert.Equal(t, ErrChunkRepositoryRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewReindexer(docRepo, chunkRepo, nil, nil, &bytes.Buffer{})
		assert.Equal(t, ErrEmbedderRequired, err)
	})
}

func TestReindexerRun(t *testing.T) {
	docRepo, chunkRepo := setupRepos(t)
	seedDocumentWithChunks(t, docRepo, chunkRepo, "doc-1", 5)
	seedDocumentWithChunks(t, docRepo, chunkRepo, "doc-2", 3)

	// New model: every vector becomes (0, 1, 0)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{0, 1, 0}
		}
		return out, nil
	}

	var progress bytes.Buffer
	r, err := NewReindexer(docRepo, chunkRepo, embedder, &Config{
		BatchSize:      2,
		ReportInterval: 1,
		MaxRetries:     1,
		RetryDelay:     time.Millisecond,
	}, &progress)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, r.Run(ctx))

	// All chunks carry the new vector, still ordered by sequence
	for _, docId := range []string{"doc-1", "doc-2"} {
		chunks, err := chunkRepo.GetChunksByDocument(ctx, docId)
		require.NoError(t, err)
		for _, c := range chunks {
			require.Len(t, c.Vector, 3)
			assert.InDelta(t, 0.0, float64(c.Vector[0]), 0.001)
			assert.InDelta(t, 1.0, float64(c.Vector[1]), 0.001)
		}
	}

	assert.Contains(t, progress.String(), "Reindexing complete")
	assert.Contains(t, progress.String(), "8 chunks")
}

func TestReindexerRunEmpty(t *testing.T) {
	docRepo, chunkRepo := setupRepos(t)

	var progress bytes.Buffer
	r, err := NewReindexer(docRepo, chunkRepo, mock.NewMockEmbedder(), nil, &progress)
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, progress.String(), "No chunks found")
}

func TestReindexerRetriesTransientFailure(t *testing.T) {
	docRepo, chunkRepo := setupRepos(t)
	seedDocumentWithChunks(t, docRepo, chunkRepo, "doc-1", 2)

	calls := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient failure")
		}
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{0, 0, 1}
		}
		return out, nil
	}

	r, err := NewReindexer(docRepo, chunkRepo, embedder, &Config{
		BatchSize:      10,
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
	}, &bytes.Buffer{})
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestReindexerGivesUpAfterRetries(t *testing.T) {
	docRepo, chunkRepo := setupRepos(t)
	seedDocumentWithChunks(t, docRepo, chunkRepo, "doc-1", 1)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("permanently down")
	}

	r, err := NewReindexer(docRepo, chunkRepo, embedder, &Config{
		BatchSize:      10,
		ReportInterval: 10,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}, &bytes.Buffer{})
	require.NoError(t, err)

	err = r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permanently down")
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds first try", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return nil
		}, 3, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("succeeds after retries", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			if calls < 3 {
				return errors.New("not yet")
			}
			return nil
		}, 5, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last error", func(t *testing.T) {
		err := RetryWithBackoff(ctx, func() error {
			return errors.New("always fails")
		}, 2, time.Millisecond)
		require.Error(t, err)
		assert.Equal(t, "always fails", err.Error())
	})

	t.Run("invalid max attempts", func(t *testing.T) {
		err := RetryWithBackoff(ctx, func() error { return nil }, 0, time.Millisecond)
		assert.Equal(t, ErrInvalidMaxAttempts, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		err := RetryWithBackoff(cancelled, func() error { return nil }, 3, time.Millisecond)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestProgressTracker(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, 10, 5)

	// Updates before Start are ignored
	p.Update(3)
	assert.Empty(t, buf.String())

	p.Start()
	p.Update(2)
	assert.Empty(t, buf.String(), "below report interval")

	p.Update(5)
	assert.Contains(t, buf.String(), "5/10")

	p.Finish()
	assert.Contains(t, buf.String(), "10/10")
	assert.Positive(t, p.Elapsed())
}
