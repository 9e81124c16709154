package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/sentinelai/sentinel/ai/mock"
	"github.com/sentinelai/sentinel/core"
	"github.com/sentinelai/sentinel/search"
	"github.com/sentinelai/sentinel/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupResponder wires a responder over in-memory repositories. The
// embedder returns queryVector for every embedding request, so stored
// chunk vectors fully control retrieval.
func setupResponder(t *testing.T, queryVector []float32, chat *mock.MockChatModel, opts ...Option) (*Responder, func(id, filename, text string, vector []float32)) {
	t.Helper()

	docRepo, chunkRepo, auditRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		auditRepo.Close()
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
	})

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return queryVector, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, chat)

	searcher, err := search.NewSearcher(docRepo, chunkRepo, provider)
	require.NoError(t, err)

	responder, err := NewResponder(searcher, provider, opts...)
	require.NoError(t, err)

	seed := func(id, filename, text string, vector []float32) {
		ctx := context.Background()
		_, err := docRepo.AddDocuments(ctx, &core.Document{
			Id:       id,
			Filename: filename,
			FileType: ".txt",
			Status:   core.StatusNew,
			Checksum: core.IDFromContent(id),
			UserId:   "alice",
		})
		require.NoError(t, err)
		_, err = chunkRepo.AddChunks(ctx, &core.Chunk{
			DocumentId: id,
			Seq:        0,
			Text:       text,
			Vector:     vector,
		})
		require.NoError(t, err)
	}

	return responder, seed
}

func TestNewResponder(t *testing.T) {
	responder, _ := setupResponder(t, []float32{1, 0, 0}, mock.NewMockChatModel())
	assert.NotNil(t, responder)

	t.Run("nil searcher", func(t *testing.T) {
		_, err := NewResponder(nil, mock.NewMockProvider())
		assert.Equal(t, ErrSearcherRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewResponder(responder.searcher, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestRespondGrounded(t *testing.T) {
	var capturedSystem string
	chat := mock.NewMockChatModel()
	chat.GenerateFunc = func(ctx context.Context, system, prompt string) (string, error) {
		capturedSystem = system
		return "According to retention.txt, records are kept for six years.", nil
	}

	responder, seed := setupResponder(t, []float32{1, 0, 0}, chat, WithModelName("llama3.2"))
	seed("doc-1", "retention.txt", "Records are retained for six years.", []float32{1, 0, 0})

	response, err := responder.Respond(context.Background(), "how long are records kept")
	require.NoError(t, err)

	assert.True(t, response.RAGUsed)
	assert.Equal(t, 1, response.ContextCount)
	assert.Equal(t, "llama3.2", response.Model)
	assert.Contains(t, response.Answer, "six years")
	require.Len(t, response.Sources, 1)
	assert.Equal(t, "doc-1", response.Sources[0].DocumentId)
	assert.Equal(t, "retention.txt", response.Sources[0].Filename)
	assert.NotZero(t, response.Sources[0].ChunkId)

	// The system prompt names the source and carries the chunk text
	assert.Contains(t, capturedSystem, "[Source: retention.txt]")
	assert.Contains(t, capturedSystem, "Records are retained for six years.")
}

func TestRespondUngrounded(t *testing.T) {
	var capturedSystem string
	chat := mock.NewMockChatModel()
	chat.GenerateFunc = func(ctx context.Context, system, prompt string) (string, error) {
		capturedSystem = system
		return "The archive has nothing on that.", nil
	}

	responder, _ := setupResponder(t, []float32{1, 0, 0}, chat)

	response, err := responder.Respond(context.Background(), "anything at all")
	require.NoError(t, err)

	assert.False(t, response.RAGUsed)
	assert.Zero(t, response.ContextCount)
	assert.Empty(t, response.Sources)
	assert.Contains(t, capturedSystem, "No stored document matched")
}

func TestRespondEmptyQuery(t *testing.T) {
	responder, _ := setupResponder(t, []float32{1, 0, 0}, mock.NewMockChatModel())

	_, err := responder.Respond(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestRespondStream(t *testing.T) {
	chat := mock.NewMockChatModel()
	chat.Response = "Streamed answer about retention."

	responder, seed := setupResponder(t, []float32{1, 0, 0}, chat)
	seed("doc-1", "retention.txt", "Records are retained for six years.", []float32{1, 0, 0})

	var chunks []string
	response, err := responder.RespondStream(context.Background(), "retention period", func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	require.NoError(t, err)

	assert.Greater(t, len(chunks), 1, "answer should arrive in pieces")
	assert.Equal(t, "Streamed answer about retention.", strings.Join(chunks, ""))
	assert.Equal(t, "Streamed answer about retention.", response.Answer)
	assert.True(t, response.RAGUsed)
	require.Len(t, response.Sources, 1)
}

func TestRespondStreamCallbackError(t *testing.T) {
	chat := mock.NewMockChatModel()
	chat.Response = "Several words to stream."

	responder, _ := setupResponder(t, []float32{1, 0, 0}, chat)

	calls := 0
	_, err := responder.RespondStream(context.Background(), "query", func(chunk string) error {
		calls++
		if calls == 2 {
			return context.Canceled
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls, "stream stops once the callback fails")
}

func TestRespondContextSize(t *testing.T) {
	chat := mock.NewMockChatModel()

	responder, seed := setupResponder(t, []float32{1, 0, 0}, chat, WithContextSize(2))
	seed("doc-1", "a.txt", "Alpha content.", []float32{1, 0, 0})
	seed("doc-2", "b.txt", "Beta content.", []float32{0.9, 0.1, 0})
	seed("doc-3", "c.txt", "Gamma content.", []float32{0.8, 0.2, 0})

	response, err := responder.Respond(context.Background(), "query")
	require.NoError(t, err)
	assert.Equal(t, 2, response.ContextCount)
	assert.Len(t, response.Sources, 2)
}
