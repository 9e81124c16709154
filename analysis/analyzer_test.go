package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sentinelai/sentinel/ai/mock"
	"github.com/sentinelai/sentinel/core"
	"github.com/sentinelai/sentinel/storage"
	"github.com/sentinelai/sentinel/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jsonByPrompt answers each analysis prompt with a canned JSON document,
// keyed by a distinctive fragment of the system prompt.
func jsonByPrompt(responses map[string]string) func(ctx context.Context, system, prompt string) (string, error) {
	return func(ctx context.Context, system, prompt string) (string, error) {
		for fragment, response := range responses {
			if strings.Contains(system, fragment) {
				return response, nil
			}
		}
		return "", errors.New("unexpected prompt")
	}
}

func setupAnalyzer(t *testing.T, chat *mock.MockChatModel) (*Analyzer, storage.DocumentRepository, storage.ChunkRepository) {
	t.Helper()

	docRepo, chunkRepo, auditRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		auditRepo.Close()
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
	})

	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), chat)

	a, err := NewAnalyzer(docRepo, chunkRepo, provider)
	require.NoError(t, err)

	return a, docRepo, chunkRepo
}

func standardResponses() map[string]string {
	return map[string]string{
		"keywords":  `{"keywords": ["data protection", "encryption"]}`,
		"topics":    `{"topics": [{"name": "security", "confidence": 0.9, "description": "The text is about securing data."}]}`,
		"Summarize": `{"summary": "The document covers data protection measures."}`,
	}
}

func TestNewAnalyzer(t *testing.T) {
	docRepo, chunkRepo, auditRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		auditRepo.Close()
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	provider := mock.NewMockProvider()

	t.Run("valid", func(t *testing.T) {
		a, err := NewAnalyzer(docRepo, chunkRepo, provider)
		require.NoError(t, err)
		assert.NotNil(t, a)
	})

	t.Run("nil document repository", func(t *testing.T) {
		_, err := NewAnalyzer(nil, chunkRepo, provider)
		assert.Equal(t, ErrDocumentRepositoryRequired, err)
	})

	t.Run("nil chunk repository", func(t *testing.T) {
		_, err := NewAnalyzer(docRepo, nil, provider)
		assert.Equal(t, ErrChunkRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewAnalyzer(docRepo, chunkRepo, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestAnalyzeText(t *testing.T) {
	chat := mock.NewMockChatModel()
	chat.GenerateJSONFunc = jsonByPrompt(standardResponses())

	a, _, _ := setupAnalyzer(t, chat)

	result, err := a.AnalyzeText(context.Background(), "Customer data is encrypted at rest.")
	require.NoError(t, err)

	assert.Equal(t, []string{"data protection", "encryption"}, result.Keywords)
	require.Len(t, result.Topics, 1)
	assert.Equal(t, "security", result.Topics[0].Name)
	assert.InDelta(t, 0.9, result.Topics[0].Confidence, 0.001)
	assert.Equal(t, "The document covers data protection measures.", result.Summary)
}

func TestAnalyzeTextEmpty(t *testing.T) {
	a, _, _ := setupAnalyzer(t, mock.NewMockChatModel())

	_, err := a.AnalyzeText(context.Background(), "  \n ")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestAnalyzeTextFencedResponse(t *testing.T) {
	chat := mock.NewMockChatModel()
	chat.GenerateJSONFunc = func(ctx context.Context, system, prompt string) (string, error) {
		return "```json\n{\"keywords\": [\"fenced\"]}\n```", nil
	}

	a, _, _ := setupAnalyzer(t, chat)

	keywords, err := a.Keywords(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []string{"fenced"}, keywords)
}

func TestAnalyzeTextRetriesMalformedJSON(t *testing.T) {
	attempts := 0
	chat := mock.NewMockChatModel()
	chat.GenerateJSONFunc = func(ctx context.Context, system, prompt string) (string, error) {
		attempts++
		if attempts < 3 {
			return "not json at all", nil
		}
		return `{"keywords": ["third time lucky"]}`, nil
	}

	a, _, _ := setupAnalyzer(t, chat)

	keywords, err := a.Keywords(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []string{"third time lucky"}, keywords)
	assert.Equal(t, 3, attempts)
}

func TestAnalyzeTextGivesUpAfterRetries(t *testing.T) {
	chat := mock.NewMockChatModel()
	chat.GenerateJSONFunc = func(ctx context.Context, system, prompt string) (string, error) {
		return "persistently broken", nil
	}

	a, _, _ := setupAnalyzer(t, chat)

	_, err := a.Keywords(context.Background(), "text")
	require.Error(t, err)
}

func TestAnalyzeTextModelError(t *testing.T) {
	chat := mock.NewMockChatModel()
	chat.GenerateJSONFunc = func(ctx context.Context, system, prompt string) (string, error) {
		return "", errors.New("model offline")
	}

	a, _, _ := setupAnalyzer(t, chat)

	_, err := a.AnalyzeText(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model offline")
}

func TestAnalyzeDocument(t *testing.T) {
	chat := mock.NewMockChatModel()
	chat.GenerateJSONFunc = jsonByPrompt(standardResponses())

	a, docRepo, chunkRepo := setupAnalyzer(t, chat)
	ctx := context.Background()

	_, err := docRepo.AddDocuments(ctx, &core.Document{
		Id:       "doc-1",
		Filename: "policy.txt",
		FileType: ".txt",
		Status:   core.StatusNew,
		Checksum: core.IDFromContent("doc-1"),
		UserId:   "alice",
	})
	require.NoError(t, err)

	_, err = chunkRepo.AddChunks(ctx,
		&core.Chunk{DocumentId: "doc-1", Seq: 0, Text: "Encryption policy part one."},
		&core.Chunk{DocumentId: "doc-1", Seq: 1, Text: "Encryption policy part two."},
	)
	require.NoError(t, err)

	result, err := a.AnalyzeDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Keywords)

	// Summary and keywords are persisted on the document
	doc, err := docRepo.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "The document covers data protection measures.", doc.Summary)
	assert.Equal(t, []string{"data protection", "encryption"}, doc.Keywords)
}

func TestAnalyzeDocumentMissing(t *testing.T) {
	a, _, _ := setupAnalyzer(t, mock.NewMockChatModel())

	_, err := a.AnalyzeDocument(context.Background(), "no-such-doc")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAnalyzeDocumentNoChunks(t *testing.T) {
	a, docRepo, _ := setupAnalyzer(t, mock.NewMockChatModel())
	ctx := context.Background()

	_, err := docRepo.AddDocuments(ctx, &core.Document{
		Id:       "doc-empty",
		Filename: "empty.txt",
		FileType: ".txt",
		Status:   core.StatusNew,
		Checksum: core.IDFromContent("doc-empty"),
		UserId:   "alice",
	})
	require.NoError(t, err)

	_, err = a.AnalyzeDocument(ctx, "doc-empty")
	assert.ErrorIs(t, err, ErrNoChunks)
}

func TestSampleChunks(t *testing.T) {
	mk := func(n int) []*core.Chunk {
		chunks := make([]*core.Chunk, n)
		for i := range chunks {
			chunks[i] = &core.Chunk{Seq: i, Text: string(rune('a' + i))}
		}
		return chunks
	}

	t.Run("few chunks all used", func(t *testing.T) {
		assert.Equal(t, "a\n\nb", sampleChunks(mk(2)))
	})

	t.Run("many chunks sampled first middle last", func(t *testing.T) {
		assert.Equal(t, "a\n\nd\n\ng", sampleChunks(mk(7)))
	})
}

func TestTruncateAtSentence(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "Short.", truncateAtSentence("Short.", 100))
	})

	t.Run("cuts at sentence boundary", func(t *testing.T) {
		text := "First sentence here. " + strings.Repeat("x", 70) + ". Trailing tail beyond the limit"
		out := truncateAtSentence(text, 100)
		assert.True(t, strings.HasSuffix(out, "."), "got %q", out)
		assert.LessOrEqual(t, len(out), 100)
	})

	t.Run("hard cut when no boundary in range", func(t *testing.T) {
		text := strings.Repeat("y", 300)
		out := truncateAtSentence(text, 100)
		assert.Len(t, out, 100)
	})
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "valid untouched", in: `{"a": 1}`, want: `{"a": 1}`},
		{name: "missing opening quote", in: `{a": 1}`, want: `{"a": 1}`},
		{name: "missing quote after comma", in: `{"a": 1, b": 2}`, want: `{"a": 1, "b": 2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repairJSON(tt.in))
		})
	}
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(`{"a":1}`))
}
