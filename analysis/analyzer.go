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

package analysis

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/sentinelai/sentinel/ai"
	"github.com/sentinelai/sentinel/core"
	"github.com/sentinelai/sentinel/storage"
)

const (
	// maxAnalysisChars bounds how much text a single prompt carries.
	maxAnalysisChars = 6000

	// parseAttempts is how often a malformed model response is retried.
	parseAttempts = 3
)

// Topic is a model-identified subject of a text.
type Topic struct {
	Name        string  `json:"name"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

// TextAnalysis bundles the results of all analysis prompts for one text.
type TextAnalysis struct {
	Keywords []string `json:"keywords"`
	Topics   []Topic  `json:"topics"`
	Summary  string   `json:"summary"`
}

// Analyzer runs LLM analysis over raw text and over stored documents.
type Analyzer struct {
	documents storage.DocumentRepository
	chunks    storage.ChunkRepository
	chat      ai.ChatModel
	logger    *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(
	documents storage.DocumentRepository,
	chunks storage.ChunkRepository,
	provider ai.Provider,
	opts ...Option,
) (*Analyzer, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	a := &Analyzer{
		documents: documents,
		chunks:    chunks,
		chat:      provider.ChatModel(),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	a.logger = a.logger.With("component", "analysis")

	return a, nil
}

// Keywords extracts keywords from text.
func (a *Analyzer) Keywords(ctx context.Context, text string) ([]string, error) {
	var result struct {
		Keywords []string `json:"keywords"`
	}
	if err := a.generateParsed(ctx, keywordsPrompt, text, &result); err != nil {
		return nil, err
	}
	return result.Keywords, nil
}

// Topics identifies the main topics of text.
func (a *Analyzer) Topics(ctx context.Context, text string) ([]Topic, error) {
	var result struct {
		Topics []Topic `json:"topics"`
	}
	if err := a.generateParsed(ctx, topicsPrompt, text, &result); err != nil {
		return nil, err
	}
	return result.Topics, nil
}

// Summarize produces a short summary of text.
func (a *Analyzer) Summarize(ctx context.Context, text string) (string, error) {
	var result struct {
		Summary string `json:"summary"`
	}
	if err := a.generateParsed(ctx, summaryPrompt, text, &result); err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Summary), nil
}

// AnalyzeText runs all three analysis prompts over the given text.
func (a *Analyzer) AnalyzeText(ctx context.Context, text string) (*TextAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	text = truncateAtSentence(text, maxAnalysisChars)

	keywords, err := a.Keywords(ctx, text)
	if err != nil {
		return nil, err
	}

	topics, err := a.Topics(ctx, text)
	if err != nil {
		return nil, err
	}

	summary, err := a.Summarize(ctx, text)
	if err != nil {
		return nil, err
	}

	return &TextAnalysis{
		Keywords: keywords,
		Topics:   topics,
		Summary:  summary,
	}, nil
}

// AnalyzeDocument analyzes a stored document from a sample of its chunks
// and persists the resulting summary and keywords on the document record.
// Only masked chunk text ever reaches the model.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, documentId string) (*TextAnalysis, error) {
	doc, err := a.documents.GetDocument(ctx, documentId)
	if err != nil {
		return nil, err
	}

	chunks, err := a.chunks.GetChunksByDocument(ctx, documentId)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	result, err := a.AnalyzeText(ctx, sampleChunks(chunks))
	if err != nil {
		return nil, err
	}

	doc.Summary = result.Summary
	doc.Keywords = result.Keywords
	if _, err := a.documents.UpdateDocuments(ctx, doc); err != nil {
		return nil, err
	}

	a.logger.Info("document analyzed",
		"document", documentId,
		"keywords", len(result.Keywords),
		"topics", len(result.Topics))

	return result, nil
}

// generateParsed calls the model in JSON mode and parses the response into
// out, retrying on malformed output.
func (a *Analyzer) generateParsed(ctx context.Context, system, text string, out any) error {
	var lastErr error
	for attempt := 0; attempt < parseAttempts; attempt++ {
		response, err := a.chat.GenerateJSON(ctx, system, text)
		if err != nil {
			a.logger.Error("failed to generate analysis", "attempt", attempt+1, "err", err)
			return err
		}

		cleaned := repairJSON(stripFences(response))
		if err := json.Unmarshal([]byte(cleaned), out); err != nil {
			lastErr = err
			a.logger.Warn("error parsing analysis response",
				"attempt", attempt+1,
				"response", cleaned,
				"err", err)
			continue
		}
		return nil
	}

	a.logger.Error("failed to parse analysis response after retries", "err", lastErr)
	return lastErr
}

// sampleChunks picks representative chunk texts: everything for small
// documents, otherwise the first, middle and last chunk.
func sampleChunks(chunks []*core.Chunk) string {
	if len(chunks) <= 3 {
		parts := make([]string, len(chunks))
		for i, c := range chunks {
			parts[i] = c.Text
		}
		return strings.Join(parts, "\n\n")
	}

	picked := []*core.Chunk{
		chunks[0],
		chunks[len(chunks)/2],
		chunks[len(chunks)-1],
	}
	parts := make([]string, len(picked))
	for i, c := range picked {
		parts[i] = c.Text
	}
	return strings.Join(parts, "\n\n")
}

// truncateAtSentence shortens text to at most limit characters, preferring
// to cut at a sentence end once past 70% of the limit.
func truncateAtSentence(text string, limit int) string {
	if len(text) <= limit {
		return text
	}

	cut := text[:limit]
	if idx := strings.LastIndex(cut, ". "); idx >= limit*7/10 {
		return cut[:idx+1]
	}
	return cut
}
