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

package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sentinelai/sentinel/ai"
	"github.com/sentinelai/sentinel/core"
	"github.com/sentinelai/sentinel/search"
)

// DefaultContextSize is the number of chunks retrieved per query.
const DefaultContextSize = 5

const groundedPrompt = `You are an assistant answering questions about the user's document archive.

Use ONLY the document excerpts below to answer. Name the source file when
you use information from it. If the excerpts do not contain the answer,
say that the archive has nothing on the subject; do not invent facts.
Personal data in the excerpts appears as placeholder tokens like [EMAIL];
leave such tokens exactly as they are.

Document excerpts:

%s`

const ungroundedPrompt = `You are an assistant answering questions about the user's document archive.

No stored document matched this question. Say so, then answer from general
knowledge if you can, clearly marked as not coming from the archive.`

// Source identifies a chunk that contributed context to an answer.
type Source struct {
	DocumentId string  `json:"document_id"`
	Filename   string  `json:"filename"`
	ChunkId    core.ID `json:"chunk_id"`
	Score      float32 `json:"score"`
}

// Response is a generated answer with retrieval metadata.
type Response struct {
	Answer       string   `json:"answer"`
	Sources      []Source `json:"sources"`
	Model        string   `json:"model"`
	RAGUsed      bool     `json:"rag_used"`
	ContextCount int      `json:"context_count"`
}

// Responder answers queries using retrieval-augmented generation.
type Responder struct {
	searcher    *search.Searcher
	chat        ai.ChatModel
	modelName   string
	contextSize int
	logger      *slog.Logger
}

// Option configures a Responder.
type Option func(*Responder) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Responder) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithModelName sets the model name reported in response metadata.
func WithModelName(name string) Option {
	return func(r *Responder) error {
		if name != "" {
			r.modelName = name
		}
		return nil
	}
}

// WithContextSize sets how many chunks are retrieved per query.
func WithContextSize(size int) Option {
	return func(r *Responder) error {
		if size > 0 {
			r.contextSize = size
		}
		return nil
	}
}

// NewResponder creates a new responder.
func NewResponder(searcher *search.Searcher, provider ai.Provider, opts ...Option) (*Responder, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Responder{
		searcher:    searcher,
		chat:        provider.ChatModel(),
		modelName:   "local",
		contextSize: DefaultContextSize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	r.logger = r.logger.With("component", "rag")

	return r, nil
}

// Respond answers a query in one piece.
func (r *Responder) Respond(ctx context.Context, query string) (*Response, error) {
	system, response, err := r.prepare(ctx, query)
	if err != nil {
		return nil, err
	}

	answer, err := r.chat.Generate(ctx, system, query)
	if err != nil {
		return nil, err
	}

	response.Answer = answer
	return response, nil
}

// RespondStream answers a query incrementally, invoking fn for each token
// chunk. The returned response carries the full accumulated answer and
// the sources, available once streaming finishes.
func (r *Responder) RespondStream(ctx context.Context, query string, fn func(chunk string) error) (*Response, error) {
	system, response, err := r.prepare(ctx, query)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	err = r.chat.GenerateStream(ctx, system, query, func(chunk string) error {
		sb.WriteString(chunk)
		return fn(chunk)
	})
	if err != nil {
		return nil, err
	}

	response.Answer = sb.String()
	return response, nil
}

// prepare retrieves context for the query and builds the system prompt
// and the response skeleton.
func (r *Responder) prepare(ctx context.Context, query string) (string, *Response, error) {
	if strings.TrimSpace(query) == "" {
		return "", nil, ErrEmptyQuery
	}

	results, err := r.searcher.FindRelevant(ctx, query, r.contextSize)
	if err != nil {
		return "", nil, err
	}

	response := &Response{
		Model:        r.modelName,
		RAGUsed:      len(results) > 0,
		ContextCount: len(results),
	}

	if len(results) == 0 {
		r.logger.Debug("no relevant chunks for query")
		return ungroundedPrompt, response, nil
	}

	var sb strings.Builder
	for _, result := range results {
		fmt.Fprintf(&sb, "[Source: %s]\n%s\n\n", result.Document.Filename, result.Chunk.Text)
		response.Sources = append(response.Sources, Source{
			DocumentId: result.Document.Id,
			Filename:   result.Document.Filename,
			ChunkId:    result.Chunk.Id,
			Score:      result.Score,
		})
	}

	r.logger.Debug("query context assembled", "chunks", len(results))

	return fmt.Sprintf(groundedPrompt, strings.TrimSpace(sb.String())), response, nil
}
