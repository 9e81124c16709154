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

// Package sentinel wires storage, AI provider and the processing
// services into one locally running document compliance system.
package sentinel

import (
	"io"
	"log/slog"

	"github.com/sentinelai/sentinel/ai"
	"github.com/sentinelai/sentinel/ai/ollama"
	"github.com/sentinelai/sentinel/analysis"
	"github.com/sentinelai/sentinel/compliance"
	"github.com/sentinelai/sentinel/ingestion"
	"github.com/sentinelai/sentinel/rag"
	"github.com/sentinelai/sentinel/reindex"
	"github.com/sentinelai/sentinel/search"
	"github.com/sentinelai/sentinel/storage"
	"github.com/sentinelai/sentinel/storage/badger"
)

// System bundles the storage backend, repositories and the AI provider.
// It is the composition root: commands and the HTTP server construct
// their services through it.
type System struct {
	backend   *badger.Backend
	docRepo   storage.DocumentRepository
	chunkRepo storage.ChunkRepository
	auditRepo storage.AuditRepository
	provider  ai.Provider
	aiConfig  *ai.Config
	logger    *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	inMemory bool
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) SystemOption {
	return func(o *systemOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider injects a pre-built AI provider, bypassing the Ollama
// default. Used by tests with mock providers.
func WithProvider(provider ai.Provider) SystemOption {
	return func(o *systemOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps all data in memory instead of on disk.
func WithInMemoryStorage() SystemOption {
	return func(o *systemOptions) {
		o.inMemory = true
	}
}

// NewSystem opens the storage backend at filePath and connects the AI
// provider.
func NewSystem(filePath string, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	docRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	auditRepo, err := badger.NewAuditRepository(backend)
	if err != nil {
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = ollama.NewProvider(options.aiConfig)
		if err != nil {
			auditRepo.Close()
			chunkRepo.Close()
			docRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &System{
		backend:   backend,
		docRepo:   docRepo,
		chunkRepo: chunkRepo,
		auditRepo: auditRepo,
		provider:  provider,
		aiConfig:  options.aiConfig,
		logger:    slog.Default(),
	}, nil
}

// Close releases the AI provider, repositories and storage backend.
func (s *System) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if err := s.auditRepo.Close(); err != nil {
		s.logger.Error("error closing audit repository", "err", err)
		return err
	}
	if err := s.chunkRepo.Close(); err != nil {
		s.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := s.docRepo.Close(); err != nil {
		s.logger.Error("error closing document repository", "err", err)
		return err
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// DocumentRepository returns the document metadata store.
func (s *System) DocumentRepository() storage.DocumentRepository {
	return s.docRepo
}

// ChunkRepository returns the chunk and vector store.
func (s *System) ChunkRepository() storage.ChunkRepository {
	return s.chunkRepo
}

// AuditRepository returns the audit trail store.
func (s *System) AuditRepository() storage.AuditRepository {
	return s.auditRepo
}

// Provider returns the AI provider.
func (s *System) Provider() ai.Provider {
	return s.provider
}

// NewIngestionPipeline constructs the document ingestion pipeline.
func (s *System) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(s.docRepo, s.chunkRepo, s.auditRepo, s.provider, opts...)
}

// NewSearcher constructs the semantic searcher.
func (s *System) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(s.docRepo, s.chunkRepo, s.provider, opts...)
}

// NewAnalyzer constructs the LLM text analyzer.
func (s *System) NewAnalyzer(opts ...analysis.Option) (*analysis.Analyzer, error) {
	return analysis.NewAnalyzer(s.docRepo, s.chunkRepo, s.provider, opts...)
}

// NewResponder constructs the RAG chat responder.
func (s *System) NewResponder(opts ...rag.Option) (*rag.Responder, error) {
	searcher, err := s.NewSearcher()
	if err != nil {
		return nil, err
	}
	opts = append([]rag.Option{rag.WithModelName(s.aiConfig.ChatModel)}, opts...)
	return rag.NewResponder(searcher, s.provider, opts...)
}

// NewComplianceService constructs the compliance service.
func (s *System) NewComplianceService(opts ...compliance.Option) (*compliance.Service, error) {
	return compliance.NewService(s.docRepo, s.chunkRepo, s.auditRepo, opts...)
}

// NewReindexer constructs a reindexer writing progress to the given writer.
func (s *System) NewReindexer(config *reindex.Config, progress io.Writer) (*reindex.Reindexer, error) {
	return reindex.NewReindexer(s.docRepo, s.chunkRepo, s.provider.Embedder(), config, progress)
}
