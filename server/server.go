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

package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sentinelai/sentinel"
	"github.com/sentinelai/sentinel/analysis"
	"github.com/sentinelai/sentinel/compliance"
	"github.com/sentinelai/sentinel/extract"
	"github.com/sentinelai/sentinel/ingestion"
	"github.com/sentinelai/sentinel/pii"
	"github.com/sentinelai/sentinel/rag"
	"github.com/sentinelai/sentinel/search"
	"github.com/sentinelai/sentinel/storage"
)

// Server is the HTTP front of the system.
type Server struct {
	config     *Config
	system     *sentinel.System
	pipeline   *ingestion.Pipeline
	searcher   *search.Searcher
	responder  *rag.Responder
	analyzer   *analysis.Analyzer
	compliance *compliance.Service
	detector   *pii.Detector
	engine     *gin.Engine
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New builds all services off the system and wires the routes.
func New(system *sentinel.System, config *Config, opts ...Option) (*Server, error) {
	if system == nil {
		return nil, ErrSystemRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	pipeline, err := system.NewIngestionPipeline()
	if err != nil {
		return nil, err
	}

	searcher, err := system.NewSearcher()
	if err != nil {
		pipeline.Release()
		return nil, err
	}

	responder, err := system.NewResponder()
	if err != nil {
		pipeline.Release()
		return nil, err
	}

	analyzer, err := system.NewAnalyzer()
	if err != nil {
		pipeline.Release()
		return nil, err
	}

	service, err := system.NewComplianceService()
	if err != nil {
		pipeline.Release()
		return nil, err
	}

	s := &Server{
		config:     config,
		system:     system,
		pipeline:   pipeline,
		searcher:   searcher,
		responder:  responder,
		analyzer:   analyzer,
		compliance: service,
		detector:   pii.NewDetector(true),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			pipeline.Release()
			return nil, optErr
		}
	}

	s.logger = s.logger.With("component", "server")
	s.engine = s.buildRouter()

	return s, nil
}

func (s *Server) buildRouter() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.requestLogger())
	engine.Use(corsMiddleware(s.config.AllowedOrigin))

	engine.GET("/health", s.handleHealth)

	engine.POST("/chat", s.handleChat)
	engine.POST("/chat/stream", s.handleChatStream)

	engine.POST("/documents/upload", s.handleUpload)
	engine.GET("/documents", s.handleListDocuments)
	engine.DELETE("/documents/:id", s.handleDeleteDocument)

	engine.GET("/compliance/stats", s.handleStats)
	engine.GET("/compliance/audit", s.handleAuditTrail)
	engine.GET("/compliance/user-data/:id", s.handleExportUserData)
	engine.DELETE("/compliance/user-data/:id", s.handleEraseUserData)

	api := engine.Group("/api")
	{
		api.POST("/analyze/text", s.handleAnalyzeText)
		api.GET("/documents/:id/analysis", s.handleAnalyzeDocument)
		api.GET("/documents/:id/similar", s.handleSimilarDocuments)
		api.GET("/search/quality", s.handleSearchQuality)
	}

	return engine
}

// Handler returns the server's http.Handler for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("http server listening", "addr", s.config.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Close releases resources the server holds on top of the system.
func (s *Server) Close() {
	s.pipeline.Release()
}

// handleHealth reports whether the model service is reachable. The
// system keeps serving stored data either way.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := s.system.Provider().CheckHealth(ctx); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"status":        "degraded",
			"model_service": "unreachable",
			"detail":        err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"model_service": "reachable",
	})
}

// requesterId identifies the caller for audit purposes.
func requesterId(c *gin.Context) string {
	return c.GetHeader("X-User-Id")
}

// replyError maps service errors onto HTTP status codes.
func (s *Server) replyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": err.Error()})
	case errors.Is(err, ingestion.ErrDuplicateDocument):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate_document", "message": err.Error()})
	case errors.Is(err, ingestion.ErrDocumentTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "document_too_large", "message": err.Error()})
	case errors.Is(err, extract.ErrUnsupportedType):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported_type", "message": err.Error()})
	case errors.Is(err, extract.ErrEmptyDocument), errors.Is(err, extract.ErrScannedPDF), errors.Is(err, extract.ErrUnreadable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unreadable_document", "message": err.Error()})
	case errors.Is(err, rag.ErrEmptyQuery), errors.Is(err, search.ErrEmptyQuery),
		errors.Is(err, analysis.ErrEmptyText), errors.Is(err, analysis.ErrNoChunks),
		errors.Is(err, compliance.ErrEmptyUserId):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
	case errors.Is(err, compliance.ErrProtectedUser):
		c.JSON(http.StatusForbidden, gin.H{"error": "protected_user", "message": err.Error()})
	default:
		s.logger.Error("request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": err.Error()})
	}
}
