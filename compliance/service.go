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

package compliance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sentinelai/sentinel/core"
	"github.com/sentinelai/sentinel/storage"
)

// Stats is a snapshot of what the system stores.
type Stats struct {
	DocumentCount    int            `json:"document_count"`
	ChunkCount       int            `json:"chunk_count"`
	AuditEntryCount  int            `json:"audit_entry_count"`
	DocumentsWithPII int            `json:"documents_with_pii"`
	ActionCounts     map[string]int `json:"action_counts"`
}

// UserData is everything stored about one user, for GDPR data access requests.
type UserData struct {
	UserId       string             `json:"user_id"`
	Documents    []*core.Document   `json:"documents"`
	AuditEntries []*core.AuditEntry `json:"audit_entries"`
}

// ErasureReport summarizes what a user erasure removed.
type ErasureReport struct {
	UserId              string `json:"user_id"`
	DocumentsRemoved    int    `json:"documents_removed"`
	ChunksRemoved       int    `json:"chunks_removed"`
	AuditEntriesRemoved int    `json:"audit_entries_removed"`
}

// Service implements the compliance operations over the storage layer.
type Service struct {
	documents storage.DocumentRepository
	chunks    storage.ChunkRepository
	audit     storage.AuditRepository
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewService creates a new compliance service.
func NewService(
	documents storage.DocumentRepository,
	chunks storage.ChunkRepository,
	audit storage.AuditRepository,
	opts ...Option,
) (*Service, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if audit == nil {
		return nil, ErrAuditRepositoryRequired
	}

	s := &Service{
		documents: documents,
		chunks:    chunks,
		audit:     audit,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.logger = s.logger.With("component", "compliance")

	return s, nil
}

// CollectStats gathers corpus and audit trail statistics.
func (s *Service) CollectStats(ctx context.Context) (*Stats, error) {
	docs, err := s.documents.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	chunkCount, err := s.chunks.CountChunks(ctx)
	if err != nil {
		return nil, err
	}

	auditCount, err := s.audit.CountEntries(ctx)
	if err != nil {
		return nil, err
	}

	actions, err := s.audit.ActionCounts(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		DocumentCount:   len(docs),
		ChunkCount:      chunkCount,
		AuditEntryCount: auditCount,
		ActionCounts:    actions,
	}
	for _, doc := range docs {
		if doc.PIIDetected {
			stats.DocumentsWithPII++
		}
	}

	return stats, nil
}

// AuditTrail returns audit entries matching the filter, newest first, and
// records the access itself in the trail.
func (s *Service) AuditTrail(ctx context.Context, filter storage.AuditFilter, accessor string) ([]*core.AuditEntry, error) {
	entries, err := s.audit.GetEntries(ctx, filter)
	if err != nil {
		return nil, err
	}

	if accessor == "" {
		accessor = core.SystemUser
	}
	if _, err := s.audit.AppendEntries(ctx, &core.AuditEntry{
		UserId:  accessor,
		Action:  core.ActionAuditAccess,
		Details: fmt.Sprintf("%d entries returned", len(entries)),
	}); err != nil {
		return nil, err
	}

	return entries, nil
}

// ExportUserData collects everything stored about a user.
func (s *Service) ExportUserData(ctx context.Context, userId string) (*UserData, error) {
	if userId == "" {
		return nil, ErrEmptyUserId
	}

	docs, err := s.documents.GetDocumentsByUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	entries, err := s.audit.GetEntries(ctx, storage.AuditFilter{UserId: userId})
	if err != nil {
		return nil, err
	}

	// Data access requests are themselves subject to the trail
	if _, err := s.audit.AppendEntries(ctx, &core.AuditEntry{
		UserId:  core.SystemUser,
		Action:  core.ActionUserDataExport,
		Details: fmt.Sprintf("exported %d documents and %d audit entries", len(docs), len(entries)),
		Metadata: map[string]string{
			"target_user": userId,
		},
	}); err != nil {
		return nil, err
	}

	return &UserData{
		UserId:       userId,
		Documents:    docs,
		AuditEntries: entries,
	}, nil
}

// EraseUserData removes a user's documents, chunks and audit entries.
// The retained meta entry is written BEFORE anything is deleted: if the
// erasure fails halfway, the trail shows the attempt rather than nothing.
func (s *Service) EraseUserData(ctx context.Context, userId string) (*ErasureReport, error) {
	if userId == "" {
		return nil, ErrEmptyUserId
	}
	if userId == core.SystemUser {
		return nil, ErrProtectedUser
	}

	docs, err := s.documents.GetDocumentsByUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	if _, err := s.audit.AppendEntries(ctx, &core.AuditEntry{
		UserId:  core.SystemUser,
		Action:  core.ActionUserDataErasure,
		Details: fmt.Sprintf("erasing all data of user %q", userId),
		Metadata: map[string]string{
			"target_user": userId,
			"documents":   fmt.Sprintf("%d", len(docs)),
		},
	}); err != nil {
		return nil, err
	}

	report := &ErasureReport{UserId: userId}

	for _, doc := range docs {
		removed, err := s.chunks.DeleteChunksByDocument(ctx, doc.Id)
		if err != nil {
			return nil, err
		}
		report.ChunksRemoved += removed

		if err := s.documents.DeleteDocuments(ctx, doc.Id); err != nil {
			return nil, err
		}
		report.DocumentsRemoved++
	}

	removed, err := s.audit.DeleteEntriesByUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	report.AuditEntriesRemoved = removed

	s.logger.Info("user data erased",
		"user", userId,
		"documents", report.DocumentsRemoved,
		"chunks", report.ChunksRemoved,
		"audit_entries", report.AuditEntriesRemoved)

	return report, nil
}
