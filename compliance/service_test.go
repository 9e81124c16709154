package compliance

import (
	"context"
	"testing"

	"github.com/sentinelai/sentinel/core"
	"github.com/sentinelai/sentinel/storage"
	"github.com/sentinelai/sentinel/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) (*Service, storage.DocumentRepository, storage.ChunkRepository, storage.AuditRepository) {
	t.Helper()

	docRepo, chunkRepo, auditRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		auditRepo.Close()
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
	})

	s, err := NewService(docRepo, chunkRepo, auditRepo)
	require.NoError(t, err)

	return s, docRepo, chunkRepo, auditRepo
}

// seedUser stores one document with two chunks and one audit entry for the user.
func seedUser(t *testing.T, docRepo storage.DocumentRepository, chunkRepo storage.ChunkRepository, auditRepo storage.AuditRepository, userId, docId string, withPII bool) {
	t.Helper()
	ctx := context.Background()

	_, err := docRepo.AddDocuments(ctx, &core.Document{
		Id:          docId,
		Filename:    docId + ".txt",
		FileType:    ".txt",
		Status:      core.StatusNew,
		PIIDetected: withPII,
		Checksum:    core.IDFromContent(docId),
		UserId:      userId,
	})
	require.NoError(t, err)

	_, err = chunkRepo.AddChunks(ctx,
		&core.Chunk{DocumentId: docId, Seq: 0, Text: "first"},
		&core.Chunk{DocumentId: docId, Seq: 1, Text: "second"},
	)
	require.NoError(t, err)

	_, err = auditRepo.AppendEntries(ctx, &core.AuditEntry{
		UserId:  userId,
		Action:  core.ActionDocumentUpload,
		Details: docId + ".txt",
	})
	require.NoError(t, err)
}

func TestNewService(t *testing.T) {
	_, docRepo, chunkRepo, auditRepo := setupService(t)

	t.Run("nil document repository", func(t *testing.T) {
		_, err := NewService(nil, chunkRepo, auditRepo)
		assert.Equal(t, ErrDocumentRepositoryRequired, err)
	})

	t.Run("nil chunk repository", func(t *testing.T) {
		_, err := NewService(docRepo, nil, auditRepo)
		assert.Equal(t, ErrChunkRepositoryRequired, err)
	})

	t.Run("nil audit repository", func(t *testing.T) {
		_, err := NewService(docRepo, chunkRepo, nil)
		assert.Equal(t, ErrAuditRepositoryRequired, err)
	})
}

func TestCollectStats(t *testing.T) {
	s, docRepo, chunkRepo, auditRepo := setupService(t)

	seedUser(t, docRepo, chunkRepo, auditRepo, "alice", "doc-1", true)
	seedUser(t, docRepo, chunkRepo, auditRepo, "bob", "doc-2", false)

	stats, err := s.CollectStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.DocumentCount)
	assert.Equal(t, 4, stats.ChunkCount)
	assert.Equal(t, 2, stats.AuditEntryCount)
	assert.Equal(t, 1, stats.DocumentsWithPII)
	assert.Equal(t, 2, stats.ActionCounts[core.ActionDocumentUpload])
}

func TestAuditTrail(t *testing.T) {
	s, docRepo, chunkRepo, auditRepo := setupService(t)
	ctx := context.Background()

	seedUser(t, docRepo, chunkRepo, auditRepo, "alice", "doc-1", false)

	entries, err := s.AuditTrail(ctx, storage.AuditFilter{UserId: "alice"}, "auditor")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, core.ActionDocumentUpload, entries[0].Action)

	// The access itself landed in the trail
	access, err := auditRepo.GetEntries(ctx, storage.AuditFilter{Action: core.ActionAuditAccess})
	require.NoError(t, err)
	require.Len(t, access, 1)
	assert.Equal(t, "auditor", access[0].UserId)
}

func TestExportUserData(t *testing.T) {
	s, docRepo, chunkRepo, auditRepo := setupService(t)

	seedUser(t, docRepo, chunkRepo, auditRepo, "alice", "doc-1", false)
	seedUser(t, docRepo, chunkRepo, auditRepo, "bob", "doc-2", false)

	data, err := s.ExportUserData(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "alice", data.UserId)
	require.Len(t, data.Documents, 1)
	assert.Equal(t, "doc-1", data.Documents[0].Id)
	require.Len(t, data.AuditEntries, 1)
	assert.Equal(t, "alice", data.AuditEntries[0].UserId)

	// The export itself landed in the trail, owned by the system user
	meta, err := auditRepo.GetEntries(context.Background(), storage.AuditFilter{Action: core.ActionUserDataExport})
	require.NoError(t, err)
	require.Len(t, meta, 1)
	assert.Equal(t, "alice", meta[0].Metadata["target_user"])
}

func TestExportUserDataEmptyId(t *testing.T) {
	s, _, _, _ := setupService(t)

	_, err := s.ExportUserData(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyUserId)
}

func TestEraseUserData(t *testing.T) {
	s, docRepo, chunkRepo, auditRepo := setupService(t)
	ctx := context.Background()

	seedUser(t, docRepo, chunkRepo, auditRepo, "alice", "doc-1", false)
	seedUser(t, docRepo, chunkRepo, auditRepo, "bob", "doc-2", false)

	report, err := s.EraseUserData(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, 1, report.DocumentsRemoved)
	assert.Equal(t, 2, report.ChunksRemoved)
	assert.Equal(t, 1, report.AuditEntriesRemoved)

	// Alice's data is gone
	_, err = docRepo.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	aliceEntries, err := auditRepo.GetEntries(ctx, storage.AuditFilter{UserId: "alice"})
	require.NoError(t, err)
	assert.Empty(t, aliceEntries)

	// Bob's data is untouched
	_, err = docRepo.GetDocument(ctx, "doc-2")
	require.NoError(t, err)

	// The erasure meta entry survives, owned by the system user
	meta, err := auditRepo.GetEntries(ctx, storage.AuditFilter{Action: core.ActionUserDataErasure})
	require.NoError(t, err)
	require.Len(t, meta, 1)
	assert.Equal(t, core.SystemUser, meta[0].UserId)
	assert.Equal(t, "alice", meta[0].Metadata["target_user"])
}

func TestEraseUserDataProtectedUser(t *testing.T) {
	s, _, _, _ := setupService(t)

	_, err := s.EraseUserData(context.Background(), core.SystemUser)
	assert.ErrorIs(t, err, ErrProtectedUser)
}

func TestEraseUserDataUnknownUser(t *testing.T) {
	s, _, _, auditRepo := setupService(t)
	ctx := context.Background()

	report, err := s.EraseUserData(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, report.DocumentsRemoved)
	assert.Zero(t, report.ChunksRemoved)

	// Even a no-op erasure is recorded
	meta, err := auditRepo.GetEntries(ctx, storage.AuditFilter{Action: core.ActionUserDataErasure})
	require.NoError(t, err)
	assert.Len(t, meta, 1)
}
