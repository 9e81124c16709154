package storage

import (
	"context"
	"time"

	"github.com/sentinelai/sentinel/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// VectorSearcher provides vector similarity search over stored chunks.
type VectorSearcher interface {
	// FindSimilar finds chunks similar to the given vector.
	// Returns chunks with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ChunkMatch, error)
}

// DocumentRepository provides operations for managing document metadata.
type DocumentRepository interface {
	Repository
	// AddDocuments adds one or more documents to storage.
	// Sets UploadedAt and UpdatedAt timestamps if not already set.
	// Returns ErrDuplicateKey if a document with the same ID exists.
	AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// UpdateDocuments updates existing documents.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any document doesn't exist.
	UpdateDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// DeleteDocuments removes documents by their IDs.
	// Chunks are managed separately; callers delete them via ChunkRepository.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...string) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id string) (*core.Document, error)

	// ListDocuments retrieves all documents, ordered by upload time descending.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// GetDocumentsByUser retrieves all documents uploaded by a user.
	GetDocumentsByUser(ctx context.Context, userId string) ([]*core.Document, error)

	// FindDocumentByChecksum finds a document by its content checksum.
	// Returns ErrNotFound if no document matches. Used for duplicate detection.
	FindDocumentByChecksum(ctx context.Context, checksum core.ID) (*core.Document, error)
}

// ChunkRepository provides operations for managing document chunks and
// their embedding vectors.
type ChunkRepository interface {
	Repository
	VectorSearcher
	// AddChunks adds one or more chunks to storage.
	// Uses content-based IDs (IDFromContent over document ID, sequence, text).
	// Vectors are L2-normalized before writing so that cosine similarity
	// reduces to a dot product at query time.
	// Sets InsertedAt timestamp if not already set.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunksByDocument retrieves all chunks of a document, ordered by sequence.
	GetChunksByDocument(ctx context.Context, documentId string) ([]*core.Chunk, error)

	// DeleteChunksByDocument removes every chunk of a document.
	// Returns the number of chunks removed. Missing documents are not an error.
	DeleteChunksByDocument(ctx context.Context, documentId string) (int, error)

	// CountChunks returns the total number of stored chunks.
	CountChunks(ctx context.Context) (int, error)

	// DocumentCentroid computes the mean vector of a document's chunks.
	// Returns ErrNotFound if the document has no embedded chunks.
	DocumentCentroid(ctx context.Context, documentId string) ([]float32, error)
}

// AuditFilter narrows audit trail queries. Zero values mean "no constraint".
type AuditFilter struct {
	UserId string
	Action string
	Since  time.Time
	Until  time.Time
	// Offset skips that many matching entries before collecting,
	// for paging through the trail together with Limit.
	Offset int
	Limit  int
}

// AuditRepository provides operations for the append-only audit trail.
// Entries are never updated; the only permitted removal is per-user
// erasure, which callers must precede with a retained meta entry.
type AuditRepository interface {
	Repository
	// AppendEntries appends one or more audit entries.
	// For entries with ID=0, generates new IDs from sequence.
	// Sets Timestamp if not already set.
	AppendEntries(ctx context.Context, entries ...*core.AuditEntry) ([]*core.AuditEntry, error)

	// GetEntries retrieves audit entries matching the filter,
	// ordered by timestamp descending.
	GetEntries(ctx context.Context, filter AuditFilter) ([]*core.AuditEntry, error)

	// CountEntries returns the total number of audit entries.
	CountEntries(ctx context.Context) (int, error)

	// ActionCounts returns the number of entries per action.
	ActionCounts(ctx context.Context) (map[string]int, error)

	// DeleteEntriesByUser removes all entries recorded for a user.
	// Returns the number of entries removed.
	DeleteEntriesByUser(ctx context.Context, userId string) (int, error)
}
