package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// IDFromBytes generates a deterministic ID from raw bytes, typically used
// for upload checksums and duplicate detection.
func IDFromBytes(data []byte) ID {
	h, _ := blake2b.New(8, nil)
	h.Write(data)
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DocumentStatus tracks a document through its review lifecycle.
type DocumentStatus int

const (
	// StatusNew marks a freshly ingested document.
	StatusNew DocumentStatus = iota + 1
	// StatusInReview marks a document under compliance review.
	StatusInReview
	// StatusDone marks a reviewed document.
	StatusDone
	// StatusArchived marks a soft-deleted document.
	StatusArchived
)

// String returns the wire representation of the status.
func (s DocumentStatus) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusInReview:
		return "in_review"
	case StatusDone:
		return "done"
	case StatusArchived:
		return "archived"
	}
	return "unknown"
}

// ParseDocumentStatus converts a wire status string back to a DocumentStatus.
// Returns 0 for unrecognized values.
func ParseDocumentStatus(s string) DocumentStatus {
	switch s {
	case "new":
		return StatusNew
	case "in_review":
		return StatusInReview
	case "done":
		return StatusDone
	case "archived":
		return StatusArchived
	}
	return 0
}

// Document represents an ingested document's metadata.
// Chunk text and vectors live in separate Chunk records.
type Document struct {
	Id          string // UUIDv4, assigned at upload
	Filename    string
	FileType    string // lowercased extension including the dot, e.g. ".pdf"
	Status      DocumentStatus
	UploadedAt  time.Time
	UpdatedAt   time.Time
	SizeBytes   int64
	CharCount   int
	ChunkCount  int
	PIIDetected bool
	PIISummary  string
	Checksum    ID // content hash of the raw upload
	Summary     string
	Keywords    []string
	UserId      string // uploader, "system" for watcher uploads
}

// Chunk represents a single masked text fragment of a document,
// enriched with an embedding vector during ingestion.
type Chunk struct {
	Id         ID // content-based: IDFromContent of document ID, sequence and text
	DocumentId string
	Seq        int    // position within the document, 0-based
	Text       string // PII-masked text; raw text is never stored
	Vector     []float32
	PIIMasked  bool
	InsertedAt time.Time
}

// Audit trail action names. Free-form actions are allowed; these cover
// the operations the system itself records.
const (
	ActionDocumentUpload   = "document_upload"
	ActionDocumentDelete   = "document_delete"
	ActionChatQuery        = "chat_query"
	ActionTextAnalysis     = "text_analysis"
	ActionDocumentAnalysis = "document_analysis"
	ActionUserDataErasure  = "user_data_erasure"
	ActionUserDataExport   = "user_data_export"
	ActionAuditAccess      = "audit_access"
)

// SystemUser is the user recorded for actions the system performs on its
// own, such as inbox watcher uploads and erasure meta entries.
const SystemUser = "system"

// AuditEntry is a single append-only audit trail record.
type AuditEntry struct {
	Id        ID // sequence-assigned
	Timestamp time.Time
	UserId    string
	Action    string
	Details   string
	IPAddress string
	Metadata  map[string]string
}

// ChunkMatch represents a chunk returned from vector similarity search.
type ChunkMatch struct {
	Chunk *Chunk
	Score float32
}
