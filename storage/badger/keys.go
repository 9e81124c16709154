package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/sentinelai/sentinel/core"
)

// Key prefixes for different data types
const (
	documentPrefix         = "docrec"
	documentChecksumPrefix = "docsum"
	chunkPrefix            = "chkrec"
	chunkDocumentPrefix    = "chkdoc"
	auditPrefix            = "audrec"
	auditDatePrefix        = "audrecd"
	auditUserPrefix        = "auduser"
	auditIDSeq             = "audrecseq"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", documentPrefix, id))
}

// makeChecksumKey generates a key for the checksum index.
// Format: prefix:checksum
func makeChecksumKey(checksum core.ID) []byte {
	prefix := documentChecksumPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(checksum))
	return buf
}

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkPrefix, id))
}

// makeChunkDocumentKey generates a composite key for the per-document chunk index.
// Format: prefix:documentId:seq
func makeChunkDocumentKey(documentId string, seq int) []byte {
	prefix := fmt.Sprintf("%s:%s:", chunkDocumentPrefix, documentId)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort follows sequence order
	binary.BigEndian.PutUint64(buf[offset:], uint64(seq))
	return buf
}

// makePartialChunkDocumentKey generates the index prefix for one document's chunks.
func makePartialChunkDocumentKey(documentId string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", chunkDocumentPrefix, documentId))
}

// makeAuditKey generates a key for an audit entry by ID.
func makeAuditKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", auditPrefix, id))
}

// makeAuditDateKey generates a composite key for the audit time index.
// Format: prefix:timestamp:id
func makeAuditDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := auditDatePrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialAuditDateKey generates a partial key for time range queries.
func makePartialAuditDateKey(timestamp time.Time) []byte {
	prefix := auditDatePrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeAuditUserKey generates a composite key for the audit user index.
// Format: prefix:userId:id
func makeAuditUserKey(userId string, id core.ID) []byte {
	prefix := fmt.Sprintf("%s:%s:", auditUserPrefix, userId)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialAuditUserKey generates the index prefix for one user's audit entries.
func makePartialAuditUserKey(userId string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", auditUserPrefix, userId))
}
