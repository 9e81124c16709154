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


package core

import (
	"fmt"
	"time"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//   - Filename must not be empty
//   - Status must be a known value
//   - UploadedAt must not be in the future
//
// NOT validated (populated during and after ingestion):
//   - ChunkCount, CharCount (set once the pipeline finishes)
//   - Summary, Keywords (set by analysis, possibly never)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocumentId)
	}

	if doc.Filename == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyFilename)
	}

	if err := ValidateStatus(doc.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if !IsValidTimestamp(doc.UploadedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - DocumentId must not be empty
//   - Text must not be empty
//
// NOT validated (populated by the pipeline):
//   - Vector (can be empty until the chunk is embedded)
//   - Id (derived from content before storage)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.DocumentId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyDocumentId)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkText)
	}

	return nil
}

// ValidateAuditEntry validates an AuditEntry according to domain rules.
//
// Validation rules:
//   - Action must not be empty
//   - Timestamp must not be in the future
//
// NOT validated:
//   - Id (0 is valid from database sequences)
//   - UserId (anonymous actions are recorded as "system")
func ValidateAuditEntry(entry *AuditEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidAuditEntry)
	}

	if entry.Action == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAuditEntry, ErrEmptyAction)
	}

	if !IsValidTimestamp(entry.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidAuditEntry, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateStatus validates that a DocumentStatus has a valid value.
func ValidateStatus(status DocumentStatus) error {
	switch status {
	case StatusNew, StatusInReview, StatusDone, StatusArchived:
		return nil
	}
	return fmt.Errorf("%w: value %d", ErrInvalidStatus, status)
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
