package compliance

import "errors"

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrAuditRepositoryRequired is returned when an audit repository is not provided.
	ErrAuditRepositoryRequired = errors.New("audit repository required")

	// ErrEmptyUserId is returned when a user operation is requested without a user.
	ErrEmptyUserId = errors.New("empty user id")

	// ErrProtectedUser is returned when erasure targets the system user.
	ErrProtectedUser = errors.New("system user data cannot be erased")
)
