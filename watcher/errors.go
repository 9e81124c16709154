package watcher

import "errors"

var (
	// ErrInboxRequired is returned when the inbox path is empty.
	ErrInboxRequired = errors.New("inbox directory is required")

	// ErrPipelineRequired is returned when the ingestion pipeline is nil.
	ErrPipelineRequired = errors.New("ingestion pipeline is required")
)
