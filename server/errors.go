package server

import "errors"

var (
	// ErrSystemRequired is returned when the system handle is nil.
	ErrSystemRequired = errors.New("system is required")
)
