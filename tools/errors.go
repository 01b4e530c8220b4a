package tools

import "errors"

// Sentinel errors for registry operations. Callers match with errors.Is;
// wrapped forms carry the tool name.
var (
	ErrNotFound      = errors.New("tool not found")
	ErrAlreadyExists = errors.New("tool already registered")
	ErrEmptyName     = errors.New("tool name is empty")
	ErrNilHandler    = errors.New("tool handler is nil")
)
