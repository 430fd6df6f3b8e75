package kb

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrSearchFailed is returned when both retrieval legs fail.
	ErrSearchFailed = errors.New("knowledge base search failed")
)
