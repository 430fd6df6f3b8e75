package jobs

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoCV means the user has no CV to match against.
	ErrNoCV = errors.New("cv not found")
	// ErrEmptyCV means the CV yielded no usable keywords.
	ErrEmptyCV = errors.New("cv has no keywords")
	// ErrSourceUnavailable means no listing page could be fetched.
	ErrSourceUnavailable = errors.New("job source unavailable")
)
