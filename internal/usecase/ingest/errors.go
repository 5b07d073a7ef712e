package ingest

import "errors"

var (
	// ErrCollectFailed wraps any upstream search failure for a category.
	ErrCollectFailed = errors.New("collect failed")

	// ErrWorkerPanic is recorded when a category worker panics.
	ErrWorkerPanic = errors.New("category worker panicked")
)
