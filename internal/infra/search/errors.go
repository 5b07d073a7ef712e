package search

import "errors"

var (
	ErrEmptyQuery = errors.New("search: empty query")

	// ErrTokenNotFound means DuckDuckGo did not hand out a vqd token, which
	// usually indicates rate limiting on its side.
	ErrTokenNotFound = errors.New("search: vqd token not found")

	ErrUnexpectedStatus = errors.New("search: unexpected HTTP status")

	ErrUnknownProvider = errors.New("search: unknown provider")
)
