package domain

import "errors"

var (
	// ErrStoreUnavailable signals a record store read failure.
	// Any resolver hitting it aborts the whole request; no partial results.
	ErrStoreUnavailable = errors.New("record store unavailable")
	// ErrIndexUnavailable signals a text index build failure.
	ErrIndexUnavailable = errors.New("text index unavailable")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrParserUnavailable signals that the query parser is not configured.
	ErrParserUnavailable = errors.New("query parser unavailable")
	// ErrHistoryUnavailable signals that the search history store is not configured.
	ErrHistoryUnavailable = errors.New("search history unavailable")
)
