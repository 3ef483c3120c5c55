package common

import "errors"

var (
	// ErrMalformedInput marks a feed entry that could not be parsed, such
	// as a publication timestamp in an unexpected format. The entry is
	// skipped; ingestion of the rest of the stock continues.
	ErrMalformedInput = errors.New("malformed input")

	// ErrUpstreamUnavailable marks an unreachable or non-2xx upstream
	// source (feed, sentiment, market or macro data).
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrStorage marks a transactional storage failure. The enclosing
	// operation has been rolled back.
	ErrStorage = errors.New("storage failure")
)
