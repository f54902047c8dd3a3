// Package fetch provides the use case for retrieving a single feed source on demand.
// It resolves a feed request to a concrete URL, fetches and parses the feed once,
// and shapes the result for the caller.
package fetch

import "errors"

// Sentinel errors for fetch use case operations.
var (
	// ErrFeedFetchFailed indicates that fetching a feed from the source URL failed.
	// This can occur due to network issues, invalid URLs, or server errors.
	ErrFeedFetchFailed = errors.New("failed to fetch feed from source")

	// ErrInvalidFeedFormat indicates that the feed content could not be parsed.
	// This typically happens when the feed is not valid RSS or Atom format.
	ErrInvalidFeedFormat = errors.New("invalid feed format")

	// ErrInvalidURL indicates that the feed URL is malformed or uses an unsupported scheme.
	ErrInvalidURL = errors.New("invalid feed URL")

	// ErrUnexpectedStatus indicates that the feed server answered with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
)

// FetchError carries the upstream failure for a single feed fetch.
// Network, status, URL and parse failures all surface as FetchError so callers
// can treat them uniformly while still inspecting the cause with errors.Is.
type FetchError struct {
	URL string
	Err error
}

// NewFetchError wraps err as a FetchError for url.
func NewFetchError(url string, err error) *FetchError {
	return &FetchError{URL: url, Err: err}
}

// Error returns the upstream message.
func (e *FetchError) Error() string {
	if e.Err == nil {
		return ErrFeedFetchFailed.Error()
	}
	return e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches ErrFeedFetchFailed in addition to the wrapped chain.
func (e *FetchError) Is(target error) bool {
	return target == ErrFeedFetchFailed
}
