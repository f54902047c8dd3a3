// Package digest provides the use case for turning aggregated news HTML into a
// structured Markdown briefing through a generative language model.
package digest

import "errors"

// Sentinel errors for digest use case operations.
var (
	// ErrSummarizationFailed indicates that the model call failed.
	// The cause is kept for logging and must not be shown to clients.
	ErrSummarizationFailed = errors.New("failed to generate AI summary")

	// ErrEmptyContent indicates that no HTML content was submitted.
	ErrEmptyContent = errors.New("html content is required")
)
