package metrics

import (
	"time"
)

// RecordFeedFetch records the outcome and duration of one feed fetch.
// Kind is the source kind label ("rss" or "reddit").
func RecordFeedFetch(kind string, success bool, duration time.Duration) {
	FeedFetchTotal.WithLabelValues(kind, statusLabel(success)).Inc()
	FeedFetchDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordFeedItems records the number of items returned to the caller.
func RecordFeedItems(kind string, count int) {
	FeedItemsReturned.WithLabelValues(kind).Observe(float64(count))
}

// RecordDigest records the outcome of a digest request.
func RecordDigest(success bool, duration time.Duration) {
	DigestRequestsTotal.WithLabelValues(statusLabel(success)).Inc()
	DigestDuration.Observe(duration.Seconds())
}

// RecordDigestInput records the byte size of submitted HTML content.
func RecordDigestInput(size int) {
	DigestInputSize.Observe(float64(size))
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
