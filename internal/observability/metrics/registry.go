// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Feed metrics track on-demand feed retrieval
var (
	// FeedFetchTotal counts feed fetches by source kind and outcome
	FeedFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetch_total",
			Help: "Total number of feed fetches by source kind and status",
		},
		[]string{"kind", "status"},
	)

	// FeedFetchDuration measures the time spent fetching and parsing one feed
	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_fetch_duration_seconds",
			Help:    "Time taken to fetch and parse a feed",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	// FeedItemsReturned records how many items a feed request returned after capping
	FeedItemsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_items_returned",
			Help:    "Number of items returned per feed request",
			Buckets: []float64{0, 1, 5, 10, 15, 25, 50, 100, 250},
		},
		[]string{"kind"},
	)
)

// Digest metrics track AI digest generation
var (
	// DigestRequestsTotal counts digest requests by outcome
	DigestRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_requests_total",
			Help: "Total number of digest requests by status",
		},
		[]string{"status"},
	)

	// DigestInputSize records the size of the HTML handed to the model
	DigestInputSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_input_size_bytes",
			Help:    "Size of the HTML content submitted for summarization",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 9),
		},
	)

	// DigestDuration measures end-to-end digest generation time
	DigestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_duration_seconds",
			Help:    "Time taken to generate a digest",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)
)
