// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the business metrics of the service:
//   - Feed fetch counts, durations and returned item counts per source kind
//   - Digest request outcomes, durations and input sizes
//
// HTTP request metrics live with the HTTP middleware. All metrics are registered
// with the Prometheus default registry and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "news-digest/internal/observability/metrics"
//
//	start := time.Now()
//	items, err := fetcher.Fetch(ctx, url)
//	metrics.RecordFeedFetch("rss", err == nil, time.Since(start))
package metrics
