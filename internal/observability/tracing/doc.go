// Package tracing provides OpenTelemetry tracing integration.
//
// Init installs an SDK tracer provider and the W3C trace-context propagator.
// Middleware opens one server span per HTTP request; use cases open child spans
// around outbound calls (feed fetch, model call) through GetTracer.
//
// Example usage:
//
//	import "news-digest/internal/observability/tracing"
//
//	func main() {
//	    shutdown := tracing.Init("news-digest")
//	    defer shutdown(context.Background())
//	}
//
//	func fetchFeed(ctx context.Context) {
//	    ctx, span := tracing.GetTracer().Start(ctx, "feed.fetch")
//	    defer span.End()
//	    // ... fetch feed ...
//	}
package tracing
