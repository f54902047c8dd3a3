// Package observability groups the structured logging, Prometheus metrics and
// OpenTelemetry tracing used by the feed and digest endpoints.
//
// Subpackages:
//   - logging: slog construction and request-scoped loggers
//   - metrics: feed fetch and digest business metrics
//   - tracing: tracer provider setup and HTTP server spans
package observability
