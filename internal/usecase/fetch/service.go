package fetch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"news-digest/internal/domain/entity"
	"news-digest/internal/observability/logging"
	"news-digest/internal/observability/metrics"
	"news-digest/internal/observability/tracing"
)

// FeedFetcher is an interface for fetching RSS/Atom feeds from a URL.
// Implementations make exactly one attempt per call.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]entity.FeedItem, error)
}

// Service provides the on-demand feed retrieval use case.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	FeedFetcher FeedFetcher
	Resolver    *Resolver
}

// NewService creates a new fetch Service with the provided dependencies.
// A nil resolver gets the default reddit host.
func NewService(feedFetcher FeedFetcher, resolver *Resolver) Service {
	if resolver == nil {
		resolver = NewResolver("")
	}
	return Service{
		FeedFetcher: feedFetcher,
		Resolver:    resolver,
	}
}

// Fetch retrieves the items of the single source named by req.
// It performs the following steps:
// 1. Validates the request (missing identifier → *entity.ValidationError)
// 2. Resolves the source to a feed URL and item cap
// 3. Fetches and parses the feed once
// 4. Stamps each item with the source ID and truncates to the cap
//
// Any retrieval failure is returned as an error matching ErrFeedFetchFailed.
func (s *Service) Fetch(ctx context.Context, req entity.FeedRequest) ([]entity.FeedItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resolved, err := s.Resolver.Resolve(req)
	if err != nil {
		return nil, err
	}

	kind := req.Kind.String()
	ctx, span := tracing.GetTracer().Start(ctx, "feed.fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("feed.kind", kind),
		attribute.String("feed.url", resolved.URL),
	)

	logger := logging.WithRequestID(ctx, slog.Default())
	logger.InfoContext(ctx, "fetching feed",
		slog.String("kind", kind),
		slog.String("feed_url", resolved.URL))

	start := time.Now()
	items, err := s.FeedFetcher.Fetch(ctx, resolved.URL)
	duration := time.Since(start)
	metrics.RecordFeedFetch(kind, err == nil, duration)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "feed fetch failed")
		logger.ErrorContext(ctx, "feed fetch failed",
			slog.String("kind", kind),
			slog.String("feed_url", resolved.URL),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		if !errors.Is(err, ErrFeedFetchFailed) {
			err = NewFetchError(resolved.URL, err)
		}
		return nil, err
	}

	for i := range items {
		items[i].SourceID = resolved.SourceID
	}
	parsed := len(items)
	items = ApplyCap(items, resolved.Cap)

	metrics.RecordFeedItems(kind, len(items))
	span.SetAttributes(
		attribute.Int("feed.items_parsed", parsed),
		attribute.Int("feed.items_returned", len(items)),
	)
	logger.InfoContext(ctx, "feed fetched",
		slog.String("kind", kind),
		slog.String("feed_url", resolved.URL),
		slog.Int("items_parsed", parsed),
		slog.Int("items_returned", len(items)),
		slog.Duration("duration", duration))

	return items, nil
}
