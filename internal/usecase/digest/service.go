package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"news-digest/internal/domain/entity"
	"news-digest/internal/observability/logging"
	"news-digest/internal/observability/metrics"
	"news-digest/internal/observability/tracing"
)

// Summarizer is an interface for AI-powered text generation.
// It receives a fully built prompt and returns the model's text unmodified.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Service provides the digest generation use case.
type Service struct {
	Summarizer Summarizer
}

// NewService creates a new digest Service.
func NewService(summarizer Summarizer) Service {
	return Service{Summarizer: summarizer}
}

// Summarize builds the analyst prompt around htmlContent and asks the model for a briefing.
// Empty content is a *entity.ValidationError. Any model failure is returned wrapped
// in ErrSummarizationFailed; the cause is kept for server-side logging only.
func (s *Service) Summarize(ctx context.Context, htmlContent string) (string, error) {
	if htmlContent == "" {
		return "", &entity.ValidationError{Field: "htmlContent", Message: ErrEmptyContent.Error()}
	}

	ctx, span := tracing.GetTracer().Start(ctx, "digest.summarize")
	defer span.End()
	span.SetAttributes(attribute.Int("digest.input_bytes", len(htmlContent)))

	metrics.RecordDigestInput(len(htmlContent))
	prompt := BuildPrompt(htmlContent)

	start := time.Now()
	summary, err := s.Summarizer.Summarize(ctx, prompt)
	duration := time.Since(start)
	metrics.RecordDigest(err == nil, duration)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "summarization failed")
		return "", fmt.Errorf("%w: %w", ErrSummarizationFailed, err)
	}

	span.SetAttributes(attribute.Int("digest.summary_bytes", len(summary)))
	logging.WithRequestID(ctx, slog.Default()).InfoContext(ctx, "digest generated",
		slog.Int("input_bytes", len(htmlContent)),
		slog.Int("prompt_bytes", len(prompt)),
		slog.Int("summary_bytes", len(summary)),
		slog.Duration("duration", duration))

	return summary, nil
}
