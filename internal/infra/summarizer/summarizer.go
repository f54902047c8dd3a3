// Package summarizer provides the generative model clients behind the digest.
//
// Gemini is the default provider; Claude and OpenAI are drop-in alternatives
// and NoOp serves local development without credentials. Every client sends the
// prompt in a single round trip through a per-provider circuit breaker and
// returns the model text unmodified.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"news-digest/internal/resilience/circuitbreaker"
	"news-digest/internal/utils/text"
)

var (
	// ErrEmptyResponse is returned when the provider answers without any text content.
	ErrEmptyResponse = errors.New("model returned no text content")

	// ErrTruncated is returned when the provider stopped at its output token limit.
	ErrTruncated = errors.New("model output truncated at the token limit")
)

// Client is a summarization provider. It satisfies digest.Summarizer.
type Client interface {
	Summarize(ctx context.Context, prompt string) (string, error)
	Provider() string
	Close() error
}

// New builds the client selected by cfg.Provider.
func New(ctx context.Context, cfg Config) (Client, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ProviderGemini:
		return NewGemini(ctx, cfg)
	case ProviderClaude:
		return NewClaude(cfg), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg), nil
	default:
		return NewNoOp(), nil
	}
}

// caller runs one guarded model call and records its observability.
type caller struct {
	provider        string
	model           string
	timeout         time.Duration
	circuitBreaker  *circuitbreaker.CircuitBreaker
	metricsRecorder SummaryMetricsRecorder
}

func newCaller(provider string, cfg Config) caller {
	return caller{
		provider:        provider,
		model:           cfg.Model,
		timeout:         cfg.Timeout,
		circuitBreaker:  circuitbreaker.New(circuitbreaker.ForProvider(provider)),
		metricsRecorder: NewPrometheusSummaryMetrics(),
	}
}

type generateFunc func(ctx context.Context, prompt string) (string, error)

func (c *caller) run(ctx context.Context, prompt string, generate generateFunc) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	requestID := uuid.New().String()
	slog.InfoContext(ctx, "Starting summarization",
		slog.String("request_id", requestID),
		slog.String("provider", c.provider),
		slog.String("model", c.model),
		slog.Int("prompt_length", text.CountRunes(prompt)))

	start := time.Now()
	summary, err := c.circuitBreaker.ExecuteString(func() (string, error) {
		return generate(ctx, prompt)
	})
	duration := time.Since(start)
	c.metricsRecorder.RecordDuration(c.provider, duration)

	if err != nil {
		c.metricsRecorder.RecordOutcome(c.provider, false)
		if errors.Is(err, circuitbreaker.ErrOpen) {
			slog.WarnContext(ctx, "summarizer circuit breaker open, request rejected",
				slog.String("request_id", requestID),
				slog.String("provider", c.provider),
				slog.String("state", c.circuitBreaker.State().String()))
		} else {
			slog.ErrorContext(ctx, "Summarization failed",
				slog.String("request_id", requestID),
				slog.String("provider", c.provider),
				slog.Duration("duration", duration),
				slog.String("error", err.Error()))
		}
		return "", fmt.Errorf("%s api: %w", c.provider, err)
	}

	summaryLength := text.CountRunes(summary)
	c.metricsRecorder.RecordLength(c.provider, summaryLength)
	c.metricsRecorder.RecordOutcome(c.provider, true)

	slog.InfoContext(ctx, "Summarization completed",
		slog.String("request_id", requestID),
		slog.String("provider", c.provider),
		slog.Int("summary_length", summaryLength),
		slog.Duration("duration", duration))

	return summary, nil
}

// BreakerState reports the provider circuit breaker state (closed, half-open, open).
func (c *caller) BreakerState() string {
	return c.circuitBreaker.State().String()
}

// BreakerOpen reports whether calls are currently rejected without reaching the provider.
func (c *caller) BreakerOpen() bool {
	return c.circuitBreaker.IsOpen()
}
