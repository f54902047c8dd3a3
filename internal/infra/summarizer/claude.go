package summarizer

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Claude summarizes through Anthropic's Messages API.
type Claude struct {
	client    anthropic.Client
	maxTokens int
	caller
}

// NewClaude creates the Claude client. SDK retries are disabled so each
// Summarize is exactly one request.
func NewClaude(cfg Config) *Claude {
	cfg = cfg.WithDefaults()

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Claude{
		client:    anthropic.NewClient(opts...),
		maxTokens: cfg.MaxTokens,
		caller:    newCaller(ProviderClaude, cfg),
	}
}

// Summarize sends the prompt as a single user message.
func (c *Claude) Summarize(ctx context.Context, prompt string) (string, error) {
	return c.run(ctx, prompt, c.generate)
}

func (c *Claude) generate(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	found := false
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
			found = true
		}
	}
	if !found {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

// Provider implements Client.
func (c *Claude) Provider() string { return ProviderClaude }

// Close implements Client. The HTTP client needs no teardown.
func (c *Claude) Close() error { return nil }
