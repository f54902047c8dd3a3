package summarizer

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI summarizes through the Chat Completions API.
type OpenAI struct {
	client    *openai.Client
	maxTokens int
	caller
}

// NewOpenAI creates the OpenAI client.
func NewOpenAI(cfg Config) *OpenAI {
	cfg = cfg.WithDefaults()

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAI{
		client:    openai.NewClientWithConfig(clientConfig),
		maxTokens: cfg.MaxTokens,
		caller:    newCaller(ProviderOpenAI, cfg),
	}
}

// Summarize sends the prompt as a single user message.
func (o *OpenAI) Summarize(ctx context.Context, prompt string) (string, error) {
	return o.run(ctx, prompt, o.generate)
}

func (o *OpenAI) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:               o.model,
		MaxCompletionTokens: o.maxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		return "", err
	}

	// 空の choices で index out of range にならないように
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// Provider implements Client.
func (o *OpenAI) Provider() string { return ProviderOpenAI }

// Close implements Client.
func (o *OpenAI) Close() error { return nil }
