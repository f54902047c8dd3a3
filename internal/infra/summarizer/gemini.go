package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// contentGenerator is the part of *genai.GenerativeModel the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini summarizes through the Google Generative Language API.
type Gemini struct {
	client    *genai.Client
	generator contentGenerator
	caller
}

// NewGemini creates the Gemini client. The returned value owns a gRPC/HTTP
// connection; call Close on shutdown.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	cfg = cfg.WithDefaults()

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	configureModel(model, cfg)

	return &Gemini{
		client:    client,
		generator: model,
		caller:    newCaller(ProviderGemini, cfg),
	}, nil
}

// configureModel applies the generation settings. Without an explicit
// MaxTokens the model's own output limit applies.
func configureModel(model *genai.GenerativeModel, cfg Config) {
	if cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	}
}

// newGeminiWithModel wires an arbitrary generator; used by tests.
func newGeminiWithModel(generator contentGenerator, cfg Config) *Gemini {
	cfg = cfg.WithDefaults()
	return &Gemini{
		generator: generator,
		caller:    newCaller(ProviderGemini, cfg),
	}
}

// Summarize sends the prompt as a single user turn.
func (g *Gemini) Summarize(ctx context.Context, prompt string) (string, error) {
	return g.run(ctx, prompt, g.generate)
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.generator.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	// 途中で切れた出力は成功扱いにしない
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0] != nil &&
		resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		return "", ErrTruncated
	}

	out, ok := geminiText(resp)
	if !ok {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// geminiText joins the text parts of the first candidate.
func geminiText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return "", false
	}

	var sb strings.Builder
	found := false
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
			found = true
		}
	}
	return sb.String(), found
}

// Provider implements Client.
func (g *Gemini) Provider() string { return ProviderGemini }

// Close releases the underlying connection.
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
