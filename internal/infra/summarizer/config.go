package summarizer

import (
	"errors"
	"fmt"
	"time"

	pkgconfig "news-digest/pkg/config"
)

// Provider names accepted by SUMMARIZER_TYPE.
const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
	ProviderNoOp   = "noop"
)

const (
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultClaudeModel = "claude-sonnet-4-5-20250929"
	DefaultOpenAIModel = "gpt-4o-mini"

	// DefaultMaxTokens caps Claude and OpenAI replies when no limit is configured.
	// Gemini gets no default cap: thinking tokens count against it on 2.5 models.
	DefaultMaxTokens = 4096

	// DefaultTimeout bounds a single model round trip. Zero disables the extra deadline.
	DefaultTimeout = 120 * time.Second
)

// ErrUnknownProvider is returned for a SUMMARIZER_TYPE outside the supported set.
var ErrUnknownProvider = errors.New("unknown summarizer provider")

// Config selects and parameterizes one summarization provider.
type Config struct {
	// Provider is one of gemini, claude, openai or noop.
	Provider string

	// APIKey authenticates against the provider. Not needed for noop.
	APIKey string

	// Model overrides the provider default model.
	Model string

	// MaxTokens caps the reply length. 0 leaves Gemini uncapped and gives
	// Claude and OpenAI DefaultMaxTokens.
	MaxTokens int
	Timeout   time.Duration

	// BaseURL points the client at a different endpoint (proxy or test server).
	BaseURL string
}

// Validate checks the configuration and fills nothing in; call WithDefaults first.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderClaude, ProviderOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("%s summarizer requires an API key", c.Provider)
		}
	case ProviderNoOp:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}

	if c.MaxTokens < 0 {
		return fmt.Errorf("max tokens must not be negative, got %d", c.MaxTokens)
	}
	if err := pkgconfig.ValidateNonNegativeDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid summarizer timeout: %w", err)
	}
	return nil
}

// WithDefaults returns a copy with empty fields set to the provider defaults.
func (c Config) WithDefaults() Config {
	if c.Provider == "" {
		c.Provider = ProviderGemini
	}
	if c.Model == "" {
		c.Model = defaultModel(c.Provider)
	}
	if c.MaxTokens == 0 && (c.Provider == ProviderClaude || c.Provider == ProviderOpenAI) {
		c.MaxTokens = DefaultMaxTokens
	}
	return c
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderGemini:
		return DefaultGeminiModel
	case ProviderClaude:
		return DefaultClaudeModel
	case ProviderOpenAI:
		return DefaultOpenAIModel
	}
	return ""
}
