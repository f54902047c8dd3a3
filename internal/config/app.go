// Package config assembles the server configuration from defaults, an optional
// YAML file (CONFIG_FILE) and environment variables, in that order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	pkgconfig "news-digest/pkg/config"
)

// Summarizer provider names accepted by SUMMARIZER_TYPE.
const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
	ProviderNoOp   = "noop"
)

// AppConfig holds every setting of the API server.
type AppConfig struct {
	Version    string           `yaml:"version"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Feed       FeedConfig       `yaml:"feed"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port              int           `yaml:"port"`
	StaticDir         string        `yaml:"static_dir"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns the listen address for Port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// FeedConfig holds outbound feed retrieval settings.
type FeedConfig struct {
	UserAgent    string        `yaml:"user_agent"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	RedditHost   string        `yaml:"reddit_host"`
}

// SummarizerConfig holds model provider settings. API keys are read from the
// environment only and never from the YAML file.
type SummarizerConfig struct {
	Provider        string        `yaml:"provider"`
	Model           string        `yaml:"model"`
	MaxTokens       int           `yaml:"max_tokens"`
	Timeout         time.Duration `yaml:"timeout"`
	BaseURL         string        `yaml:"base_url"`
	GeminiAPIKey    string        `yaml:"-"`
	AnthropicAPIKey string        `yaml:"-"`
	OpenAIAPIKey    string        `yaml:"-"`
}

// APIKey returns the credential of the selected provider.
func (c SummarizerConfig) APIKey() string {
	switch c.Provider {
	case ProviderGemini:
		return c.GeminiAPIKey
	case ProviderClaude:
		return c.AnthropicAPIKey
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	default:
		return ""
	}
}

// RateLimitConfig holds the optional per-IP inbound limiter settings.
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	IdleTTL           time.Duration `yaml:"idle_ttl"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval"`
	TrustedProxies    []string      `yaml:"trusted_proxies"`
}

// Default returns the configuration used when nothing is set.
func Default() AppConfig {
	return AppConfig{
		Version: "dev",
		Server: ServerConfig{
			Port:              3000,
			StaticDir:         "public",
			MaxBodyBytes:      50 << 20,
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Feed: FeedConfig{
			UserAgent:    "News-Aggregator-App/1.0",
			Timeout:      30 * time.Second,
			MaxBodyBytes: 10 << 20,
			RedditHost:   "www.reddit.com",
		},
		Summarizer: SummarizerConfig{
			Provider: ProviderGemini,
			Timeout:  120 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerSecond: 5,
			Burst:             20,
			IdleTTL:           10 * time.Minute,
			CleanupInterval:   time.Minute,
		},
	}
}

// Load builds the configuration and validates it.
func Load() (*AppConfig, error) {
	cfg := Default()

	if path := pkgconfig.GetEnvString("CONFIG_FILE", ""); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// mergeFile overlays the YAML file at path. Keys absent from the file keep their current value.
func (c *AppConfig) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// 空ファイルは io.EOF になるので上書きなしとして扱う
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv lets environment variables override file and default values.
func (c *AppConfig) applyEnv() {
	c.Version = pkgconfig.GetEnvString("VERSION", c.Version)

	c.Server.Port = pkgconfig.GetEnvInt("PORT", c.Server.Port)
	c.Server.StaticDir = pkgconfig.GetEnvString("STATIC_DIR", c.Server.StaticDir)
	c.Server.MaxBodyBytes = pkgconfig.GetEnvInt64("MAX_BODY_BYTES", c.Server.MaxBodyBytes)
	c.Server.ReadHeaderTimeout = pkgconfig.GetEnvDuration("READ_HEADER_TIMEOUT", c.Server.ReadHeaderTimeout)
	c.Server.ShutdownTimeout = pkgconfig.GetEnvDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Log.Level = strings.ToLower(pkgconfig.GetEnvString("LOG_LEVEL", c.Log.Level))
	c.Log.Format = strings.ToLower(pkgconfig.GetEnvString("LOG_FORMAT", c.Log.Format))

	c.Feed.UserAgent = pkgconfig.GetEnvString("FEED_USER_AGENT", c.Feed.UserAgent)
	c.Feed.Timeout = pkgconfig.GetEnvDuration("FEED_TIMEOUT", c.Feed.Timeout)
	c.Feed.MaxBodyBytes = pkgconfig.GetEnvInt64("FEED_MAX_BODY_BYTES", c.Feed.MaxBodyBytes)
	c.Feed.RedditHost = pkgconfig.GetEnvString("REDDIT_HOST", c.Feed.RedditHost)

	c.Summarizer.Provider = strings.ToLower(pkgconfig.GetEnvString("SUMMARIZER_TYPE", c.Summarizer.Provider))
	c.Summarizer.Model = pkgconfig.GetEnvString("SUMMARIZER_MODEL", c.Summarizer.Model)
	if c.Summarizer.Provider == ProviderGemini {
		c.Summarizer.Model = pkgconfig.GetEnvString("GEMINI_MODEL", c.Summarizer.Model)
	}
	c.Summarizer.MaxTokens = pkgconfig.GetEnvInt("SUMMARIZER_MAX_TOKENS", c.Summarizer.MaxTokens)
	c.Summarizer.Timeout = pkgconfig.GetEnvDuration("SUMMARIZER_TIMEOUT", c.Summarizer.Timeout)
	c.Summarizer.BaseURL = pkgconfig.GetEnvString("SUMMARIZER_BASE_URL", c.Summarizer.BaseURL)
	c.Summarizer.GeminiAPIKey = pkgconfig.GetEnvString("GEMINI_API_KEY", c.Summarizer.GeminiAPIKey)
	c.Summarizer.AnthropicAPIKey = pkgconfig.GetEnvString("ANTHROPIC_API_KEY", c.Summarizer.AnthropicAPIKey)
	c.Summarizer.OpenAIAPIKey = pkgconfig.GetEnvString("OPENAI_API_KEY", c.Summarizer.OpenAIAPIKey)

	c.RateLimit.Enabled = pkgconfig.GetEnvBool("RATELIMIT_ENABLED", c.RateLimit.Enabled)
	c.RateLimit.RequestsPerSecond = pkgconfig.GetEnvFloat("RATELIMIT_RPS", c.RateLimit.RequestsPerSecond)
	c.RateLimit.Burst = pkgconfig.GetEnvInt("RATELIMIT_BURST", c.RateLimit.Burst)
	c.RateLimit.IdleTTL = pkgconfig.GetEnvDuration("RATELIMIT_IDLE_TTL", c.RateLimit.IdleTTL)
	c.RateLimit.CleanupInterval = pkgconfig.GetEnvDuration("RATELIMIT_CLEANUP_INTERVAL", c.RateLimit.CleanupInterval)
	c.RateLimit.TrustedProxies = pkgconfig.GetEnvStringList("TRUSTED_PROXIES", c.RateLimit.TrustedProxies)
}

// Validate checks configuration correctness and returns the first problem found.
func (c *AppConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.StaticDir == "" {
		return errors.New("STATIC_DIR cannot be empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("MAX_BODY_BYTES must be positive")
	}
	if err := pkgconfig.ValidatePositiveDuration(c.Server.ReadHeaderTimeout); err != nil {
		return fmt.Errorf("READ_HEADER_TIMEOUT: %w", err)
	}
	if err := pkgconfig.ValidatePositiveDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}

	if c.Feed.UserAgent == "" {
		return errors.New("FEED_USER_AGENT cannot be empty")
	}
	if err := pkgconfig.ValidatePositiveDuration(c.Feed.Timeout); err != nil {
		return fmt.Errorf("FEED_TIMEOUT: %w", err)
	}
	if c.Feed.MaxBodyBytes <= 0 {
		return errors.New("FEED_MAX_BODY_BYTES must be positive")
	}
	if c.Feed.RedditHost == "" || strings.ContainsAny(c.Feed.RedditHost, "/?#") {
		return fmt.Errorf("REDDIT_HOST must be a bare host name, got %q", c.Feed.RedditHost)
	}

	if err := c.validateSummarizer(); err != nil {
		return err
	}
	return c.validateRateLimit()
}

func (c *AppConfig) validateSummarizer() error {
	s := c.Summarizer
	switch s.Provider {
	case ProviderGemini, ProviderClaude, ProviderOpenAI:
		if s.APIKey() == "" {
			return fmt.Errorf("an API key is required for SUMMARIZER_TYPE=%s (%s)", s.Provider, apiKeyEnv(s.Provider))
		}
	case ProviderNoOp:
	default:
		return fmt.Errorf("SUMMARIZER_TYPE must be one of gemini, claude, openai, noop, got %q", s.Provider)
	}
	if s.MaxTokens < 0 {
		return errors.New("SUMMARIZER_MAX_TOKENS must not be negative")
	}
	if err := pkgconfig.ValidateNonNegativeDuration(s.Timeout); err != nil {
		return fmt.Errorf("SUMMARIZER_TIMEOUT: %w", err)
	}
	return nil
}

func (c *AppConfig) validateRateLimit() error {
	r := c.RateLimit
	for _, p := range r.TrustedProxies {
		if _, err := netip.ParsePrefix(p); err != nil {
			if _, err := netip.ParseAddr(p); err != nil {
				return fmt.Errorf("TRUSTED_PROXIES: invalid CIDR or address %q", p)
			}
		}
	}
	if !r.Enabled {
		return nil
	}
	if r.RequestsPerSecond <= 0 {
		return errors.New("RATELIMIT_RPS must be positive")
	}
	if r.Burst < 1 {
		return errors.New("RATELIMIT_BURST must be at least 1")
	}
	if err := pkgconfig.ValidatePositiveDuration(r.IdleTTL); err != nil {
		return fmt.Errorf("RATELIMIT_IDLE_TTL: %w", err)
	}
	if err := pkgconfig.ValidatePositiveDuration(r.CleanupInterval); err != nil {
		return fmt.Errorf("RATELIMIT_CLEANUP_INTERVAL: %w", err)
	}
	return nil
}

func apiKeyEnv(provider string) string {
	switch provider {
	case ProviderClaude:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}
