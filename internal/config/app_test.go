package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_FILE", "VERSION", "PORT", "STATIC_DIR", "MAX_BODY_BYTES", "READ_HEADER_TIMEOUT",
	"SHUTDOWN_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT", "FEED_USER_AGENT", "FEED_TIMEOUT",
	"FEED_MAX_BODY_BYTES", "REDDIT_HOST", "SUMMARIZER_TYPE", "SUMMARIZER_MODEL", "GEMINI_MODEL",
	"SUMMARIZER_MAX_TOKENS", "SUMMARIZER_TIMEOUT", "SUMMARIZER_BASE_URL", "GEMINI_API_KEY",
	"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "RATELIMIT_ENABLED", "RATELIMIT_RPS", "RATELIMIT_BURST",
	"RATELIMIT_IDLE_TTL", "RATELIMIT_CLEANUP_INTERVAL", "TRUSTED_PROXIES",
}

// clearEnv blanks every key Load reads; empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

/* ───────── Load テスト ───────── */

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, ":3000", cfg.Server.Addr())
	assert.Equal(t, "public", cfg.Server.StaticDir)
	assert.Equal(t, int64(50*1024*1024), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "News-Aggregator-App/1.0", cfg.Feed.UserAgent)
	assert.Equal(t, "www.reddit.com", cfg.Feed.RedditHost)
	assert.Equal(t, ProviderGemini, cfg.Summarizer.Provider)
	assert.Equal(t, "test-key", cfg.Summarizer.APIKey())
	assert.Equal(t, 120*time.Second, cfg.Summarizer.Timeout)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "dev", cfg.Version)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("STATIC_DIR", "/srv/www")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SUMMARIZER_TYPE", "claude")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("SUMMARIZER_MODEL", "claude-haiku")
	t.Setenv("FEED_TIMEOUT", "5s")
	t.Setenv("RATELIMIT_ENABLED", "true")
	t.Setenv("RATELIMIT_RPS", "0.5")
	t.Setenv("RATELIMIT_BURST", "3")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/srv/www", cfg.Server.StaticDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ProviderClaude, cfg.Summarizer.Provider)
	assert.Equal(t, "sk-ant-test", cfg.Summarizer.APIKey())
	assert.Equal(t, "claude-haiku", cfg.Summarizer.Model)
	assert.Equal(t, 5*time.Second, cfg.Feed.Timeout)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 0.5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 3, cfg.RateLimit.Burst)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.RateLimit.TrustedProxies)
}

func TestLoad_GeminiModelAlias(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", cfg.Summarizer.Model)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", writeFile(t, `
version: "1.4.0"
server:
  port: 9000
  static_dir: web
feed:
  timeout: 12s
  reddit_host: old.reddit.com
summarizer:
  provider: noop
rate_limit:
  enabled: true
  requests_per_second: 2
  burst: 4
`))
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "1.4.0", cfg.Version)
	assert.Equal(t, 9100, cfg.Server.Port, "env wins over file")
	assert.Equal(t, "web", cfg.Server.StaticDir)
	assert.Equal(t, 12*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, "old.reddit.com", cfg.Feed.RedditHost)
	assert.Equal(t, ProviderNoOp, cfg.Summarizer.Provider)
	assert.Equal(t, 4, cfg.RateLimit.Burst)
	assert.Equal(t, "News-Aggregator-App/1.0", cfg.Feed.UserAgent, "unset keys keep defaults")
}

func TestLoad_EmptyFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", writeFile(t, ""))
	t.Setenv("SUMMARIZER_TYPE", "noop")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoad_FileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unknown key", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONFIG_FILE", writeFile(t, "server:\n  prot: 1\n"))
		_, err := Load()
		assert.ErrorContains(t, err, "parse config file")
	})

	t.Run("gemini without key", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONFIG_FILE", writeFile(t, "summarizer:\n  provider: gemini\n"))
		_, err := Load()
		assert.ErrorContains(t, err, "GEMINI_API_KEY")
	})
}

/* ───────── Validate テスト ───────── */

func TestValidate(t *testing.T) {
	valid := func() AppConfig {
		c := Default()
		c.Summarizer.Provider = ProviderNoOp
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"port zero", func(c *AppConfig) { c.Server.Port = 0 }, "PORT"},
		{"port too large", func(c *AppConfig) { c.Server.Port = 70000 }, "PORT"},
		{"no static dir", func(c *AppConfig) { c.Server.StaticDir = "" }, "STATIC_DIR"},
		{"body limit", func(c *AppConfig) { c.Server.MaxBodyBytes = 0 }, "MAX_BODY_BYTES"},
		{"log level", func(c *AppConfig) { c.Log.Level = "verbose" }, "LOG_LEVEL"},
		{"log format", func(c *AppConfig) { c.Log.Format = "xml" }, "LOG_FORMAT"},
		{"feed timeout", func(c *AppConfig) { c.Feed.Timeout = 0 }, "FEED_TIMEOUT"},
		{"reddit host with path", func(c *AppConfig) { c.Feed.RedditHost = "reddit.com/r" }, "REDDIT_HOST"},
		{"unknown provider", func(c *AppConfig) { c.Summarizer.Provider = "llama" }, "SUMMARIZER_TYPE"},
		{"openai without key", func(c *AppConfig) { c.Summarizer.Provider = ProviderOpenAI }, "OPENAI_API_KEY"},
		{"negative summarizer timeout", func(c *AppConfig) { c.Summarizer.Timeout = -time.Second }, "SUMMARIZER_TIMEOUT"},
		{"zero summarizer timeout disables it", func(c *AppConfig) { c.Summarizer.Timeout = 0 }, ""},
		{"negative max tokens", func(c *AppConfig) { c.Summarizer.MaxTokens = -1 }, "SUMMARIZER_MAX_TOKENS"},
		{"zero max tokens uses provider default", func(c *AppConfig) { c.Summarizer.MaxTokens = 0 }, ""},
		{"bad proxy", func(c *AppConfig) { c.RateLimit.TrustedProxies = []string{"not-an-ip"} }, "TRUSTED_PROXIES"},
		{"disabled limiter ignores rps", func(c *AppConfig) { c.RateLimit.RequestsPerSecond = 0 }, ""},
		{"enabled limiter rps", func(c *AppConfig) {
			c.RateLimit.Enabled = true
			c.RateLimit.RequestsPerSecond = 0
		}, "RATELIMIT_RPS"},
		{"enabled limiter burst", func(c *AppConfig) {
			c.RateLimit.Enabled = true
			c.RateLimit.Burst = 0
		}, "RATELIMIT_BURST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
