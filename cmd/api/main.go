// Command api runs the news digest HTTP server: the static browser client,
// on-demand RSS and Reddit feed retrieval, and the AI strategic digest.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"news-digest/internal/config"
	hhttp "news-digest/internal/handler/http"
	hdigest "news-digest/internal/handler/http/digest"
	hfeed "news-digest/internal/handler/http/feed"
	"news-digest/internal/handler/http/middleware"
	"news-digest/internal/handler/http/requestid"
	"news-digest/internal/infra/scraper"
	"news-digest/internal/infra/summarizer"
	"news-digest/internal/observability/logging"
	"news-digest/internal/observability/tracing"
	digestUC "news-digest/internal/usecase/digest"
	fetchUC "news-digest/internal/usecase/fetch"
)

const serviceName = "news-digest"

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.SetDefault(logger)

	shutdownTracing := tracing.Init(serviceName)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	components, err := setupServer(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := components.Summarizer.Close(); err != nil {
			logger.Warn("failed to close summarizer", slog.Any("error", err))
		}
	}()

	return runServer(ctx, logger, cfg, components)
}

// ServerComponents holds what runServer needs besides the config.
type ServerComponents struct {
	Handler     http.Handler
	Summarizer  summarizer.Client
	RateLimiter *middleware.IPRateLimiter // nil when disabled
}

// setupServer builds the services, routes and middleware chain.
func setupServer(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) (*ServerComponents, error) {
	feedClient := &http.Client{Timeout: cfg.Feed.Timeout}
	fetcher := scraper.NewRSSFetcherWithConfig(feedClient, scraper.Config{
		UserAgent:   cfg.Feed.UserAgent,
		MaxBodySize: cfg.Feed.MaxBodyBytes,
	})
	fetchSvc := fetchUC.NewService(fetcher, fetchUC.NewResolver(cfg.Feed.RedditHost))

	model, err := summarizer.New(ctx, summarizer.Config{
		Provider:  cfg.Summarizer.Provider,
		APIKey:    cfg.Summarizer.APIKey(),
		Model:     cfg.Summarizer.Model,
		MaxTokens: cfg.Summarizer.MaxTokens,
		Timeout:   cfg.Summarizer.Timeout,
		BaseURL:   cfg.Summarizer.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("init summarizer: %w", err)
	}
	digestSvc := digestUC.NewService(model)
	logger.Info("summarizer initialized",
		slog.String("provider", model.Provider()),
		slog.String("model", cfg.Summarizer.Model),
		slog.Duration("timeout", cfg.Summarizer.Timeout))

	var limiter *middleware.IPRateLimiter
	if cfg.RateLimit.Enabled {
		trusted, err := middleware.ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
		if err != nil {
			_ = model.Close()
			return nil, err
		}
		limiter = middleware.NewIPRateLimiter(middleware.IPRateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			IdleTTL:           cfg.RateLimit.IdleTTL,
		}, middleware.NewIPExtractor(trusted))
		logger.Info("rate limiting initialized",
			slog.Float64("requests_per_second", cfg.RateLimit.RequestsPerSecond),
			slog.Int("burst", cfg.RateLimit.Burst),
			slog.Int("trusted_proxies_count", len(trusted)))
	} else {
		logger.Info("rate limiting disabled")
	}

	mux := setupRoutes(cfg, &fetchSvc, &digestSvc, model, limiter)

	return &ServerComponents{
		Handler:     applyMiddleware(logger, mux, cfg.Server.MaxBodyBytes, limiter),
		Summarizer:  model,
		RateLimiter: limiter,
	}, nil
}

// setupRoutes registers every endpoint on one ServeMux.
func setupRoutes(
	cfg *config.AppConfig,
	fetchSvc hfeed.Fetcher,
	digestSvc hdigest.Summarizer,
	model summarizer.Client,
	limiter *middleware.IPRateLimiter,
) *http.ServeMux {
	mux := http.NewServeMux()

	hfeed.Register(mux, fetchSvc)
	hdigest.Register(mux, digestSvc)

	health := &hhttp.HealthHandler{Version: cfg.Version, Summarizer: model}
	if limiter != nil {
		health.RateLimiter = limiter
	}
	mux.Handle("GET /health", health)
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	// 静的ファイルはルート配下にそのまま公開する
	mux.Handle("GET /", hhttp.Static(cfg.Server.StaticDir))

	return mux
}

// applyMiddleware wraps the mux. Order, outermost first:
// Recover → Request ID → Tracing → Logging → IP Rate Limit → Body Limit → Metrics → mux.
// Nothing between Tracing and the mux may replace *http.Request, or the route
// pattern recorded by ServeMux would be lost to the outer middleware.
func applyMiddleware(logger *slog.Logger, mux http.Handler, maxBodyBytes int64, limiter *middleware.IPRateLimiter) http.Handler {
	var rateLimit hhttp.Middleware
	if limiter != nil {
		rateLimit = limiter.Middleware()
	}

	return hhttp.Chain(mux,
		hhttp.Recover(logger),
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Logging(logger),
		rateLimit,
		hhttp.LimitRequestBody(maxBodyBytes),
		hhttp.MetricsMiddleware,
	)
}

// runServer serves until ctx is cancelled, then drains in-flight requests.
func runServer(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig, components *ServerComponents) error {
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           components.Handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout, // Slowloris 対策
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("version", cfg.Version),
			slog.String("static_dir", cfg.Server.StaticDir))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	if components.RateLimiter != nil {
		g.Go(func() error {
			return components.RateLimiter.RunCleanup(gctx, cfg.RateLimit.CleanupInterval)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}

var (
	_ hfeed.Fetcher      = (*fetchUC.Service)(nil)
	_ hdigest.Summarizer = (*digestUC.Service)(nil)
)
