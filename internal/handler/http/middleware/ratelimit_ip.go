package middleware

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"news-digest/internal/handler/http/respond"
)

// IPRateLimiterConfig configures the per-client token bucket.
type IPRateLimiterConfig struct {
	// RequestsPerSecond is the sustained refill rate per client IP.
	RequestsPerSecond float64
	// Burst is the bucket size.
	Burst int
	// IdleTTL drops buckets of clients not seen for this long.
	IdleTTL time.Duration
}

// DefaultIPRateLimiterConfig returns 5 req/s with a burst of 20.
func DefaultIPRateLimiterConfig() IPRateLimiterConfig {
	return IPRateLimiterConfig{
		RequestsPerSecond: 5,
		Burst:             20,
		IdleTTL:           10 * time.Minute,
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one golang.org/x/time/rate limiter per client IP.
// Requests over the limit get 429 with a Retry-After header.
type IPRateLimiter struct {
	config    IPRateLimiterConfig
	extractor IPExtractor
	now       func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewIPRateLimiter creates the limiter. A nil extractor means RemoteAddrExtractor.
func NewIPRateLimiter(cfg IPRateLimiterConfig, extractor IPExtractor) *IPRateLimiter {
	if extractor == nil {
		extractor = RemoteAddrExtractor{}
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIPRateLimiterConfig().IdleTTL
	}
	return &IPRateLimiter{
		config:    cfg,
		extractor: extractor,
		now:       time.Now,
		visitors:  make(map[string]*visitor),
	}
}

func (l *IPRateLimiter) limiterFor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(l.config.RequestsPerSecond), l.config.Burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = l.now()
	return v.limiter
}

// Middleware returns the HTTP middleware.
func (l *IPRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, err := l.extractor.ExtractIP(r)
			if err != nil {
				// キーが取れない場合は制限しない
				slog.Warn("rate limiter could not resolve client ip",
					slog.String("remote_addr", r.RemoteAddr),
					slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			res := l.limiterFor(ip).ReserveN(l.now(), 1)
			if !res.OK() {
				respond.SafeError(w, r, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
				return
			}
			if delay := res.DelayFrom(l.now()); delay > 0 {
				res.CancelAt(l.now())
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				respond.SafeError(w, r, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Cleanup removes visitors idle for longer than IdleTTL and returns how many were dropped.
func (l *IPRateLimiter) Cleanup() int {
	cutoff := l.now().Add(-l.config.IdleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for ip, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, ip)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked clients.
func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (l *IPRateLimiter) RunCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := l.Cleanup(); n > 0 {
				slog.Debug("rate limiter visitors evicted", slog.Int("count", n))
			}
		}
	}
}
