// Command diagnose probes feed sources through the same retrieval path the
// API uses and prints a report, so a broken RSS URL or subreddit can be told
// apart from a server problem.
//
//	go run ./cmd/diagnose -reddit mortgage,RealEstate https://www.housingwire.com/feed/
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"news-digest/internal/domain/entity"
	"news-digest/internal/infra/scraper"
	"news-digest/internal/usecase/fetch"
	pkgconfig "news-digest/pkg/config"
)

// Diagnostic statuses.
const (
	StatusOK           = "OK"
	StatusEmpty        = "EMPTY"
	StatusHTTPError    = "HTTP_ERROR"
	StatusParseError   = "PARSE_ERROR"
	StatusInvalidInput = "INVALID_INPUT"
	StatusTimeout      = "TIMEOUT"
	StatusNetworkError = "NETWORK_ERROR"
)

// FeedDiagnostic is the result for one source.
type FeedDiagnostic struct {
	Kind         string `json:"kind"`
	Source       string `json:"source"`
	Status       string `json:"status"`
	ItemCount    int    `json:"item_count"`
	LatestDate   string `json:"latest_date,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	ResponseTime int64  `json:"response_time_ms"`
}

// OK reports whether the source returned at least one item.
func (d FeedDiagnostic) OK() bool { return d.Status == StatusOK }

// Fetcher is satisfied by *fetch.Service.
type Fetcher interface {
	Fetch(ctx context.Context, req entity.FeedRequest) ([]entity.FeedItem, error)
}

func main() {
	var (
		reddit      = flag.String("reddit", "", "comma-separated subreddit names")
		timeout     = flag.Duration("timeout", pkgconfig.GetEnvDuration("FEED_TIMEOUT", 30*time.Second), "per-feed timeout")
		concurrency = flag.Int("concurrency", 4, "feeds probed in parallel")
		asJSON      = flag.Bool("json", false, "print the report as JSON")
	)
	flag.Parse()

	var reqs []entity.FeedRequest
	for _, u := range flag.Args() {
		reqs = append(reqs, entity.FeedRequest{Kind: entity.SourceKindGenericURL, Identifier: u})
	}
	for _, s := range strings.Split(*reddit, ",") {
		if s = strings.TrimSpace(s); s != "" {
			reqs = append(reqs, entity.FeedRequest{Kind: entity.SourceKindSubreddit, Identifier: s})
		}
	}
	if len(reqs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: diagnose [-reddit a,b] [-json] <feed-url>...")
		os.Exit(2)
	}

	// 取得処理のログは診断結果と混ざるので warn 以上だけ出す
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	fetcher := scraper.NewRSSFetcherWithConfig(&http.Client{}, scraper.Config{
		UserAgent: pkgconfig.GetEnvString("FEED_USER_AGENT", scraper.DefaultUserAgent),
	})
	svc := fetch.NewService(fetcher, fetch.NewResolver(pkgconfig.GetEnvString("REDDIT_HOST", "")))

	results := Diagnose(context.Background(), &svc, reqs, *timeout, *concurrency)

	var err error
	if *asJSON {
		err = writeJSON(os.Stdout, results)
	} else {
		err = writeText(os.Stdout, results)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "write report:", err)
		os.Exit(1)
	}

	for _, r := range results {
		if !r.OK() {
			os.Exit(1)
		}
	}
}

// Diagnose fetches every request once, at most concurrency at a time.
// Results keep the order of reqs.
func Diagnose(ctx context.Context, svc Fetcher, reqs []entity.FeedRequest, timeout time.Duration, concurrency int) []FeedDiagnostic {
	results := make([]FeedDiagnostic, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = diagnoseOne(gctx, svc, req, timeout)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func diagnoseOne(ctx context.Context, svc Fetcher, req entity.FeedRequest, timeout time.Duration) FeedDiagnostic {
	diag := FeedDiagnostic{Kind: req.Kind.String(), Source: req.Identifier}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	items, err := svc.Fetch(ctx, req)
	diag.ResponseTime = time.Since(start).Milliseconds()

	if err != nil {
		diag.Status = Classify(err)
		diag.ErrorMessage = err.Error()
		return diag
	}

	diag.ItemCount = len(items)
	if len(items) == 0 {
		diag.Status = StatusEmpty
		diag.ErrorMessage = "feed has no items"
		return diag
	}
	diag.Status = StatusOK
	diag.LatestDate = latestDate(items)
	return diag
}

// Classify maps a fetch error to a diagnostic status.
func Classify(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, entity.ErrValidationFailed), errors.Is(err, fetch.ErrInvalidURL):
		return StatusInvalidInput
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return StatusTimeout
	case errors.Is(err, fetch.ErrUnexpectedStatus):
		return StatusHTTPError
	case errors.Is(err, fetch.ErrInvalidFeedFormat):
		return StatusParseError
	default:
		return StatusNetworkError
	}
}

func latestDate(items []entity.FeedItem) string {
	var latest time.Time
	for _, it := range items {
		if it.PublishedAt != nil && it.PublishedAt.After(latest) {
			latest = *it.PublishedAt
		}
	}
	if latest.IsZero() {
		return ""
	}
	return latest.UTC().Format(time.RFC3339)
}

func writeJSON(w io.Writer, results []FeedDiagnostic) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func writeText(w io.Writer, results []FeedDiagnostic) error {
	counts := make(map[string]int)
	for _, r := range results {
		counts[r.Status]++
	}
	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)

	var b strings.Builder
	fmt.Fprintf(&b, "Feed diagnostic report (%d sources)\n", len(results))
	for _, s := range statuses {
		fmt.Fprintf(&b, "  %-14s %d\n", s, counts[s])
	}
	b.WriteString("\n")
	for _, r := range results {
		mark := "✅"
		if !r.OK() {
			mark = "❌"
		}
		fmt.Fprintf(&b, "%s [%s] %s\n", mark, r.Kind, r.Source)
		fmt.Fprintf(&b, "    status=%s items=%d time=%dms", r.Status, r.ItemCount, r.ResponseTime)
		if r.LatestDate != "" {
			fmt.Fprintf(&b, " latest=%s", r.LatestDate)
		}
		b.WriteString("\n")
		if r.ErrorMessage != "" {
			fmt.Fprintf(&b, "    error: %s\n", r.ErrorMessage)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
