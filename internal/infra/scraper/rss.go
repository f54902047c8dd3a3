// Package scraper provides implementations for fetching RSS/Atom feeds.
// It uses the gofeed library to parse feed content and goquery to derive
// plain-text snippets from HTML item bodies.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"news-digest/internal/domain/entity"
	"news-digest/internal/usecase/fetch"
	"news-digest/internal/utils/text"
)

const (
	// DefaultUserAgent identifies the aggregator to feed servers.
	// Some servers (reddit in particular) reject requests without one.
	DefaultUserAgent = "News-Aggregator-App/1.0"

	// DefaultMaxBodySize bounds the feed document read into memory (10MB).
	DefaultMaxBodySize int64 = 10 << 20

	acceptHeader = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"
)

// Config holds RSSFetcher settings.
type Config struct {
	UserAgent   string
	MaxBodySize int64
}

// DefaultConfig returns the fetcher defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
	}
}

// RSSFetcher implements fetch.FeedFetcher using the gofeed library.
// Each Fetch is a single GET; nothing is cached and nothing is retried.
// It is safe for concurrent use as long as the http.Client is.
type RSSFetcher struct {
	client *http.Client
	config Config
}

// NewRSSFetcher creates a new RSSFetcher with the given HTTP client and default settings.
func NewRSSFetcher(client *http.Client) *RSSFetcher {
	return NewRSSFetcherWithConfig(client, DefaultConfig())
}

// NewRSSFetcherWithConfig creates a new RSSFetcher. Zero config fields fall back to defaults.
func NewRSSFetcherWithConfig(client *http.Client, cfg Config) *RSSFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}
	return &RSSFetcher{client: client, config: cfg}
}

// Fetch retrieves and parses an RSS/Atom feed from the given URL.
// Items are returned in feed order. Every failure is a *fetch.FetchError whose
// cause matches one of fetch.ErrInvalidURL, fetch.ErrUnexpectedStatus or
// fetch.ErrInvalidFeedFormat, or is the transport error itself.
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string) ([]entity.FeedItem, error) {
	if err := entity.ValidateURL(feedURL); err != nil {
		return nil, fetch.NewFetchError(feedURL, fmt.Errorf("%w: %v", fetch.ErrInvalidURL, err))
	}

	body, err := f.download(ctx, feedURL)
	if err != nil {
		return nil, fetch.NewFetchError(feedURL, err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fetch.NewFetchError(feedURL, fmt.Errorf("%w: %v", fetch.ErrInvalidFeedFormat, err))
	}

	items := make([]entity.FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		items = append(items, toFeedItem(it))
	}
	return items, nil
}

// download performs the GET and returns the bounded response body.
func (f *RSSFetcher) download(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fetch.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", fetch.ErrUnexpectedStatus, resp.Status)
	}

	// 上限+1バイトまで読み、超過を検知する
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	if int64(len(data)) > f.config.MaxBodySize {
		return nil, fmt.Errorf("%w: feed body exceeds %d bytes", fetch.ErrInvalidFeedFormat, f.config.MaxBodySize)
	}
	return data, nil
}

// toFeedItem normalizes a gofeed item. Empty fields stay nil.
func toFeedItem(it *gofeed.Item) entity.FeedItem {
	item := entity.FeedItem{
		Title:      optional(strings.TrimSpace(it.Title)),
		Link:       optional(strings.TrimSpace(it.Link)),
		PubDate:    optional(firstNonEmpty(it.Published, it.Updated)),
		GUID:       optional(it.GUID),
		Categories: it.Categories,
	}

	switch {
	case it.PublishedParsed != nil:
		t := it.PublishedParsed.UTC()
		item.PublishedAt = &t
	case it.UpdatedParsed != nil:
		t := it.UpdatedParsed.UTC()
		item.PublishedAt = &t
	}

	// Content優先、なければDescriptionを使用
	content := it.Content
	if content == "" {
		content = it.Description
	}
	item.Content = optional(content)
	if content != "" {
		item.ContentSnippet = optional(snippet(content))
	}

	if it.Author != nil && it.Author.Name != "" {
		item.Author = optional(it.Author.Name)
	} else {
		for _, p := range it.Authors {
			if p != nil && p.Name != "" {
				item.Author = optional(p.Name)
				break
			}
		}
	}

	return item
}

// snippet strips markup from an HTML fragment and collapses whitespace.
func snippet(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return text.CollapseWhitespace(html)
	}
	return text.CollapseWhitespace(doc.Text())
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
