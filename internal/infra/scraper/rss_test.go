package scraper_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-digest/internal/infra/scraper"
	"news-digest/internal/usecase/fetch"
)

func serveFeed(t *testing.T, contentType, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		if _, err := w.Write([]byte(body)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newFetcher() *scraper.RSSFetcher {
	return scraper.NewRSSFetcher(&http.Client{Timeout: 10 * time.Second})
}

func TestRSSFetcher_Fetch_Success(t *testing.T) {
	// モックRSSフィードを提供するHTTPサーバー
	server := serveFeed(t, "application/rss+xml", `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <item>
      <title>Article 1</title>
      <link>https://example.com/article1</link>
      <description>Description 1</description>
      <pubDate>Mon, 01 Jan 2024 00:00:00 +0000</pubDate>
      <guid>https://example.com/article1</guid>
      <category>rates</category>
    </item>
    <item>
      <title>Article 2</title>
      <link>https://example.com/article2</link>
      <description>Description 2</description>
      <pubDate>Tue, 02 Jan 2024 00:00:00 +0000</pubDate>
    </item>
  </channel>
</rss>`)

	items, err := newFetcher().Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	require.NotNil(t, first.Title)
	assert.Equal(t, "Article 1", *first.Title)
	require.NotNil(t, first.Link)
	assert.Equal(t, "https://example.com/article1", *first.Link)
	require.NotNil(t, first.Content)
	assert.Equal(t, "Description 1", *first.Content)
	require.NotNil(t, first.PublishedAt)
	assert.True(t, first.PublishedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, first.PubDate)
	assert.Equal(t, "Mon, 01 Jan 2024 00:00:00 +0000", *first.PubDate)
	assert.Equal(t, []string{"rates"}, first.Categories)

	require.NotNil(t, items[1].Title)
	assert.Equal(t, "Article 2", *items[1].Title)
}

func TestRSSFetcher_Fetch_Atom(t *testing.T) {
	// Atomフィードのテスト（reddit形式に近い）
	server := serveFeed(t, "application/atom+xml", `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <link href="https://example.com"/>
  <updated>2024-01-01T00:00:00Z</updated>
  <entry>
    <title>Atom Article 1</title>
    <link href="https://example.com/atom1"/>
    <id>atom1</id>
    <author><name>/u/lender</name></author>
    <updated>2024-01-01T00:00:00Z</updated>
    <content type="html">&lt;p&gt;Rates &lt;b&gt;fell&lt;/b&gt; today&lt;/p&gt;</content>
  </entry>
</feed>`)

	items, err := newFetcher().Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, items, 1)

	it := items[0]
	require.NotNil(t, it.Title)
	assert.Equal(t, "Atom Article 1", *it.Title)
	require.NotNil(t, it.Author)
	assert.Equal(t, "/u/lender", *it.Author)
	require.NotNil(t, it.PublishedAt, "updated date is used when published is absent")
	require.NotNil(t, it.ContentSnippet)
	assert.Equal(t, "Rates fell today", *it.ContentSnippet)
}

func TestRSSFetcher_Fetch_AbsentFieldsStayNil(t *testing.T) {
	server := serveFeed(t, "application/rss+xml", `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Sparse</title>
  <item><title>Only a title</title></item>
</channel></rss>`)

	items, err := newFetcher().Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, items, 1)

	it := items[0]
	assert.NotNil(t, it.Title)
	assert.Nil(t, it.Link)
	assert.Nil(t, it.PublishedAt)
	assert.Nil(t, it.PubDate)
	assert.Nil(t, it.Content)
	assert.Nil(t, it.ContentSnippet)
	assert.Nil(t, it.Author)
}

func TestRSSFetcher_Fetch_PreservesOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>Many</title>`)
	for i := 1; i <= 30; i++ {
		fmt.Fprintf(&b, `<item><title>Item %d</title></item>`, i)
	}
	b.WriteString(`</channel></rss>`)
	server := serveFeed(t, "application/rss+xml", b.String())

	items, err := newFetcher().Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, items, 30)
	for i, it := range items {
		assert.Equal(t, fmt.Sprintf("Item %d", i+1), *it.Title)
	}
}

func TestRSSFetcher_Fetch_EmptyFeed(t *testing.T) {
	// 空のフィード
	server := serveFeed(t, "application/rss+xml", `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Empty Feed</title>
    <link>https://example.com</link>
  </channel>
</rss>`)

	items, err := newFetcher().Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRSSFetcher_Fetch_SendsUserAgent(t *testing.T) {
	var gotUA atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`<rss version="2.0"><channel><title>x</title></channel></rss>`))
	}))
	defer server.Close()

	_, err := newFetcher().Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, scraper.DefaultUserAgent, gotUA.Load())

	custom := scraper.NewRSSFetcherWithConfig(nil, scraper.Config{UserAgent: "Custom/2.0"})
	_, err = custom.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Custom/2.0", gotUA.Load())
}

func TestRSSFetcher_Fetch_Non2xx(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusForbidden, http.StatusInternalServerError} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(code)
			}))
			defer server.Close()

			_, err := newFetcher().Fetch(context.Background(), server.URL)
			require.Error(t, err)
			assert.ErrorIs(t, err, fetch.ErrFeedFetchFailed)
			assert.ErrorIs(t, err, fetch.ErrUnexpectedStatus)
			assert.Contains(t, err.Error(), fmt.Sprint(code))
			assert.Equal(t, int32(1), calls.Load(), "single attempt, no retry")
		})
	}
}

func TestRSSFetcher_Fetch_InvalidXML(t *testing.T) {
	server := serveFeed(t, "application/rss+xml", "Invalid XML <><><>")

	_, err := newFetcher().Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrFeedFetchFailed)
	assert.ErrorIs(t, err, fetch.ErrInvalidFeedFormat)
}

func TestRSSFetcher_Fetch_InvalidURL(t *testing.T) {
	for _, u := range []string{"not a url", "ftp://example.com/feed", ""} {
		t.Run(u, func(t *testing.T) {
			_, err := newFetcher().Fetch(context.Background(), u)
			require.Error(t, err)
			assert.ErrorIs(t, err, fetch.ErrInvalidURL)
			assert.ErrorIs(t, err, fetch.ErrFeedFetchFailed)
		})
	}
}

func TestRSSFetcher_Fetch_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newFetcher().Fetch(context.Background(), url)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrFeedFetchFailed)
	assert.NotEmpty(t, err.Error())
}

func TestRSSFetcher_Fetch_BodyTooLarge(t *testing.T) {
	server := serveFeed(t, "application/rss+xml",
		`<rss version="2.0"><channel><title>`+strings.Repeat("x", 2048)+`</title></channel></rss>`)

	f := scraper.NewRSSFetcherWithConfig(&http.Client{Timeout: 10 * time.Second}, scraper.Config{MaxBodySize: 1024})
	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrInvalidFeedFormat)
}

func TestRSSFetcher_Fetch_ContextCanceled(t *testing.T) {
	// レスポンスを遅延させるサーバー
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte("<rss></rss>"))
	}))
	defer server.Close()

	// 即座にキャンセルするコンテキスト
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newFetcher().Fetch(ctx, server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRSSFetcher_Fetch_WithContent(t *testing.T) {
	// Content優先度のテスト（ContentがあればDescriptionより優先）
	server := serveFeed(t, "application/rss+xml", `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>Article with Content</title>
      <link>https://example.com/article</link>
      <description>Short description</description>
      <content:encoded><![CDATA[<p>Full   content <em>here</em></p>]]></content:encoded>
    </item>
  </channel>
</rss>`)

	items, err := newFetcher().Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, items, 1)

	// ContentがDescriptionより優先されることを確認
	require.NotNil(t, items[0].Content)
	assert.Equal(t, "<p>Full   content <em>here</em></p>", *items[0].Content)
	require.NotNil(t, items[0].ContentSnippet)
	assert.Equal(t, "Full content here", *items[0].ContentSnippet)
}
