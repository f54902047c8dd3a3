package entity

import (
	"strings"
	"time"
)

// SourceKind identifies how a feed request names its source.
type SourceKind int

const (
	// SourceKindGenericURL is an arbitrary RSS/Atom feed URL.
	SourceKindGenericURL SourceKind = iota + 1
	// SourceKindSubreddit is a reddit community whose feed URL is derived from its name.
	SourceKindSubreddit
)

// String returns the label used in logs and metrics.
func (k SourceKind) String() string {
	switch k {
	case SourceKindGenericURL:
		return "rss"
	case SourceKindSubreddit:
		return "reddit"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the defined source kinds.
func (k SourceKind) Valid() bool {
	return k == SourceKindGenericURL || k == SourceKindSubreddit
}

// FeedRequest asks for the items of exactly one feed source.
type FeedRequest struct {
	Kind       SourceKind
	Identifier string
}

// Validate checks the request shape. URL syntax for generic feeds is left to the fetcher.
func (r FeedRequest) Validate() error {
	if !r.Kind.Valid() {
		return &ValidationError{Field: "kind", Message: "unsupported source kind"}
	}
	if strings.TrimSpace(r.Identifier) == "" {
		field := "feedUrl"
		if r.Kind == SourceKindSubreddit {
			field = "subreddit"
		}
		return &ValidationError{Field: field, Message: "identifier is required"}
	}
	return nil
}

// FeedItem is one normalized entry of a fetched feed.
// Fields the feed did not carry stay nil and are omitted from JSON.
type FeedItem struct {
	Title          *string    `json:"title,omitempty"`
	Link           *string    `json:"link,omitempty"`
	PubDate        *string    `json:"pubDate,omitempty"` // raw date string as published
	PublishedAt    *time.Time `json:"isoDate,omitempty"`
	Content        *string    `json:"content,omitempty"`
	ContentSnippet *string    `json:"contentSnippet,omitempty"`
	GUID           *string    `json:"guid,omitempty"`
	Author         *string    `json:"author,omitempty"`
	Categories     []string   `json:"categories,omitempty"`
	SourceID       string     `json:"sourceId"`
}
