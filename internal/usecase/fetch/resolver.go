package fetch

import (
	"fmt"
	"net/url"
	"strings"

	"news-digest/internal/domain/entity"
)

const (
	// DefaultRedditHost is the host used to build subreddit feed URLs.
	DefaultRedditHost = "www.reddit.com"

	// SubredditItemCap bounds the number of items returned for a subreddit feed.
	// Reddit feeds can be large, so only the newest entries are kept.
	SubredditItemCap = 15
)

// ResolvedFeed is the concrete fetch target for a feed request.
type ResolvedFeed struct {
	URL      string
	Cap      int // 0 = return every parsed item
	SourceID string
}

// resolverFunc maps one source kind to its fetch target.
type resolverFunc func(r *Resolver, identifier string) (ResolvedFeed, error)

// resolvers is the closed set of source kinds. Adding a kind means adding an entry here.
var resolvers = map[entity.SourceKind]resolverFunc{
	entity.SourceKindGenericURL: resolveGenericURL,
	entity.SourceKindSubreddit:  resolveSubreddit,
}

// Resolver turns feed requests into fetch targets.
type Resolver struct {
	RedditHost string
}

// NewResolver creates a Resolver. An empty host falls back to DefaultRedditHost.
func NewResolver(redditHost string) *Resolver {
	if redditHost == "" {
		redditHost = DefaultRedditHost
	}
	return &Resolver{RedditHost: redditHost}
}

// Resolve returns the fetch target for req.
// Unknown source kinds are reported as validation errors, never panics.
func (r *Resolver) Resolve(req entity.FeedRequest) (ResolvedFeed, error) {
	fn, ok := resolvers[req.Kind]
	if !ok {
		return ResolvedFeed{}, &entity.ValidationError{
			Field:   "kind",
			Message: fmt.Sprintf("unsupported source kind %d", int(req.Kind)),
		}
	}
	return fn(r, req.Identifier)
}

func resolveGenericURL(_ *Resolver, identifier string) (ResolvedFeed, error) {
	return ResolvedFeed{URL: identifier, Cap: 0, SourceID: identifier}, nil
}

func resolveSubreddit(r *Resolver, identifier string) (ResolvedFeed, error) {
	name := normalizeSubreddit(identifier)
	if err := entity.ValidateSubreddit(name); err != nil {
		return ResolvedFeed{}, err
	}
	host := r.RedditHost
	if host == "" {
		host = DefaultRedditHost
	}
	return ResolvedFeed{
		URL:      fmt.Sprintf("https://%s/r/%s/.rss", host, url.PathEscape(name)),
		Cap:      SubredditItemCap,
		SourceID: "r/" + name,
	}, nil
}

// normalizeSubreddit accepts "mortgages", "r/mortgages" and "/r/mortgages/".
func normalizeSubreddit(identifier string) string {
	name := strings.TrimSpace(identifier)
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimPrefix(name, "r/")
	return strings.TrimSuffix(name, "/")
}

// ApplyCap truncates items to limit, keeping feed order. limit <= 0 leaves items untouched.
func ApplyCap(items []entity.FeedItem, limit int) []entity.FeedItem {
	if limit <= 0 || len(items) <= limit {
		return items
	}
	return items[:limit]
}
