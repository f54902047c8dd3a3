// Package feed serves the on-demand feed retrieval endpoints.
package feed

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"news-digest/internal/domain/entity"
	"news-digest/internal/handler/http/reqbody"
	"news-digest/internal/handler/http/respond"
	"news-digest/internal/usecase/fetch"
)

// Fetcher retrieves the items of one feed source.
type Fetcher interface {
	Fetch(ctx context.Context, req entity.FeedRequest) ([]entity.FeedItem, error)
}

// ItemsResponse is the success body. Items is never null.
type ItemsResponse struct {
	Items []entity.FeedItem `json:"items"`
}

// endpoint holds the per-source wording of the API contract.
type endpoint struct {
	kind          entity.SourceKind
	field         string
	missingMsg    string
	failurePrefix string
}

var (
	rssEndpoint = endpoint{
		kind:          entity.SourceKindGenericURL,
		field:         "feedUrl",
		missingMsg:    "Missing feedUrl in request body.",
		failurePrefix: "Failed to fetch or parse RSS feed: ",
	}
	redditEndpoint = endpoint{
		kind:          entity.SourceKindSubreddit,
		field:         "subreddit",
		missingMsg:    "Missing subreddit in request body.",
		failurePrefix: "Failed to fetch Reddit feed: ",
	}
)

// Handler serves POST requests for one source kind.
type Handler struct {
	Svc Fetcher
	ep  endpoint
}

// RSSHandler serves POST /api/fetch-rss with body {"feedUrl": "..."}.
func RSSHandler(svc Fetcher) Handler { return Handler{Svc: svc, ep: rssEndpoint} }

// RedditHandler serves POST /api/fetch-reddit with body {"subreddit": "..."}.
// At most 15 items are returned.
func RedditHandler(svc Fetcher) Handler { return Handler{Svc: svc, ep: redditEndpoint} }

// ServeHTTP 単一フィードの取得
//
//	400 identifier missing, blank, or malformed body
//	404 the source could not be fetched or parsed; the message carries the upstream cause
//	413 body over the configured limit
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ident, err := reqbody.String(r, h.ep.field)
	if err != nil {
		respond.Error(w, reqbody.StatusFor(err), err)
		return
	}
	if strings.TrimSpace(ident) == "" {
		respond.Message(w, http.StatusBadRequest, h.ep.missingMsg)
		return
	}

	items, err := h.Svc.Fetch(r.Context(), entity.FeedRequest{Kind: h.ep.kind, Identifier: ident})
	if err != nil {
		var ve *entity.ValidationError
		switch {
		case errors.As(err, &ve):
			respond.Message(w, http.StatusBadRequest, "Invalid "+h.ep.field+": "+ve.Message)
		case errors.Is(err, fetch.ErrFeedFetchFailed):
			respond.Message(w, http.StatusNotFound, h.ep.failurePrefix+err.Error())
		default:
			respond.SafeError(w, r, http.StatusInternalServerError, err)
		}
		return
	}

	if items == nil {
		items = []entity.FeedItem{}
	}
	respond.JSON(w, http.StatusOK, ItemsResponse{Items: items})
}

// Register mounts the feed endpoints on mux.
// GET is claimed explicitly so a "GET /" static catch-all cannot answer 404 for these paths.
func Register(mux *http.ServeMux, svc Fetcher) {
	mux.Handle("POST /api/fetch-rss", RSSHandler(svc))
	mux.Handle("POST /api/fetch-reddit", RedditHandler(svc))
	mux.Handle("GET /api/fetch-rss", respond.MethodNotAllowed(http.MethodPost))
	mux.Handle("GET /api/fetch-reddit", respond.MethodNotAllowed(http.MethodPost))
}
