// Package digest serves the strategic news digest endpoint.
package digest

import (
	"context"
	"errors"
	"net/http"

	"news-digest/internal/domain/entity"
	"news-digest/internal/handler/http/reqbody"
	"news-digest/internal/handler/http/respond"
)

// FailureMessage is the only text a client sees when generation fails.
const FailureMessage = "Failed to generate AI summary. Check server logs."

const missingMsg = "Missing HTML content in request body."

// Summarizer produces the digest for client-supplied HTML.
type Summarizer interface {
	Summarize(ctx context.Context, htmlContent string) (string, error)
}

// SummaryResponse is the success body.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// SummarizeHandler serves POST /api/summarize-news with body {"htmlContent": "..."}.
type SummarizeHandler struct{ Svc Summarizer }

// ServeHTTP ダイジェスト生成
//
//	400 htmlContent missing, empty, or malformed body
//	413 body over the configured limit
//	500 model failure; the cause is logged, never returned
func (h SummarizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	html, err := reqbody.String(r, "htmlContent")
	if err != nil {
		respond.Error(w, reqbody.StatusFor(err), err)
		return
	}
	if html == "" {
		respond.Message(w, http.StatusBadRequest, missingMsg)
		return
	}

	summary, err := h.Svc.Summarize(r.Context(), html)
	if err != nil {
		if errors.Is(err, entity.ErrValidationFailed) {
			respond.Message(w, http.StatusBadRequest, missingMsg)
			return
		}
		respond.SafeError(w, r, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, FailureMessage, err))
		return
	}

	respond.JSON(w, http.StatusOK, SummaryResponse{Summary: summary})
}

// Register mounts the digest endpoint on mux.
func Register(mux *http.ServeMux, svc Summarizer) {
	mux.Handle("POST /api/summarize-news", SummarizeHandler{Svc: svc})
	mux.Handle("GET /api/summarize-news", respond.MethodNotAllowed(http.MethodPost))
}
