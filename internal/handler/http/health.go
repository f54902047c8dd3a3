package http

import (
	"net/http"
	"time"

	"news-digest/internal/handler/http/respond"
)

// HealthResponse represents the JSON response for the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "degraded"
	Timestamp string                 `json:"timestamp"` // RFC 3339, UTC
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// SummarizerInfo is the part of the summarization client the health check reads.
type SummarizerInfo interface {
	Provider() string
}

// breakerReporter is implemented by clients that guard their provider with a circuit breaker.
type breakerReporter interface {
	BreakerState() string
	BreakerOpen() bool
}

// KeyCounter reports how many client keys the inbound rate limiter is tracking.
type KeyCounter interface {
	Len() int
}

// HealthHandler reports process health without calling any upstream.
// An open summarizer breaker marks the service degraded but still answers 200:
// feed endpoints keep working while the model is unavailable.
type HealthHandler struct {
	Version     string
	Summarizer  SummarizerInfo
	RateLimiter KeyCounter // nil when rate limiting is disabled
	Now         func() time.Time
}

// ServeHTTP returns the aggregated health status.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	checks := make(map[string]CheckStatus)
	status := "healthy"

	if h.Summarizer != nil {
		check := h.checkSummarizer()
		if check.Status != "healthy" {
			status = "degraded"
		}
		checks["summarizer"] = check
	}

	if h.RateLimiter != nil {
		checks["rate_limiter"] = CheckStatus{
			Status:  "healthy",
			Details: map[string]any{"active_keys": h.RateLimiter.Len()},
		}
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Timestamp: now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkSummarizer() CheckStatus {
	details := map[string]any{"provider": h.Summarizer.Provider()}

	br, ok := h.Summarizer.(breakerReporter)
	if !ok {
		return CheckStatus{Status: "healthy", Details: details}
	}

	details["circuit_breaker"] = br.BreakerState()
	if br.BreakerOpen() {
		return CheckStatus{Status: "degraded", Message: "circuit breaker open", Details: details}
	}
	return CheckStatus{Status: "healthy", Details: details}
}

// LiveHandler handles liveness probe requests.
type LiveHandler struct{}

// ServeHTTP always returns 200 OK while the process can respond.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
