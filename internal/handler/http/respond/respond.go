// Package respond writes JSON responses for the API handlers.
// Error bodies always have the shape {"error": "<message>"}; internal causes are
// logged with secrets masked and never sent to the client.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"news-digest/internal/observability/logging"
)

// GenericInternalMessage is returned for 5xx errors that carry no user message.
const GenericInternalMessage = "internal server error"

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// ヘッダー送信済みなのでログのみ
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Message writes {"error": msg} with the given status code.
func Message(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, ErrorBody{Error: msg})
}

// Error writes err's message as the error body. Only use it for errors whose text
// is meant for the client.
func Error(w http.ResponseWriter, code int, err error) {
	Message(w, code, err.Error())
}

// MethodNotAllowed answers every request with 405 and an Allow header.
// Mount it on "GET <path>" for POST-only paths that a "GET /" catch-all would otherwise shadow.
func MethodNotAllowed(allowed ...string) http.Handler {
	allow := strings.Join(allowed, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", allow)
		Message(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// AppError is an error type that carries a user-facing message.
type AppError struct {
	UserMsg string // Message to display to users
	Err     error  // Internal error (logged for debugging)
	Code    int    // HTTP status code
}

// Error returns the error message, implementing the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

// Unwrap returns the underlying error, implementing the errors.Unwrap interface.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with the given parameters.
func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}

// SafeError writes err without leaking internals.
//
// An *AppError anywhere in the chain decides the status and message, and its
// cause is logged. Other 5xx errors become GenericInternalMessage. Errors below
// 500 are written as-is. r may be nil; when set, log lines carry its request ID.
func SafeError(w http.ResponseWriter, r *http.Request, code int, err error) {
	if err == nil {
		return
	}

	logger := slog.Default()
	if r != nil {
		logger = logging.WithRequestID(r.Context(), logger)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Err != nil {
			logger.Error("application error",
				slog.String("status", http.StatusText(appErr.Code)),
				slog.Int("code", appErr.Code),
				slog.String("user_message", appErr.UserMsg),
				slog.String("error", SanitizeError(appErr.Err)))
		}
		Message(w, appErr.Code, appErr.UserMsg)
		return
	}

	if code >= http.StatusInternalServerError {
		logger.Error("internal server error",
			slog.String("status", http.StatusText(code)),
			slog.Int("code", code),
			slog.String("error", SanitizeError(err)))
		Message(w, code, GenericInternalMessage)
		return
	}

	Message(w, code, err.Error())
}
