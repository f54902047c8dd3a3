// Package reqbody reads single string fields from JSON or form-encoded request bodies.
package reqbody

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

var (
	// ErrMalformed is returned when the body cannot be decoded.
	ErrMalformed = errors.New("malformed request body")

	// ErrTooLarge is returned when the body exceeds the MaxBytesReader limit.
	ErrTooLarge = errors.New("request body too large")
)

// String returns the named field as a string.
//
// application/x-www-form-urlencoded bodies are read from the form; anything
// else is decoded as a JSON object. A missing field, a null, or a non-string
// JSON value all yield "" with no error so callers treat them as absent.
func String(r *http.Request, field string) (string, error) {
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			return "", classify(err)
		}
		return r.PostForm.Get(field), nil
	}

	if r.Body == nil || r.Body == http.NoBody {
		return "", nil
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		// 空ボディは「フィールドなし」と同じ扱い
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return "", classify(err)
	}

	raw, ok := body[field]
	if !ok {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", nil
	}
	return s, nil
}

func isForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(ct)
	return err == nil && mt == "application/x-www-form-urlencoded"
}

func classify(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: limit %d bytes", ErrTooLarge, maxErr.Limit)
	}
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}

// StatusFor maps a String error to its HTTP status.
func StatusFor(err error) int {
	if errors.Is(err, ErrTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
