package reqbody

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/fetch-rss", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestString_JSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"present", `{"feedUrl":"https://example.com/feed.xml"}`, "https://example.com/feed.xml"},
		{"missing", `{"other":"x"}`, ""},
		{"null", `{"feedUrl":null}`, ""},
		{"number", `{"feedUrl":42}`, ""},
		{"empty object", `{}`, ""},
		{"empty body", ``, ""},
		{"json null document", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := String(jsonRequest(tt.body), "feedUrl")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestString_JSONWithoutContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"subreddit":"golang"}`))

	got, err := String(req, "subreddit")
	require.NoError(t, err)
	assert.Equal(t, "golang", got)
}

func TestString_Malformed(t *testing.T) {
	for _, body := range []string{`{"feedUrl":`, `[]`, `"text"`, `not json`} {
		t.Run(body, func(t *testing.T) {
			_, err := String(jsonRequest(body), "feedUrl")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed))
			assert.Equal(t, http.StatusBadRequest, StatusFor(err))
		})
	}
}

func TestString_Form(t *testing.T) {
	form := url.Values{"htmlContent": {"<p>Rates & spreads</p>"}}
	req := httptest.NewRequest(http.MethodPost, "/api/summarize-news", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")

	got, err := String(req, "htmlContent")
	require.NoError(t, err)
	assert.Equal(t, "<p>Rates & spreads</p>", got)
}

func TestString_TooLarge(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"json", "application/json", `{"htmlContent":"` + strings.Repeat("a", 200) + `"}`},
		{"form", "application/x-www-form-urlencoded", "htmlContent=" + strings.Repeat("a", 200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			req.Body = http.MaxBytesReader(rec, req.Body, 64)

			_, err := String(req, "htmlContent")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrTooLarge))
			assert.Equal(t, http.StatusRequestEntityTooLarge, StatusFor(err))
		})
	}
}
