package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStaticDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>News</h1>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "assets"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "style.css"), []byte("body{}"), 0o600))
	return dir
}

func TestStatic(t *testing.T) {
	h := Static(newStaticDir(t))

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{"root serves index", "/", http.StatusOK, "<h1>News</h1>"},
		{"asset", "/app.js", http.StatusOK, "console.log(1)"},
		{"nested asset", "/assets/style.css", http.StatusOK, "body{}"},
		{"missing file", "/missing.js", http.StatusNotFound, ""},
		{"directory without index", "/assets/", http.StatusNotFound, ""},
		{"traversal", "/../etc/passwd", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestStatic_MissingDirectory(t *testing.T) {
	h := Static(filepath.Join(t.TempDir(), "does-not-exist"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
