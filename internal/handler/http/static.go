package http

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
)

// Static serves the browser client from dir at the site root.
// Directories without an index.html are reported as 404 instead of being listed.
func Static(dir string) http.Handler {
	return http.FileServer(indexOnlyFS{fs: http.Dir(dir)})
}

type indexOnlyFS struct {
	fs http.FileSystem
}

func (f indexOnlyFS) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if !info.IsDir() {
		return file, nil
	}

	index, err := f.fs.Open(path.Join(name, "index.html"))
	if err != nil {
		_ = file.Close()
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fs.ErrNotExist
		}
		return nil, err
	}
	_ = index.Close()
	return file, nil
}
