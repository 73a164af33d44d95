package httphandler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

// spaHandler serves files from dir and answers unknown paths with index.html so
// client-side routes survive a reload. Unknown /api/ paths still get a JSON 404.
func spaHandler(dir string) http.Handler {
	root := os.DirFS(dir)
	files := http.FileServerFS(root)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}

		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" {
			name = "."
		}
		if _, err := fs.Stat(root, name); errors.Is(err, fs.ErrNotExist) {
			http.ServeFileFS(w, r, root, "index.html")
			return
		}

		files.ServeHTTP(w, r)
	})
}
