package rest

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// FrontendHandler serves static files from a directory and falls back to the
// index file for unknown paths, so client-side routes resolve.
type FrontendHandler struct {
	staticPath string
	indexPath  string
	files      http.Handler
}

func NewFrontendHandler(staticPath, indexPath string) *FrontendHandler {
	return &FrontendHandler{
		staticPath: staticPath,
		indexPath:  indexPath,
		files:      http.FileServer(http.Dir(staticPath)),
	}
}

func (h *FrontendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, filepath.Clean("/"+r.URL.Path))
	fi, err := os.Stat(path)
	if os.IsNotExist(err) || (err == nil && fi.IsDir()) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}
	if err != nil {
		log.Errorf("failed to stat frontend file %s: %v", path, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.files.ServeHTTP(w, r)
}
