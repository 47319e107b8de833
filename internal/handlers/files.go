package handlers

import (
	"errors"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"video-grid/internal/catalog"
	"video-grid/internal/filesystem"
	"video-grid/internal/logging"
	"video-grid/internal/mediatypes"
)

// GetThumbnail serves a generated thumbnail from the thumbnails root.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=86400")
	h.serveWithin(w, r, h.thumbsDir, mux.Vars(r)["path"])
}

// StreamVideo serves a video from the media root. Range requests are
// handled by http.ServeContent.
func (h *Handlers) StreamVideo(w http.ResponseWriter, r *http.Request) {
	h.serveWithin(w, r, h.mediaDir, mux.Vars(r)["path"])
}

func (h *Handlers) serveWithin(w http.ResponseWriter, r *http.Request, root, rel string) {
	full, err := catalog.ResolveWithin(root, rel)
	if err != nil {
		if errors.Is(err, catalog.ErrForbidden) {
			logging.Warn("Rejected file request outside %s: %q", root, rel)
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	info, err := filesystem.StatWithRetry(h.fs, full, h.retry)
	if err != nil || info.IsDir() {
		w.Header().Del("Cache-Control")
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	f, err := filesystem.OpenWithRetry(h.fs, full, h.retry)
	if err != nil {
		logging.Error("Failed to open %s: %v", full, err)
		w.Header().Del("Cache-Control")
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logging.Debug("close %s: %v", full, closeErr)
		}
	}()

	if ct, ok := mediatypes.MimeTypes[strings.ToLower(filepath.Ext(full))]; ok {
		w.Header().Set("Content-Type", ct)
	}
	http.ServeContent(w, r, path.Base(rel), info.ModTime(), f)
}
