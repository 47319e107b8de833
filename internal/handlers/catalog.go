package handlers

import (
	"errors"
	"net/http"
	"time"

	"video-grid/internal/catalog"
	"video-grid/internal/logging"
)

// GetCatalog returns every directory and video under the media root as a
// flat JSON array. A successful walk also drops the suggestion snapshot so
// suggestions never lag behind a catalog a client has already seen.
func (h *Handlers) GetCatalog(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	entries, err := h.scanner.Build(r.Context())
	if err != nil {
		logging.Error("Catalog build failed: %v", err)
		http.Error(w, "Catalog Error", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}
	if h.shared != nil {
		h.shared.Invalidate()
	}

	logging.Debug("Catalog built in %v, %d entries", time.Since(start), len(entries))

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, entries)
}

// ListDirectory returns the sorted children of ?path= (empty for the root).
func (h *Handlers) ListDirectory(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("path")

	items, err := h.scanner.ListDirectory(rel)
	if err != nil {
		if errors.Is(err, catalog.ErrForbidden) {
			logging.Warn("Rejected listing outside media root: %q", rel)
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		logging.Debug("Listing %q failed: %v", rel, err)
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if items == nil {
		items = []catalog.Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, items)
}
