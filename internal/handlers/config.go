package handlers

import (
	"errors"
	"net/http"

	"video-grid/internal/logging"
	"video-grid/internal/settings"
)

// GetConfig returns the persisted grid settings, or the defaults when none
// have been saved.
func (h *Handlers) GetConfig(w http.ResponseWriter, _ *http.Request) {
	s, err := h.settings.Load()
	if err != nil {
		logging.Warn("Serving default settings: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, s)
}

// SaveConfig validates and persists the posted settings.
func (h *Handlers) SaveConfig(w http.ResponseWriter, r *http.Request) {
	s, err := settings.Decode(r.Body)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.settings.Save(s); err != nil {
		if errors.Is(err, settings.ErrInvalid) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logging.Error("Error saving config: %v", err)
		http.Error(w, "Error saving config", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]bool{"success": true})
}
