package handlers

import (
	"net/http"
	"strconv"

	"video-grid/internal/logging"
	"video-grid/internal/search"
)

// SuggestionResponse is one fuzzy name match.
type SuggestionResponse struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Path       string  `json:"path"`
	Similarity float32 `json:"similarity"`
}

// SearchSuggestions offers catalog names close to ?q=, at most ?limit=
// (default 10). Requests share one catalog snapshot until it reaches its
// max age or a catalog request rebuilds the tree.
func (h *Handlers) SearchSuggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := 10
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	suggestions := []SuggestionResponse{}

	if search.Normalize(query) != "" {
		ix, err := h.shared.Get(r.Context())
		if err != nil {
			logging.Error("Search suggestions failed: %v", err)
			http.Error(w, "Search suggestions failed", http.StatusInternalServerError)
			return
		}
		for _, s := range search.Suggest(ix, query, limit, search.DefaultMinSimilarity) {
			suggestions = append(suggestions, SuggestionResponse{
				Name:       s.Name,
				Type:       string(s.Type),
				Path:       s.Path,
				Similarity: s.Similarity,
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, suggestions)
}
