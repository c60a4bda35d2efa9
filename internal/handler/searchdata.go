package handler

import (
	"encoding/json"
	"net/http"

	"github.com/designweb/gallery/internal/content"
)

// SearchDataHandler serves the facet payload consumed by the filter overlay.
type SearchDataHandler struct {
	content *content.Client
}

func NewSearchDataHandler(c *content.Client) *SearchDataHandler {
	return &SearchDataHandler{content: c}
}

// Get handles GET /api/search-data.
func (h *SearchDataHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, err := h.content.SearchData(r.Context())
	if err != nil {
		http.Error(w, `{"error":"search data unavailable"}`, http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}
