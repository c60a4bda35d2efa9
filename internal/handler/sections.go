package handler

import (
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/designweb/gallery/internal/content"
)

// SectionsPage is the template data for the flattened section gallery.
type SectionsPage struct {
	BasePage
	Sections     []content.SectionInstance
	SectionTypes []content.Ref // sidebar facet list
	Selected     string        // selected section-type slug, "" or "all" for everything
	Query        string
}

// SectionsHandler serves the section-screenshot gallery.
type SectionsHandler struct {
	content  *content.Client
	sessions *scs.SessionManager
}

func NewSectionsHandler(c *content.Client, sm *scs.SessionManager) *SectionsHandler {
	return &SectionsHandler{content: c, sessions: sm}
}

// Index renders GET /sections with ?section= and ?q= filters. HTMX requests
// get the grid fragment only; the sidebar stays put.
func (h *SectionsHandler) Index(w http.ResponseWriter, r *http.Request) {
	filters := content.SectionFilters{
		Q:           r.URL.Query().Get("q"),
		SectionSlug: r.URL.Query().Get("section"),
	}

	sections, err := h.content.Sections(r.Context(), filters)
	if err != nil {
		http.Error(w, "could not load sections", http.StatusInternalServerError)
		return
	}

	data := SectionsPage{
		BasePage: newBasePage(r, h.sessions),
		Sections: sections,
		Selected: filters.SectionSlug,
		Query:    filters.Q,
	}

	if isHTMX(r) {
		renderFragment(w, "section_grid", data)
		return
	}

	// The sidebar needs the section-type facets on full page loads only.
	facets, err := h.content.SearchData(r.Context())
	if err != nil {
		http.Error(w, "could not load sections", http.StatusInternalServerError)
		return
	}
	data.SectionTypes = facets.SectionTypes
	render(w, "sections.html", data)
}
