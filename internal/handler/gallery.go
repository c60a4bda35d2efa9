package handler

import (
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/designweb/gallery/internal/auth"
	"github.com/designweb/gallery/internal/bookmarks"
	"github.com/designweb/gallery/internal/content"
)

// GalleryPage is the template data for the site gallery.
type GalleryPage struct {
	BasePage
	Sites      []content.Site
	Query      string
	Categories []string // selected category slugs
	Fonts      []string
	Styles     []string
	Saved      map[string]bool // website id -> bookmarked, empty when signed out
}

// GalleryHandler serves the filterable website gallery.
type GalleryHandler struct {
	content  *content.Client
	sessions *scs.SessionManager
	marks    *bookmarks.Manager
}

func NewGalleryHandler(c *content.Client, sm *scs.SessionManager, bm *bookmarks.Manager) *GalleryHandler {
	return &GalleryHandler{content: c, sessions: sm, marks: bm}
}

// Index renders the gallery grid. Supports ?q= plus repeatable ?category=,
// ?font=, and ?style= slug filters; HTMX requests get the grid fragment only.
func (h *GalleryHandler) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := content.SiteFilters{
		Q:          q.Get("q"),
		Categories: q["category"],
		Fonts:      q["font"],
		Styles:     q["style"],
	}

	sites, err := h.content.Sites(r.Context(), filters)
	if err != nil {
		http.Error(w, "could not load sites", http.StatusInternalServerError)
		return
	}

	data := GalleryPage{
		BasePage:   newBasePage(r, h.sessions),
		Sites:      sites,
		Query:      filters.Q,
		Categories: filters.Categories,
		Fonts:      filters.Fonts,
		Styles:     filters.Styles,
		Saved:      savedSet(r, h.marks, sites),
	}

	if isHTMX(r) {
		renderFragment(w, "site_grid", data)
		return
	}
	render(w, "gallery.html", data)
}

// savedSet maps each listed site to its bookmarked state for the current user.
func savedSet(r *http.Request, bm *bookmarks.Manager, sites []content.Site) map[string]bool {
	saved := map[string]bool{}
	user := auth.UserFromContext(r.Context())
	if user == nil || bm == nil {
		return saved
	}
	c := bm.For(user)
	c.FetchBookmarks(r.Context())
	for _, s := range sites {
		if c.IsBookmarked(s.ID) {
			saved[s.ID] = true
		}
	}
	return saved
}
