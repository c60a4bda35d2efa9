package handler

import (
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/designweb/gallery/internal/auth"
	"github.com/designweb/gallery/internal/bookmarks"
	"github.com/designweb/gallery/internal/content"
	"github.com/designweb/gallery/internal/store"
)

// SitePage is the template data for the site detail view.
type SitePage struct {
	BasePage
	Site       *content.Site
	Bookmarked bool
}

// SaveDialogData is the template data for the save-to-folder dialog fragment.
type SaveDialogData struct {
	Site    *content.Site
	Folders []*store.Folder
	Open    bool
}

// SitesHandler serves site detail pages and the bookmark save dialog.
type SitesHandler struct {
	content  *content.Client
	sessions *scs.SessionManager
	marks    *bookmarks.Manager
}

func NewSitesHandler(c *content.Client, sm *scs.SessionManager, bm *bookmarks.Manager) *SitesHandler {
	return &SitesHandler{content: c, sessions: sm, marks: bm}
}

// Detail renders GET /sites/{slug}: info panel, tags, section gallery, live
// preview, and the save button for signed-in users.
func (h *SitesHandler) Detail(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	site, err := h.content.SiteBySlug(r.Context(), slug)
	if errors.Is(err, content.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render(w, "404.html", newBasePage(r, h.sessions))
		return
	}
	if err != nil {
		http.Error(w, "could not load site", http.StatusInternalServerError)
		return
	}

	data := SitePage{
		BasePage: newBasePage(r, h.sessions),
		Site:     site,
	}
	if user := auth.UserFromContext(r.Context()); user != nil {
		c := h.marks.For(user)
		c.FetchBookmarks(r.Context())
		data.Bookmarked = c.IsBookmarked(site.ID)
	}
	render(w, "site.html", data)
}

// OpenSave handles POST /sites/{slug}/save: opens the save dialog for the
// site and returns the dialog fragment with the user's folders.
func (h *SitesHandler) OpenSave(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	site, err := h.content.SiteBySlug(r.Context(), slug)
	if errors.Is(err, content.ErrNotFound) {
		http.Error(w, "site not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "could not load site", http.StatusInternalServerError)
		return
	}

	c := h.marks.For(user)
	c.OpenSaveDialog(r.Context(), site.ID)

	renderFragment(w, "save_dialog", SaveDialogData{
		Site:    site,
		Folders: c.Folders(),
		Open:    true,
	})
}

// CloseSave handles POST /save-dialog/close: clears the dialog flag and
// returns an empty fragment so HTMX swaps the dialog away.
func (h *SitesHandler) CloseSave(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	h.marks.For(user).CloseSaveDialog()
	w.WriteHeader(http.StatusOK)
}
