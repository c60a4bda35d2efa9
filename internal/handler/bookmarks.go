package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/designweb/gallery/internal/auth"
	"github.com/designweb/gallery/internal/bookmarks"
	"github.com/designweb/gallery/internal/content"
	"github.com/designweb/gallery/internal/store"
)

// BoardsPage is the template data for the bookmark boards index.
type BoardsPage struct {
	BasePage
	Folders []*store.Folder
	Error   string // inline form error (empty name)
}

// BoardPage is the template data for a single board's site grid.
type BoardPage struct {
	BasePage
	Folder *store.Folder
	Sites  []content.Site
}

// BookmarksHandler serves the bookmark boards and the save/undo mutations.
// All routes require auth; the per-user state lives in the bookmark container.
type BookmarksHandler struct {
	content  *content.Client
	sessions *scs.SessionManager
	marks    *bookmarks.Manager
	folders  store.FolderStoreIface
	bmStore  store.BookmarkStoreIface
}

func NewBookmarksHandler(c *content.Client, sm *scs.SessionManager, bm *bookmarks.Manager, fs store.FolderStoreIface, bs store.BookmarkStoreIface) *BookmarksHandler {
	return &BookmarksHandler{content: c, sessions: sm, marks: bm, folders: fs, bmStore: bs}
}

// Index renders GET /bookmarks: the board grid with per-board counts and the
// create-board form.
func (h *BookmarksHandler) Index(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	c := h.marks.For(user)
	c.FetchFolders(r.Context())
	c.FetchBookmarks(r.Context())

	data := BoardsPage{
		BasePage: newBasePage(r, h.sessions),
		Folders:  c.Folders(),
	}
	if isHTMX(r) {
		renderFragment(w, "folder_list", data)
		return
	}
	render(w, "bookmarks/index.html", data)
}

// CreateFolder handles POST /bookmarks/folders with a "name" form field.
func (h *BookmarksHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	c := h.marks.For(user)
	_, err := c.AddFolder(r.Context(), r.FormValue("name"))
	if errors.Is(err, store.ErrEmptyName) {
		data := BoardsPage{
			BasePage: newBasePage(r, h.sessions),
			Folders:  c.Folders(),
			Error:    "Board name cannot be empty",
		}
		if isHTMX(r) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			renderFragment(w, "folder_list", data)
			return
		}
		render(w, "bookmarks/index.html", data)
		return
	}

	if isHTMX(r) {
		renderFragment(w, "folder_list", BoardsPage{
			BasePage: newBasePage(r, h.sessions),
			Folders:  c.Folders(),
		})
		return
	}
	http.Redirect(w, r, "/bookmarks", http.StatusSeeOther)
}

// DeleteFolder handles DELETE /bookmarks/folders/{id}. Ownership is checked
// before the container acts; the DB cascade removes contained bookmarks.
func (h *BookmarksHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	folderID := chi.URLParam(r, "id")

	folder, err := h.folders.GetByID(r.Context(), folderID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && folder.UserID != user.ID) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "could not load board", http.StatusInternalServerError)
		return
	}

	c := h.marks.For(user)
	c.DeleteFolder(r.Context(), folderID)

	if isHTMX(r) {
		renderFragment(w, "folder_list", BoardsPage{
			BasePage: newBasePage(r, h.sessions),
			Folders:  c.Folders(),
		})
		return
	}
	http.Redirect(w, r, "/bookmarks", http.StatusSeeOther)
}

// Board renders GET /bookmarks/{id}: the sites saved to one board, resolved
// against the content API by document id.
func (h *BookmarksHandler) Board(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	folderID := chi.URLParam(r, "id")

	folder, err := h.folders.GetByID(r.Context(), folderID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && folder.UserID != user.ID) {
		w.WriteHeader(http.StatusNotFound)
		render(w, "404.html", newBasePage(r, h.sessions))
		return
	}
	if err != nil {
		http.Error(w, "could not load board", http.StatusInternalServerError)
		return
	}

	marks, err := h.bmStore.ListByFolder(r.Context(), folderID)
	if err != nil {
		http.Error(w, "could not load bookmarks", http.StatusInternalServerError)
		return
	}
	ids := make([]string, 0, len(marks))
	for _, m := range marks {
		ids = append(ids, m.WebsiteID)
	}

	sites, err := h.content.SitesByIDs(r.Context(), ids)
	if err != nil {
		http.Error(w, "could not load sites", http.StatusInternalServerError)
		return
	}

	render(w, "bookmarks/board.html", BoardPage{
		BasePage: newBasePage(r, h.sessions),
		Folder:   folder,
		Sites:    sites,
	})
}

// Save handles POST /bookmarks with a "folder_id" form field: saves the
// website targeted by the open dialog into the chosen board.
func (h *BookmarksHandler) Save(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	folderID := r.FormValue("folder_id")
	if folderID == "" {
		http.Error(w, "folder_id is required", http.StatusBadRequest)
		return
	}

	folder, err := h.folders.GetByID(r.Context(), folderID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && folder.UserID != user.ID) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "could not load board", http.StatusInternalServerError)
		return
	}

	c := h.marks.For(user)
	c.AddBookmark(r.Context(), folderID)

	h.redirectBack(w, r)
}

// UndoSave handles POST /bookmarks/{id}/undo, the toast's undo action.
func (h *BookmarksHandler) UndoSave(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	c := h.marks.For(user)
	c.Undo(r.Context(), chi.URLParam(r, "id"))
	h.redirectBack(w, r)
}

// redirectBack returns the browser to the page the mutation came from. HTMX
// callers get a full-page refresh via HX-Redirect so the flash toast renders.
// The Referer is reduced to a same-origin path so the endpoint cannot be used
// as an open redirect.
func (h *BookmarksHandler) redirectBack(w http.ResponseWriter, r *http.Request) {
	target := sameOriginPath(r)
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// sameOriginPath extracts the path (plus query) from the request's Referer,
// falling back to "/" when it is absent, malformed, or points off-site.
func sameOriginPath(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil {
		return "/"
	}
	if ref.Host != "" && ref.Host != r.Host {
		return "/"
	}
	if ref.Path == "" || !strings.HasPrefix(ref.Path, "/") {
		return "/"
	}
	target := ref.Path
	if ref.RawQuery != "" {
		target += "?" + ref.RawQuery
	}
	return target
}
