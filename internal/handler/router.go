package handler

import (
	"io/fs"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/designweb/gallery/internal/auth"
	"github.com/designweb/gallery/internal/bookmarks"
	"github.com/designweb/gallery/internal/content"
	"github.com/designweb/gallery/internal/store"
	"github.com/designweb/gallery/web"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	SessionManager *scs.SessionManager
	AuthHandlers   *auth.Handlers
	AuthMiddleware *auth.Middleware
	Content        *content.Client
	Bookmarks      *bookmarks.Manager
	FolderStore    store.FolderStoreIface
	BookmarkStore  store.BookmarkStoreIface
}

// NewRouter assembles the full chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(deps.SessionManager.LoadAndSave)

	// Static assets (embedded). Use fs.Sub so the file server sees
	// css/app.css and js/htmx.min.js directly, not static/css/... paths.
	staticSub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("failed to sub static FS: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static", http.FileServerFS(staticSub)))

	// Auth routes (no auth required)
	r.Get("/auth/login", deps.AuthHandlers.Login)
	r.Get("/auth/callback", deps.AuthHandlers.Callback)
	r.Post("/auth/logout", deps.AuthHandlers.Logout)

	// Theme toggle — no auth required.
	themeHandler := NewThemeHandler()
	r.Post("/theme", themeHandler.Toggle)

	gallery := NewGalleryHandler(deps.Content, deps.SessionManager, deps.Bookmarks)
	sites := NewSitesHandler(deps.Content, deps.SessionManager, deps.Bookmarks)
	sections := NewSectionsHandler(deps.Content, deps.SessionManager)
	blogs := NewBlogsHandler(deps.Content, deps.SessionManager)
	searchData := NewSearchDataHandler(deps.Content)
	boards := NewBookmarksHandler(deps.Content, deps.SessionManager, deps.Bookmarks, deps.FolderStore, deps.BookmarkStore)

	// Public pages. OptionalUser so signed-in users see saved state and their
	// avatar without the pages requiring auth.
	r.Group(func(r chi.Router) {
		r.Use(deps.AuthMiddleware.OptionalUser)

		r.Get("/", gallery.Index)
		r.Get("/sites/{slug}", sites.Detail)
		r.Get("/sections", sections.Index)
		r.Get("/blogs", blogs.Index)
		r.Get("/api/search-data", searchData.Get)
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)

		r.Get("/bookmarks", boards.Index)
		r.Post("/bookmarks", boards.Save)
		r.Post("/bookmarks/folders", boards.CreateFolder)
		r.Delete("/bookmarks/folders/{id}", boards.DeleteFolder)
		r.Get("/bookmarks/{id}", boards.Board)
		r.Post("/bookmarks/{id}/undo", boards.UndoSave)

		r.Post("/sites/{slug}/save", sites.OpenSave)
		r.Post("/save-dialog/close", sites.CloseSave)
	})

	return r
}
