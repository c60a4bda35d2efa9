package handler

import (
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/designweb/gallery/internal/content"
)

// BlogsPage is the template data for the blog/notes feed.
type BlogsPage struct {
	BasePage
	Blogs []content.Blog
}

// BlogsHandler serves the reading-notes feed.
type BlogsHandler struct {
	content  *content.Client
	sessions *scs.SessionManager
}

func NewBlogsHandler(c *content.Client, sm *scs.SessionManager) *BlogsHandler {
	return &BlogsHandler{content: c, sessions: sm}
}

// Index renders GET /blogs, newest entries first.
func (h *BlogsHandler) Index(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.content.Blogs(r.Context())
	if err != nil {
		http.Error(w, "could not load blogs", http.StatusInternalServerError)
		return
	}
	render(w, "blogs.html", BlogsPage{
		BasePage: newBasePage(r, h.sessions),
		Blogs:    blogs,
	})
}
