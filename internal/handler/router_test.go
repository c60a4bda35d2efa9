package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/designweb/gallery/internal/auth"
	"github.com/designweb/gallery/internal/bookmarks"
	"github.com/designweb/gallery/internal/content"
	"github.com/designweb/gallery/internal/store"
	"github.com/designweb/gallery/internal/testutil"
)

// fakeContentServer answers GROQ queries with canned documents, dispatching
// on distinctive fragments of the query text.
func fakeContentServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")

		write := func(result string) {
			fmt.Fprintf(w, `{"result": %s}`, result)
		}

		switch {
		case strings.Contains(query, "slug.current == $slug"):
			var slug string
			_ = json.Unmarshal([]byte(r.URL.Query().Get("$slug")), &slug)
			if slug != "acme" {
				write("null")
				return
			}
			write(`{
				"_id": "site-acme", "name": "Acme", "slug": "acme",
				"url": "https://acme.example", "featured": true,
				"addedDate": "2026-01-02",
				"category": {"name": "Portfolio", "slug": "portfolio"},
				"sections": [{"_key": "k1", "image": "https://img/acme-hero.png", "label": "Hero",
					"sectionType": {"name": "Hero", "slug": "hero"}}]
			}`)
		case strings.Contains(query, "_id in $ids"):
			var ids []string
			_ = json.Unmarshal([]byte(r.URL.Query().Get("$ids")), &ids)
			sites := make([]string, 0, len(ids))
			for _, id := range ids {
				if id == "site-acme" {
					sites = append(sites, `{"_id": "site-acme", "name": "Acme", "slug": "acme", "url": "https://acme.example"}`)
				}
			}
			write("[" + strings.Join(sites, ",") + "]")
		case strings.Contains(query, `"sections": sections[`):
			write(`[{"name": "Acme", "slug": "acme", "url": "https://acme.example",
				"sections": [{"_key": "k1", "image": "https://img/acme-hero.png", "label": "Hero",
					"sectionType": {"name": "Hero", "slug": "hero"}}]}]`)
		case strings.Contains(query, `_type == "blog"`):
			write(`[{"_id": "b1", "title": "On grids", "authorName": "Jo", "addedOn": "2026-02-01",
				"siteLink": "https://blog.example", "notes": [{"_key": "n1", "highlight": "Grids are good."}]}]`)
		case strings.HasPrefix(query, "{"):
			write(`{
				"categories": [{"name": "Portfolio", "slug": "portfolio"}],
				"fonts": [{"name": "Inter", "slug": "inter"}],
				"styles": [{"name": "Minimal", "slug": "minimal"}],
				"sectionTypes": [{"name": "Hero", "slug": "hero"}]
			}`)
		default:
			write(`[
				{"_id": "site-acme", "name": "Acme", "slug": "acme", "url": "https://acme.example",
					"category": {"name": "Portfolio", "slug": "portfolio"}},
				{"_id": "site-zen", "name": "Zen", "slug": "zen", "url": "https://zen.example"}
			]`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

type routerTestEnv struct {
	router   http.Handler
	sessions *scs.SessionManager
	users    *store.UserStore
	folders  *store.FolderStore
	marks    *store.BookmarkStore
	userID   string
}

// newRouterTestEnv wires the full router against an in-memory SQLite database
// and a fake content API. OIDC is not exercised; sessions are seeded directly.
func newRouterTestEnv(t *testing.T) *routerTestEnv {
	t.Helper()
	dbConn := testutil.NewTestDB(t)

	users := store.NewUserStore(dbConn)
	folders := store.NewFolderStore(dbConn)
	marks := store.NewBookmarkStore(dbConn)

	u, err := users.Upsert(context.Background(), "test", "sub1", "test@example.com", "Test", "")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	sessions := scs.New()
	sessions.Lifetime = time.Hour

	client := content.NewClient(content.Options{
		BaseURL:    fakeContentServer(t).URL,
		Dataset:    "production",
		APIVersion: "2024-01-01",
	})

	manager := bookmarks.NewManager(folders, marks, NewFlashNotifier(sessions), nil)
	authHandlers := auth.NewHandlers(nil, sessions, users, manager, true)
	authMiddleware := auth.NewMiddleware(sessions, users)

	router := NewRouter(Deps{
		SessionManager: sessions,
		AuthHandlers:   authHandlers,
		AuthMiddleware: authMiddleware,
		Content:        client,
		Bookmarks:      manager,
		FolderStore:    folders,
		BookmarkStore:  marks,
	})

	return &routerTestEnv{
		router:   router,
		sessions: sessions,
		users:    users,
		folders:  folders,
		marks:    marks,
		userID:   u.ID,
	}
}

// signIn creates a committed session for the seeded user and returns its token.
func (e *routerTestEnv) signIn(t *testing.T) string {
	t.Helper()
	ctx, err := e.sessions.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	e.sessions.Put(ctx, auth.SessionUserIDKey, e.userID)
	token, _, err := e.sessions.Commit(ctx)
	if err != nil {
		t.Fatalf("commit session: %v", err)
	}
	return token
}

func (e *routerTestEnv) do(t *testing.T, method, target, token string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: token})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestGallery_Index(t *testing.T) {
	e := newRouterTestEnv(t)

	w := e.do(t, http.MethodGet, "/", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Acme") || !strings.Contains(body, "Zen") {
		t.Error("gallery should list both seeded sites")
	}
	if !strings.Contains(body, "<html") {
		t.Error("full page load should render the base layout")
	}
}

func TestGallery_HTMXFragment(t *testing.T) {
	e := newRouterTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/?q=acme", nil)
	req.Header.Set("HX-Request", "true")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "<html") {
		t.Error("HTMX request should get the grid fragment, not the full page")
	}
	if !strings.Contains(body, `id="site-grid"`) {
		t.Error("fragment should contain the site grid")
	}
}

func TestSiteDetail(t *testing.T) {
	e := newRouterTestEnv(t)

	w := e.do(t, http.MethodGet, "/sites/acme", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "https://acme.example") {
		t.Error("detail page should link the live site")
	}

	w = e.do(t, http.MethodGet, "/sites/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown slug status = %d, want 404", w.Code)
	}
}

func TestSections_Index(t *testing.T) {
	e := newRouterTestEnv(t)

	w := e.do(t, http.MethodGet, "/sections?section=hero", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "acme-hero.png") {
		t.Error("sections page should render the section shot")
	}
	if !strings.Contains(body, "Hero") {
		t.Error("sidebar should list the section type")
	}
}

func TestBlogs_Index(t *testing.T) {
	e := newRouterTestEnv(t)

	w := e.do(t, http.MethodGet, "/blogs", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Grids are good.") {
		t.Error("blog highlights should render")
	}
}

func TestSearchData_JSON(t *testing.T) {
	e := newRouterTestEnv(t)

	w := e.do(t, http.MethodGet, "/api/search-data", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var data content.SearchData
	if err := json.Unmarshal(w.Body.Bytes(), &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(data.Categories) != 1 || data.Categories[0].Slug != "portfolio" {
		t.Errorf("categories = %+v", data.Categories)
	}
}

func TestTheme_Toggle(t *testing.T) {
	e := newRouterTestEnv(t)

	w := e.do(t, http.MethodPost, "/theme", "", url.Values{"theme": {"dark"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "theme" && c.Value == "dark" {
			found = true
		}
	}
	if !found {
		t.Error("theme cookie not set")
	}
	if w.Header().Get("HX-Trigger") == "" {
		t.Error("missing HX-Trigger header")
	}

	w = e.do(t, http.MethodPost, "/theme", "", url.Values{"theme": {"neon"}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid theme status = %d, want 400", w.Code)
	}
}

func TestBookmarks_RequireAuth(t *testing.T) {
	e := newRouterTestEnv(t)

	w := e.do(t, http.MethodGet, "/bookmarks", "", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); !strings.HasPrefix(loc, "/auth/login") {
		t.Errorf("redirect = %q, want /auth/login", loc)
	}
}

func TestBookmarks_BoardLifecycle(t *testing.T) {
	e := newRouterTestEnv(t)
	token := e.signIn(t)

	// Create a board.
	w := e.do(t, http.MethodPost, "/bookmarks/folders", token, url.Values{"name": {"Inspiration"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("create status = %d, want 303", w.Code)
	}

	w = e.do(t, http.MethodGet, "/bookmarks", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("index status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Inspiration") {
		t.Error("board list should show the new board")
	}

	folders, err := e.folders.ListByUser(context.Background(), e.userID)
	if err != nil || len(folders) != 1 {
		t.Fatalf("folders = %v, %v", folders, err)
	}

	// Empty name is rejected inline.
	w = e.do(t, http.MethodPost, "/bookmarks/folders", token, url.Values{"name": {"   "}})
	if !strings.Contains(w.Body.String(), "cannot be empty") {
		t.Error("empty name should render the inline error")
	}

	// Delete the board.
	w = e.do(t, http.MethodDelete, "/bookmarks/folders/"+folders[0].ID, token, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("delete status = %d, want 303", w.Code)
	}
	folders, _ = e.folders.ListByUser(context.Background(), e.userID)
	if len(folders) != 0 {
		t.Error("board should be gone")
	}
}

func TestBookmarks_SaveAndUndo(t *testing.T) {
	e := newRouterTestEnv(t)
	token := e.signIn(t)

	if w := e.do(t, http.MethodPost, "/bookmarks/folders", token, url.Values{"name": {"A"}}); w.Code != http.StatusSeeOther {
		t.Fatalf("create folder status = %d", w.Code)
	}
	folders, _ := e.folders.ListByUser(context.Background(), e.userID)
	if len(folders) != 1 {
		t.Fatalf("folders = %d, want 1", len(folders))
	}

	// Open the save dialog for Acme; the fragment lists the board.
	w := e.do(t, http.MethodPost, "/sites/acme/save", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("open dialog status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), folders[0].ID) {
		t.Error("dialog should offer the user's board")
	}

	// Save into the board.
	w = e.do(t, http.MethodPost, "/bookmarks", token, url.Values{"folder_id": {folders[0].ID}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("save status = %d, want 303", w.Code)
	}
	marks, err := e.marks.ListByUser(context.Background(), e.userID)
	if err != nil || len(marks) != 1 {
		t.Fatalf("bookmarks = %v, %v", marks, err)
	}
	if marks[0].WebsiteID != "site-acme" {
		t.Errorf("website id = %s, want site-acme", marks[0].WebsiteID)
	}

	// The board page resolves the saved site through the content API.
	w = e.do(t, http.MethodGet, "/bookmarks/"+folders[0].ID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("board status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Acme") {
		t.Error("board page should show the saved site")
	}

	// Undo removes the row.
	w = e.do(t, http.MethodPost, "/bookmarks/"+marks[0].ID+"/undo", token, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("undo status = %d, want 303", w.Code)
	}
	marks, _ = e.marks.ListByUser(context.Background(), e.userID)
	if len(marks) != 0 {
		t.Error("bookmark should be gone after undo")
	}
}

func TestBookmarks_RedirectBackStaysOnSite(t *testing.T) {
	e := newRouterTestEnv(t)
	token := e.signIn(t)

	if w := e.do(t, http.MethodPost, "/bookmarks/folders", token, url.Values{"name": {"A"}}); w.Code != http.StatusSeeOther {
		t.Fatalf("create folder status = %d", w.Code)
	}
	folders, _ := e.folders.ListByUser(context.Background(), e.userID)
	if w := e.do(t, http.MethodPost, "/sites/acme/save", token, nil); w.Code != http.StatusOK {
		t.Fatalf("open dialog status = %d", w.Code)
	}

	// An off-site Referer must not become the redirect target.
	req := httptest.NewRequest(http.MethodPost, "/bookmarks", strings.NewReader(url.Values{"folder_id": {folders[0].ID}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "https://evil.example/steal")
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("off-site referer redirect = %q, want /", loc)
	}

	// A same-origin Referer keeps its path and query.
	marks, _ := e.marks.ListByUser(context.Background(), e.userID)
	if len(marks) != 1 {
		t.Fatalf("bookmarks = %d, want 1", len(marks))
	}
	req = httptest.NewRequest(http.MethodPost, "/bookmarks/"+marks[0].ID+"/undo", nil)
	req.Header.Set("Referer", "http://example.com/sites/acme?tab=sections")
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if loc := w.Header().Get("Location"); loc != "/sites/acme?tab=sections" {
		t.Errorf("same-origin referer redirect = %q, want /sites/acme?tab=sections", loc)
	}
}

func TestBookmarks_ForeignBoardHidden(t *testing.T) {
	e := newRouterTestEnv(t)
	token := e.signIn(t)

	// A board belonging to someone else 404s for this user.
	other, err := e.users.Upsert(context.Background(), "test", "sub2", "other@example.com", "Other", "")
	if err != nil {
		t.Fatalf("seed other user: %v", err)
	}
	stranger, err := e.folders.Create(context.Background(), other.ID, "Private")
	if err != nil {
		t.Fatalf("seed foreign folder: %v", err)
	}
	w := e.do(t, http.MethodGet, "/bookmarks/"+stranger.ID, token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("foreign board status = %d, want 404", w.Code)
	}
}
