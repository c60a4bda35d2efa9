package content

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// newTestClient points a Client at a stub query endpoint that returns the
// given result payload and records requests.
func newTestClient(t *testing.T, result string, hits *atomic.Int32, lastQuery *string, lastParams *map[string]string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if lastQuery != nil {
			*lastQuery = r.URL.Query().Get("query")
		}
		if lastParams != nil {
			params := map[string]string{}
			for name, vals := range r.URL.Query() {
				if strings.HasPrefix(name, "$") {
					params[name] = vals[0]
				}
			}
			*lastParams = params
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result": ` + result + `}`))
	}))
	t.Cleanup(srv.Close)

	return NewClient(Options{
		BaseURL:    srv.URL,
		Dataset:    "production",
		APIVersion: "2024-01-01",
		CacheTTL:   time.Minute,
	})
}

func TestClient_Sites_FilterParams(t *testing.T) {
	var lastQuery string
	var lastParams map[string]string
	c := newTestClient(t, `[{"_id": "site-1", "name": "Acme", "slug": "acme"}]`, nil, &lastQuery, &lastParams)

	sites, err := c.Sites(context.Background(), SiteFilters{
		Q:          "acme",
		Categories: []string{"portfolio"},
		Fonts:      []string{"inter"},
		Styles:     []string{"minimal", "dark"},
	})
	if err != nil {
		t.Fatalf("Sites: %v", err)
	}
	if len(sites) != 1 || sites[0].ID != "site-1" {
		t.Fatalf("sites = %+v, want site-1", sites)
	}

	for _, cond := range []string{
		`_type == "website"`,
		`name match $q`,
		`category->slug.current in $categories`,
		`count(fonts[]->slug.current[@ in $fonts]) > 0`,
		`count(styles[]->slug.current[@ in $styles]) > 0`,
		`order(addedDate desc)`,
	} {
		if !strings.Contains(lastQuery, cond) {
			t.Errorf("query missing %q:\n%s", cond, lastQuery)
		}
	}

	if lastParams["$q"] != `"*acme*"` {
		t.Errorf("$q = %q, want JSON-encoded wildcard match", lastParams["$q"])
	}
	var styles []string
	if err := json.Unmarshal([]byte(lastParams["$styles"]), &styles); err != nil || len(styles) != 2 {
		t.Errorf("$styles = %q, want JSON array of two slugs", lastParams["$styles"])
	}
}

func TestClient_Sites_NoFiltersOmitsParams(t *testing.T) {
	var lastQuery string
	var lastParams map[string]string
	c := newTestClient(t, `[]`, nil, &lastQuery, &lastParams)

	if _, err := c.Sites(context.Background(), SiteFilters{}); err != nil {
		t.Fatalf("Sites: %v", err)
	}
	if len(lastParams) != 0 {
		t.Errorf("params = %v, want none", lastParams)
	}
	if strings.Contains(lastQuery, "$q") {
		t.Errorf("unfiltered query should not reference $q:\n%s", lastQuery)
	}
}

func TestClient_SiteBySlug_NotFound(t *testing.T) {
	c := newTestClient(t, `null`, nil, nil, nil)

	_, err := c.SiteBySlug(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("SiteBySlug(missing) = %v, want ErrNotFound", err)
	}
}

func TestClient_SitesByIDs_Empty(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, `[]`, &hits, nil, nil)

	sites, err := c.SitesByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("SitesByIDs: %v", err)
	}
	if sites != nil {
		t.Errorf("sites = %v, want nil", sites)
	}
	if hits.Load() != 0 {
		t.Errorf("empty id set must not hit the API, got %d requests", hits.Load())
	}
}

func TestClient_Sections_Flattens(t *testing.T) {
	result := `[
		{"name": "Acme", "slug": "acme", "url": "https://acme.test", "sections": [
			{"_key": "k1", "image": "https://cdn/k1.png", "sectionType": {"name": "Hero", "slug": "hero"}},
			{"_key": "k2", "image": "https://cdn/k2.png", "sectionType": {"name": "Footer", "slug": "footer"}}
		]},
		{"name": "Beta", "slug": "beta", "url": "https://beta.test", "sections": null}
	]`
	c := newTestClient(t, result, nil, nil, nil)

	instances, err := c.Sections(context.Background(), SectionFilters{})
	if err != nil {
		t.Fatalf("Sections: %v", err)
	}
	if len(instances) != 2 {
		t.Fatalf("len = %d, want 2 flattened instances", len(instances))
	}
	if instances[0].Website.Slug != "acme" || instances[0].Key != "k1" {
		t.Errorf("instance[0] = %+v, want acme/k1", instances[0])
	}
	if instances[1].SectionType.Slug != "footer" {
		t.Errorf("instance[1] type = %q, want footer", instances[1].SectionType.Slug)
	}
}

func TestClient_FetchUsesCache(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, `[]`, &hits, nil, nil)

	ctx := context.Background()
	if _, err := c.Sites(ctx, SiteFilters{Q: "x"}); err != nil {
		t.Fatalf("Sites: %v", err)
	}
	if _, err := c.Sites(ctx, SiteFilters{Q: "x"}); err != nil {
		t.Fatalf("Sites (cached): %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("requests = %d, want 1 (second call from cache)", hits.Load())
	}

	// A different filter set is a different cache key.
	if _, err := c.Sites(ctx, SiteFilters{Q: "y"}); err != nil {
		t.Fatalf("Sites (new key): %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("requests = %d, want 2 after distinct query", hits.Load())
	}
}

func TestClient_QueryErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad query", http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Options{BaseURL: srv.URL, Dataset: "production", APIVersion: "2024-01-01"})
	if _, err := c.Blogs(context.Background()); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestMemoryCache_TTL(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	mc.Set(ctx, "k", []byte("v"), 10*time.Millisecond)
	if _, ok := mc.Get(ctx, "k"); !ok {
		t.Fatal("expected fresh entry")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := mc.Get(ctx, "k"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestCacheKey_Stable(t *testing.T) {
	a := cacheKey("q", map[string]any{"a": 1, "b": "x"})
	b := cacheKey("q", map[string]any{"b": "x", "a": 1})
	if a != b {
		t.Error("cache key must not depend on param order")
	}
	if a == cacheKey("q", map[string]any{"a": 2, "b": "x"}) {
		t.Error("different params must produce different keys")
	}
}
