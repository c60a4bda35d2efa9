// Package content is the read-only client for the headless CMS. Documents are
// fetched with GROQ-shaped queries and named parameters over HTTPS; results
// are cached with a short TTL because the catalog changes rarely.
package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/designweb/gallery/internal/logger"
)

// ErrNotFound is returned when a single-document lookup matches nothing.
var ErrNotFound = errors.New("content: not found")

// Options configures a Client.
type Options struct {
	// BaseURL overrides the derived https://<project>.api.sanity.io origin.
	// Tests point this at a local server.
	BaseURL    string
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	CacheTTL   time.Duration
	Cache      Cache
	HTTPClient *http.Client
	Log        logger.Logger
}

// Client queries the content repository.
type Client struct {
	http     *http.Client
	queryURL string
	token    string
	cache    Cache
	ttl      time.Duration
	log      logger.Logger
}

func NewClient(opts Options) *Client {
	base := opts.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.api.sanity.io", opts.ProjectID)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	cache := opts.Cache
	if cache == nil {
		cache = NewMemoryCache()
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		http:     hc,
		queryURL: fmt.Sprintf("%s/v%s/data/query/%s", base, opts.APIVersion, opts.Dataset),
		token:    opts.Token,
		cache:    cache,
		ttl:      opts.CacheTTL,
		log:      log,
	}
}

// queryEnvelope is the response wrapper the query endpoint returns.
type queryEnvelope struct {
	Result json.RawMessage `json:"result"`
}

// fetch runs a query with named parameters and decodes the result into out.
// Results are served from cache when fresh; cache failures are misses.
func (c *Client) fetch(ctx context.Context, query string, params map[string]any, out any) error {
	key := cacheKey(query, params)
	if raw, ok := c.cache.Get(ctx, key); ok {
		return json.Unmarshal(raw, out)
	}

	raw, err := c.query(ctx, query, params)
	if err != nil {
		return err
	}
	if c.ttl > 0 {
		c.cache.Set(ctx, key, raw, c.ttl)
	}
	return json.Unmarshal(raw, out)
}

func (c *Client) query(ctx context.Context, query string, params map[string]any) (json.RawMessage, error) {
	vals := url.Values{}
	vals.Set("query", query)
	for name, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode param %s: %w", name, err)
		}
		vals.Set("$"+name, string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.queryURL+"?"+vals.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("content query: status %d: %s", resp.StatusCode, body)
	}

	var envelope queryEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode content response: %w", err)
	}
	return envelope.Result, nil
}

// cacheKey hashes the query text and its parameters. Params are sorted so the
// key is stable across map iteration order.
func cacheKey(query string, params map[string]any) string {
	h := sha256.New()
	io.WriteString(h, query)
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		encoded, _ := json.Marshal(params[name])
		io.WriteString(h, "\x00"+name+"=")
		h.Write(encoded)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Sites returns the filtered site catalog, newest additions first.
func (c *Client) Sites(ctx context.Context, filters SiteFilters) ([]Site, error) {
	query, params := sitesQuery(filters)
	var sites []Site
	if err := c.fetch(ctx, query, params, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}

// SiteBySlug returns one site with its section shots, or ErrNotFound.
func (c *Client) SiteBySlug(ctx context.Context, slug string) (*Site, error) {
	query, params := siteBySlugQuery(slug)
	var site *Site
	if err := c.fetch(ctx, query, params, &site); err != nil {
		return nil, err
	}
	if site == nil || site.ID == "" {
		return nil, ErrNotFound
	}
	return site, nil
}

// SitesByIDs returns the sites whose document id is in ids. Order follows
// addedDate, not the input order. An empty id set short-circuits.
func (c *Client) SitesByIDs(ctx context.Context, ids []string) ([]Site, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, params := sitesByIDsQuery(ids)
	var sites []Site
	if err := c.fetch(ctx, query, params, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}

// Sections returns the flattened section-screenshot gallery.
func (c *Client) Sections(ctx context.Context, filters SectionFilters) ([]SectionInstance, error) {
	query, params := sectionsQuery(filters)

	var sites []struct {
		Name     string        `json:"name"`
		Slug     string        `json:"slug"`
		URL      string        `json:"url"`
		Sections []SectionShot `json:"sections"`
	}
	if err := c.fetch(ctx, query, params, &sites); err != nil {
		return nil, err
	}

	var instances []SectionInstance
	for _, site := range sites {
		for _, shot := range site.Sections {
			instances = append(instances, SectionInstance{
				SectionShot: shot,
				Website:     WebsiteRef{Name: site.Name, Slug: site.Slug, URL: site.URL},
			})
		}
	}
	return instances, nil
}

// Blogs returns the blog/notes feed, newest first.
func (c *Client) Blogs(ctx context.Context) ([]Blog, error) {
	var blogs []Blog
	if err := c.fetch(ctx, blogsQuery, nil, &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}

// SearchData returns the facet lists for the filter overlay.
func (c *Client) SearchData(ctx context.Context) (*SearchData, error) {
	var data SearchData
	if err := c.fetch(ctx, searchDataQuery, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}
