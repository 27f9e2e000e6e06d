package wp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	maxPerPage      = 100
	defaultPerPage  = 9
	searchPerPage   = 10
	maxResponseBody = 16 << 20
)

// Client queries a WordPress REST API and returns normalized posts. It
// keeps no per-request state and is safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client used for upstream calls.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger routes client diagnostics to l.
func WithLogger(l Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a Client for cfg. A disabled cfg yields a client whose
// queries return empty results.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	c := &Client{cfg: cfg, logger: defaultLogger()}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return c
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config { return c.cfg }

// FetchJSON GETs rawURL and decodes the JSON body into v.
func (c *Client) FetchJSON(ctx context.Context, rawURL string, v any) error {
	_, err := c.FetchJSONWithHeaders(ctx, rawURL, v)
	return err
}

// FetchJSONWithHeaders is FetchJSON that also returns the response headers.
// A 2xx answer whose content type is not JSON is an error: misconfigured
// gateways serve HTML error pages with status 200.
func (c *Client) FetchJSONWithHeaders(ctx context.Context, rawURL string, v any) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &FetchError{Status: resp.StatusCode, URL: rawURL, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Status: resp.StatusCode, URL: rawURL, Snippet: snippet(body)}
	}
	if !isJSON(resp.Header.Get("Content-Type")) {
		return nil, &FetchError{Status: resp.StatusCode, URL: rawURL, Snippet: snippet(body), NonJSON: true}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return nil, &FetchError{Status: resp.StatusCode, URL: rawURL, Snippet: snippet(body), Err: fmt.Errorf("decode response: %w", err)}
	}
	return resp.Header, nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// fetch requests resource from the configured base. A rest_route base that
// fails is retried once against its /wp-json/wp/v2 twin; the twin is not
// remembered for later calls.
func (c *Client) fetch(ctx context.Context, resource string, query url.Values, v any) (http.Header, error) {
	base := c.cfg.Base
	h, err := c.FetchJSONWithHeaders(ctx, base.Endpoint(resource, query), v)
	if err == nil || base.Style != RestRouteStyle {
		return h, err
	}
	alt := base.Alternate()
	c.logger.Debugf("wp: %s via %s failed (%v), retrying via %s", resource, base, err, alt)
	h, altErr := c.FetchJSONWithHeaders(ctx, alt.Endpoint(resource, query), v)
	if altErr != nil {
		c.logger.Debugf("wp: %s via %s failed: %v", resource, alt, altErr)
		return nil, err
	}
	return h, nil
}

func (c *Client) query(kv ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		q.Set(kv[i], kv[i+1])
	}
	if c.cfg.Lang != "" {
		q.Set("lang", c.cfg.Lang)
	}
	return q
}

func (c *Client) normalize(raw RawPost) Post {
	return NormalizePost(raw, c.cfg.Roots())
}

func (c *Client) normalizeAll(raws []RawPost) []Post {
	posts := make([]Post, 0, len(raws))
	for _, r := range raws {
		posts = append(posts, c.normalize(r))
	}
	return posts
}

// ListPosts returns up to limit (max 100) published posts with embedded
// media, author and terms.
func (c *Client) ListPosts(ctx context.Context, limit int) ([]Post, error) {
	if !c.cfg.Enabled() {
		return []Post{}, nil
	}
	var raws []RawPost
	q := c.query("status", "publish", "_embed", "1", "per_page", strconv.Itoa(clampPerPage(limit, maxPerPage)))
	if _, err := c.fetch(ctx, "posts", q, &raws); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return c.normalizeAll(raws), nil
}

// ListOptions narrows a paged listing.
type ListOptions struct {
	Search string
}

// ListPostsPage returns one page of published posts. Totals come from the
// X-WP-Total and X-WP-TotalPages headers, falling back to the page itself.
func (c *Client) ListPostsPage(ctx context.Context, page, perPage int, opts ListOptions) (Page, error) {
	if !c.cfg.Enabled() {
		return Page{Posts: []Post{}}, nil
	}
	if page < 1 {
		page = 1
	}
	perPage = clampPerPage(perPage, defaultPerPage)
	q := c.query("status", "publish", "_embed", "1",
		"per_page", strconv.Itoa(perPage), "page", strconv.Itoa(page))
	if s := strings.TrimSpace(opts.Search); s != "" {
		q.Set("search", s)
	}
	var raws []RawPost
	h, err := c.fetch(ctx, "posts", q, &raws)
	if err != nil {
		return Page{}, fmt.Errorf("list posts page %d: %w", page, err)
	}
	total, ok := headerInt(h, "X-WP-Total")
	if !ok {
		total = len(raws)
	}
	totalPages, ok := headerInt(h, "X-WP-TotalPages")
	if !ok {
		totalPages = (total + perPage - 1) / perPage
	}
	return Page{Posts: c.normalizeAll(raws), Total: total, TotalPages: totalPages}, nil
}

// GetPostBySlug resolves a post by slug. It tries the slug filter, then a
// text search for an exact slug match, then a scan of the latest 100
// posts; a loose search hit is only used when none of those match.
// Upstream failures are logged and treated as not found.
func (c *Client) GetPostBySlug(ctx context.Context, slug string) (Post, error) {
	slug = strings.TrimSpace(slug)
	if !c.cfg.Enabled() || slug == "" {
		return Post{}, ErrNotFound
	}

	var raws []RawPost
	if _, err := c.fetch(ctx, "posts", c.query("status", "publish", "slug", slug, "_embed", "1"), &raws); err != nil {
		c.logger.Debugf("wp: slug lookup %q: %v", slug, err)
	} else if len(raws) > 0 {
		return c.normalize(raws[0]), nil
	}

	var loose *RawPost
	raws = nil
	q := c.query("status", "publish", "search", slug, "_embed", "1", "per_page", strconv.Itoa(searchPerPage))
	if _, err := c.fetch(ctx, "posts", q, &raws); err != nil {
		c.logger.Debugf("wp: search lookup %q: %v", slug, err)
	} else {
		if raw, ok := matchSlug(raws, slug); ok {
			return c.normalize(raw), nil
		}
		if len(raws) > 0 {
			loose = &raws[0]
		}
	}

	var recent []RawPost
	q = c.query("status", "publish", "_embed", "1", "per_page", strconv.Itoa(maxPerPage))
	if _, err := c.fetch(ctx, "posts", q, &recent); err != nil {
		c.logger.Debugf("wp: bulk lookup %q: %v", slug, err)
	} else if raw, ok := matchSlug(recent, slug); ok {
		return c.normalize(raw), nil
	}

	if loose != nil {
		return c.normalize(*loose), nil
	}
	return Post{}, ErrNotFound
}

// GetPostByID fetches a single post. Any upstream failure, 404 included,
// is reported as ErrNotFound.
func (c *Client) GetPostByID(ctx context.Context, id int) (Post, error) {
	if !c.cfg.Enabled() || id <= 0 {
		return Post{}, ErrNotFound
	}
	var raw RawPost
	if _, err := c.fetch(ctx, "posts/"+strconv.Itoa(id), c.query("_embed", "1"), &raw); err != nil {
		c.logger.Debugf("wp: id lookup %d: %v", id, err)
		return Post{}, ErrNotFound
	}
	if raw.ID == 0 && raw.Slug == "" {
		return Post{}, ErrNotFound
	}
	return c.normalize(raw), nil
}

func matchSlug(raws []RawPost, slug string) (RawPost, bool) {
	want := canonicalSlug(slug)
	for _, r := range raws {
		if canonicalSlug(r.Slug) == want {
			return r, true
		}
	}
	return RawPost{}, false
}

// canonicalSlug compares slugs regardless of percent-encoding and case;
// WordPress stores non-ASCII slugs encoded.
func canonicalSlug(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		s = u
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func clampPerPage(n, def int) int {
	if n <= 0 {
		return def
	}
	if n > maxPerPage {
		return maxPerPage
	}
	return n
}

func headerInt(h http.Header, key string) (int, bool) {
	v := strings.TrimSpace(h.Get(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
