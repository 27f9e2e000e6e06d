package wpblog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eringen/wpblog/wp"
)

var fakePosts = []map[string]interface{}{
	{
		"id":      7,
		"slug":    "hola-mundo",
		"date":    "2024-05-01T10:00:00",
		"title":   map[string]string{"rendered": "Hola mundo"},
		"excerpt": map[string]string{"rendered": "<p>Primer post</p>"},
		"content": map[string]string{"rendered": `<p>Hi <img data-src="/wp-content/uploads/a.jpg"></p><h2>Sub</h2>`},
		"_embedded": map[string]interface{}{
			"author":  []map[string]string{{"name": "Ana"}},
			"wp:term": [][]map[string]interface{}{{{"id": 3, "name": "Arte", "slug": "arte", "taxonomy": "category"}}},
		},
	},
	{
		"id":      8,
		"slug":    "segundo",
		"date":    "2024-04-01T09:00:00",
		"title":   map[string]string{"rendered": "Segundo &amp; último"},
		"excerpt": map[string]string{"rendered": "<p>Otro</p>"},
		"content": map[string]string{"rendered": "<p>Body</p>"},
	},
}

// fakeWordPress serves fakePosts the way /wp-json/wp/v2 does and counts
// the requests it answers.
type fakeWordPress struct {
	hits atomic.Int32
}

func (f *fakeWordPress) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	const prefix = "/wp-json/wp/v2/posts"
	w.Header().Set("Content-Type", "application/json")
	if strings.HasPrefix(r.URL.Path, prefix+"/") {
		id, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, prefix+"/"))
		for _, p := range fakePosts {
			if p["id"] == id {
				_ = json.NewEncoder(w).Encode(p)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"rest_post_invalid_id"}`))
		return
	}
	if r.URL.Path != prefix {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	out := []map[string]interface{}{}
	for _, p := range fakePosts {
		slug := p["slug"].(string)
		switch {
		case q.Get("slug") != "":
			if slug == q.Get("slug") {
				out = append(out, p)
			}
		case q.Get("search") != "":
			if strings.Contains(slug, q.Get("search")) {
				out = append(out, p)
			}
		default:
			out = append(out, p)
		}
	}
	w.Header().Set("X-WP-Total", strconv.Itoa(len(out)))
	w.Header().Set("X-WP-TotalPages", "1")
	_ = json.NewEncoder(w).Encode(out)
}

func testSiteConfig(wpBase string) SiteConfig {
	return SiteConfig{
		Name:          "Test Blog",
		URL:           "https://blog.example.com",
		Author:        "Site Author",
		AdminPassword: "secret",
		SessionSecret: "test-session-secret",
		WP:            wp.NewConfig(wpBase, "", "", false, nil),
	}
}

func newTestApp(t *testing.T, cfg SiteConfig) *App {
	t.Helper()
	app := New(cfg, ViewFuncs{})
	if err := app.setup(); err != nil {
		t.Fatalf("setup: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func newWordPressApp(t *testing.T) (*App, *fakeWordPress) {
	t.Helper()
	fake := &fakeWordPress{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return newTestApp(t, testSiteConfig(srv.URL)), fake
}

func serve(app *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func get(app *App, target string) *httptest.ResponseRecorder {
	return serve(app, httptest.NewRequest(http.MethodGet, target, nil))
}

func TestSetupRequiresSecrets(t *testing.T) {
	app := New(SiteConfig{}, ViewFuncs{})
	if err := app.setup(); err == nil {
		t.Fatal("expected an error without AdminPassword and SessionSecret")
	}
}

func TestHomeRedirectsToBlog(t *testing.T) {
	app, _ := newWordPressApp(t)
	rec := get(app, "/")
	if rec.Code != http.StatusMovedPermanently || rec.Header().Get("Location") != "/blog/" {
		t.Fatalf("GET / = %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestBlogListing(t *testing.T) {
	app, _ := newWordPressApp(t)
	rec := get(app, "/blog/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Hola mundo", "Segundo &amp; último", `href="/blog/hola-mundo/"`, "Primer post"} {
		if !strings.Contains(body, want) {
			t.Errorf("listing missing %q", want)
		}
	}
}

func TestBlogListingPastLastPage(t *testing.T) {
	app, _ := newWordPressApp(t)
	if rec := get(app, "/blog/?page=5"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestBlogPost(t *testing.T) {
	app, _ := newWordPressApp(t)
	rec := get(app, "/blog/hola-mundo/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	mediaRoot := app.Config.WP.MediaRoot
	for _, want := range []string{
		"<h1>Hola mundo</h1>",
		"Ana",
		"Arte",
		`src="` + mediaRoot + `/wp-content/uploads/a.jpg"`,
		`"@type":"BlogPosting"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("post page missing %q", want)
		}
	}
}

func TestBlogPostNotFound(t *testing.T) {
	app, _ := newWordPressApp(t)
	rec := get(app, "/blog/missing/")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Not found") {
		t.Errorf("expected not found page")
	}
}

func TestTrailingSlashRedirect(t *testing.T) {
	app, _ := newWordPressApp(t)
	rec := get(app, "/blog/hola-mundo")
	if rec.Code != http.StatusMovedPermanently || rec.Header().Get("Location") != "/blog/hola-mundo/" {
		t.Fatalf("GET /blog/hola-mundo = %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLegacyIDRedirect(t *testing.T) {
	app, _ := newWordPressApp(t)

	rec := get(app, "/blog/?p=7")
	if rec.Code != http.StatusMovedPermanently || rec.Header().Get("Location") != "/blog/hola-mundo/" {
		t.Errorf("GET /blog/?p=7 = %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = get(app, "/blog/some-page/?page_id=8&utm=x")
	if rec.Code != http.StatusMovedPermanently || rec.Header().Get("Location") != "/blog/segundo/" {
		t.Errorf("page_id redirect = %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = get(app, "/blog/?p=999&utm=x")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/blog/?utm=x" {
		t.Errorf("unresolved id = %d %q", rec.Code, rec.Header().Get("Location"))
	}

	// Non-numeric IDs are not WordPress IDs.
	rec = get(app, "/blog/?p=abc")
	if rec.Code != http.StatusOK {
		t.Errorf("non-numeric id = %d, want 200", rec.Code)
	}
}

func TestFeed(t *testing.T) {
	app, _ := newWordPressApp(t)
	rec := get(app, "/feed.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"<rss", "<link>https://blog.example.com/blog/hola-mundo/</link>", "<category>Arte</category>", "Wed, 01 May 2024"} {
		if !strings.Contains(body, want) {
			t.Errorf("feed missing %q", want)
		}
	}
}

func TestSitemap(t *testing.T) {
	app, _ := newWordPressApp(t)
	rec := get(app, "/sitemap.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<loc>https://blog.example.com/blog/</loc>",
		"<loc>https://blog.example.com/blog/segundo/</loc>",
		"<lastmod>2024-04-01</lastmod>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("sitemap missing %q", want)
		}
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return m
}

func TestAPIWPList(t *testing.T) {
	app, _ := newWordPressApp(t)
	rec := get(app, "/api/wp-list")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	m := decodeBody(t, rec)
	if m["ok"] != true || m["count"] != float64(2) || m["total"] != float64(2) {
		t.Errorf("body = %v", m)
	}
	posts := m["posts"].([]interface{})
	first := posts[0].(map[string]interface{})
	if first["slug"] != "hola-mundo" || first["title"] != "Hola mundo" || first["id"] != float64(7) {
		t.Errorf("first post = %v", first)
	}

	m = decodeBody(t, get(app, "/api/wp-list?q=segundo"))
	if m["count"] != float64(1) {
		t.Errorf("search count = %v", m["count"])
	}
}

func TestAPIWPPost(t *testing.T) {
	app, _ := newWordPressApp(t)

	rec := get(app, "/api/wp-post?slug=segundo")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	m := decodeBody(t, rec)
	if m["found"] != true || m["postSlug"] != "segundo" || m["title"] != "Segundo & último" || m["id"] != float64(8) {
		t.Errorf("body = %v", m)
	}

	rec = get(app, "/api/wp-post?slug=missing")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing slug status = %d", rec.Code)
	}
	if m := decodeBody(t, rec); m["found"] != false {
		t.Errorf("missing body = %v", m)
	}

	if rec := get(app, "/api/wp-post"); rec.Code != http.StatusBadRequest {
		t.Errorf("no slug status = %d, want 400", rec.Code)
	}
}

func TestAPIWPPostMarkdown(t *testing.T) {
	app, _ := newWordPressApp(t)
	rec := get(app, "/api/wp-post?slug=hola-mundo&format=markdown")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"# Hola mundo", "## Sub", "/wp-content/uploads/a.jpg"} {
		if !strings.Contains(body, want) {
			t.Errorf("markdown missing %q:\n%s", want, body)
		}
	}
}

func TestAPIBlogResolve(t *testing.T) {
	app, _ := newWordPressApp(t)

	m := decodeBody(t, get(app, "/api/blog-resolve?slug=hola-mundo"))
	if m["ok"] != true || m["source"] != "slug" || m["id"] != float64(7) {
		t.Errorf("slug resolve = %v", m)
	}

	m = decodeBody(t, get(app, "/api/blog-resolve?slug=missing&id=8"))
	if m["ok"] != true || m["source"] != "id" || m["postSlug"] != "segundo" {
		t.Errorf("id resolve = %v", m)
	}

	rec := get(app, "/api/blog-resolve?id=x")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	m = decodeBody(t, rec)
	steps, _ := m["steps"].([]interface{})
	if m["notFound"] != true || len(steps) != 2 || steps[0] != "skip:slug-empty" || steps[1] != "skip:id-empty-or-invalid" {
		t.Errorf("not found body = %v", m)
	}
}

func TestAPIDisabled(t *testing.T) {
	app := newTestApp(t, testSiteConfig(""))
	for _, target := range []string{"/api/wp-list", "/api/wp-post?slug=x", "/api/blog-resolve?slug=x"} {
		rec := get(app, target)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s status = %d, want 500", target, rec.Code)
			continue
		}
		m := decodeBody(t, rec)
		if m["ok"] != false || m["error"] != "WP_API_BASE not configured" {
			t.Errorf("%s body = %v", target, m)
		}
	}

	rec := get(app, "/blog/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "No posts found.") {
		t.Errorf("disabled listing = %d %s", rec.Code, rec.Body.String())
	}
	if rec := get(app, "/blog/anything/"); rec.Code != http.StatusNotFound {
		t.Errorf("disabled post = %d, want 404", rec.Code)
	}
}

func TestUpstreamFailureRendersServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	t.Cleanup(srv.Close)
	app := newTestApp(t, testSiteConfig(srv.URL))

	rec := get(app, "/blog/")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Something went wrong") {
		t.Errorf("expected server error page")
	}

	rec = get(app, "/api/wp-list")
	m := decodeBody(t, rec)
	if rec.Code != http.StatusInternalServerError || !strings.Contains(m["error"].(string), "non-JSON") {
		t.Errorf("wp-list = %d %v", rec.Code, m)
	}
}

func cookieHeader(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAdminLoginFlow(t *testing.T) {
	app, _ := newWordPressApp(t)

	rec := get(app, "/admin/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `name="password"`) {
		t.Fatalf("login page = %d", rec.Code)
	}
	csrf := findCookie(rec.Result().Cookies(), "_csrf")
	if csrf == nil {
		t.Fatal("no csrf cookie")
	}

	login := func(password string) *httptest.ResponseRecorder {
		form := url.Values{"password": {password}, "_csrf": {csrf.Value}}
		req := httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Cookie", cookieHeader([]*http.Cookie{csrf}))
		return serve(app, req)
	}

	if rec := login("wrong"); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password = %d, want 401", rec.Code)
	}

	rec = login("secret")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login = %d, want 303", rec.Code)
	}
	sess := findCookie(rec.Result().Cookies(), sessionName)
	if sess == nil {
		t.Fatal("no session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	req.Header.Set("Cookie", cookieHeader([]*http.Cookie{csrf, sess}))
	rec = serve(app, req)
	body := rec.Body.String()
	if rec.Code != http.StatusOK || !strings.Contains(body, "Dashboard") {
		t.Fatalf("dashboard = %d", rec.Code)
	}
	if !strings.Contains(body, app.Config.WP.Base.String()) || !strings.Contains(body, "disabled") {
		t.Errorf("dashboard should show the API base and the disabled cache:\n%s", body)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q", got)
	}
}

func TestAdminLoginRateLimited(t *testing.T) {
	app, _ := newWordPressApp(t)
	csrf := findCookie(get(app, "/admin/").Result().Cookies(), "_csrf")
	if csrf == nil {
		t.Fatal("no csrf cookie")
	}
	var last int
	for i := 0; i < 6; i++ {
		form := url.Values{"password": {"wrong"}, "_csrf": {csrf.Value}}
		req := httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Cookie", cookieHeader([]*http.Cookie{csrf}))
		last = serve(app, req).Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("sixth attempt = %d, want 429", last)
	}
}

func TestAdminPostWithoutCSRF(t *testing.T) {
	app, _ := newWordPressApp(t)
	req := httptest.NewRequest(http.MethodPost, "/admin/cache/purge/", nil)
	if rec := serve(app, req); rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestCachedAppHitsUpstreamOnce(t *testing.T) {
	fake := &fakeWordPress{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	cfg := testSiteConfig(srv.URL)
	cfg.PostCacheTTL = time.Hour
	app := newTestApp(t, cfg)

	for i := 0; i < 3; i++ {
		if rec := get(app, "/blog/segundo/"); rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	}
	if n := fake.hits.Load(); n != 1 {
		t.Errorf("upstream hits = %d, want 1", n)
	}
	app.Cache.Invalidate()
	get(app, "/blog/segundo/")
	if n := fake.hits.Load(); n != 2 {
		t.Errorf("upstream hits after purge = %d, want 2", n)
	}
}
