package views

//go:generate templ generate

import (
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/eringen/wpblog/wp"
)

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// PostPath returns the site-relative URL of a post. WordPress may hand out
// percent-encoded slugs; they are decoded before escaping.
func PostPath(slug string) string {
	return buildURL("/", "blog", unescapeSlug(slug))
}

func unescapeSlug(slug string) string {
	if s, err := url.PathUnescape(slug); err == nil {
		return s
	}
	return slug
}

// PageURL returns the listing URL for page n, keeping the search term.
func PageURL(n int, query string) string {
	v := url.Values{}
	if n > 1 {
		v.Set("page", strconv.Itoa(n))
	}
	if query != "" {
		v.Set("q", query)
	}
	if len(v) == 0 {
		return "/blog/"
	}
	return "/blog/?" + v.Encode()
}

// FormatDate renders a WordPress post date as "Jan 2, 2006". Unparseable
// dates are returned as-is.
func FormatDate(s string) string {
	for _, layout := range []string{"2006-01-02T15:04:05", time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return s
}

func pageTitle(site SiteConfig, meta PageMeta) string {
	if meta.Title != "" && meta.Title != site.Name {
		return meta.Title + " | " + site.Name
	}
	return site.Name
}

// jsonLDScript wraps a marshalled JSON-LD document. encoding/json escapes
// '<' and '>', so the payload cannot close the script element.
func jsonLDScript(doc string) string {
	return `<script type="application/ld+json">` + doc + `</script>`
}

func pageCount(bp BlogPage) string {
	return strconv.Itoa(bp.Page) + " / " + strconv.Itoa(bp.TotalPages)
}

func blogMeta(site SiteConfig) PageMeta {
	return PageMeta{
		Title:       site.Name,
		Description: site.Description,
		URL:         buildURL(site.URL, "blog"),
		OGType:      "website",
	}
}

func postMeta(site SiteConfig, post wp.Post) PageMeta {
	return PageMeta{
		Title:       post.Data.Title,
		Description: post.Data.Excerpt,
		URL:         buildURL(site.URL, "blog", unescapeSlug(post.Slug)),
		OGType:      "article",
		Image:       post.Data.Cover,
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func cacheState(st AdminStatus) string {
	if st.CacheTTL <= 0 {
		return "disabled"
	}
	return st.CacheTTL.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
