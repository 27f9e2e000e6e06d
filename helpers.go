package wpblog

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/eringen/wpblog/wp"
)

const rssDateLayout = time.RFC1123Z

// postDateLayouts are the shapes WordPress uses for the post date field.
var postDateLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
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

// PostURL returns the canonical URL of a post under base. base may be empty
// for a site-relative path. Percent-encoded slugs are decoded first so they
// are not escaped twice.
func PostURL(base, slug string) string {
	if base == "" {
		base = "/"
	}
	return BuildURL(base, "blog", decodeSlug(slug))
}

func decodeSlug(slug string) string {
	if s, err := url.PathUnescape(slug); err == nil {
		return s
	}
	return slug
}

// ParsePostDate parses a WordPress post date.
func ParsePostDate(s string) (time.Time, bool) {
	for _, layout := range postDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// absoluteURL resolves ref against base. Proxied covers are site-relative.
func absoluteURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return b.ResolveReference(r).String()
}

func imageMIME(ref string) string {
	p := ref
	if u, err := url.Parse(ref); err == nil {
		p = u.Path
		if strings.HasPrefix(ref, "/") && u.Query().Get("url") != "" {
			if inner, err := url.Parse(u.Query().Get("url")); err == nil {
				p = inner.Path
			}
		}
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".avif":
		return "image/avif"
	case ".svg":
		return "image/svg+xml"
	default:
		return "image/jpeg"
	}
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL, "blog"),
		"description": cfg.Description,
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	return marshalJsonLD(data)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema. The
// WordPress author wins over the site author.
func BlogPostingJsonLD(post wp.Post, cfg SiteConfig) string {
	postURL := PostURL(cfg.URL, post.Slug)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Data.Title,
		"description":   post.Data.Excerpt,
		"datePublished": post.Data.Date,
		"url":           postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	author := post.Data.Author
	if author == "" {
		author = cfg.Author
	}
	if author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  author,
		}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	if img := absoluteURL(cfg.URL, post.Data.Cover); img != "" {
		data["image"] = img
	}
	if len(post.Data.Categories) > 0 {
		names := make([]string, 0, len(post.Data.Categories))
		for _, c := range post.Data.Categories {
			names = append(names, c.Name)
		}
		data["keywords"] = strings.Join(names, ", ")
	}
	return marshalJsonLD(data)
}

func marshalJsonLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
