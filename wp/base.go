package wp

import (
	"net/url"
	"regexp"
	"strings"
)

// BaseStyle identifies how a WordPress install exposes its REST root.
type BaseStyle int

const (
	// PathStyle is the pretty-permalink form: https://site/wp-json/wp/v2
	PathStyle BaseStyle = iota
	// RestRouteStyle is the query form: https://site/?rest_route=/wp/v2
	RestRouteStyle
)

func (s BaseStyle) String() string {
	switch s {
	case RestRouteStyle:
		return "rest_route"
	default:
		return "wp-json"
	}
}

const (
	restRouteMarker = "rest_route=/wp/v2"
	wpJSONSuffix    = "/wp-json/wp/v2"
	uploadsPath     = "/wp-content/uploads"
)

var (
	wpJSONRootRe   = regexp.MustCompile(`(?i)^(https?://\S+?)/wp-json/`)
	wpJSONTailRe   = regexp.MustCompile(`(?i)/wp-json(?:/wp/v2)?$`)
	restRouteQuery = "?rest_route="
)

// APIBase is a resolved REST root. The zero value means the integration is
// disabled.
type APIBase struct {
	Style BaseStyle
	raw   string
}

// ParseAPIBase normalizes a configured value into a fetchable REST root.
// Values already carrying rest_route=/wp/v2 or /wp-json/ are kept as-is
// (minus a trailing slash); anything else gets /wp-json/wp/v2 appended.
func ParseAPIBase(raw string) APIBase {
	base := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"'`))
	if base == "" {
		return APIBase{}
	}
	if strings.Contains(base, restRouteMarker) {
		return APIBase{Style: RestRouteStyle, raw: strings.TrimSuffix(base, "/")}
	}
	if strings.Contains(strings.ToLower(base), "/wp-json/") {
		return APIBase{Style: PathStyle, raw: strings.TrimSuffix(base, "/")}
	}
	return APIBase{Style: PathStyle, raw: strings.TrimSuffix(base, "/") + wpJSONSuffix}
}

// IsZero reports whether no base is configured.
func (b APIBase) IsZero() bool { return b.raw == "" }

func (b APIBase) String() string { return b.raw }

// SiteRoot strips the REST suffix, leaving origin plus any install
// subdirectory, e.g. https://site.com/blog.
func (b APIBase) SiteRoot() string {
	if b.IsZero() {
		return ""
	}
	if b.Style == RestRouteStyle {
		root := b.raw
		if i := strings.Index(root, restRouteQuery); i != -1 {
			root = root[:i]
		}
		return strings.TrimSuffix(root, "/")
	}
	if m := wpJSONRootRe.FindStringSubmatch(b.raw); m != nil {
		return m[1]
	}
	return wpJSONTailRe.ReplaceAllString(b.raw, "")
}

// Alternate returns the path-style base for the same install. For a
// path-style base it returns the receiver unchanged.
func (b APIBase) Alternate() APIBase {
	if b.IsZero() || b.Style == PathStyle {
		return b
	}
	return APIBase{Style: PathStyle, raw: b.SiteRoot() + wpJSONSuffix}
}

// Endpoint builds the URL of a REST resource (e.g. "posts", "posts/7")
// with the given query, honoring the base's style.
func (b APIBase) Endpoint(resource string, query url.Values) string {
	u := b.raw + "/" + strings.TrimPrefix(resource, "/")
	if len(query) == 0 {
		return u
	}
	sep := "?"
	if b.Style == RestRouteStyle {
		sep = "&"
	}
	return u + sep + query.Encode()
}

// MediaRootFromSite derives the host serving uploads from a site root by
// dropping a leading api. or www. label and keeping the path prefix.
func MediaRootFromSite(siteRoot string) string {
	if siteRoot == "" {
		return ""
	}
	u, err := url.Parse(siteRoot)
	if err != nil || u.Host == "" {
		return siteRoot
	}
	host := u.Host
	for _, prefix := range []string{"api.", "www."} {
		if len(host) > len(prefix) && strings.EqualFold(host[:len(prefix)], prefix) {
			host = host[len(prefix):]
		}
	}
	media := &url.URL{Scheme: u.Scheme, Host: host, Path: u.Path}
	return strings.TrimSuffix(media.String(), "/")
}

// resolveMediaRoot applies an explicit override when it is a usable
// absolute URL, otherwise falls back to the site-derived root.
func resolveMediaRoot(override, siteRoot string, logger Logger) string {
	override = strings.TrimSpace(override)
	if override == "" {
		return MediaRootFromSite(siteRoot)
	}
	u, err := url.Parse(override)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		logger.Warnf("wp: ignoring media root override %q: not an absolute http(s) URL", override)
		return MediaRootFromSite(siteRoot)
	}
	if strings.TrimSuffix(u.Path, "/") == "/blog" && sitePath(siteRoot) == "" {
		logger.Warnf("wp: media root override %q points at /blog but the site has no subdirectory; using %s://%s", override, u.Scheme, u.Host)
		return u.Scheme + "://" + u.Host
	}
	return strings.TrimSuffix(override, "/")
}

// sitePath returns the install subdirectory of a root URL, without a
// trailing slash ("" at the origin).
func sitePath(root string) string {
	u, err := url.Parse(root)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(u.Path, "/")
}
