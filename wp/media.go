package wp

import (
	"net/url"
	"strings"
)

// ProxyPath is the route media URLs are wrapped in when image proxying is on.
const ProxyPath = "/api/img-proxy"

// Roots carries everything the URL normalizer needs. It holds no state of
// its own, so NormalizeURL is a pure function of its input and the roots.
type Roots struct {
	Site  string
	Media string
	Proxy bool
}

// NormalizeURL rewrites a single media reference so it is absolute and
// served from the configured media host.
func (r Roots) NormalizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, ProxyPath+"?") {
		return s
	}
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return r.wrap(r.absolute(s))
	case strings.HasPrefix(s, "//"):
		return r.wrap(r.absolute("https:" + s))
	case strings.HasPrefix(s, "/"):
		base := r.preferred()
		if base == "" {
			return s
		}
		if origin, ok := r.mediaOriginFor(s); ok {
			return r.wrap(origin + s)
		}
		return r.wrap(base + s)
	case strings.HasPrefix(s, "#"), hasScheme(s):
		// data:, blob: and friends are left alone.
		return s
	default:
		base := r.preferred()
		if base == "" {
			return s
		}
		return r.wrap(base + "/" + strings.TrimPrefix(s, "./"))
	}
}

func (r Roots) preferred() string {
	if r.Media != "" {
		return strings.TrimSuffix(r.Media, "/")
	}
	return strings.TrimSuffix(r.Site, "/")
}

// mediaOriginFor reports the media origin (scheme and host only) when p is
// an uploads path that already carries the media root's subdirectory.
func (r Roots) mediaOriginFor(p string) (string, bool) {
	media := parseRoot(r.Media)
	if media == nil {
		return "", false
	}
	basePath := strings.TrimSuffix(media.Path, "/")
	if basePath == "" || !strings.HasPrefix(p, basePath+uploadsPath) {
		return "", false
	}
	return media.Scheme + "://" + media.Host, true
}

func (r Roots) absolute(s string) string {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return s
	}
	u.Scheme = strings.ToLower(u.Scheme)
	site, media := parseRoot(r.Site), parseRoot(r.Media)
	if u.Scheme == "http" {
		for _, root := range []*url.URL{site, media} {
			if root != nil && root.Scheme == "https" && strings.EqualFold(root.Host, u.Host) {
				u.Scheme = "https"
			}
		}
	}

	desired := media
	if desired == nil {
		desired = site
	}
	if desired == nil {
		return u.String()
	}
	basePath := strings.TrimSuffix(desired.Path, "/")
	switch {
	case strings.HasPrefix(u.Path, uploadsPath):
		u.Scheme, u.Host = desired.Scheme, desired.Host
		if basePath != "" {
			u.Path = basePath + u.Path
			if u.RawPath != "" {
				u.RawPath = basePath + u.RawPath
			}
		}
	case basePath != "" && strings.HasPrefix(u.Path, basePath+uploadsPath):
		u.Scheme, u.Host = desired.Scheme, desired.Host
	}
	return u.String()
}

func (r Roots) wrap(u string) string {
	if !r.Proxy || !isAbsoluteHTTP(u) {
		return u
	}
	return ProxyPath + "?url=" + url.QueryEscape(u)
}

func parseRoot(root string) *url.URL {
	if root == "" {
		return nil
	}
	u, err := url.Parse(root)
	if err != nil || u.Host == "" {
		return nil
	}
	return u
}

func isAbsoluteHTTP(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func hasScheme(s string) bool {
	i := strings.IndexByte(s, ':')
	if i <= 0 {
		return false
	}
	if j := strings.IndexAny(s, "/?#"); j != -1 && j < i {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Scheme != ""
}
