package views

import (
	"time"

	"github.com/eringen/wpblog/wp"
)

// SiteConfig holds site-wide settings populated from the site config.
// Every handler passes this to templates so nothing is hardcoded.
type SiteConfig struct {
	Name        string // SITE_NAME  (default "Blog")
	URL         string // SITE_URL   (default "http://localhost:3000")
	Description string // SITE_DESCRIPTION
	Author      string // SITE_AUTHOR
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image, usually the post cover
}

// BlogPage is one page of the post listing.
type BlogPage struct {
	Posts      []wp.Post
	Page       int
	TotalPages int
	Total      int
	Query      string // search term, empty when not searching
}

// HasPrev reports whether a previous page exists.
func (p BlogPage) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p BlogPage) HasNext() bool { return p.Page < p.TotalPages }

// AdminStatus summarizes the WordPress integration for the dashboard.
type AdminStatus struct {
	Enabled   bool
	APIBase   string
	BaseStyle string
	SiteRoot  string
	MediaRoot string
	Lang      string
	Proxy     bool

	CacheTTL     time.Duration
	CacheEntries int
}
