package wpblog

import "github.com/eringen/wpblog/views"

// BlogPage is one page of the blog listing as handed to the Blog view.
type BlogPage = views.BlogPage

// AdminStatus summarizes the WordPress integration for the admin dashboard.
type AdminStatus = views.AdminStatus

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta = views.PageMeta

func (c SiteConfig) viewConfig() views.SiteConfig {
	return views.SiteConfig{
		Name:        c.Name,
		URL:         c.URL,
		Description: c.Description,
		Author:      c.Author,
	}
}
