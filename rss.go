package wpblog

import (
	"encoding/xml"

	"github.com/eringen/wpblog/wp"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language,omitempty"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	Description string        `xml:"description"`
	Author      string        `xml:"author,omitempty"`
	Categories  []string      `xml:"category,omitempty"`
	Enclosure   *rssEnclosure `xml:"enclosure,omitempty"`
	PubDate     string        `xml:"pubDate,omitempty"`
	GUID        string        `xml:"guid"`
}

type rssEnclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

func (a *App) buildRSS(posts []wp.Post) rssXML {
	base := a.Config.URL
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := PostURL(base, p.Slug)
		item := rssItem{
			Title:       p.Data.Title,
			Link:        postURL,
			Description: p.Data.Excerpt,
			Author:      p.Data.Author,
			GUID:        postURL,
		}
		if t, ok := ParsePostDate(p.Data.Date); ok {
			item.PubDate = t.Format(rssDateLayout)
		}
		for _, cat := range p.Data.Categories {
			item.Categories = append(item.Categories, cat.Name)
		}
		if cover := absoluteURL(base, p.Data.Cover); cover != "" {
			item.Enclosure = &rssEnclosure{URL: cover, Type: imageMIME(cover)}
		}
		items = append(items, item)
	}
	return rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Language:    a.Config.WP.Lang,
			Items:       items,
		},
	}
}
