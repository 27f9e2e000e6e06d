package wp

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// RawPost is a post record as returned by /wp/v2/posts with _embed=1.
// Only the fields this package reads are declared.
type RawPost struct {
	ID                      int       `json:"id"`
	Slug                    string    `json:"slug"`
	Date                    string    `json:"date"`
	Title                   rendered  `json:"title"`
	Excerpt                 rendered  `json:"excerpt"`
	Content                 rendered  `json:"content"`
	FeaturedMedia           int       `json:"featured_media,omitempty"`
	JetpackFeaturedMediaURL string    `json:"jetpack_featured_media_url,omitempty"`
	Embedded                *embedded `json:"_embedded,omitempty"`
}

type rendered struct {
	Rendered string `json:"rendered"`
}

type embedded struct {
	Author        []embeddedAuthor `json:"author,omitempty"`
	FeaturedMedia []embeddedMedia  `json:"wp:featuredmedia,omitempty"`
	Terms         [][]embeddedTerm `json:"wp:term,omitempty"`
}

type embeddedAuthor struct {
	Name string `json:"name"`
}

// embeddedMedia keeps media_details raw: WordPress sends an empty array
// instead of an object for media it could not measure.
type embeddedMedia struct {
	SourceURL    string          `json:"source_url"`
	MediaDetails json.RawMessage `json:"media_details,omitempty"`
}

type mediaDetails struct {
	Width flexInt              `json:"width"`
	Sizes map[string]mediaSize `json:"sizes"`
}

type mediaSize struct {
	SourceURL string  `json:"source_url"`
	Width     flexInt `json:"width"`
}

func (m embeddedMedia) details() mediaDetails {
	var d mediaDetails
	if len(m.MediaDetails) == 0 || m.MediaDetails[0] != '{' {
		return d
	}
	_ = json.Unmarshal(m.MediaDetails, &d)
	return d
}

type embeddedTerm struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Taxonomy string `json:"taxonomy"`
}

// flexInt accepts a JSON number, a numeric string or null. Zero means
// unknown.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexInt(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// Post is the normalized, render-ready form of a WordPress post.
type Post struct {
	ID          int      `json:"id,omitempty"`
	Slug        string   `json:"slug"`
	Data        PostData `json:"data"`
	ContentHTML string   `json:"contentHtml,omitempty"`
}

// PostData holds the plain-text front matter of a post.
type PostData struct {
	Title      string     `json:"title"`
	Excerpt    string     `json:"excerpt"`
	Date       string     `json:"date"`
	Cover      string     `json:"cover,omitempty"`
	Author     string     `json:"author,omitempty"`
	Categories []Category `json:"categories,omitempty"`
}

// Category is a post's category term.
type Category struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// Page is one page of a paged listing.
type Page struct {
	Posts      []Post `json:"posts"`
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
}
