package wp

import (
	"encoding/json"
	"strings"
	"testing"
)

func decodeRaw(t *testing.T, s string) RawPost {
	t.Helper()
	var raw RawPost
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		t.Fatalf("decode raw post: %v", err)
	}
	return raw
}

func TestNormalizePostFeaturedMedia(t *testing.T) {
	raw := decodeRaw(t, `{
		"id": 1,
		"slug": "hola-mundo",
		"date": "2024-05-01T10:00:00",
		"title": {"rendered": "Hola <em>mundo</em> &amp; más"},
		"excerpt": {"rendered": "<p>Uno&nbsp;dos &quot;tres&quot; &#39;x&#39;</p>\n"},
		"content": {"rendered": "<p>Body</p>"},
		"_embedded": {
			"author": [{"name": "Ana"}],
			"wp:featuredmedia": [{
				"source_url": "http://cms.example.com/wp-content/uploads/a.jpg",
				"media_details": {
					"width": 800,
					"sizes": {"thumbnail": {"source_url": "http://cms.example.com/wp-content/uploads/a-150.jpg", "width": 150}}
				}
			}],
			"wp:term": [
				[{"id": 3, "name": "Arte", "slug": "arte", "taxonomy": "category"}],
				[{"id": 9, "name": "tag", "slug": "tag", "taxonomy": "post_tag"}]
			]
		}
	}`)
	post := NormalizePost(raw, testRoots)

	if post.Slug != "hola-mundo" || post.ID != 1 {
		t.Errorf("identity = %d %q", post.ID, post.Slug)
	}
	if post.Data.Cover != "https://example.com/wp-content/uploads/a.jpg" {
		t.Errorf("Cover = %q", post.Data.Cover)
	}
	if post.Data.Title != "Hola mundo & más" {
		t.Errorf("Title = %q", post.Data.Title)
	}
	if post.Data.Excerpt != `Uno dos "tres" 'x'` {
		t.Errorf("Excerpt = %q", post.Data.Excerpt)
	}
	if post.Data.Author != "Ana" {
		t.Errorf("Author = %q", post.Data.Author)
	}
	if len(post.Data.Categories) != 1 || post.Data.Categories[0].Name != "Arte" {
		t.Errorf("Categories = %+v", post.Data.Categories)
	}
	if post.Data.Date != "2024-05-01T10:00:00" {
		t.Errorf("Date = %q", post.Data.Date)
	}
}

func TestNormalizePostWidestSize(t *testing.T) {
	raw := decodeRaw(t, `{
		"slug": "s",
		"_embedded": {"wp:featuredmedia": [{
			"source_url": "https://cms.example.com/orig.jpg",
			"media_details": {"sizes": {
				"medium": {"source_url": "https://cms.example.com/m.jpg", "width": "300"},
				"large": {"source_url": "https://cms.example.com/l.jpg", "width": 1024}
			}}
		}]}
	}`)
	if got := NormalizePost(raw, testRoots).Data.Cover; got != "https://cms.example.com/l.jpg" {
		t.Errorf("Cover = %q, want the widest size", got)
	}
}

func TestNormalizePostMediaDetailsArray(t *testing.T) {
	raw := decodeRaw(t, `{
		"slug": "s",
		"_embedded": {"wp:featuredmedia": [{"source_url": "/wp-content/uploads/a.jpg", "media_details": []}]}
	}`)
	if got := NormalizePost(raw, testRoots).Data.Cover; got != "https://example.com/wp-content/uploads/a.jpg" {
		t.Errorf("Cover = %q", got)
	}
}

func TestNormalizePostJetpackCover(t *testing.T) {
	raw := decodeRaw(t, `{"slug": "s", "jetpack_featured_media_url": "//cms.example.com/wp-content/uploads/j.jpg"}`)
	if got := NormalizePost(raw, testRoots).Data.Cover; got != "https://example.com/wp-content/uploads/j.jpg" {
		t.Errorf("Cover = %q", got)
	}
}

func TestNormalizePostBodyCover(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{`<p><img src="/x.jpg" data-lazy-src="/wp-content/uploads/real.jpg"></p>`, "https://example.com/wp-content/uploads/real.jpg"},
		{`<img src="/plain.jpg">`, "https://example.com/plain.jpg"},
		{`<img srcset="/a-300.jpg 300w, /a.jpg 1024w">`, "https://example.com/a-300.jpg"},
		{`<img src="/wp-content/uploads/first.jpg"><p>x</p><img data-src="/wp-content/uploads/second.jpg">`, "https://example.com/wp-content/uploads/first.jpg"},
		{`<img alt="none"><img src="/wp-content/uploads/second.jpg">`, "https://example.com/wp-content/uploads/second.jpg"},
		{`<img srcset="/a-300.jpg 300w"><img src="/wp-content/uploads/b.jpg">`, "https://example.com/wp-content/uploads/b.jpg"},
		{`<video src="/v.mp4" poster="/wp-content/uploads/poster.jpg"></video>`, "https://example.com/wp-content/uploads/poster.jpg"},
		{`<p>No images</p>`, ""},
	}
	for _, tt := range tests {
		raw := RawPost{Slug: "s", Content: rendered{Rendered: tt.content}}
		if got := NormalizePost(raw, testRoots).Data.Cover; got != tt.want {
			t.Errorf("content %s: Cover = %q, want %q", tt.content, got, tt.want)
		}
	}
}

func TestNormalizePostContentRewritten(t *testing.T) {
	raw := RawPost{Slug: "s", Content: rendered{Rendered: `<img src="http://cms.example.com/wp-content/uploads/b.jpg">`}}
	post := NormalizePost(raw, testRoots)
	if !strings.Contains(post.ContentHTML, "https://example.com/wp-content/uploads/b.jpg") {
		t.Errorf("ContentHTML = %s", post.ContentHTML)
	}
	if post.Data.Cover != "https://example.com/wp-content/uploads/b.jpg" {
		t.Errorf("Cover = %q", post.Data.Cover)
	}
}

func TestNormalizePostMissingEmbeds(t *testing.T) {
	post := NormalizePost(RawPost{Slug: "bare"}, testRoots)
	if post.Data.Author != "" || post.Data.Categories != nil || post.Data.Cover != "" {
		t.Errorf("unexpected data %+v", post.Data)
	}
	if post.ContentHTML != "" {
		t.Errorf("ContentHTML = %q", post.ContentHTML)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<p>Hi <strong>there</strong></p>", "Hi there"},
		{"  a&nbsp;b  ", "a b"},
		{"Using &lt;script&gt;alert(1)&lt;/script&gt;", "Using"},
		{"<b>bold</b> &lt;i&gt;x&lt;/i&gt;", "bold x"},
		{"&amp;lt;em&amp;gt;twice&amp;lt;/em&amp;gt;", "twice"},
		{"a &lt; b", "a < b"},
		{"a\n\n  b", "a b"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
