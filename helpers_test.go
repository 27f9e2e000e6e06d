package wpblog

import (
	"encoding/json"
	"testing"

	"github.com/eringen/wpblog/wp"
)

func TestPostURL(t *testing.T) {
	tests := []struct {
		base, slug, want string
	}{
		{"https://blog.example.com", "hola-mundo", "https://blog.example.com/blog/hola-mundo/"},
		{"", "hola-mundo", "/blog/hola-mundo/"},
		{"https://blog.example.com", "caf%c3%a9", "https://blog.example.com/blog/caf%C3%A9/"},
		{"https://blog.example.com/sub", "x", "https://blog.example.com/sub/blog/x/"},
	}
	for _, tt := range tests {
		if got := PostURL(tt.base, tt.slug); got != tt.want {
			t.Errorf("PostURL(%q, %q) = %q, want %q", tt.base, tt.slug, got, tt.want)
		}
	}
}

func TestParsePostDate(t *testing.T) {
	for _, s := range []string{"2024-05-01T10:00:00", "2024-05-01T10:00:00+02:00", "2024-05-01"} {
		d, ok := ParsePostDate(s)
		if !ok || d.Year() != 2024 || d.Month() != 5 || d.Day() != 1 {
			t.Errorf("ParsePostDate(%q) = %v, %v", s, d, ok)
		}
	}
	if _, ok := ParsePostDate("yesterday"); ok {
		t.Error("expected failure for an unparseable date")
	}
}

func TestImageMIME(t *testing.T) {
	tests := map[string]string{
		"https://example.com/a.PNG":                                "image/png",
		"https://example.com/a.webp?w=300":                         "image/webp",
		"https://example.com/a":                                    "image/jpeg",
		"/api/img-proxy?url=https%3A%2F%2Fexample.com%2Fb.gif":     "image/gif",
		"https://example.com/wp-content/uploads/logo.svg#fragment": "image/svg+xml",
	}
	for in, want := range tests {
		if got := imageMIME(in); got != want {
			t.Errorf("imageMIME(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAbsoluteURL(t *testing.T) {
	base := "https://blog.example.com"
	if got := absoluteURL(base, "/api/img-proxy?url=x"); got != "https://blog.example.com/api/img-proxy?url=x" {
		t.Errorf("relative = %q", got)
	}
	if got := absoluteURL(base, "https://cdn.example.com/a.jpg"); got != "https://cdn.example.com/a.jpg" {
		t.Errorf("absolute = %q", got)
	}
	if got := absoluteURL(base, ""); got != "" {
		t.Errorf("empty = %q", got)
	}
}

func TestBlogPostingJsonLD(t *testing.T) {
	cfg := SiteConfig{Name: "Cuaderno", URL: "https://blog.example.com", Author: "Site"}
	post := wp.Post{
		ID:   7,
		Slug: "hola-mundo",
		Data: wp.PostData{
			Title:      "Hola",
			Date:       "2024-05-01T10:00:00",
			Cover:      "/api/img-proxy?url=x",
			Author:     "Ana",
			Categories: []wp.Category{{Name: "Arte"}, {Name: "Viajes"}},
		},
	}
	var got map[string]interface{}
	if err := json.Unmarshal([]byte(BlogPostingJsonLD(post, cfg)), &got); err != nil {
		t.Fatal(err)
	}
	if got["@type"] != "BlogPosting" || got["url"] != "https://blog.example.com/blog/hola-mundo/" {
		t.Errorf("jsonld = %v", got)
	}
	if author := got["author"].(map[string]interface{}); author["name"] != "Ana" {
		t.Errorf("author = %v", author)
	}
	if got["image"] != "https://blog.example.com/api/img-proxy?url=x" {
		t.Errorf("image = %v", got["image"])
	}
	if got["keywords"] != "Arte, Viajes" {
		t.Errorf("keywords = %v", got["keywords"])
	}

	post.Data.Author = ""
	_ = json.Unmarshal([]byte(BlogPostingJsonLD(post, cfg)), &got)
	if author := got["author"].(map[string]interface{}); author["name"] != "Site" {
		t.Errorf("fallback author = %v", author)
	}
}

func TestWebsiteJsonLD(t *testing.T) {
	var got map[string]interface{}
	cfg := SiteConfig{Name: "Cuaderno", URL: "https://blog.example.com"}
	if err := json.Unmarshal([]byte(WebsiteJsonLD(cfg)), &got); err != nil {
		t.Fatal(err)
	}
	if got["url"] != "https://blog.example.com/blog/" || got["name"] != "Cuaderno" {
		t.Errorf("jsonld = %v", got)
	}
	if _, ok := got["author"]; ok {
		t.Error("author should be omitted without a site author")
	}
}

func TestParseWPID(t *testing.T) {
	tests := map[string]int{"42": 42, " 7 ": 7, "": 0, "abc": 0, "-3": 0, "1e3": 0, "12a": 0}
	for in, want := range tests {
		if got := parseWPID(in); got != want {
			t.Errorf("parseWPID(%q) = %d, want %d", in, got, want)
		}
	}
}
