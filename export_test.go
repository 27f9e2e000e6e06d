package wpblog

import (
	"strings"
	"testing"

	"github.com/eringen/wpblog/wp"
)

func TestPostMarkdown(t *testing.T) {
	post := wp.Post{
		Slug: "hola-mundo",
		Data: wp.PostData{
			Title:  "Hola mundo",
			Date:   "2024-05-01T10:00:00",
			Author: "Ana",
			Cover:  "https://example.com/wp-content/uploads/a.jpg",
		},
		ContentHTML: `<p>Uno <strong>dos</strong></p><h2>Tres</h2><p><a href="https://example.com/x">enlace</a></p>`,
	}
	md, err := PostMarkdown(post)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"# Hola mundo\n",
		"_2024-05-01T10:00:00 · Ana_",
		"![](https://example.com/wp-content/uploads/a.jpg)",
		"Uno **dos**",
		"## Tres",
		"[enlace](https://example.com/x)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if !strings.HasSuffix(md, "\n") {
		t.Error("markdown should end with a newline")
	}
}

func TestPostMarkdownMinimal(t *testing.T) {
	md, err := PostMarkdown(wp.Post{Data: wp.PostData{Title: "Solo"}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(md, "# Solo\n") || strings.Contains(md, "_") || strings.Contains(md, "![]") {
		t.Errorf("md = %q", md)
	}
}
