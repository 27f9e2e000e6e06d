package wpblog

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/eringen/wpblog/wp"
)

// PostMarkdown renders a post as Markdown: the title as a heading, a date
// and author line, then the body converted from its normalized HTML.
func PostMarkdown(post wp.Post) (string, error) {
	body, err := htmltomarkdown.ConvertString(post.ContentHTML)
	if err != nil {
		return "", fmt.Errorf("convert post %q to markdown: %w", post.Slug, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", post.Data.Title)
	meta := make([]string, 0, 2)
	if post.Data.Date != "" {
		meta = append(meta, post.Data.Date)
	}
	if post.Data.Author != "" {
		meta = append(meta, post.Data.Author)
	}
	if len(meta) > 0 {
		fmt.Fprintf(&b, "_%s_\n\n", strings.Join(meta, " · "))
	}
	if post.Data.Cover != "" {
		fmt.Fprintf(&b, "![](%s)\n\n", post.Data.Cover)
	}
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")
	return b.String(), nil
}
