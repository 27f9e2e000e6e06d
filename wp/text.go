package wp

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// maxStripPasses bounds how many times entity-encoded markup is peeled.
const maxStripPasses = 4

// StripHTML removes all markup and decodes entities, leaving plain text.
// Markup that only appears after decoding (&lt;b&gt;) is stripped too.
// Runs of whitespace, non-breaking spaces included, collapse to one space.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	text := s
	for i := 0; i < maxStripPasses; i++ {
		next := html.UnescapeString(stripPolicy.Sanitize(text))
		if next == text {
			break
		}
		text = next
	}
	return strings.Join(strings.Fields(text), " ")
}
