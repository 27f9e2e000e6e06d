package wp

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Lazy-loading plugins park the real image URL in one of these attributes,
// in order of preference.
var lazySrcAttrs = []string{"data-lazy-src", "data-src", "data-orig-file", "data-large-file", "data-full-url"}

var lazySrcsetAttrs = []string{"data-lazy-srcset", "data-srcset"}

// elementRule mutates a whole element; attrRule maps one attribute value.
type elementRule struct {
	tag   atom.Atom
	apply func(n *html.Node)
}

type attrRule struct {
	tag       atom.Atom
	attr      string
	transform func(roots Roots, val string) string
}

var elementRules = []elementRule{
	{atom.Img, promoteLazy},
	{atom.Video, inlineVideo},
	{atom.Iframe, inlineEmbed},
}

var attrRules = []attrRule{
	{atom.Img, "src", Roots.NormalizeURL},
	{atom.Img, "srcset", normalizeSrcset},
	{atom.Source, "src", Roots.NormalizeURL},
	{atom.Source, "srcset", normalizeSrcset},
	{atom.Video, "src", Roots.NormalizeURL},
	{atom.Video, "poster", Roots.NormalizeURL},
}

var bodyContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

// fragment is a parsed run of body content.
type fragment struct {
	nodes []*html.Node
}

func parseFragment(s string) (*fragment, error) {
	nodes, err := html.ParseFragment(strings.NewReader(s), bodyContext)
	if err != nil {
		return nil, err
	}
	return &fragment{nodes: nodes}, nil
}

func (f *fragment) each(fn func(n *html.Node) bool) {
	var visit func(n *html.Node) bool
	visit = func(n *html.Node) bool {
		if n.Type == html.ElementNode && !fn(n) {
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !visit(c) {
				return false
			}
		}
		return true
	}
	for _, n := range f.nodes {
		if !visit(n) {
			return
		}
	}
}

func (f *fragment) rewrite(roots Roots) {
	f.each(func(n *html.Node) bool {
		for _, r := range elementRules {
			if n.DataAtom == r.tag {
				r.apply(n)
			}
		}
		for _, r := range attrRules {
			if n.DataAtom != r.tag {
				continue
			}
			if v, ok := getAttr(n, r.attr); ok && v != "" {
				setAttr(n, r.attr, r.transform(roots, v))
			}
		}
		return true
	})
}

func (f *fragment) render() (string, error) {
	var b strings.Builder
	for _, n := range f.nodes {
		if err := html.Render(&b, n); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// RewriteHTML fixes media references in a post body: lazy attributes are
// promoted, src/srcset values are normalized against roots, videos are set
// to play muted and inline, and YouTube/Vimeo embeds get matching player
// parameters. The output is stable under a second pass. Input that cannot
// be parsed is returned unchanged.
func RewriteHTML(s string, roots Roots) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	f, err := parseFragment(s)
	if err != nil {
		return s
	}
	f.rewrite(roots)
	out, err := f.render()
	if err != nil {
		return s
	}
	return out
}

func promoteLazy(n *html.Node) {
	if v, _ := getAttr(n, "src"); strings.TrimSpace(v) == "" {
		for _, key := range lazySrcAttrs {
			if lazy, ok := getAttr(n, key); ok && strings.TrimSpace(lazy) != "" {
				setAttr(n, "src", strings.TrimSpace(lazy))
				break
			}
		}
	}
	if v, _ := getAttr(n, "srcset"); strings.TrimSpace(v) == "" {
		for _, key := range lazySrcsetAttrs {
			if lazy, ok := getAttr(n, key); ok && strings.TrimSpace(lazy) != "" {
				setAttr(n, "srcset", strings.TrimSpace(lazy))
				break
			}
		}
	}
}

func inlineVideo(n *html.Node) {
	for _, key := range []string{"muted", "playsinline"} {
		if _, ok := getAttr(n, key); !ok {
			n.Attr = append(n.Attr, html.Attribute{Key: key})
		}
	}
}

func inlineEmbed(n *html.Node) {
	src, ok := getAttr(n, "src")
	if !ok || src == "" {
		return
	}
	lower := strings.ToLower(src)
	switch {
	case strings.Contains(lower, "youtube.com/embed/"), strings.Contains(lower, "youtube-nocookie.com/embed/"):
		setAttr(n, "src", setQueryParams(src, [][2]string{
			{"mute", "1"}, {"playsinline", "1"}, {"rel", "0"}, {"modestbranding", "1"},
		}))
	case strings.Contains(lower, "player.vimeo.com/video/"):
		setAttr(n, "src", setQueryParams(src, [][2]string{
			{"muted", "1"}, {"playsinline", "1"},
		}))
	}
}

// setQueryParams overwrites (never duplicates) the given query keys.
func setQueryParams(raw string, params [][2]string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	for _, p := range params {
		q.Set(p[0], p[1])
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func normalizeSrcset(roots Roots, list string) string {
	entries := strings.Split(list, ",")
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		fields := strings.Fields(entry)
		if len(fields) == 0 {
			continue
		}
		fields[0] = roots.NormalizeURL(fields[0])
		out = append(out, strings.Join(fields, " "))
	}
	return strings.Join(out, ", ")
}

// firstSrcsetURL returns the first URL of a srcset list.
func firstSrcsetURL(list string) string {
	for _, entry := range strings.Split(list, ",") {
		if fields := strings.Fields(entry); len(fields) > 0 {
			return fields[0]
		}
	}
	return ""
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
