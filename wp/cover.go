package wp

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type coverCandidate struct {
	url   string
	width int // 0 when unknown
}

// featuredCandidates collects every embedded featured-media URL (the
// original plus each named size) and the Jetpack URL, widest first.
func featuredCandidates(raw RawPost) []coverCandidate {
	var out []coverCandidate
	var media *embeddedMedia
	if raw.Embedded != nil && len(raw.Embedded.FeaturedMedia) > 0 {
		media = &raw.Embedded.FeaturedMedia[0]
	}
	var details mediaDetails
	if media != nil {
		details = media.details()
		if media.SourceURL != "" {
			out = append(out, coverCandidate{url: media.SourceURL, width: int(details.Width)})
		}
	}
	if raw.JetpackFeaturedMediaURL != "" {
		out = append(out, coverCandidate{url: raw.JetpackFeaturedMediaURL})
	}
	names := make([]string, 0, len(details.Sizes))
	for name := range details.Sizes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if s := details.Sizes[name]; s.SourceURL != "" {
			out = append(out, coverCandidate{url: s.SourceURL, width: int(s.Width)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return widthKey(out[i].width) > widthKey(out[j].width)
	})
	return out
}

func widthKey(w int) int {
	if w <= 0 {
		return -1
	}
	return w
}

// firstBodyImage returns the image URL of the first <img>, in document
// order, that has a lazy attribute or a src; the lazy value wins on that
// element. The first srcset entry is used only when no image has either.
func (f *fragment) firstBodyImage() string {
	var found string
	f.each(func(n *html.Node) bool {
		if n.DataAtom != atom.Img {
			return true
		}
		for _, key := range append(append([]string{}, lazySrcAttrs...), "src") {
			if v := attrValue(n, key); v != "" {
				found = v
				return false
			}
		}
		return true
	})
	if found != "" {
		return found
	}
	f.each(func(n *html.Node) bool {
		if n.DataAtom != atom.Img {
			return true
		}
		for _, key := range append([]string{"srcset"}, lazySrcsetAttrs...) {
			if v := firstSrcsetURL(attrValue(n, key)); v != "" {
				found = v
				return false
			}
		}
		return true
	})
	return found
}

// firstPoster returns the poster of the first <video> that has one.
func (f *fragment) firstPoster() string {
	var found string
	f.each(func(n *html.Node) bool {
		if n.DataAtom == atom.Video {
			if v := attrValue(n, "poster"); v != "" {
				found = v
				return false
			}
		}
		return true
	})
	return found
}

func attrValue(n *html.Node, key string) string {
	v, _ := getAttr(n, key)
	return strings.TrimSpace(v)
}

// resolveCover picks the cover image for a post and normalizes it.
// bodyImage is the first image found in the raw content. Posts with no
// image fall back to a video poster from rewritten, which may be nil.
func resolveCover(raw RawPost, bodyImage string, rewritten *fragment, roots Roots) string {
	var cover string
	if c := featuredCandidates(raw); len(c) > 0 {
		cover = c[0].url
	} else {
		cover = bodyImage
	}
	if cover == "" && rewritten != nil {
		cover = rewritten.firstPoster()
	}
	if cover == "" {
		return ""
	}
	if strings.HasPrefix(cover, "//") {
		cover = "https:" + cover
	}
	return roots.NormalizeURL(cover)
}
