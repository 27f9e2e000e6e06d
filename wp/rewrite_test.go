package wp

import (
	"strings"
	"testing"
)

var testRoots = Roots{Site: "https://cms.example.com", Media: "https://example.com"}

func TestRewriteHTMLPromotesLazySrc(t *testing.T) {
	out := RewriteHTML(`<img data-src="/wp-content/uploads/a.jpg">`, testRoots)
	if !strings.Contains(out, `src="https://example.com/wp-content/uploads/a.jpg"`) {
		t.Errorf("lazy src not promoted: %s", out)
	}
}

func TestRewriteHTMLKeepsExistingSrc(t *testing.T) {
	out := RewriteHTML(`<img src="/real.jpg" data-lazy-src="/lazy.jpg">`, testRoots)
	if !strings.Contains(out, `src="https://example.com/real.jpg"`) {
		t.Errorf("existing src replaced: %s", out)
	}
}

func TestRewriteHTMLPromotesLazySrcset(t *testing.T) {
	out := RewriteHTML(`<img data-lazy-srcset="/a-300.jpg 300w, /a.jpg 1024w">`, testRoots)
	want := `srcset="https://example.com/a-300.jpg 300w, https://example.com/a.jpg 1024w"`
	if !strings.Contains(out, want) {
		t.Errorf("srcset = %s, want it to contain %s", out, want)
	}
}

func TestRewriteHTMLUploadsHost(t *testing.T) {
	out := RewriteHTML(`<p><img src="http://cms.example.com/wp-content/uploads/b.jpg"></p>`, testRoots)
	if !strings.Contains(out, "https://example.com/wp-content/uploads/b.jpg") {
		t.Errorf("uploads URL not rewritten: %s", out)
	}
	if strings.Contains(out, "cms.example.com") {
		t.Errorf("source host left in output: %s", out)
	}
}

func TestRewriteHTMLVideo(t *testing.T) {
	out := RewriteHTML(`<video src="/v.mp4" controls></video>`, testRoots)
	for _, want := range []string{`muted=""`, `playsinline=""`, `src="https://example.com/v.mp4"`} {
		if !strings.Contains(out, want) {
			t.Errorf("video output %s missing %s", out, want)
		}
	}

	out = RewriteHTML(`<video muted playsinline src="/v.mp4"></video>`, testRoots)
	if n := strings.Count(out, "muted"); n != 1 {
		t.Errorf("muted appears %d times in %s", n, out)
	}
}

func TestRewriteHTMLYouTube(t *testing.T) {
	out := RewriteHTML(`<iframe src="https://www.youtube.com/embed/abc?mute=0&amp;si=x"></iframe>`, testRoots)
	for _, want := range []string{"mute=1", "playsinline=1", "rel=0", "modestbranding=1", "si=x"} {
		if !strings.Contains(out, want) {
			t.Errorf("youtube src %s missing %s", out, want)
		}
	}
	if strings.Contains(out, "mute=0") {
		t.Errorf("mute=0 not overwritten: %s", out)
	}
	if n := strings.Count(out, "mute="); n != 1 {
		t.Errorf("mute appears %d times in %s", n, out)
	}
}

func TestRewriteHTMLVimeo(t *testing.T) {
	out := RewriteHTML(`<iframe src="https://player.vimeo.com/video/42?muted=0"></iframe>`, testRoots)
	if !strings.Contains(out, "muted=1") || !strings.Contains(out, "playsinline=1") {
		t.Errorf("vimeo params missing: %s", out)
	}
	if strings.Contains(out, "muted=0") {
		t.Errorf("muted=0 not overwritten: %s", out)
	}
}

func TestRewriteHTMLOtherIframeUntouched(t *testing.T) {
	in := `<iframe src="https://maps.example.com/embed?q=1"></iframe>`
	if out := RewriteHTML(in, testRoots); out != in {
		t.Errorf("RewriteHTML(%s) = %s", in, out)
	}
}

func TestRewriteHTMLEmpty(t *testing.T) {
	for _, in := range []string{"", "  \n"} {
		if out := RewriteHTML(in, testRoots); out != in {
			t.Errorf("RewriteHTML(%q) = %q", in, out)
		}
	}
}

func TestRewriteHTMLIdempotent(t *testing.T) {
	inputs := []string{
		`<p>Hola</p><img data-src="/wp-content/uploads/a.jpg" srcset="/a-1.jpg 1x, /a-2.jpg 2x">`,
		`<figure><video poster="/p.jpg"><source src="http://cms.example.com/wp-content/uploads/v.mp4"></video></figure>`,
		`<iframe src="https://www.youtube-nocookie.com/embed/xyz"></iframe><iframe src="https://player.vimeo.com/video/9"></iframe>`,
		`<div><img src="//cms.example.com/wp-content/uploads/c.jpg"><a href="/x">x</a></div>`,
	}
	for _, roots := range []Roots{testRoots, {Site: "https://cms.example.com", Media: "https://example.com/blog", Proxy: true}} {
		for _, in := range inputs {
			once := RewriteHTML(in, roots)
			if twice := RewriteHTML(once, roots); twice != once {
				t.Errorf("not idempotent:\n in:    %s\n once:  %s\n twice: %s", in, once, twice)
			}
		}
	}
}
