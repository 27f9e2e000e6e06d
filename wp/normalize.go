package wp

// NormalizePost maps a raw API record to a Post. The cover and every media
// reference in ContentHTML go through the same URL rules.
func NormalizePost(raw RawPost, roots Roots) Post {
	content := raw.Content.Rendered
	contentHTML := content
	var bodyImage string
	var rewritten *fragment
	if content != "" {
		if f, err := parseFragment(content); err == nil {
			bodyImage = f.firstBodyImage()
			f.rewrite(roots)
			if out, err := f.render(); err == nil {
				contentHTML = out
				rewritten = f
			}
		}
	}

	return Post{
		ID:   raw.ID,
		Slug: raw.Slug,
		Data: PostData{
			Title:      StripHTML(raw.Title.Rendered),
			Excerpt:    StripHTML(raw.Excerpt.Rendered),
			Date:       raw.Date,
			Cover:      resolveCover(raw, bodyImage, rewritten, roots),
			Author:     authorName(raw),
			Categories: categories(raw),
		},
		ContentHTML: contentHTML,
	}
}

func authorName(raw RawPost) string {
	if raw.Embedded == nil || len(raw.Embedded.Author) == 0 {
		return ""
	}
	return raw.Embedded.Author[0].Name
}

func categories(raw RawPost) []Category {
	if raw.Embedded == nil {
		return nil
	}
	var out []Category
	for _, group := range raw.Embedded.Terms {
		for _, t := range group {
			if t.Taxonomy != "category" {
				continue
			}
			out = append(out, Category{ID: t.ID, Name: t.Name, Slug: t.Slug})
		}
	}
	return out
}
