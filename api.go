package wpblog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/wpblog/wp"
)

const (
	apiListSize      = 5
	errNotConfigured = "WP_API_BASE not configured"
)

type apiPostSummary struct {
	ID    int    `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

type apiListResponse struct {
	OK         bool             `json:"ok"`
	Count      int              `json:"count"`
	Total      int              `json:"total"`
	TotalPages int              `json:"totalPages"`
	Base       string           `json:"base"`
	Posts      []apiPostSummary `json:"posts"`
}

type apiPostResponse struct {
	Found    bool   `json:"found"`
	Slug     string `json:"slug"`
	Base     string `json:"base"`
	ID       int    `json:"id,omitempty"`
	PostSlug string `json:"postSlug,omitempty"`
	Title    string `json:"title,omitempty"`
	Date     string `json:"date,omitempty"`
}

type apiResolveResponse struct {
	OK       bool     `json:"ok"`
	Source   string   `json:"source,omitempty"`
	NotFound bool     `json:"notFound,omitempty"`
	Error    string   `json:"error,omitempty"`
	Base     string   `json:"base"`
	Slug     string   `json:"slug,omitempty"`
	ID       int      `json:"id,omitempty"`
	PostSlug string   `json:"postSlug,omitempty"`
	Title    string   `json:"title,omitempty"`
	Date     string   `json:"date,omitempty"`
	Steps    []string `json:"steps,omitempty"`
}

type apiError struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Base  string `json:"base,omitempty"`
	Slug  string `json:"slug,omitempty"`
}

func (a *App) apiBase() string { return a.Config.WP.Base.String() }

func (a *App) apiDisabled(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, apiError{Error: errNotConfigured})
}

// handleWPList returns the first page of five posts, optionally filtered by
// ?q=.
func (a *App) handleWPList(c echo.Context) error {
	if !a.Config.WP.Enabled() {
		return a.apiDisabled(c)
	}
	search := strings.TrimSpace(c.QueryParam("q"))
	page, err := a.Cache.ListPostsPage(c.Request().Context(), 1, apiListSize, wp.ListOptions{Search: search})
	if err != nil {
		c.Logger().Errorf("wp-list: %v", err)
		return c.JSON(http.StatusInternalServerError, apiError{Error: err.Error(), Base: a.apiBase()})
	}
	posts := make([]apiPostSummary, 0, len(page.Posts))
	for _, p := range page.Posts {
		posts = append(posts, apiPostSummary{ID: p.ID, Slug: p.Slug, Title: p.Data.Title, Date: p.Data.Date})
	}
	return c.JSON(http.StatusOK, apiListResponse{
		OK:         true,
		Count:      len(posts),
		Total:      page.Total,
		TotalPages: page.TotalPages,
		Base:       a.apiBase(),
		Posts:      posts,
	})
}

// handleWPPost resolves ?slug=. With format=markdown the post body is
// returned as Markdown instead of the JSON summary.
func (a *App) handleWPPost(c echo.Context) error {
	if !a.Config.WP.Enabled() {
		return a.apiDisabled(c)
	}
	slug := strings.TrimSpace(c.QueryParam("slug"))
	if slug == "" {
		return c.JSON(http.StatusBadRequest, apiError{Error: "missing slug parameter"})
	}
	post, err := a.Cache.GetPostBySlug(c.Request().Context(), slug)
	if errors.Is(err, wp.ErrNotFound) {
		return c.JSON(http.StatusNotFound, apiPostResponse{Slug: slug, Base: a.apiBase()})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, apiError{Error: err.Error(), Base: a.apiBase(), Slug: slug})
	}
	if c.QueryParam("format") == "markdown" {
		md, err := PostMarkdown(post)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, apiError{Error: err.Error(), Base: a.apiBase(), Slug: slug})
		}
		return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
	}
	return c.JSON(http.StatusOK, apiPostResponse{
		Found:    true,
		Slug:     slug,
		Base:     a.apiBase(),
		ID:       post.ID,
		PostSlug: post.Slug,
		Title:    post.Data.Title,
		Date:     post.Data.Date,
	})
}

// handleBlogResolve tries ?slug= and then ?id=, recording each step.
func (a *App) handleBlogResolve(c echo.Context) error {
	slug := strings.TrimSpace(c.QueryParam("slug"))
	id := parseWPID(c.QueryParam("id"))
	res := apiResolveResponse{Base: a.apiBase(), Slug: slug, ID: id, Steps: []string{}}
	if !a.Config.WP.Enabled() {
		res.Error = errNotConfigured
		return c.JSON(http.StatusInternalServerError, res)
	}
	ctx := c.Request().Context()

	found := func(source string, p wp.Post) error {
		return c.JSON(http.StatusOK, apiResolveResponse{
			OK:       true,
			Source:   source,
			Base:     a.apiBase(),
			ID:       p.ID,
			PostSlug: p.Slug,
			Title:    p.Data.Title,
			Date:     p.Data.Date,
		})
	}

	if slug != "" {
		res.Steps = append(res.Steps, "try:slug")
		post, err := a.Cache.GetPostBySlug(ctx, slug)
		if err == nil {
			return found("slug", post)
		}
		res.Steps = append(res.Steps, "slug:not-found")
	} else {
		res.Steps = append(res.Steps, "skip:slug-empty")
	}

	if id > 0 {
		res.Steps = append(res.Steps, "try:id")
		post, err := a.Cache.GetPostByID(ctx, id)
		if err == nil {
			return found("id", post)
		}
		res.Steps = append(res.Steps, "id:not-found")
	} else {
		res.Steps = append(res.Steps, "skip:id-empty-or-invalid")
	}

	res.NotFound = true
	return c.JSON(http.StatusNotFound, res)
}

// parseWPID accepts only plain decimal IDs and returns 0 otherwise.
func parseWPID(s string) int {
	s = strings.TrimSpace(s)
	if s == "" || strings.Trim(s, "0123456789") != "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
