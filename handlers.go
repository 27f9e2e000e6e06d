package wpblog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/wpblog/wp"
)

// feedSize is how many posts the feed and sitemap list.
const feedSize = 100

func (a *App) handleBlog(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	query := strings.TrimSpace(c.QueryParam("q"))
	result, err := a.Cache.ListPostsPage(c.Request().Context(), page, a.Config.PageSize, wp.ListOptions{Search: query})
	if err != nil {
		return err
	}
	if page > 1 && page > result.TotalPages {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	return Render(c, a.Views.Blog(BlogPage{
		Posts:      result.Posts,
		Page:       page,
		TotalPages: result.TotalPages,
		Total:      result.Total,
		Query:      query,
	}, a.Config.URL))
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	post, err := a.Cache.GetPostBySlug(c.Request().Context(), slug)
	if err != nil {
		if errors.Is(err, wp.ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	return Render(c, a.Views.Post(post, a.Config.URL))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context(), feedSize)
	if err != nil {
		return err
	}
	return renderXML(c, "application/xml; charset=utf-8", a.buildSitemap(posts))
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context(), feedSize)
	if err != nil {
		return err
	}
	return renderXML(c, "application/rss+xml; charset=utf-8", a.buildRSS(posts))
}

func handleHomeRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/blog/")
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(a.staticDir + "/robots.txt")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		a.Echo.DefaultHTTPErrorHandler(err, c)
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
