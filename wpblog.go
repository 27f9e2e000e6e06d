// Package wpblog serves a blog whose content lives in a headless WordPress
// site. Posts are read through the REST API, normalized by package wp and
// rendered with templ components.
//
// Embedders may supply their own templates via ViewFuncs; any component left
// nil falls back to the defaults in package views.
package wpblog

import (
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/wpblog/views"
	"github.com/eringen/wpblog/wp"
)

// ViewFuncs holds the templ components the handlers render.
type ViewFuncs struct {
	Blog           func(page BlogPage, siteURL string) templ.Component
	Post           func(post wp.Post, siteURL string) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(status AdminStatus, message string, csrfToken string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// DefaultViews returns the built-in components bound to cfg.
func DefaultViews(cfg SiteConfig) ViewFuncs {
	site := cfg.viewConfig()
	return ViewFuncs{
		Blog: func(page BlogPage, _ string) templ.Component {
			return views.Blog(site, page, WebsiteJsonLD(cfg))
		},
		Post: func(post wp.Post, _ string) templ.Component {
			return views.Post(site, post, BlogPostingJsonLD(post, cfg))
		},
		AdminLogin: func(showError bool, csrfToken string) templ.Component {
			return views.AdminLogin(site, showError, csrfToken)
		},
		AdminDashboard: func(status AdminStatus, message, csrfToken string) templ.Component {
			return views.AdminDashboard(site, status, message, csrfToken)
		},
		NotFound:    func() templ.Component { return views.NotFound(site) },
		ServerError: func() templ.Component { return views.ServerError(site) },
	}
}

func (v *ViewFuncs) fill(def ViewFuncs) {
	if v.Blog == nil {
		v.Blog = def.Blog
	}
	if v.Post == nil {
		v.Post = def.Post
	}
	if v.AdminLogin == nil {
		v.AdminLogin = def.AdminLogin
	}
	if v.AdminDashboard == nil {
		v.AdminDashboard = def.AdminDashboard
	}
	if v.NotFound == nil {
		v.NotFound = def.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = def.ServerError
	}
}

// App wires together the WordPress client, cache, handlers, middleware,
// and templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	WP     *wp.Client
	Cache  *PostCache
	Views  ViewFuncs

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	clientOpts   []wp.ClientOption
	staticDir    string
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}
	for _, opt := range opts {
		opt(a)
	}
	a.Views.fill(DefaultViews(cfg))

	clientOpts := append([]wp.ClientOption{wp.WithLogger(a.Echo.Logger)}, a.clientOpts...)
	a.WP = wp.NewClient(cfg.WP, clientOpts...)
	a.Cache = NewPostCache(a.WP, cfg.PostCacheTTL)
	return a
}

// Start sets up middleware and routes and starts the server.
func (a *App) Start() error {
	if err := a.setup(); err != nil {
		return err
	}
	if !a.Config.WP.Enabled() {
		a.Echo.Logger.Warnf("wpblog: WP_API_BASE is not set, the blog will be empty")
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setup() error {
	if err := a.Config.validate(); err != nil {
		return err
	}
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", handleHomeRedirect)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/:slug/", a.handlePost)

	// JSON API
	e.GET("/api/wp-list", a.handleWPList)
	e.GET("/api/wp-post", a.handleWPPost)
	e.GET("/api/blog-resolve", a.handleBlogResolve)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.POST("/admin/cache/purge/", a.handleCachePurge)
}

// Close releases background resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	return nil
}
