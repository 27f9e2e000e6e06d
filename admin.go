package wpblog

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		a.loginLimiter.Reset(ip)
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleCachePurge(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.Cache.Invalidate()
	c.Logger().Infof("admin: post cache purged")
	return a.renderAdminDashboard(c, "cache purged")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	return Render(c, a.Views.AdminDashboard(a.adminStatus(), msg, CsrfToken(c)))
}

func (a *App) adminStatus() AdminStatus {
	cfg := a.Config.WP
	return AdminStatus{
		Enabled:      cfg.Enabled(),
		APIBase:      cfg.Base.String(),
		BaseStyle:    cfg.Base.Style.String(),
		SiteRoot:     cfg.SiteRoot,
		MediaRoot:    cfg.MediaRoot,
		Lang:         cfg.Lang,
		Proxy:        cfg.ProxyImages,
		CacheTTL:     a.Cache.TTL(),
		CacheEntries: a.Cache.Len(),
	}
}
