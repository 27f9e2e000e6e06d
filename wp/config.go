package wp

import (
	"strings"
	"time"

	"github.com/labstack/gommon/log"
)

// DefaultUserAgent identifies this client to the WordPress host.
const DefaultUserAgent = "wpblog/1.0 (+https://github.com/eringen/wpblog)"

// Logger is the subset of the Echo/gommon logger the core writes to.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Config is the resolved integration configuration. It is built once and
// passed to the client; nothing in this package reads the environment on
// its own.
type Config struct {
	Base        APIBase
	SiteRoot    string
	MediaRoot   string
	Lang        string
	ProxyImages bool

	UserAgent string
	Timeout   time.Duration
}

// Enabled reports whether an API base is configured.
func (c Config) Enabled() bool { return !c.Base.IsZero() }

// Roots returns the URL roots used to normalize media references.
func (c Config) Roots() Roots {
	return Roots{Site: c.SiteRoot, Media: c.MediaRoot, Proxy: c.ProxyImages}
}

// NewConfig resolves a Config from raw setting values. mediaOverride may be
// empty.
func NewConfig(rawBase, lang, mediaOverride string, proxy bool, logger Logger) Config {
	if logger == nil {
		logger = defaultLogger()
	}
	base := ParseAPIBase(rawBase)
	cfg := Config{
		Base:        base,
		Lang:        strings.TrimSpace(lang),
		ProxyImages: proxy,
		UserAgent:   DefaultUserAgent,
		Timeout:     30 * time.Second,
	}
	if base.IsZero() {
		return cfg
	}
	cfg.SiteRoot = base.SiteRoot()
	cfg.MediaRoot = resolveMediaRoot(mediaOverride, cfg.SiteRoot, logger)
	return cfg
}

// LoadConfig reads WP_API_BASE, WP_API_LANG, WP_MEDIA_ROOT and
// IMAGE_PROXY (each with a PUBLIC_ fallback) through getenv.
func LoadConfig(getenv func(string) string, logger Logger) Config {
	return NewConfig(
		firstEnv(getenv, "WP_API_BASE", "PUBLIC_WP_API_BASE"),
		firstEnv(getenv, "WP_API_LANG", "PUBLIC_WP_API_LANG"),
		firstEnv(getenv, "WP_MEDIA_ROOT", "PUBLIC_WP_MEDIA_ROOT"),
		parseToggle(firstEnv(getenv, "PUBLIC_IMAGE_PROXY", "IMAGE_PROXY")),
		logger,
	)
}

func firstEnv(getenv func(string) string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func parseToggle(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1":
		return true
	}
	return false
}

var stdLogger = log.New("wp")

func defaultLogger() Logger {
	return stdLogger
}
