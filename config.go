package wpblog

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eringen/wpblog/wp"
)

// SiteConfig holds all configuration for a wpblog site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Author name for JSON-LD

	Addr string `yaml:"addr"` // Listen address (default ":3000")

	AdminPassword string `yaml:"admin_password"` // Required: admin login password
	SessionSecret string `yaml:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	PostCacheTTL time.Duration `yaml:"post_cache_ttl"` // 0 fetches fresh on every request
	PageSize     int           `yaml:"page_size"`      // Posts per listing page (default 9)

	// WordPress holds the raw integration settings as written in the file.
	WordPress WordPressSettings `yaml:"wordpress"`

	// WP is the resolved integration config. LoadSiteConfig fills it from
	// WordPress and the environment; callers building a SiteConfig by hand
	// set it with wp.NewConfig.
	WP wp.Config `yaml:"-"`
}

// WordPressSettings mirrors the WP_* environment variables.
type WordPressSettings struct {
	APIBase    string `yaml:"api_base"`
	Lang       string `yaml:"lang"`
	MediaRoot  string `yaml:"media_root"`
	ImageProxy bool   `yaml:"image_proxy"`
}

// lookup answers wp.LoadConfig keys from the file settings. Both the
// plain and the PUBLIC_ spelling of a key in the environment take
// precedence over the file.
func (w WordPressSettings) lookup(getenv func(string) string) func(string) string {
	return func(key string) string {
		for _, k := range []string{key, "PUBLIC_" + key} {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				return v
			}
		}
		switch key {
		case "WP_API_BASE":
			return w.APIBase
		case "WP_API_LANG":
			return w.Lang
		case "WP_MEDIA_ROOT":
			return w.MediaRoot
		case "IMAGE_PROXY":
			if w.ImageProxy {
				return "on"
			}
		}
		return ""
	}
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.PageSize <= 0 {
		c.PageSize = 9
	}
	if c.PostCacheTTL < 0 {
		c.PostCacheTTL = 0
	}
}

func (c SiteConfig) validate() error {
	if c.AdminPassword == "" {
		return fmt.Errorf("wpblog: AdminPassword is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("wpblog: SessionSecret is required")
	}
	return nil
}

// LoadSiteConfig builds a SiteConfig from an optional YAML file at path and
// the environment read through getenv. Environment values win over the
// file.
func LoadSiteConfig(path string, getenv func(string) string, logger wp.Logger) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	setString(&cfg.Name, getenv("SITE_NAME"))
	setString(&cfg.URL, getenv("SITE_URL"))
	setString(&cfg.Description, getenv("SITE_DESCRIPTION"))
	setString(&cfg.Author, getenv("SITE_AUTHOR"))
	setString(&cfg.Addr, getenv("ADDR"))
	setString(&cfg.AdminPassword, getenv("ADMIN_PASSWORD"))
	setString(&cfg.SessionSecret, getenv("ADMIN_SESSION_SECRET"))
	if v := getenv("COOKIE_SECURE"); v != "" {
		cfg.CookieSecure = strings.EqualFold(v, "true")
	}
	if v := getenv("POST_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("parse POST_CACHE_TTL: %w", err)
		}
		cfg.PostCacheTTL = d
	}
	if v := getenv("PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("parse PAGE_SIZE: %w", err)
		}
		cfg.PageSize = n
	}

	cfg.WP = wp.LoadConfig(cfg.WordPress.lookup(getenv), logger)
	return cfg, nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithClientOptions passes options to the WordPress client, e.g. a custom
// HTTP client.
func WithClientOptions(opts ...wp.ClientOption) Option {
	return func(a *App) {
		a.clientOpts = append(a.clientOpts, opts...)
	}
}
