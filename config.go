package sitekit

import "time"

// SiteConfig holds all configuration for a sitekit site.
type SiteConfig struct {
	Name string // Site name for JSON-LD fallbacks (default "Site")
	URL  string // Canonical URL (default "http://localhost:3000")
	Env  string // "production" or "development" (default "development")

	Addr        string // Listen address (default ":3000")
	StaticDir   string // Directory with the compiled site (default "public")
	ContentPath string // Canonical JSON document (default "content/site.json")

	SessionSecret string // Session cookie encryption secret; required in production
	PasswordHash  string // bcrypt hash of the admin password; required in production

	MaxContentBytes  int           // Serialized document size limit (default 300000)
	PageCacheTTL     time.Duration // Prerendered home page TTL (default 5min)
	LoginMaxAttempts int           // Login attempts per window (default 20)
	LoginWindow      time.Duration // Login rate-limit window (default 15min)

	VisitsEnabled       bool   // Enable the page-view subsystem (default false)
	VisitsDBPath        string // Visits SQLite path (default "data/visits.db")
	VisitsRetentionDays int    // Days of visit history to keep (default 365)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Site"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.ContentPath == "" {
		c.ContentPath = "content/site.json"
	}
	if c.MaxContentBytes == 0 {
		c.MaxContentBytes = 300000
	}
	if c.PageCacheTTL == 0 {
		c.PageCacheTTL = 5 * time.Minute
	}
	if c.LoginMaxAttempts == 0 {
		c.LoginMaxAttempts = 20
	}
	if c.LoginWindow == 0 {
		c.LoginWindow = 15 * time.Minute
	}
	if c.VisitsDBPath == "" {
		c.VisitsDBPath = "data/visits.db"
	}
	if c.VisitsRetentionDays == 0 {
		c.VisitsRetentionDays = 365
	}
}

// cookieSecure reports whether session cookies should be marked Secure.
func (c *SiteConfig) cookieSecure() bool {
	return c.Env == "production"
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir overrides the directory for the compiled site (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
