// Package sitekit serves a content-managed marketing website: static pages
// driven by a single JSON document (content/site.json) that an authenticated
// admin edits through a small JSON API.
//
// The public page is delivered with content already bound server-side via the
// binder package; the admin surface provides session auth, CSRF protection,
// rate-limited login, and atomic content writes with a one-generation backup.
package sitekit

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yusvaaji/sitekit/visits"
)

// App is the central sitekit application. It wires together the content
// store, page cache, middleware, and routes.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *ContentStore
	Cache  *PageCache

	loginLimiter *LoginLimiter
	visitsStore  *visits.Store
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new sitekit App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: cfg.StaticDir,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup validates configuration and initializes the store, cache, limiter,
// middleware, and routes. It is split from Start so tests can drive the
// Echo handler directly without binding a port.
func (a *App) Setup() error {
	if a.Config.Env == "production" {
		if a.Config.SessionSecret == "" {
			return fmt.Errorf("sitekit: SessionSecret is required in production")
		}
		if a.Config.PasswordHash == "" {
			return fmt.Errorf("sitekit: PasswordHash is required in production")
		}
	}
	if a.Config.SessionSecret == "" {
		// Dev convenience: sessions won't survive a restart.
		a.Config.SessionSecret = newCSRFToken()
	}

	store, err := NewContentStore(a.Config.ContentPath)
	if err != nil {
		return fmt.Errorf("sitekit: init content store: %w", err)
	}
	a.Store = store

	a.Cache = NewPageCache(store, a.staticDir, a.Config.Name, a.Config.URL, a.Config.PageCacheTTL)

	a.loginLimiter = NewLoginLimiter(a.Config.LoginMaxAttempts, a.Config.LoginWindow)

	if a.Config.VisitsEnabled {
		vs, err := visits.NewStore(a.Config.VisitsDBPath)
		if err != nil {
			return fmt.Errorf("sitekit: init visits store: %w", err)
		}
		if err := visits.InitSalt(vs); err != nil {
			return fmt.Errorf("sitekit: init visits salt: %w", err)
		}
		a.visitsStore = vs
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	return nil
}

// Start sets the app up and runs the HTTP server until shutdown.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}

	var stopCleanup func()
	if a.visitsStore != nil {
		stopCleanup = a.visitsStore.StartCleanupScheduler(a.Config.VisitsRetentionDays, 24*time.Hour)
		defer stopCleanup()
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Admin content API.
	e.GET("/api/me", a.handleMe)
	e.GET("/api/csrf", a.handleCSRF, a.requireAuth)
	e.POST("/api/login", a.handleLogin)
	e.POST("/api/logout", a.handleLogout)
	e.GET("/api/content", a.handleContent, a.requireAuth)
	e.PUT("/api/content", a.handleContentSave, a.requireAuth, a.requireCSRF)

	// The canonical document is always served through the store, never from
	// the static tree, so readers observe only complete writes.
	e.GET("/content/site.json", a.handleSiteJSON)

	if a.visitsStore != nil {
		h := visits.NewHandler(a.visitsStore)
		e.POST("/api/visits", h.Collect)
		e.GET("/api/stats", h.Stats, a.requireAuth)
	}

	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)

	// Public site: prerendered home, then .html-optional static delivery.
	e.GET("/", a.handleHome)
	e.GET("/*", a.handleStatic)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.visitsStore != nil {
		return a.visitsStore.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("sitekit: required environment variable %s is not set", key)
	}
	return v
}
