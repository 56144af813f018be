package sitekit

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const sessionName = "rkt_admin"

// Session value keys.
const (
	sessionKeyAuthed = "authenticated"
	sessionKeyCSRF   = "csrf_token"
)

// sessionMaxAge is the admin session lifetime in seconds (8 hours).
const sessionMaxAge = 60 * 60 * 8

// Content security policies. The admin UI still uses a small inline script,
// so /admin gets a relaxed policy; everything else stays strict.
const (
	strictCSP = "default-src 'self'; base-uri 'self'; object-src 'none'; frame-ancestors 'none'; form-action 'self'; img-src 'self' data:; font-src 'self' data:; style-src 'self'; script-src 'self'; connect-src 'self'"
	adminCSP  = "default-src 'self'; base-uri 'self'; object-src 'none'; frame-ancestors 'none'; form-action 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; connect-src 'self'"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/src/assets/")
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: strictCSP,
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
	}))

	e.Use(hardeningHeaders)

	// Transport-level guard; PUT /api/content additionally checks the exact
	// serialized size against MaxContentBytes.
	e.Use(middleware.BodyLimit("300K"))

	e.Use(session.Middleware(a.newSessionStore()))

	e.Use(cacheControlMiddleware)
}

// hardeningHeaders layers headers Echo's Secure middleware doesn't cover and
// relaxes the CSP for the admin UI.
func hardeningHeaders(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=(), usb=()")
		if strings.HasPrefix(c.Request().URL.Path, "/admin") {
			h.Set(echo.HeaderContentSecurityPolicy, adminCSP)
		}
		return next(c)
	}
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		switch {
		case strings.HasPrefix(path, "/src/assets/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		case path == "/sitemap.xml" || path == "/robots.txt":
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		case strings.HasPrefix(path, "/admin"), strings.HasPrefix(path, "/api/"), path == "/content/site.json":
			c.Response().Header().Set("Cache-Control", "no-store")
		default:
			c.Response().Header().Set("Cache-Control", "public, max-age=3600")
		}
		return next(c)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   sessionMaxAge,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.cookieSecure(),
	}
	return store
}

// requireAuth rejects requests without an authenticated session.
func (a *App) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !isAuthed(c) {
			return c.String(http.StatusUnauthorized, "unauthorized")
		}
		return next(c)
	}
}

// requireCSRF rejects requests whose X-CSRF-Token header does not match the
// token stored in the session. The token is issued by GET /api/csrf.
func (a *App) requireCSRF(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("X-CSRF-Token")
		stored := sessionCSRFToken(c)
		if header == "" || stored == "" ||
			subtle.ConstantTimeCompare([]byte(header), []byte(stored)) != 1 {
			return c.String(http.StatusForbidden, "csrf")
		}
		return next(c)
	}
}

func isAuthed(c echo.Context) bool {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return false
	}
	auth, ok := sess.Values[sessionKeyAuthed].(bool)
	return ok && auth
}

// setAuthedSession marks the session authenticated and rotates the CSRF token.
func setAuthedSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[sessionKeyAuthed] = true
	sess.Values[sessionKeyCSRF] = newCSRFToken()
	return sess.Save(c.Request(), c.Response())
}

func clearSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

func sessionCSRFToken(c echo.Context) string {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	token, _ := sess.Values[sessionKeyCSRF].(string)
	return token
}

// ensureCSRFToken returns the session's CSRF token, generating and storing
// one if absent.
func ensureCSRFToken(c echo.Context) (string, error) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return "", err
	}
	if token, ok := sess.Values[sessionKeyCSRF].(string); ok && token != "" {
		return token, nil
	}
	token := newCSRFToken()
	sess.Values[sessionKeyCSRF] = token
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return "", err
	}
	return token, nil
}

// newCSRFToken returns 24 random bytes hex-encoded.
func newCSRFToken() string {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand only fails when the OS entropy source is broken
	}
	return hex.EncodeToString(b)
}
