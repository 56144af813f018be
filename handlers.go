package sitekit

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

// handleHome serves index.html with the site document bound in. Render
// failures inside the cache already degrade to the raw file; an error here
// means the file itself is unreadable.
func (a *App) handleHome(c echo.Context) error {
	page, err := a.Cache.Home()
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, page)
}

// handleSiteJSON serves the canonical document through the content store so
// readers only ever see complete writes.
func (a *App) handleSiteJSON(c echo.Context) error {
	raw, err := a.Store.Read()
	if err != nil {
		if os.IsNotExist(err) {
			return echo.ErrNotFound
		}
		return err
	}
	return c.Blob(http.StatusOK, "application/json; charset=utf-8", raw)
}

// handleStatic serves the compiled site. The .html extension is optional and
// directories resolve to their index.html.
func (a *App) handleStatic(c echo.Context) error {
	p := path.Clean("/" + c.Param("*"))
	name := filepath.Join(a.staticDir, filepath.FromSlash(p))

	if fi, err := os.Stat(name); err == nil {
		if fi.IsDir() {
			index := filepath.Join(name, "index.html")
			if _, err := os.Stat(index); err == nil {
				return c.File(index)
			}
			return echo.ErrNotFound
		}
		return c.File(name)
	}
	if _, err := os.Stat(name + ".html"); err == nil {
		return c.File(name + ".html")
	}
	return echo.ErrNotFound
}

// handleRobots generates robots.txt dynamically using the site URL.
func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /admin/\n\nSitemap: %s/sitemap.xml\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

func (a *App) handleSitemap(c echo.Context) error {
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  []sitemapURL{{Loc: buildURL(a.Config.URL)}},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}

// buildURL joins a base URL with path segments, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if !pathHasSuffixSlash(u.Path) {
		u.Path += "/"
	}
	return u.String()
}

func pathHasSuffixSlash(p string) bool {
	return len(p) > 0 && p[len(p)-1] == '/'
}

// httpErrorHandler keeps error bodies uniform and free of internals.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	switch {
	case code == http.StatusNotFound:
		_ = c.String(http.StatusNotFound, "not found")
	case code >= 500:
		c.Logger().Errorf("server error: %v", err)
		_ = c.String(code, "internal server error")
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}
