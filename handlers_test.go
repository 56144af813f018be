package sitekit

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testIndexHTML = `<!DOCTYPE html>
<html lang="id">
<head>
<title>Placeholder</title>
</head>
<body>
<h1 data-bind="hero.title">Fallback headline</h1>
</body>
</html>`

func writeStatic(t *testing.T, app *App, name, body string) {
	t.Helper()
	full := filepath.Join(app.staticDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("failed to create static dir: %v", err)
	}
	if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write static file: %v", err)
	}
}

func TestHomeBindsSiteDocument(t *testing.T) {
	app := setupTestApp(t)
	writeStatic(t, app, "index.html", testIndexHTML)
	if err := app.Store.Write([]byte(validDoc)); err != nil {
		t.Fatalf("failed to seed content: %v", err)
	}

	rec := doRequest(t, app, http.MethodGet, "/", "", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Build with us") {
		t.Errorf("home page should carry the bound hero title, got:\n%s", body)
	}
	if strings.Contains(body, "Fallback headline") {
		t.Error("bound placeholder text should be replaced")
	}
}

func TestHomeFallsBackWithoutSiteDocument(t *testing.T) {
	app := setupTestApp(t)
	writeStatic(t, app, "index.html", testIndexHTML)

	rec := doRequest(t, app, http.MethodGet, "/", "", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Fallback headline") {
		t.Error("home page should serve the raw file when no document exists")
	}
}

func TestHomeRebindsAfterSave(t *testing.T) {
	app := setupTestApp(t)
	writeStatic(t, app, "index.html", testIndexHTML)

	// Warm the cache with the fallback page.
	first := doRequest(t, app, http.MethodGet, "/", "", nil, nil)
	if !strings.Contains(first.Body.String(), "Fallback headline") {
		t.Fatal("expected the fallback page before any save")
	}

	cookies := login(t, app)
	token := fetchCSRF(t, app, cookies)
	if rec := putContent(t, app, validDoc, cookies, token); rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d", rec.Code)
	}

	second := doRequest(t, app, http.MethodGet, "/", "", nil, nil)
	if !strings.Contains(second.Body.String(), "Build with us") {
		t.Error("saving content should invalidate the cached page")
	}
}

func TestStaticServesExtensionlessPages(t *testing.T) {
	app := setupTestApp(t)
	writeStatic(t, app, "about.html", "<h1>About</h1>")
	writeStatic(t, app, "docs/index.html", "<h1>Docs</h1>")

	cases := []struct {
		path string
		want string
	}{
		{"/about", "About"},
		{"/about.html", "About"},
		{"/docs", "Docs"},
		{"/docs/", "Docs"},
	}
	for _, tc := range cases {
		rec := doRequest(t, app, http.MethodGet, tc.path, "", nil, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", tc.path, rec.Code)
			continue
		}
		if !strings.Contains(rec.Body.String(), tc.want) {
			t.Errorf("%s: body = %q, want to contain %q", tc.path, rec.Body.String(), tc.want)
		}
	}
}

func TestStaticDoesNotEscapeRoot(t *testing.T) {
	app := setupTestApp(t)
	writeStatic(t, app, "about.html", "<h1>About</h1>")

	secret := filepath.Join(filepath.Dir(app.staticDir), "secret.txt")
	if err := os.WriteFile(secret, []byte("keep out"), 0o644); err != nil {
		t.Fatalf("failed to write sentinel file: %v", err)
	}

	rec := doRequest(t, app, http.MethodGet, "/../secret.txt", "", nil, nil)
	if strings.Contains(rec.Body.String(), "keep out") {
		t.Error("traversal outside the static root must not be served")
	}
}

func TestSiteJSONEndpoint(t *testing.T) {
	app := setupTestApp(t)

	rec := doRequest(t, app, http.MethodGet, "/content/site.json", "", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing document: status = %d, want 404", rec.Code)
	}

	if err := app.Store.Write([]byte(validDoc)); err != nil {
		t.Fatalf("failed to seed content: %v", err)
	}
	rec = doRequest(t, app, http.MethodGet, "/content/site.json", "", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestRobotsTxt(t *testing.T) {
	app := setupTestApp(t, func(cfg *SiteConfig) {
		cfg.URL = "https://example.test"
	})

	rec := doRequest(t, app, http.MethodGet, "/robots.txt", "", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Disallow: /admin/") {
		t.Error("robots.txt should disallow the admin prefix")
	}
	if !strings.Contains(body, "Sitemap: https://example.test/sitemap.xml") {
		t.Errorf("robots.txt should point at the sitemap, got:\n%s", body)
	}
}

func TestSitemapXML(t *testing.T) {
	app := setupTestApp(t, func(cfg *SiteConfig) {
		cfg.URL = "https://example.test"
	})

	rec := doRequest(t, app, http.MethodGet, "/sitemap.xml", "", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<urlset") {
		t.Error("sitemap should contain a urlset element")
	}
	if !strings.Contains(body, "<loc>https://example.test/</loc>") {
		t.Errorf("sitemap should list the site root, got:\n%s", body)
	}
}

func TestAPIResponsesAreNotCacheable(t *testing.T) {
	app := setupTestApp(t)

	rec := doRequest(t, app, http.MethodGet, "/api/me", "", nil, nil)
	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		t.Errorf("Cache-Control = %q, want no-store for API responses", cc)
	}
}
