package sitekit

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/yusvaaji/sitekit/binder"
)

// PageCache holds the prerendered home page (index.html with the site
// document bound in) with a TTL. Content saves invalidate it so the public
// page reflects edits immediately.
type PageCache struct {
	mu      sync.RWMutex
	page    []byte
	fetched time.Time
	ttl     time.Duration

	store     *ContentStore
	indexPath string
	siteName  string
	siteURL   string
}

// NewPageCache creates a PageCache backed by the given content store and
// the site's index.html.
func NewPageCache(store *ContentStore, staticDir, siteName, siteURL string, ttl time.Duration) *PageCache {
	return &PageCache{
		store:     store,
		indexPath: filepath.Join(staticDir, "index.html"),
		siteName:  siteName,
		siteURL:   siteURL,
		ttl:       ttl,
	}
}

func (c *PageCache) valid() bool {
	return c.page != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh render.
func (c *PageCache) Invalidate() {
	c.mu.Lock()
	c.page = nil
	c.mu.Unlock()
}

// Home returns the prerendered home page, re-rendering if the cache is stale.
// It tries a read lock first; only takes a write lock if a render is needed.
func (c *PageCache) Home() ([]byte, error) {
	c.mu.RLock()
	if c.valid() {
		page := c.page
		c.mu.RUnlock()
		return page, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.page, nil
	}
	page, err := c.render()
	if err != nil {
		return nil, err
	}
	c.page = page
	c.fetched = time.Now()
	return page, nil
}

// render binds the site document into index.html. Any content or parse
// failure falls back to the raw file, keeping the hardcoded markup, which is
// the same behavior the page would have without a readable document.
func (c *PageCache) render() ([]byte, error) {
	raw, err := os.ReadFile(c.indexPath)
	if err != nil {
		return nil, err
	}

	data, err := c.store.Read()
	if err != nil {
		return raw, nil
	}
	var content map[string]any
	if err := json.Unmarshal(data, &content); err != nil {
		return raw, nil
	}

	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return raw, nil
	}
	b := binder.Binder{SiteURL: c.siteURL, SiteName: c.siteName}
	b.Bind(root, content)

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return raw, nil
	}
	return buf.Bytes(), nil
}
