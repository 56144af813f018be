// Package visits provides privacy-first page-view tracking for the site.
// Raw IP addresses are never stored; visitors are identified by a salted
// hash of IP and user agent, and old rows are pruned on a retention schedule.
package visits

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// salt holds the per-installation random salt for IP hashing, protected by sync.Once.
var salt struct {
	once  sync.Once
	value string
}

// InitSalt loads or generates a persistent salt for IP hashing.
// Must be called once at startup before any requests are served.
func InitSalt(store *Store) error {
	var initErr error
	salt.once.Do(func() {
		s, err := store.GetSetting("hash_salt")
		if err != nil {
			initErr = fmt.Errorf("read hash salt: %w", err)
			return
		}
		if s == "" {
			b := make([]byte, 32)
			if _, err := rand.Read(b); err != nil {
				initErr = fmt.Errorf("generate salt: %w", err)
				return
			}
			s = hex.EncodeToString(b)
			if err := store.SetSetting("hash_salt", s); err != nil {
				initErr = fmt.Errorf("store hash salt: %w", err)
				return
			}
		}
		salt.value = s
	})
	return initErr
}

// HashIP returns the salted hash of an IP address.
func HashIP(ip string) string {
	sum := sha256.Sum256([]byte(salt.value + "|" + ip))
	return hex.EncodeToString(sum[:])
}

// VisitorID derives an anonymous visitor fingerprint from IP and user agent.
func VisitorID(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(salt.value + "|" + ip + "|" + userAgent))
	return hex.EncodeToString(sum[:16])
}

// Visit represents a single page view.
type Visit struct {
	ID        int64     `json:"-"`
	VisitorID string    `json:"visitor_id"`
	IPHash    string    `json:"-"`
	Path      string    `json:"path"`
	Referrer  string    `json:"referrer"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats holds aggregated page-view data for a period.
type Stats struct {
	Period         string      `json:"period"`
	TotalViews     int         `json:"total_views"`
	UniqueVisitors int         `json:"unique_visitors"`
	TopPages       []PageStat  `json:"top_pages"`
	DailyViews     []DailyView `json:"daily_views"`
}

// PageStat represents view counts for one path.
type PageStat struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
}

// DailyView represents view counts for one day.
type DailyView struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}
