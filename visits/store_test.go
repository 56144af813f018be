package visits

import (
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "visits.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSettingsRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	got, err := store.GetSetting("missing")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if got != "" {
		t.Errorf("missing key = %q, want empty", got)
	}

	if err := store.SetSetting("hash_salt", "abc123"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := store.SetSetting("hash_salt", "def456"); err != nil {
		t.Fatalf("SetSetting overwrite: %v", err)
	}
	got, err = store.GetSetting("hash_salt")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if got != "def456" {
		t.Errorf("value = %q, want def456", got)
	}
}

func TestInitSaltPersists(t *testing.T) {
	store := setupTestStore(t)

	if err := InitSalt(store); err != nil {
		t.Fatalf("InitSalt: %v", err)
	}
	stored, err := store.GetSetting("hash_salt")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if len(stored) != 64 {
		t.Errorf("salt length = %d, want 64 hex chars", len(stored))
	}
}

func TestVisitorIDIsStableAndAnonymous(t *testing.T) {
	a := VisitorID("203.0.113.7", "Mozilla/5.0")
	b := VisitorID("203.0.113.7", "Mozilla/5.0")
	c := VisitorID("203.0.113.8", "Mozilla/5.0")

	if a != b {
		t.Error("same IP and UA should produce the same visitor id")
	}
	if a == c {
		t.Error("different IPs should produce different visitor ids")
	}
	if len(a) != 32 {
		t.Errorf("visitor id length = %d, want 32", len(a))
	}
	if a == "203.0.113.7" || HashIP("203.0.113.7") == "203.0.113.7" {
		t.Error("raw IP must never appear in stored identifiers")
	}
}

func TestSaveVisitAndGetStats(t *testing.T) {
	store := setupTestStore(t)
	now := time.Now().UTC()

	seed := []struct {
		visitor string
		path    string
		at      time.Time
	}{
		{"visitor-a", "/", now.Add(-2 * time.Hour)},
		{"visitor-a", "/", now.Add(-1 * time.Hour)},
		{"visitor-a", "/about", now.Add(-30 * time.Minute)},
		{"visitor-b", "/", now.Add(-10 * time.Minute)},
	}
	for _, v := range seed {
		err := store.SaveVisit(&Visit{
			VisitorID: v.visitor,
			IPHash:    "hash-" + v.visitor,
			Path:      v.path,
			Timestamp: v.at,
		})
		if err != nil {
			t.Fatalf("SaveVisit: %v", err)
		}
	}

	stats, err := store.GetStats(now.Add(-24*time.Hour), now)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalViews != 4 {
		t.Errorf("TotalViews = %d, want 4", stats.TotalViews)
	}
	if stats.UniqueVisitors != 2 {
		t.Errorf("UniqueVisitors = %d, want 2", stats.UniqueVisitors)
	}
	if len(stats.TopPages) == 0 || stats.TopPages[0].Path != "/" || stats.TopPages[0].Views != 3 {
		t.Errorf("TopPages = %+v, want / with 3 views first", stats.TopPages)
	}
}

func TestGetStatsExcludesOutsidePeriod(t *testing.T) {
	store := setupTestStore(t)
	now := time.Now().UTC()

	for _, at := range []time.Time{now.Add(-48 * time.Hour), now.Add(-1 * time.Hour)} {
		err := store.SaveVisit(&Visit{VisitorID: "v", IPHash: "h", Path: "/", Timestamp: at})
		if err != nil {
			t.Fatalf("SaveVisit: %v", err)
		}
	}

	stats, err := store.GetStats(now.Add(-24*time.Hour), now)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalViews != 1 {
		t.Errorf("TotalViews = %d, want 1 inside the window", stats.TotalViews)
	}
}

func TestCleanupOldVisits(t *testing.T) {
	store := setupTestStore(t)
	now := time.Now().UTC()

	old := &Visit{VisitorID: "v", IPHash: "h", Path: "/", Timestamp: now.AddDate(0, 0, -400)}
	fresh := &Visit{VisitorID: "v", IPHash: "h", Path: "/", Timestamp: now}
	for _, v := range []*Visit{old, fresh} {
		if err := store.SaveVisit(v); err != nil {
			t.Fatalf("SaveVisit: %v", err)
		}
	}

	if err := store.CleanupOldVisits(365); err != nil {
		t.Fatalf("CleanupOldVisits: %v", err)
	}

	stats, err := store.GetStats(now.AddDate(-2, 0, 0), now)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalViews != 1 {
		t.Errorf("TotalViews after cleanup = %d, want 1", stats.TotalViews)
	}
}
