package visits

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding page views and settings.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the visits database at path, ensures the data
// directory exists, and runs schema setup.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open visits db: %w", err)
	}
	// WAL + busy timeout so the collect endpoint's writes don't contend
	// with stats reads.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS visits (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    visitor_id TEXT NOT NULL,
    ip_hash TEXT NOT NULL,
    path TEXT NOT NULL,
    referrer TEXT,
    timestamp DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp);
CREATE INDEX IF NOT EXISTS idx_visits_visitor_id ON visits(visitor_id);
CREATE INDEX IF NOT EXISTS idx_visits_path ON visits(path);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`)
	return err
}

// GetSetting retrieves a setting value by key. Returns empty string if not found.
func (s *Store) GetSetting(key string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return val, err
}

// SetSetting stores a setting value by key (upsert).
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// SaveVisit stores a new page view.
func (s *Store) SaveVisit(v *Visit) error {
	_, err := s.db.Exec(
		`INSERT INTO visits (visitor_id, ip_hash, path, referrer, timestamp) VALUES (?, ?, ?, ?, ?)`,
		v.VisitorID, v.IPHash, v.Path, v.Referrer, v.Timestamp.UTC(),
	)
	return err
}

// GetStats returns aggregated statistics for the given time period.
func (s *Store) GetStats(from, to time.Time) (*Stats, error) {
	stats := &Stats{
		Period:     from.Format("2006-01-02") + " to " + to.Format("2006-01-02"),
		TopPages:   []PageStat{},
		DailyViews: []DailyView{},
	}

	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM visits WHERE timestamp BETWEEN ? AND ?`, from, to,
	).Scan(&stats.TotalViews); err != nil {
		return nil, fmt.Errorf("count views: %w", err)
	}

	if err := s.db.QueryRow(
		`SELECT COUNT(DISTINCT visitor_id) FROM visits WHERE timestamp BETWEEN ? AND ?`, from, to,
	).Scan(&stats.UniqueVisitors); err != nil {
		return nil, fmt.Errorf("count unique visitors: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT path, COUNT(*) AS views FROM visits WHERE timestamp BETWEEN ? AND ?
		 GROUP BY path ORDER BY views DESC LIMIT 10`, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("top pages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p PageStat
		if err := rows.Scan(&p.Path, &p.Views); err != nil {
			return nil, err
		}
		stats.TopPages = append(stats.TopPages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	daily, err := s.db.Query(
		`SELECT date(timestamp) AS day, COUNT(*) AS views FROM visits
		 WHERE timestamp BETWEEN ? AND ? GROUP BY day ORDER BY day`, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("daily views: %w", err)
	}
	defer daily.Close()
	for daily.Next() {
		var d DailyView
		if err := daily.Scan(&d.Date, &d.Views); err != nil {
			return nil, err
		}
		stats.DailyViews = append(stats.DailyViews, d)
	}
	if err := daily.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// CleanupOldVisits removes visits older than the retention period.
func (s *Store) CleanupOldVisits(retentionDays int) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	if _, err := s.db.Exec(`DELETE FROM visits WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup visits: %w", err)
	}
	return nil
}

// StartCleanupScheduler runs periodic cleanup of old data. Returns a stop function.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := s.CleanupOldVisits(retentionDays); err != nil {
					fmt.Printf("cleanup error: %v\n", err)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
