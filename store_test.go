package sitekit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupTestStore(t *testing.T) *ContentStore {
	t.Helper()
	s, err := NewContentStore(filepath.Join(t.TempDir(), "content", "site.json"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func TestContentStoreRoundTrip(t *testing.T) {
	s := setupTestStore(t)

	doc := []byte("{\n  \"meta\": {}\n}\n")
	if err := s.Write(doc); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := s.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != string(doc) {
		t.Errorf("Read = %q, want %q", got, doc)
	}
}

func TestContentStoreReadMissing(t *testing.T) {
	s := setupTestStore(t)

	if _, err := s.Read(); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestContentStoreFirstWriteWithoutBackup(t *testing.T) {
	s := setupTestStore(t)

	// Nothing to back up yet; the write must still succeed.
	if err := s.Write([]byte("first\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(s.backupPath); !os.IsNotExist(err) {
		t.Errorf("backup should not exist after first write, stat err: %v", err)
	}
}

func TestContentStoreBackupKeepsOneGeneration(t *testing.T) {
	s := setupTestStore(t)

	if err := s.Write([]byte("one\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := s.Write([]byte("two\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	bak, err := os.ReadFile(s.backupPath)
	if err != nil {
		t.Fatalf("backup missing after second write: %v", err)
	}
	if string(bak) != "one\n" {
		t.Errorf("backup = %q, want %q", bak, "one\n")
	}

	if err := s.Write([]byte("three\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	bak, err = os.ReadFile(s.backupPath)
	if err != nil {
		t.Fatalf("backup missing after third write: %v", err)
	}
	if string(bak) != "two\n" {
		t.Errorf("backup = %q, want %q (only one generation retained)", bak, "two\n")
	}
}

func TestContentStoreLeavesNoTempFiles(t *testing.T) {
	s := setupTestStore(t)

	for i := 0; i < 3; i++ {
		if err := s.Write([]byte("doc\n")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(s.path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("stray temp file left behind: %s", e.Name())
		}
	}
}
