package sitekit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ContentStore owns the canonical site document and its single-generation
// backup. All reads and writes of site.json go through it.
type ContentStore struct {
	path       string
	backupPath string
}

// NewContentStore creates a store for the document at path, ensuring the
// containing directory exists.
func NewContentStore(path string) (*ContentStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &ContentStore{
		path:       path,
		backupPath: path + ".bak",
	}, nil
}

// Path returns the canonical document path.
func (s *ContentStore) Path() string {
	return s.path
}

// Read returns the raw bytes of the current document. It fails if the file
// is missing or unreadable.
func (s *ContentStore) Read() ([]byte, error) {
	return os.ReadFile(s.path)
}

// Write replaces the document atomically: the previous content is copied to
// the backup path (best-effort, a missing prior file is fine), the new
// content goes to a uniquely named temporary file in the same directory, and
// a rename swaps it in. Readers never observe a partial document.
func (s *ContentStore) Write(doc []byte) error {
	s.backup()

	tmp := fmt.Sprintf("%s.%s.tmp", s.path, uuid.NewString())
	if err := os.WriteFile(tmp, doc, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// backup copies the current document to the backup path, overwriting any
// prior backup. History is exactly one generation deep.
func (s *ContentStore) backup() {
	prev, err := os.ReadFile(s.path)
	if err != nil {
		return // nothing to back up, e.g. first write
	}
	_ = os.WriteFile(s.backupPath, prev, 0o644)
}
