package merge

import (
	"os"
	"path/filepath"
	"strings"
)

// ChecksumStore persists the fingerprint written alongside each synced
// target, under <root>/.rigra/sync/checksums. Entry names flatten the
// target's repo-relative path with "__" so the store stays a single
// directory.
type ChecksumStore struct {
	root string
}

func NewChecksumStore(root string) *ChecksumStore {
	return &ChecksumStore{root: root}
}

func (s *ChecksumStore) entryPath(target string) string {
	name := strings.ReplaceAll(filepath.ToSlash(target), "/", "__") + ".chk"
	return filepath.Join(s.root, ".rigra", "sync", "checksums", name)
}

// Read returns the stored fingerprint for target, or false when none exists.
func (s *ChecksumStore) Read(target string) (string, bool) {
	d, err := os.ReadFile(s.entryPath(target))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(d)), true
}

// Write records fp for target, creating the store directory as needed.
func (s *ChecksumStore) Write(target, fp string) error {
	p := s.entryPath(target)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(fp), 0o644)
}
