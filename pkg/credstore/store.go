// Package credstore persists virtual-authenticator credential records as
// timestamped JSON snapshots in a directory. Records pass through in the
// shape the CDP WebAuthn domain emits and consumes; the store itself only
// interprets the credential ID and signature counter.
package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/chromedp/cdproto/webauthn"
)

// ErrNoSnapshots is returned when the directory holds no snapshot files.
var ErrNoSnapshots = errors.New("credstore: no credential snapshots")

// fileTimeLayout sorts lexicographically in time order, so newest-first
// listing is a plain descending name sort.
const fileTimeLayout = "2006-01-02_15-04-05"

// Store reads and writes credential snapshots under a single directory.
// Single-process use only; there is no locking against concurrent writers.
type Store struct {
	dir string
	now func() time.Time
}

func New(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Dir returns the snapshot directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes records to a new snapshot named after the current local
// time and returns its path. The directory is created if missing.
func (s *Store) Save(records []*webauthn.Credential) (string, error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return "", fmt.Errorf("credstore: create %s: %w", s.dir, err)
	}
	path := filepath.Join(s.dir, s.now().Format(fileTimeLayout)+".json")
	if err := WriteSnapshot(path, records); err != nil {
		return "", err
	}
	return path, nil
}

// List returns the snapshot paths in the directory, newest first. A
// missing directory yields an empty list, not an error.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("credstore: read %s: %w", s.dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, e.Name()))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths, nil
}

// LoadLatest reads the newest snapshot. Returns ErrNoSnapshots when the
// directory has none.
func (s *Store) LoadLatest() ([]*webauthn.Credential, error) {
	paths, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSnapshots, s.dir)
	}
	return ReadSnapshot(paths[0])
}

// Exists reports whether at least one snapshot is present.
func (s *Store) Exists() bool {
	paths, err := s.List()
	return err == nil && len(paths) > 0
}

// WriteSnapshot serializes records to path as a pretty-printed JSON
// array with a trailing newline, replacing any previous contents.
func WriteSnapshot(path string, records []*webauthn.Credential) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("credstore: marshal records: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("credstore: write %s: %w", path, err)
	}
	return nil
}

// ReadSnapshot deserializes the snapshot at path.
func ReadSnapshot(path string) ([]*webauthn.Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("credstore: read %s: %w", path, err)
	}
	var records []*webauthn.Credential
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("credstore: parse %s: %w", path, err)
	}
	return records, nil
}
