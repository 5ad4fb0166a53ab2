// Package storage is a file-based JSON document store rooted at an
// application directory. Every write is atomic (write to a temp file,
// then rename into place) so a crash mid-write never leaves a
// half-written document behind; every read that misses returns
// apperrors.ErrNotFound so callers can distinguish "absent" from a
// real I/O failure.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/3FramesLab/recon-kg-engine/pkg/apperrors"
)

// Store writes and reads JSON documents under a root directory,
// creating missing subdirectories on first write. A single process is
// assumed: reads are plain filesystem reads, not snapshotted against
// concurrent writers.
type Store struct {
	root   string
	logger *zap.Logger
}

// New creates a Store rooted at root.
func New(root string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{root: root, logger: logger.Named("storage")}
}

// Save marshals v as indented JSON and writes it to <root>/relDir/name,
// creating relDir if needed. The write is atomic: content lands in a
// sibling temp file first, then os.Rename swaps it into place.
func (s *Store) Save(relDir, name string, v any) error {
	dir := filepath.Join(s.root, relDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}

	target := filepath.Join(dir, name)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("renaming %s into place: %w", target, err)
	}

	s.logger.Debug("document saved", zap.String("path", target), zap.Int("bytes", len(data)))
	return nil
}

// Load reads <root>/relDir/name and unmarshals it into v. Returns
// apperrors.ErrNotFound (wrapped) when the document is absent.
func (s *Store) Load(relDir, name string, v any) error {
	path := filepath.Join(s.root, relDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", apperrors.ErrNotFound, path)
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// List returns the base file names present under <root>/relDir,
// sorted by file name (os.ReadDir's order). An absent directory is
// reported as an empty list, not an error — nothing has ever been
// written there yet.
func (s *Store) List(relDir string) ([]string, error) {
	dir := filepath.Join(s.root, relDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Delete removes <root>/relDir/name. Deleting an absent document is a
// no-op, not an error.
func (s *Store) Delete(relDir, name string) error {
	path := filepath.Join(s.root, relDir, name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	return nil
}

// ListDirs returns the subdirectory names present under <root>/relDir,
// used where each document lives in its own subdirectory rather than
// as a bare file (e.g. kg_storage/<kg_name>/metadata.json). An absent
// parent directory reports an empty list, not an error.
func (s *Store) ListDirs(relDir string) ([]string, error) {
	dir := filepath.Join(s.root, relDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// trimJSONSuffixes strips a trailing ".json" from each name, used by
// repos whose document id is the bare file name minus its extension.
func trimJSONSuffixes(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.TrimSuffix(n, ".json")
	}
	return out
}
