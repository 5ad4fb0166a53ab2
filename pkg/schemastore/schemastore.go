// Package schemastore loads named schema descriptors from a directory
// of YAML files, caching them by name, and extracts the database name
// embedded in a connection URL across the four supported dialects.
package schemastore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/3FramesLab/recon-kg-engine/pkg/apperrors"
	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

// Store loads and caches schema descriptors from a directory, one YAML
// file per schema. Reads are cached; the cache is read-mostly and
// protected by a reader/writer lock.
type Store struct {
	dir    string
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]*models.Schema
}

// New creates a Store rooted at dir.
func New(dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		dir:    dir,
		logger: logger.Named("schemastore"),
		cache:  make(map[string]*models.Schema),
	}
}

// Load returns the named schema, reading it from disk on first access.
// Returns apperrors.ErrSchemaNotFound when the name is absent.
func (s *Store) Load(name string) (*models.Schema, error) {
	s.mu.RLock()
	if sch, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return sch, nil
	}
	s.mu.RUnlock()

	path := filepath.Join(s.dir, name+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrSchemaNotFound, name)
		}
		return nil, fmt.Errorf("reading schema %q: %w", name, err)
	}

	var sch models.Schema
	if err := yaml.Unmarshal(data, &sch); err != nil {
		return nil, fmt.Errorf("parsing schema %q: %w", name, err)
	}
	if sch.Name == "" {
		sch.Name = name
	}

	s.mu.Lock()
	s.cache[name] = &sch
	s.mu.Unlock()

	s.logger.Debug("schema loaded", zap.String("name", name), zap.Int("tables", len(sch.Tables)))
	return &sch, nil
}

// Invalidate drops a cached schema so the next Load re-reads it from disk.
func (s *Store) Invalidate(name string) {
	s.mu.Lock()
	delete(s.cache, name)
	s.mu.Unlock()
}
