package storage

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/3FramesLab/recon-kg-engine/pkg/apperrors"
	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

// KGRepo persists knowledge graphs one directory per KG name:
// kg_storage/<kg_name>/metadata.json, carrying nodes, relationships and
// table_aliases alongside the KGMetadata the name implies.
type KGRepo struct {
	store *Store
}

// NewKGRepo wraps store for KG persistence.
func NewKGRepo(store *Store) *KGRepo {
	return &KGRepo{store: store}
}

const kgMetadataFile = "metadata.json"

// Save writes kg under kg_storage/<kg.Metadata.Name>/metadata.json,
// dropping any relationship whose SourceID/TargetID doesn't resolve to
// a node in kg first — callers (ingest, integrate) build relationships
// from independently-sourced data, and a dangling reference persisted
// to disk would render as a broken edge on every future load.
func (r *KGRepo) Save(kg *models.KnowledgeGraph) error {
	if kg.Metadata.Name == "" {
		return fmt.Errorf("knowledge graph has no name")
	}
	dropOrphanRelationships(r.store.logger, kg)
	return r.store.Save(kgRelDir(kg.Metadata.Name), kgMetadataFile, kg)
}

// dropOrphanRelationships filters kg.Relationships in place, removing
// any edge referencing a node id kg doesn't have, logging each drop
// against apperrors.ErrRenderGuard.
func dropOrphanRelationships(logger *zap.Logger, kg *models.KnowledgeGraph) {
	if len(kg.Relationships) == 0 {
		return
	}
	kept := make([]*models.Relationship, 0, len(kg.Relationships))
	for _, rel := range kg.Relationships {
		if kg.NodeByID(rel.SourceID) == nil || kg.NodeByID(rel.TargetID) == nil {
			logger.Warn("dropping relationship referencing unknown node",
				zap.Error(apperrors.ErrRenderGuard),
				zap.String("source_id", rel.SourceID), zap.String("target_id", rel.TargetID),
				zap.String("relationship_type", rel.RelationshipType))
			continue
		}
		kept = append(kept, rel)
	}
	kg.Relationships = kept
}

// Load reads the named KG, returning apperrors.ErrNotFound if absent.
func (r *KGRepo) Load(name string) (*models.KnowledgeGraph, error) {
	var kg models.KnowledgeGraph
	if err := r.store.Load(kgRelDir(name), kgMetadataFile, &kg); err != nil {
		return nil, err
	}
	return &kg, nil
}

// List returns the names of every KG with a persisted metadata.json —
// one subdirectory per KG under kg_storage/.
func (r *KGRepo) List() ([]string, error) {
	return r.store.ListDirs("kg_storage")
}

func kgRelDir(name string) string {
	return filepath.Join("kg_storage", name)
}
