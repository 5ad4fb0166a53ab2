// Package kg assembles a merged knowledge graph from schema descriptors:
// table nodes, declared foreign-key edges, inferred cross-schema edges,
// and (optionally) LLM-learned table aliases.
package kg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/3FramesLab/recon-kg-engine/pkg/excluded"
	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

// AliasLearner is the subset of the alias-learning component the
// assembler depends on: learning table aliases is optional (useLLM) and
// never fails the build.
type AliasLearner interface {
	Learn(ctx context.Context, table *models.Table, schemaName string) ([]string, error)
}

// Assembler builds merged knowledge graphs from schema descriptors,
// generalizing an adjacency-map-plus-dedup approach from undirected
// plain-string edges to typed, confidence-scored Relationship values.
type Assembler struct {
	aliasLearner AliasLearner
	logger       *zap.Logger
}

// New creates an Assembler. aliasLearner may be nil if useLLM is never
// requested by callers.
func New(aliasLearner AliasLearner, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{aliasLearner: aliasLearner, logger: logger.Named("kg")}
}

// referenceSuffixes lists the suffixed column forms that plausibly
// reference another table by name: "<x>_id", "<x>_uid", "<x>_code". The
// bare "<x>" form is handled separately in matchReferencePattern.
var referenceSuffixes = []struct {
	suffix     string
	confidence float64
}{
	{"_id", 0.85},
	{"_uid", 0.8},
	{"_code", 0.7},
}

// tableRef locates a table within the schema it belongs to, for
// cross-schema reference inference.
type tableRef struct {
	schemaName string
	table      *models.Table
}

// BuildMerged assembles a KG from the given schemas: table nodes,
// declared foreign keys, then inferred cross-schema references. useLLM
// controls whether the alias learner runs; its failure never aborts the
// build — a warning is logged and the KG is still returned.
func (a *Assembler) BuildMerged(ctx context.Context, schemas []*models.Schema, kgName string, useLLM bool) (*models.KnowledgeGraph, []string) {
	var warnings []string

	kgObj := &models.KnowledgeGraph{
		TableAliases: make(map[string][]string),
		Metadata: models.KGMetadata{
			Name:      kgName,
			CreatedAt: time.Now(),
		},
	}

	nodesByID := make(map[string]*models.Node)
	edgesByKey := make(map[[3]string]*models.Relationship)

	// tablesByName indexes table name -> (schemaName, table) for
	// cross-schema inference, keyed case-insensitively.
	tablesByName := make(map[string][]tableRef)

	schemaNames := make([]string, 0, len(schemas))
	for _, schema := range schemas {
		schemaNames = append(schemaNames, schema.Name)
		for _, table := range schema.Tables {
			a.addTableNode(nodesByID, table)
			tablesByName[strings.ToLower(table.Name)] = append(
				tablesByName[strings.ToLower(table.Name)], tableRef{schema.Name, table})

			for _, col := range table.Columns {
				if col.ForeignKey && col.TargetTable != "" {
					a.addDeclaredFKEdge(edgesByKey, table, col)
				}
			}
		}
	}

	// Cross-schema inference: scan every column across every schema for a
	// referential naming pattern pointing at a table in a *different*
	// schema.
	for _, schema := range schemas {
		for _, table := range schema.Tables {
			for _, col := range table.Columns {
				a.inferCrossSchemaEdge(edgesByKey, tablesByName, schema.Name, table, col)
			}
		}
	}

	for _, n := range nodesByID {
		kgObj.Nodes = append(kgObj.Nodes, n)
	}
	for _, e := range edgesByKey {
		kgObj.Relationships = append(kgObj.Relationships, e)
	}
	kgObj.Metadata.SchemasMerged = schemaNames

	if useLLM && a.aliasLearner != nil {
		for _, schema := range schemas {
			for _, table := range schema.Tables {
				aliases, err := a.aliasLearner.Learn(ctx, table, schema.Name)
				if err != nil {
					warnings = append(warnings, fmt.Sprintf("alias learning failed for %s: %v", table.Name, err))
					a.logger.Warn("alias learning failed", zap.String("table", table.Name), zap.Error(err))
					continue
				}
				if len(aliases) > 0 {
					kgObj.TableAliases[table.Name] = aliases
				}
			}
		}
	}

	kgObj.Metadata.Statistics = map[string]any{
		"node_count":         len(kgObj.Nodes),
		"relationship_count": len(kgObj.Relationships),
	}

	return kgObj, warnings
}

// addTableNode dedups table nodes by canonical (lowercase) id, keeping
// the first-seen original-case label.
func (a *Assembler) addTableNode(nodesByID map[string]*models.Node, table *models.Table) {
	id := models.TableNodeID(table.Name)
	if _, exists := nodesByID[id]; exists {
		return
	}
	nodesByID[id] = &models.Node{
		ID:    id,
		Label: table.Name,
		Kind:  models.NodeKindTable,
	}
}

// addDeclaredFKEdge emits an intra-schema REFERENCES edge with
// confidence 1.0, dropping pairs that touch an excluded column.
func (a *Assembler) addDeclaredFKEdge(edgesByKey map[[3]string]*models.Relationship, table *models.Table, col *models.Column) {
	if excluded.IsExcluded(col.Name) || excluded.IsExcluded(col.TargetColumn) {
		a.logger.Info("excluded fk edge dropped",
			zap.String("source_column", col.Name), zap.String("target_column", col.TargetColumn))
		return
	}

	rel := &models.Relationship{
		SourceID:         models.TableNodeID(table.Name),
		TargetID:         models.TableNodeID(col.TargetTable),
		RelationshipType: models.RelationshipReferences,
		SourceColumn:     col.Name,
		TargetColumn:     col.TargetColumn,
		Confidence:       1.0,
		Origin:           models.OriginAutoDetected,
	}
	a.upsertHighestConfidence(edgesByKey, rel)
}

// inferCrossSchemaEdge handles the pattern-matching case: a column
// matching "<x>_id"/"<x>_uid"/"<x>_code"/bare "<x>" where table <x>
// exists in a different schema produces a CROSS_SCHEMA_REFERENCE edge.
func (a *Assembler) inferCrossSchemaEdge(
	edgesByKey map[[3]string]*models.Relationship,
	tablesByName map[string][]tableRef,
	sourceSchema string,
	sourceTable *models.Table,
	col *models.Column,
) {
	if col.ForeignKey {
		return // already handled as a declared FK
	}

	candidate, confidence, ok := matchReferencePattern(col.Name)
	if !ok {
		return
	}

	refs, found := tablesByName[strings.ToLower(candidate)]
	if !found {
		return
	}

	for _, ref := range refs {
		if ref.schemaName == sourceSchema {
			continue // only cross-SCHEMA references count here
		}

		targetCol := pickTargetColumn(ref.table, col.Name)
		if targetCol == "" {
			continue
		}
		if excluded.IsExcluded(col.Name) || excluded.IsExcluded(targetCol) {
			a.logger.Info("excluded cross-schema edge dropped",
				zap.String("source_column", col.Name), zap.String("target_column", targetCol))
			continue
		}

		rel := &models.Relationship{
			SourceID:         models.TableNodeID(sourceTable.Name),
			TargetID:         models.TableNodeID(ref.table.Name),
			RelationshipType: models.RelationshipCrossSchemaReference,
			SourceColumn:     col.Name,
			TargetColumn:     targetCol,
			Confidence:       confidence,
			Origin:           models.OriginAutoDetected,
			Properties:       map[string]any{"inferred": true},
		}
		a.upsertHighestConfidence(edgesByKey, rel)
	}
}

// matchReferencePattern reports whether name looks like a reference to
// another table, returning the candidate table token and the match's
// base confidence (0.6-0.85, scaled by match strength).
func matchReferencePattern(name string) (candidate string, confidence float64, ok bool) {
	lower := strings.ToLower(name)
	for _, pattern := range referenceSuffixes {
		if strings.HasSuffix(lower, pattern.suffix) {
			return strings.TrimSuffix(name, name[len(name)-len(pattern.suffix):]), pattern.confidence, true
		}
	}
	// bare "<x>" form: lower confidence, only worth trying when the name
	// itself (not a suffix-stripped variant) matches a table.
	return name, 0.6, true
}

// pickTargetColumn chooses the column within the candidate table that the
// reference most likely points at: its primary key if present, else a
// same-named column, else empty (no edge emitted).
func pickTargetColumn(table *models.Table, sourceColumnName string) string {
	for _, c := range table.Columns {
		if c.PrimaryKey {
			return c.Name
		}
	}
	if c := table.ColumnByName(sourceColumnName); c != nil {
		return c.Name
	}
	return ""
}

// upsertHighestConfidence enforces the no-duplicate-edge invariant:
// (source_id, target_id, relationship_type) keeps only the
// highest-confidence relationship.
func (a *Assembler) upsertHighestConfidence(edgesByKey map[[3]string]*models.Relationship, rel *models.Relationship) {
	key := rel.Key()
	existing, exists := edgesByKey[key]
	if !exists || rel.Confidence > existing.Confidence {
		edgesByKey[key] = rel
	}
}
