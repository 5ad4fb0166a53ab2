// Package kgintegrator merges natural-language-derived edges into an
// existing knowledge graph under a chosen duplicate-handling strategy,
// and computes summary statistics over a graph's edges.
package kgintegrator

import (
	"fmt"

	"github.com/3FramesLab/recon-kg-engine/pkg/apperrors"
	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

// Strategy controls how AddNLRelationships/Merge handle duplicate and
// low-confidence edges.
type Strategy string

const (
	// StrategyUnion appends every edge; the dedup key is still applied,
	// since the knowledge graph never carries two edges with the same
	// (source, target, type).
	StrategyUnion Strategy = "union"
	// StrategyDeduplicate unions then drops exact duplicate keys,
	// keeping the higher-confidence edge.
	StrategyDeduplicate Strategy = "deduplicate"
	// StrategyHighConfidence deduplicates then drops edges below 0.7
	// confidence.
	StrategyHighConfidence Strategy = "high_confidence"
)

// highConfidenceThreshold is the cutoff applied by StrategyHighConfidence.
const highConfidenceThreshold = 0.7

// AddNLRelationships merges nlEdges (typically from pkg/nlrelationship)
// into kg under strategy, returning a new graph; kg itself is not
// mutated.
func AddNLRelationships(graph *models.KnowledgeGraph, nlEdges []*models.Relationship, strategy Strategy) (*models.KnowledgeGraph, []string) {
	return Merge(graph, nlEdges, strategy)
}

// Merge combines graph's existing relationships with edges under
// strategy, returning a new graph with the same nodes, aliases, and
// metadata but a recomputed relationship set. Relationships whose
// SourceID/TargetID don't resolve to a node in graph are dropped before
// the merge, each with a warning wrapping apperrors.ErrRenderGuard —
// such an edge would render a dangling reference if it reached storage.
func Merge(graph *models.KnowledgeGraph, edges []*models.Relationship, strategy Strategy) (*models.KnowledgeGraph, []string) {
	merged := &models.KnowledgeGraph{
		Nodes:        graph.Nodes,
		TableAliases: graph.TableAliases,
		Metadata:     graph.Metadata,
	}

	all := make([]*models.Relationship, 0, len(graph.Relationships)+len(edges))
	all = append(all, graph.Relationships...)
	all = append(all, edges...)

	all, warnings := dropOrphanRelationships(merged, all)

	switch strategy {
	case StrategyDeduplicate, StrategyHighConfidence:
		all = dedupeHighestConfidence(all)
	case StrategyUnion:
		all = dedupeHighestConfidence(all) // the no-duplicate-edge invariant always holds
	}

	if strategy == StrategyHighConfidence {
		filtered := make([]*models.Relationship, 0, len(all))
		for _, rel := range all {
			if rel.Confidence >= highConfidenceThreshold {
				filtered = append(filtered, rel)
			}
		}
		all = filtered
	}

	merged.Relationships = all
	stats := Statistics(merged)
	merged.Metadata.Statistics = map[string]any{
		"node_count":            len(merged.Nodes),
		"relationship_count":    stats.TotalEdges,
		"edges_by_origin":       stats.EdgesByOrigin,
		"edges_by_type":         stats.EdgesByType,
		"unique_source_tables":  stats.UniqueSourceTables,
		"average_confidence":    stats.AverageConfidence,
		"high_confidence_edges": stats.HighConfidenceEdges,
	}
	return merged, warnings
}

// dropOrphanRelationships filters out any edge whose SourceID or
// TargetID doesn't resolve to a node in graph, returning the survivors
// and one warning per dropped edge.
func dropOrphanRelationships(graph *models.KnowledgeGraph, edges []*models.Relationship) ([]*models.Relationship, []string) {
	kept := make([]*models.Relationship, 0, len(edges))
	var warnings []string
	for _, rel := range edges {
		if graph.NodeByID(rel.SourceID) == nil || graph.NodeByID(rel.TargetID) == nil {
			warnings = append(warnings, fmt.Errorf("%w: %s -> %s (%s)", apperrors.ErrRenderGuard, rel.SourceID, rel.TargetID, rel.RelationshipType).Error())
			continue
		}
		kept = append(kept, rel)
	}
	return kept, warnings
}

func dedupeHighestConfidence(edges []*models.Relationship) []*models.Relationship {
	byKey := make(map[[3]string]*models.Relationship, len(edges))
	order := make([][3]string, 0, len(edges))

	for _, e := range edges {
		key := e.Key()
		existing, exists := byKey[key]
		if !exists {
			byKey[key] = e
			order = append(order, key)
			continue
		}
		if e.Confidence > existing.Confidence {
			byKey[key] = e
		}
	}

	out := make([]*models.Relationship, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

// Stats holds the O(|edges|)-computable summary over a graph's edges.
type Stats struct {
	TotalEdges          int
	EdgesByOrigin       map[string]int
	EdgesByType         map[string]int
	UniqueSourceTables  int
	AverageConfidence   float64
	HighConfidenceEdges int
}

// Statistics computes Stats over graph.Relationships in a single pass.
func Statistics(graph *models.KnowledgeGraph) Stats {
	stats := Stats{
		EdgesByOrigin: make(map[string]int),
		EdgesByType:   make(map[string]int),
	}

	sourceTables := make(map[string]struct{})
	var confidenceSum float64

	for _, rel := range graph.Relationships {
		stats.TotalEdges++
		stats.EdgesByOrigin[rel.Origin]++
		stats.EdgesByType[rel.RelationshipType]++
		sourceTables[rel.SourceID] = struct{}{}
		confidenceSum += rel.Confidence
		if rel.Confidence >= highConfidenceThreshold {
			stats.HighConfidenceEdges++
		}
	}

	stats.UniqueSourceTables = len(sourceTables)
	if stats.TotalEdges > 0 {
		stats.AverageConfidence = confidenceSum / float64(stats.TotalEdges)
	}
	return stats
}
