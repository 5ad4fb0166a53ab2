// Package joinplanner finds the shortest chain of tables connecting two
// labels through a knowledge graph's relationships, and resolves the
// join condition between any two adjacent tables in that chain.
package joinplanner

import (
	"strings"

	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

// edge is one traversable hop in the undirected adjacency built from
// kg.relationships: from -> to, carrying the relationship that licenses
// the hop (possibly reversed from the original edge's direction).
type edge struct {
	to   string
	rel  *models.Relationship
}

// FindJoinPath returns the ordered chain of original-case table labels
// connecting sourceLabel to targetLabel, inclusive, via an undirected
// BFS over graph's relationships. Ties among minimum-hop paths are
// broken by highest average edge confidence, then by preferring
// natural-language-originated edges. Returns nil if no path exists or
// either label is unknown.
func FindJoinPath(sourceLabel, targetLabel string, graph *models.KnowledgeGraph) []string {
	sourceID := models.TableNodeID(sourceLabel)
	targetID := models.TableNodeID(targetLabel)

	if graph.NodeByID(sourceID) == nil || graph.NodeByID(targetID) == nil {
		return nil
	}
	if sourceID == targetID {
		return []string{graph.NodeByID(sourceID).Label}
	}

	adjacency := buildAdjacency(graph)

	minHops, reachable := bfsMinHops(adjacency, sourceID, targetID)
	if !reachable {
		return nil
	}

	best := findBestPath(adjacency, sourceID, targetID, minHops)
	if best == nil {
		return nil
	}

	return collapseSelfJoins(idsToLabels(best, graph))
}

func buildAdjacency(graph *models.KnowledgeGraph) map[string][]edge {
	adjacency := make(map[string][]edge)
	for _, rel := range graph.Relationships {
		adjacency[rel.SourceID] = append(adjacency[rel.SourceID], edge{to: rel.TargetID, rel: rel})
		adjacency[rel.TargetID] = append(adjacency[rel.TargetID], edge{to: rel.SourceID, rel: rel})
	}
	return adjacency
}

// bfsMinHops returns the minimum number of edges from source to target.
func bfsMinHops(adjacency map[string][]edge, source, target string) (int, bool) {
	visited := map[string]int{source: 0}
	queue := []string{source}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == target {
			return visited[cur], true
		}
		for _, e := range adjacency[cur] {
			if _, seen := visited[e.to]; seen {
				continue
			}
			visited[e.to] = visited[cur] + 1
			queue = append(queue, e.to)
		}
	}
	return 0, false
}

// findBestPath enumerates every simple path of exactly minHops edges
// from source to target and returns the node-id chain with the highest
// average edge confidence, breaking further ties by the count of
// natural-language-originated edges used.
func findBestPath(adjacency map[string][]edge, source, target string, minHops int) []string {
	var best []string
	var bestScore float64
	var bestNLCount int
	found := false

	var visit func(path []string, edgesUsed []*models.Relationship, depth int)
	visit = func(path []string, edgesUsed []*models.Relationship, depth int) {
		cur := path[len(path)-1]
		if depth == minHops {
			if cur != target {
				return
			}
			avgConfidence, nlCount := scorePath(edgesUsed)
			if !found || avgConfidence > bestScore || (avgConfidence == bestScore && nlCount > bestNLCount) {
				best = append([]string(nil), path...)
				bestScore = avgConfidence
				bestNLCount = nlCount
				found = true
			}
			return
		}

		for _, e := range adjacency[cur] {
			if containsID(path, e.to) {
				continue // no revisiting a node within one candidate path
			}
			visit(append(path, e.to), append(edgesUsed, e.rel), depth+1)
		}
	}

	visit([]string{source}, nil, 0)
	if !found {
		return nil
	}
	return best
}

func scorePath(edges []*models.Relationship) (avgConfidence float64, nlCount int) {
	if len(edges) == 0 {
		return 0, 0
	}
	var sum float64
	for _, e := range edges {
		sum += e.Confidence
		if e.Origin == models.OriginNaturalLanguage {
			nlCount++
		}
	}
	return sum / float64(len(edges)), nlCount
}

func containsID(path []string, id string) bool {
	for _, p := range path {
		if p == id {
			return true
		}
	}
	return false
}

func idsToLabels(ids []string, graph *models.KnowledgeGraph) []string {
	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		if n := graph.NodeByID(id); n != nil {
			labels = append(labels, n.Label)
		}
	}
	return labels
}

// collapseSelfJoins removes consecutive duplicate labels (case-insensitive)
// so no generated join ever pairs a table with itself.
func collapseSelfJoins(labels []string) []string {
	if len(labels) == 0 {
		return labels
	}
	out := []string{labels[0]}
	for _, l := range labels[1:] {
		if strings.EqualFold(out[len(out)-1], l) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// JoinCondition returns the (source_column, target_column) pair linking
// table1 and table2 in graph, scanning relationships in either
// direction and swapping columns if the edge runs table2 -> table1.
// Returns ("", "", false) when no edge connects them directly.
func JoinCondition(table1, table2 string, graph *models.KnowledgeGraph) (string, string, bool) {
	id1 := models.TableNodeID(table1)
	id2 := models.TableNodeID(table2)

	for _, rel := range graph.Relationships {
		if rel.SourceID == id1 && rel.TargetID == id2 {
			return rel.SourceColumn, rel.TargetColumn, true
		}
		if rel.SourceID == id2 && rel.TargetID == id1 {
			return rel.TargetColumn, rel.SourceColumn, true
		}
	}
	return "", "", false
}
