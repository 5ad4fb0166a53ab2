package alias

import (
	"strings"

	"github.com/3FramesLab/recon-kg-engine/pkg/models"
	"github.com/3FramesLab/recon-kg-engine/pkg/nlcommon"
)

// fuzzyThreshold is the minimum normalized token-similarity a candidate
// must meet to resolve via the fuzzy-match tier.
const fuzzyThreshold = 0.6

// Resolve returns the best table label in kg matching term, trying in
// order: exact label match, exact alias match, fuzzy token similarity,
// then substring containment after normalization. Returns ("", false)
// when no candidate meets any threshold. Deterministic: ties are broken
// by the longest (most specific) matching alias/label.
func Resolve(term string, kg *models.KnowledgeGraph) (string, bool) {
	if term == "" || kg == nil {
		return "", false
	}

	if label, ok := exactLabelMatch(term, kg); ok {
		return label, true
	}
	if label, ok := exactAliasMatch(term, kg); ok {
		return label, true
	}
	if label, ok := fuzzyMatch(term, kg); ok {
		return label, true
	}
	if label, ok := substringMatch(term, kg); ok {
		return label, true
	}
	return "", false
}

func exactLabelMatch(term string, kg *models.KnowledgeGraph) (string, bool) {
	for _, n := range kg.Nodes {
		if n.Kind != models.NodeKindTable {
			continue
		}
		if strings.EqualFold(n.Label, term) {
			return n.Label, true
		}
	}
	return "", false
}

func exactAliasMatch(term string, kg *models.KnowledgeGraph) (string, bool) {
	var best string
	bestLen := -1
	for label, aliases := range kg.TableAliases {
		for _, a := range aliases {
			if strings.EqualFold(a, term) && len(a) > bestLen {
				best = label
				bestLen = len(a)
			}
		}
	}
	if bestLen < 0 {
		return "", false
	}
	return best, true
}

func fuzzyMatch(term string, kg *models.KnowledgeGraph) (string, bool) {
	var best string
	bestScore := 0.0
	bestLen := -1

	consider := func(label, candidate string) {
		score := nlcommon.JaccardSimilarity(term, candidate)
		if score < fuzzyThreshold {
			return
		}
		if score > bestScore || (score == bestScore && len(candidate) > bestLen) {
			best = label
			bestScore = score
			bestLen = len(candidate)
		}
	}

	for _, n := range kg.Nodes {
		if n.Kind != models.NodeKindTable {
			continue
		}
		consider(n.Label, n.Label)
		for _, a := range kg.TableAliases[n.Label] {
			consider(n.Label, a)
		}
	}

	if bestLen < 0 {
		return "", false
	}
	return best, true
}

func substringMatch(term string, kg *models.KnowledgeGraph) (string, bool) {
	normTerm := nlcommon.NormalizeLabel(term)
	var best string
	bestLen := -1

	consider := func(label, candidate string) {
		normCandidate := nlcommon.NormalizeLabel(candidate)
		if normCandidate == "" {
			return
		}
		if strings.Contains(normCandidate, normTerm) || strings.Contains(normTerm, normCandidate) {
			if len(normCandidate) > bestLen {
				best = label
				bestLen = len(normCandidate)
			}
		}
	}

	for _, n := range kg.Nodes {
		if n.Kind != models.NodeKindTable {
			continue
		}
		consider(n.Label, n.Label)
		for _, a := range kg.TableAliases[n.Label] {
			consider(n.Label, a)
		}
	}

	if bestLen < 0 {
		return "", false
	}
	return best, true
}
