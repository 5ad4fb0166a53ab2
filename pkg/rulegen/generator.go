// Package rulegen turns knowledge-graph edges into reconciliation rules:
// a pattern rule for every qualifying edge, plus optional LLM-suggested
// rules, merged under field-preference effects and the excluded-field
// policy.
package rulegen

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/3FramesLab/recon-kg-engine/pkg/excluded"
	"github.com/3FramesLab/recon-kg-engine/pkg/llm"
	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

// patternRuleConfidence is the floor pattern rules receive; an edge with
// higher confidence of its own wins instead.
const patternRuleConfidence = 0.75

// Generator builds rulesets from a knowledge graph.
type Generator struct {
	llmClient   llm.LLMClient
	temperature float64
	logger      *zap.Logger
}

// New creates a Generator. llmClient may be nil if useLLM is never requested.
func New(llmClient llm.LLMClient, temperature float64, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{llmClient: llmClient, temperature: temperature, logger: logger.Named("rulegen")}
}

// tableLocation resolves a table's schema for rule construction.
type tableLocation struct {
	schemaName string
	table      *models.Table
}

// Generate builds a Ruleset from graph restricted to schemas.
// fieldPreferences is keyed by table name. useLLM enables the optional
// LLM-rule pass; its failure is non-fatal — the returned warning
// explains the degradation to pattern-only rules.
func (g *Generator) Generate(
	ctx context.Context,
	kgName string,
	graph *models.KnowledgeGraph,
	schemas []*models.Schema,
	useLLM bool,
	minConfidence float64,
	fieldPreferences map[string]models.FieldPreference,
) (*models.Ruleset, []string) {
	var warnings []string

	locations := buildTableLocations(schemas)
	schemaNames := make([]string, 0, len(schemas))
	for _, s := range schemas {
		schemaNames = append(schemaNames, s.Name)
	}

	var rules []*models.ReconciliationRule
	rules = append(rules, g.patternRules(graph, locations, fieldPreferences)...)

	if useLLM && g.llmClient != nil {
		llmRules, err := g.llmRules(ctx, graph, schemas, fieldPreferences)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("rule generation LLM pass failed, using pattern rules only: %v", err))
			g.logger.Warn("llm rule generation failed", zap.Error(err))
		} else {
			rules = append(rules, llmRules...)
		}
	}

	rules = append(rules, hintSeedRules(locations, fieldPreferences)...)

	rules = filterRules(rules, fieldPreferences, minConfidence)
	rules = dedupRules(rules)
	sortRules(rules, fieldPreferences)
	seen := make(map[string]struct{}, len(rules)+1)
	assignRuleIDs(rules, seen)

	ruleset := &models.Ruleset{
		RulesetID: newUniqueID("RECON", seen),
		Name:      kgName,
		KGName:    kgName,
		Schemas:   schemaNames,
		Rules:     rules,
	}
	return ruleset, warnings
}

func buildTableLocations(schemas []*models.Schema) map[string]tableLocation {
	locations := make(map[string]tableLocation)
	for _, schema := range schemas {
		for _, table := range schema.Tables {
			locations[strings.ToLower(table.Name)] = tableLocation{schemaName: schema.Name, table: table}
		}
	}
	return locations
}

// patternRules emits an exact-match rule for every KG edge whose
// endpoints resolve within the given schemas.
func (g *Generator) patternRules(graph *models.KnowledgeGraph, locations map[string]tableLocation, prefs map[string]models.FieldPreference) []*models.ReconciliationRule {
	var rules []*models.ReconciliationRule

	for _, rel := range graph.Relationships {
		sourceNode := graph.NodeByID(rel.SourceID)
		targetNode := graph.NodeByID(rel.TargetID)
		if sourceNode == nil || targetNode == nil {
			continue
		}
		sourceLoc, ok := locations[strings.ToLower(sourceNode.Label)]
		if !ok {
			continue
		}
		targetLoc, ok := locations[strings.ToLower(targetNode.Label)]
		if !ok {
			continue
		}
		if rel.SourceColumn == "" || rel.TargetColumn == "" {
			continue
		}

		confidence := patternRuleConfidence
		if rel.Confidence > confidence {
			confidence = rel.Confidence
		}

		rules = append(rules, &models.ReconciliationRule{
			RuleName:         fmt.Sprintf("%s_%s_to_%s_%s", sourceNode.Label, rel.SourceColumn, targetNode.Label, rel.TargetColumn),
			SourceSchema:     sourceLoc.schemaName,
			SourceTable:      sourceNode.Label,
			SourceColumns:    []string{rel.SourceColumn},
			TargetSchema:     targetLoc.schemaName,
			TargetTable:      targetNode.Label,
			TargetColumns:    []string{rel.TargetColumn},
			MatchType:        models.MatchTypeExact,
			Confidence:       confidence,
			Reasoning:        rel.Reasoning,
			ValidationStatus: models.ValidationValid,
			LLMGenerated:     false,
		})
	}

	_ = prefs // priority ordering applied later in sortRules
	return rules
}

// hintSeedRules appends a high-confidence rule for every field_hints
// entry whose columns both exist, after the pattern/LLM passes.
func hintSeedRules(locations map[string]tableLocation, prefs map[string]models.FieldPreference) []*models.ReconciliationRule {
	var rules []*models.ReconciliationRule

	for tableName, pref := range prefs {
		loc, ok := locations[strings.ToLower(tableName)]
		if !ok {
			continue
		}
		for srcCol, tgtCol := range pref.FieldHints {
			sourceColumn := loc.table.ColumnByName(srcCol)
			if sourceColumn == nil {
				continue
			}
			for otherName, otherLoc := range locations {
				if otherName == strings.ToLower(tableName) {
					continue
				}
				targetColumn := otherLoc.table.ColumnByName(tgtCol)
				if targetColumn == nil {
					continue
				}
				rules = append(rules, &models.ReconciliationRule{
					RuleName:         fmt.Sprintf("hint_%s_%s_to_%s_%s", loc.table.Name, sourceColumn.Name, otherLoc.table.Name, targetColumn.Name),
					SourceSchema:     loc.schemaName,
					SourceTable:      loc.table.Name,
					SourceColumns:    []string{sourceColumn.Name},
					TargetSchema:     otherLoc.schemaName,
					TargetTable:      otherLoc.table.Name,
					TargetColumns:    []string{targetColumn.Name},
					MatchType:        models.MatchTypeExact,
					Confidence:       0.9,
					ValidationStatus: models.ValidationValid,
					LLMGenerated:     false,
				})
			}
		}
	}
	return rules
}

// filterRules drops rules touching an excluded field, rules below
// minConfidence, and rules whose column appears in its table's
// exclude_fields preference.
func filterRules(rules []*models.ReconciliationRule, prefs map[string]models.FieldPreference, minConfidence float64) []*models.ReconciliationRule {
	out := make([]*models.ReconciliationRule, 0, len(rules))
	for _, r := range rules {
		if r.Confidence < minConfidence {
			continue
		}
		if columnsExcluded(r.SourceColumns) || columnsExcluded(r.TargetColumns) {
			continue
		}
		if preferenceExcludes(prefs, r.SourceTable, r.SourceColumns) || preferenceExcludes(prefs, r.TargetTable, r.TargetColumns) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func columnsExcluded(cols []string) bool {
	for _, c := range cols {
		if excluded.IsExcluded(c) {
			return true
		}
	}
	return false
}

func preferenceExcludes(prefs map[string]models.FieldPreference, table string, cols []string) bool {
	pref, ok := prefs[table]
	if !ok {
		return false
	}
	excludeSet := make(map[string]struct{}, len(pref.ExcludeFields))
	for _, f := range pref.ExcludeFields {
		excludeSet[strings.ToLower(f)] = struct{}{}
	}
	for _, c := range cols {
		if _, excludedField := excludeSet[strings.ToLower(c)]; excludedField {
			return true
		}
	}
	return false
}

// dedupRules merges identically-keyed rules, keeping the higher-confidence one.
func dedupRules(rules []*models.ReconciliationRule) []*models.ReconciliationRule {
	byKey := make(map[string]*models.ReconciliationRule, len(rules))
	order := make([]string, 0, len(rules))

	for _, r := range rules {
		key := r.DedupKey()
		existing, exists := byKey[key]
		if !exists {
			byKey[key] = r
			order = append(order, key)
			continue
		}
		if r.Confidence > existing.Confidence {
			byKey[key] = r
		}
	}

	out := make([]*models.ReconciliationRule, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

// sortRules orders rules so a table's priority_fields surface first,
// then falls back to alphabetical by rule name for stability.
func sortRules(rules []*models.ReconciliationRule, prefs map[string]models.FieldPreference) {
	priorityRank := func(r *models.ReconciliationRule) int {
		pref, ok := prefs[r.SourceTable]
		if !ok || len(r.SourceColumns) == 0 {
			return len(prefs) + 1
		}
		for i, f := range pref.PriorityFields {
			if strings.EqualFold(f, r.SourceColumns[0]) {
				return i
			}
		}
		return len(pref.PriorityFields) + 1
	}

	sort.SliceStable(rules, func(i, j int) bool {
		ri, rj := priorityRank(rules[i]), priorityRank(rules[j])
		if ri != rj {
			return ri < rj
		}
		return rules[i].RuleName < rules[j].RuleName
	})
}

func assignRuleIDs(rules []*models.ReconciliationRule, seen map[string]struct{}) {
	for _, r := range rules {
		r.RuleID = newUniqueID("RULE", seen)
	}
}

// newID returns "<prefix>_<8hex>" derived from a fresh random UUID's
// leading bytes.
func newID(prefix string) string {
	id := uuid.New().String()
	return fmt.Sprintf("%s_%s", prefix, strings.ReplaceAll(id, "-", "")[:8])
}

// newUniqueID regenerates on collision against seen, per spec's
// "collisions on 8-hex ids are resolved by regeneration". Recorded in
// seen before return so a later call in the same batch can't reuse it.
func newUniqueID(prefix string, seen map[string]struct{}) string {
	id := newID(prefix)
	for {
		if _, exists := seen[id]; !exists {
			break
		}
		id = newID(prefix)
	}
	seen[id] = struct{}{}
	return id
}
