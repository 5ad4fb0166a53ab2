package rulegen

import (
	"context"
	"fmt"
	"strings"

	"github.com/3FramesLab/recon-kg-engine/pkg/llm"
	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

// llmRuleSuggestion is the shape an LLM rule-generation response parses
// into before being converted to a models.ReconciliationRule.
type llmRuleSuggestion struct {
	RuleName      string   `json:"rule_name"`
	SourceSchema  string   `json:"source_schema"`
	SourceTable   string   `json:"source_table"`
	SourceColumns []string `json:"source_columns"`
	TargetSchema  string   `json:"target_schema"`
	TargetTable   string   `json:"target_table"`
	TargetColumns []string `json:"target_columns"`
	MatchType     string   `json:"match_type"`
	Confidence    float64  `json:"confidence"`
	Reasoning     string   `json:"reasoning"`
}

// llmRules asks the LLM for additional rules beyond the pattern pass,
// given schema excerpts, cross-schema edges, and field preferences.
func (g *Generator) llmRules(ctx context.Context, graph *models.KnowledgeGraph, schemas []*models.Schema, prefs map[string]models.FieldPreference) ([]*models.ReconciliationRule, error) {
	prompt := buildRulePrompt(graph, schemas, prefs)

	result, err := llm.GenerateWithRetry(ctx, g.llmClient, prompt, ruleSystemMessage(), g.temperature, false, nil, g.logger)
	if err != nil {
		return nil, err
	}

	suggestions, err := llm.ParseJSONResponse[[]llmRuleSuggestion](result.Content)
	if err != nil {
		return nil, fmt.Errorf("parsing llm rule response: %w", err)
	}

	locations := buildTableLocations(schemas)
	rules := make([]*models.ReconciliationRule, 0, len(suggestions))
	for _, s := range suggestions {
		if len(s.SourceColumns) == 0 || len(s.TargetColumns) == 0 {
			continue
		}
		srcLoc, ok := locations[strings.ToLower(s.SourceTable)]
		if !ok {
			continue
		}
		tgtLoc, ok := locations[strings.ToLower(s.TargetTable)]
		if !ok {
			continue
		}
		if !columnsExist(srcLoc.table, s.SourceColumns) || !columnsExist(tgtLoc.table, s.TargetColumns) {
			continue
		}

		matchType := s.MatchType
		if matchType == "" {
			matchType = models.MatchTypeExact
		}
		confidence := s.Confidence
		if confidence <= 0 {
			confidence = 0.7
		}
		if confidence > 1 {
			confidence = 1
		}

		rules = append(rules, &models.ReconciliationRule{
			RuleName:         s.RuleName,
			SourceSchema:     srcLoc.schemaName,
			SourceTable:      srcLoc.table.Name,
			SourceColumns:    s.SourceColumns,
			TargetSchema:     tgtLoc.schemaName,
			TargetTable:      tgtLoc.table.Name,
			TargetColumns:    s.TargetColumns,
			MatchType:        matchType,
			Confidence:       confidence,
			Reasoning:        s.Reasoning,
			ValidationStatus: models.ValidationLikely,
			LLMGenerated:     true,
		})
	}
	return rules, nil
}

func columnsExist(table *models.Table, cols []string) bool {
	for _, c := range cols {
		if table.ColumnByName(c) == nil {
			return false
		}
	}
	return true
}

// buildRulePrompt assembles schema excerpts, cross-schema edges, and
// field preferences into a rule-suggestion prompt.
func buildRulePrompt(graph *models.KnowledgeGraph, schemas []*models.Schema, prefs map[string]models.FieldPreference) string {
	var b strings.Builder

	b.WriteString("# Reconciliation Rule Suggestion\n\n")
	b.WriteString("## Schemas\n\n")
	for _, schema := range schemas {
		for _, table := range schema.Tables {
			b.WriteString(fmt.Sprintf("- %s.%s (", schema.Name, table.Name))
			cols := make([]string, 0, len(table.Columns))
			for _, c := range table.Columns {
				cols = append(cols, c.Name)
			}
			b.WriteString(strings.Join(cols, ", "))
			b.WriteString(")\n")
		}
	}

	b.WriteString("\n## Existing cross-schema relationships\n\n")
	for _, rel := range graph.Relationships {
		if rel.RelationshipType != models.RelationshipCrossSchemaReference {
			continue
		}
		sourceNode := graph.NodeByID(rel.SourceID)
		targetNode := graph.NodeByID(rel.TargetID)
		if sourceNode == nil || targetNode == nil {
			continue
		}
		b.WriteString(fmt.Sprintf("- %s.%s -> %s.%s (confidence %.2f)\n",
			sourceNode.Label, rel.SourceColumn, targetNode.Label, rel.TargetColumn, rel.Confidence))
	}

	if len(prefs) > 0 {
		b.WriteString("\n## Field preferences\n\n")
		for table, pref := range prefs {
			if len(pref.PriorityFields) > 0 {
				b.WriteString(fmt.Sprintf("- %s priority fields: %s\n", table, strings.Join(pref.PriorityFields, ", ")))
			}
			if len(pref.ExcludeFields) > 0 {
				b.WriteString(fmt.Sprintf("- %s excluded fields: %s\n", table, strings.Join(pref.ExcludeFields, ", ")))
			}
		}
	}

	b.WriteString("\n## Output Format\n\n")
	b.WriteString("Respond with ONLY a JSON array, no other text:\n")
	b.WriteString("```json\n")
	b.WriteString(`[
  {
    "rule_name": "orders_customer_id_to_customers_cust_id",
    "source_schema": "catalog",
    "source_table": "orders",
    "source_columns": ["customer_id"],
    "target_schema": "catalog",
    "target_table": "customers",
    "target_columns": ["cust_id"],
    "match_type": "exact",
    "confidence": 0.8,
    "reasoning": "column names and existing edge suggest a reconciliation key"
  }
]
`)
	b.WriteString("```\n")

	return b.String()
}

func ruleSystemMessage() string {
	return "You propose reconciliation rules pairing source and target table columns for data matching. Only reference tables and columns given in the schema excerpts."
}
