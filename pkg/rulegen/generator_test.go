package rulegen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

func sampleSchemas() []*models.Schema {
	return []*models.Schema{
		{
			Name: "catalog",
			Tables: []*models.Table{
				{Name: "orders", Columns: []*models.Column{{Name: "customer_id"}}},
				{Name: "customers", Columns: []*models.Column{{Name: "cust_id", PrimaryKey: true}}},
			},
		},
	}
}

func sampleGraph() *models.KnowledgeGraph {
	return &models.KnowledgeGraph{
		Nodes: []*models.Node{
			{ID: models.TableNodeID("orders"), Label: "orders", Kind: models.NodeKindTable},
			{ID: models.TableNodeID("customers"), Label: "customers", Kind: models.NodeKindTable},
		},
		Relationships: []*models.Relationship{
			{
				SourceID: models.TableNodeID("orders"), TargetID: models.TableNodeID("customers"),
				RelationshipType: models.RelationshipReferences,
				SourceColumn:      "customer_id", TargetColumn: "cust_id",
				Confidence: 0.6, Origin: models.OriginAutoDetected,
			},
		},
	}
}

func TestGenerate_PatternRuleFloorsConfidenceAt075(t *testing.T) {
	g := New(nil, 0.1, nil)

	ruleset, warnings := g.Generate(context.Background(), "kg1", sampleGraph(), sampleSchemas(), false, 0.0, nil)
	assert.Empty(t, warnings)
	require.Len(t, ruleset.Rules, 1)
	assert.Equal(t, patternRuleConfidence, ruleset.Rules[0].Confidence)
	assert.Equal(t, "RECON_", ruleset.RulesetID[:6])
	assert.Equal(t, "RULE_", ruleset.Rules[0].RuleID[:5])
}

func TestGenerate_PatternRuleUsesHigherEdgeConfidence(t *testing.T) {
	graph := sampleGraph()
	graph.Relationships[0].Confidence = 0.92

	g := New(nil, 0.1, nil)
	ruleset, _ := g.Generate(context.Background(), "kg1", graph, sampleSchemas(), false, 0.0, nil)
	require.Len(t, ruleset.Rules, 1)
	assert.Equal(t, 0.92, ruleset.Rules[0].Confidence)
}

func TestGenerate_ExcludedColumnDropsRule(t *testing.T) {
	graph := sampleGraph()
	graph.Relationships[0].SourceColumn = "product_line"

	g := New(nil, 0.1, nil)
	ruleset, _ := g.Generate(context.Background(), "kg1", graph, sampleSchemas(), false, 0.0, nil)
	assert.Empty(t, ruleset.Rules)
}

func TestGenerate_FieldHintsAppendHighConfidenceRule(t *testing.T) {
	prefs := map[string]models.FieldPreference{
		"orders": {FieldHints: map[string]string{"customer_id": "cust_id"}},
	}

	g := New(nil, 0.1, nil)
	ruleset, _ := g.Generate(context.Background(), "kg1", &models.KnowledgeGraph{}, sampleSchemas(), false, 0.0, prefs)

	require.NotEmpty(t, ruleset.Rules)
	found := false
	for _, r := range ruleset.Rules {
		if r.SourceTable == "orders" && r.TargetTable == "customers" && r.Confidence == 0.9 {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGenerate_EmptyInputYieldsEmptyRuleset(t *testing.T) {
	g := New(nil, 0.1, nil)
	ruleset, warnings := g.Generate(context.Background(), "kg1", &models.KnowledgeGraph{}, nil, false, 0.0, nil)
	assert.Empty(t, warnings)
	assert.Empty(t, ruleset.Rules)
	assert.NotEmpty(t, ruleset.RulesetID)
}

func TestGenerate_MinConfidenceFiltersPatternRule(t *testing.T) {
	g := New(nil, 0.1, nil)
	ruleset, _ := g.Generate(context.Background(), "kg1", sampleGraph(), sampleSchemas(), false, 0.8, nil)
	assert.Empty(t, ruleset.Rules)
}
