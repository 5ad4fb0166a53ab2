package nlquery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3FramesLab/recon-kg-engine/pkg/llm"
	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

func sampleGraphWithAliases() *models.KnowledgeGraph {
	return &models.KnowledgeGraph{
		Nodes: []*models.Node{
			{ID: models.TableNodeID("orders"), Label: "orders", Kind: models.NodeKindTable},
			{ID: models.TableNodeID("customers"), Label: "customers", Kind: models.NodeKindTable},
		},
		TableAliases: map[string][]string{
			"customers": {"clients"},
		},
		Relationships: []*models.Relationship{
			{
				SourceID: models.TableNodeID("orders"), TargetID: models.TableNodeID("customers"),
				RelationshipType: models.RelationshipReferences,
				SourceColumn:      "customer_id", TargetColumn: "id",
				Confidence: 0.9, Origin: models.OriginAutoDetected,
			},
		},
	}
}

func TestParse_HeuristicResolvesBothTablesAndJoin(t *testing.T) {
	p := New(nil, 0.1, nil)

	intent, warnings := p.Parse(context.Background(), "show orders and customers", sampleGraphWithAliases(), false)

	assert.Empty(t, warnings)
	assert.Equal(t, "orders", intent.SourceTable)
	assert.Equal(t, "customers", intent.TargetTable)
	require.Len(t, intent.JoinColumns, 1)
	assert.Equal(t, "customer_id", intent.JoinColumns[0].SourceColumn)
	assert.Equal(t, "id", intent.JoinColumns[0].TargetColumn)
}

func TestParse_AliasResolvesToCanonicalTable(t *testing.T) {
	p := New(nil, 0.1, nil)

	intent, _ := p.Parse(context.Background(), "show orders for clients", sampleGraphWithAliases(), false)

	assert.Equal(t, "orders", intent.SourceTable)
	assert.Equal(t, "customers", intent.TargetTable)
}

func TestParse_ExplicitFilterExtracted(t *testing.T) {
	p := New(nil, 0.1, nil)

	intent, _ := p.Parse(context.Background(), "show orders where status = 'shipped'", sampleGraphWithAliases(), false)

	require.Len(t, intent.Filters, 1)
	assert.Equal(t, "status", intent.Filters[0].Column)
	assert.Equal(t, "shipped", intent.Filters[0].Value)
	assert.Equal(t, "=", intent.Filters[0].Comparator)
}

func TestParse_InactiveShorthandFilter(t *testing.T) {
	p := New(nil, 0.1, nil)

	intent, _ := p.Parse(context.Background(), "show inactive customers", sampleGraphWithAliases(), false)

	require.Len(t, intent.Filters, 1)
	assert.Equal(t, "status", intent.Filters[0].Column)
	assert.Equal(t, "inactive", intent.Filters[0].Value)
}

func TestParse_ComparisonUsesTargetTableAsFilterHint(t *testing.T) {
	p := New(nil, 0.1, nil)

	intent, _ := p.Parse(context.Background(), "orders not in customers where status = 'new'", sampleGraphWithAliases(), false)

	require.Len(t, intent.Filters, 1)
	assert.Equal(t, "customers", intent.Filters[0].TableHint)
}

func TestParse_AdditionalColumnResolvesJoinPath(t *testing.T) {
	p := New(nil, 0.1, nil)

	intent, warnings := p.Parse(context.Background(), "show orders, include email from customers", sampleGraphWithAliases(), false)

	assert.Empty(t, warnings)
	require.Len(t, intent.AdditionalColumns, 1)
	assert.Equal(t, "customers", intent.AdditionalColumns[0].Table)
	assert.Equal(t, "email", intent.AdditionalColumns[0].ColumnName)
	assert.Equal(t, []string{"orders", "customers"}, intent.AdditionalColumns[0].JoinPath)
}

func TestParse_AdditionalColumnUnresolvedTableDropsWithWarning(t *testing.T) {
	p := New(nil, 0.1, nil)

	intent, warnings := p.Parse(context.Background(), "show orders, include name from nonexistent", sampleGraphWithAliases(), false)

	assert.Empty(t, intent.AdditionalColumns)
	assert.NotEmpty(t, warnings)
}

func TestParse_LLMPathUsed(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64, thinking bool) (*llm.GenerateResponseResult, error) {
		return &llm.GenerateResponseResult{Content: `{"source_table": "orders", "target_table": "customers"}`}, nil
	}

	p := New(mock, 0.1, nil)
	intent, warnings := p.Parse(context.Background(), "orders versus customers", sampleGraphWithAliases(), true)

	assert.Empty(t, warnings)
	assert.Equal(t, "orders", intent.SourceTable)
	assert.Equal(t, "customers", intent.TargetTable)
	assert.InDelta(t, 0.95, intent.Confidence, 0.0001) // base + llm + 2 endpoints + join = 0.95, exactly the cap
}

func TestParse_LLMFailureFallsBackToHeuristic(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64, thinking bool) (*llm.GenerateResponseResult, error) {
		return nil, assert.AnError
	}

	p := New(mock, 0.1, nil)
	intent, warnings := p.Parse(context.Background(), "show orders and customers", sampleGraphWithAliases(), true)

	assert.NotEmpty(t, warnings)
	assert.Equal(t, "orders", intent.SourceTable)
	assert.Equal(t, "customers", intent.TargetTable)
}

func TestParse_UnresolvedSourceYieldsLowerConfidence(t *testing.T) {
	p := New(nil, 0.1, nil)

	intent, _ := p.Parse(context.Background(), "show me all the widgets", sampleGraphWithAliases(), false)

	assert.Empty(t, intent.SourceTable)
	assert.InDelta(t, baseConfidence, intent.Confidence, 0.0001)
}
