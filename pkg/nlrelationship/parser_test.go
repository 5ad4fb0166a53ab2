package nlrelationship

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3FramesLab/recon-kg-engine/pkg/llm"
	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

func catalogSchema() *models.Schema {
	return &models.Schema{
		Name: "catalog",
		Tables: []*models.Table{
			{Name: "orders", Columns: []*models.Column{
				{Name: "customer_id"},
			}},
			{Name: "customers", Columns: []*models.Column{
				{Name: "cust_id", PrimaryKey: true},
			}},
			{Name: "products", Columns: []*models.Column{
				{Name: "sku", PrimaryKey: true},
			}},
		},
	}
}

// Single-schema NL relationship statement, fallback path.
func TestParse_DeterministicFallback(t *testing.T) {
	p := New(nil, 0.1, nil)

	rels, warnings := p.Parse(context.Background(), "orders.customer_id matches customers.cust_id",
		[]*models.Schema{catalogSchema()}, nil, false, 0.5)

	assert.Empty(t, warnings)
	require.Len(t, rels, 1)
	rel := rels[0]
	assert.Equal(t, models.TableNodeID("orders"), rel.SourceID)
	assert.Equal(t, models.TableNodeID("customers"), rel.TargetID)
	assert.Equal(t, "customer_id", rel.SourceColumn)
	assert.Equal(t, "cust_id", rel.TargetColumn)
	assert.Equal(t, models.OriginNaturalLanguage, rel.Origin)
	assert.Equal(t, fallbackConfidenceCap, rel.Confidence)
}

func TestParse_NoConnectiveYieldsNothing(t *testing.T) {
	p := New(nil, 0.1, nil)

	rels, _ := p.Parse(context.Background(), "please show me all the orders", []*models.Schema{catalogSchema()}, nil, false, 0.5)
	assert.Empty(t, rels)
}

func TestParse_LLMPath(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64, thinking bool) (*llm.GenerateResponseResult, error) {
		return &llm.GenerateResponseResult{Content: `[
			{"source_table": "orders", "source_column": "customer_id", "target_table": "customers", "target_column": "cust_id", "confidence": 0.92}
		]`}, nil
	}

	p := New(mock, 0.1, nil)
	rels, warnings := p.Parse(context.Background(), "orders relates to customers", []*models.Schema{catalogSchema()}, nil, true, 0.5)

	assert.Empty(t, warnings)
	require.Len(t, rels, 1)
	assert.Equal(t, 0.92, rels[0].Confidence)
}

func TestParse_LLMFailureFallsBackToDeterministic(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64, thinking bool) (*llm.GenerateResponseResult, error) {
		return nil, assert.AnError
	}

	p := New(mock, 0.1, nil)
	rels, warnings := p.Parse(context.Background(), "orders.customer_id matches customers.cust_id",
		[]*models.Schema{catalogSchema()}, nil, true, 0.5)

	assert.NotEmpty(t, warnings)
	require.Len(t, rels, 1)
	assert.Equal(t, models.OriginNaturalLanguage, rels[0].Origin)
}

func TestParse_SingleSchemaFieldHintsStayIntraSchema(t *testing.T) {
	p := New(nil, 0.1, nil)
	hints := map[string]string{"customer_id": "cust_id"}

	rels, _ := p.Parse(context.Background(), "", []*models.Schema{catalogSchema()}, hints, false, 0.0)

	require.NotEmpty(t, rels)
	for _, r := range rels {
		assert.Equal(t, models.TableNodeID("orders"), r.SourceID)
		assert.Equal(t, models.TableNodeID("customers"), r.TargetID)
	}
}

func TestParse_ExcludedFieldHintDropped(t *testing.T) {
	p := New(nil, 0.1, nil)
	schema := &models.Schema{
		Name: "catalog",
		Tables: []*models.Table{
			{Name: "a", Columns: []*models.Column{{Name: "product_line"}}},
			{Name: "b", Columns: []*models.Column{{Name: "product_line"}}},
		},
	}
	hints := map[string]string{"product_line": "product_line"}

	rels, _ := p.Parse(context.Background(), "", []*models.Schema{schema}, hints, false, 0.0)
	assert.Empty(t, rels)
}
