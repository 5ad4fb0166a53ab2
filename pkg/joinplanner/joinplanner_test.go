package joinplanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

func chainGraph() *models.KnowledgeGraph {
	return &models.KnowledgeGraph{
		Nodes: []*models.Node{
			{ID: models.TableNodeID("Orders"), Label: "Orders", Kind: models.NodeKindTable},
			{ID: models.TableNodeID("order_items"), Label: "order_items", Kind: models.NodeKindTable},
			{ID: models.TableNodeID("Products"), Label: "Products", Kind: models.NodeKindTable},
			{ID: models.TableNodeID("Unrelated"), Label: "Unrelated", Kind: models.NodeKindTable},
		},
		Relationships: []*models.Relationship{
			{
				SourceID: models.TableNodeID("order_items"), TargetID: models.TableNodeID("Orders"),
				RelationshipType: models.RelationshipReferences,
				SourceColumn:      "order_id", TargetColumn: "id",
				Confidence: 0.9, Origin: models.OriginAutoDetected,
			},
			{
				SourceID: models.TableNodeID("order_items"), TargetID: models.TableNodeID("Products"),
				RelationshipType: models.RelationshipReferences,
				SourceColumn:      "product_id", TargetColumn: "id",
				Confidence: 0.9, Origin: models.OriginAutoDetected,
			},
		},
	}
}

func TestFindJoinPath_TwoHopChain(t *testing.T) {
	path := FindJoinPath("Orders", "Products", chainGraph())
	require.Len(t, path, 3)
	assert.Equal(t, []string{"Orders", "order_items", "Products"}, path)
}

func TestFindJoinPath_NoPath(t *testing.T) {
	path := FindJoinPath("Orders", "Unrelated", chainGraph())
	assert.Nil(t, path)
}

func TestFindJoinPath_UnknownLabel(t *testing.T) {
	path := FindJoinPath("Orders", "DoesNotExist", chainGraph())
	assert.Nil(t, path)
}

func TestFindJoinPath_SameTable(t *testing.T) {
	path := FindJoinPath("Orders", "orders", chainGraph())
	require.Len(t, path, 1)
	assert.Equal(t, "Orders", path[0])
}

func TestFindJoinPath_PrefersHigherConfidenceOnTie(t *testing.T) {
	graph := &models.KnowledgeGraph{
		Nodes: []*models.Node{
			{ID: models.TableNodeID("A"), Label: "A", Kind: models.NodeKindTable},
			{ID: models.TableNodeID("B"), Label: "B", Kind: models.NodeKindTable},
			{ID: models.TableNodeID("C"), Label: "C", Kind: models.NodeKindTable},
			{ID: models.TableNodeID("D"), Label: "D", Kind: models.NodeKindTable},
		},
		Relationships: []*models.Relationship{
			{SourceID: models.TableNodeID("A"), TargetID: models.TableNodeID("B"), RelationshipType: models.RelationshipReferences, Confidence: 0.5, Origin: models.OriginAutoDetected},
			{SourceID: models.TableNodeID("B"), TargetID: models.TableNodeID("D"), RelationshipType: models.RelationshipReferences, Confidence: 0.5, Origin: models.OriginAutoDetected},
			{SourceID: models.TableNodeID("A"), TargetID: models.TableNodeID("C"), RelationshipType: models.RelationshipReferences, Confidence: 0.95, Origin: models.OriginAutoDetected},
			{SourceID: models.TableNodeID("C"), TargetID: models.TableNodeID("D"), RelationshipType: models.RelationshipReferences, Confidence: 0.95, Origin: models.OriginAutoDetected},
		},
	}

	path := FindJoinPath("A", "D", graph)
	require.Len(t, path, 3)
	assert.Equal(t, "C", path[1])
}

func TestJoinCondition_DirectEdge(t *testing.T) {
	col1, col2, ok := JoinCondition("order_items", "Orders", chainGraph())
	assert.True(t, ok)
	assert.Equal(t, "order_id", col1)
	assert.Equal(t, "id", col2)
}

func TestJoinCondition_ReversedEdgeSwapsColumns(t *testing.T) {
	col1, col2, ok := JoinCondition("Orders", "order_items", chainGraph())
	assert.True(t, ok)
	assert.Equal(t, "id", col1)
	assert.Equal(t, "order_id", col2)
}

func TestJoinCondition_NoEdge(t *testing.T) {
	_, _, ok := JoinCondition("Orders", "Unrelated", chainGraph())
	assert.False(t, ok)
}
