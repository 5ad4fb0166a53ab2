package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNodeID_RoundTrip(t *testing.T) {
	tests := []struct {
		label string
		id    string
	}{
		{"Customers", "table_customers"},
		{"brz_lnd_RBP_GPU", "table_brz_lnd_rbp_gpu"},
		{"ALLCAPS", "table_allcaps"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.id, TableNodeID(tt.label))
	}
}

func TestKnowledgeGraph_NodeByLabel(t *testing.T) {
	kg := &KnowledgeGraph{
		Nodes: []*Node{
			{ID: TableNodeID("Customers"), Label: "Customers", Kind: NodeKindTable},
		},
	}

	node := kg.NodeByLabel("Customers")
	if assert.NotNil(t, node) {
		assert.Equal(t, "Customers", node.Label)
	}

	assert.Nil(t, kg.NodeByLabel("Orders"))
}

func TestRelationship_Key_Dedup(t *testing.T) {
	r1 := Relationship{SourceID: "a", TargetID: "b", RelationshipType: RelationshipReferences}
	r2 := Relationship{SourceID: "a", TargetID: "b", RelationshipType: RelationshipReferences, Confidence: 0.9}
	assert.Equal(t, r1.Key(), r2.Key())

	r3 := Relationship{SourceID: "a", TargetID: "b", RelationshipType: RelationshipCrossSchemaReference}
	assert.NotEqual(t, r1.Key(), r3.Key())
}
