package alias

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

func sampleKG() *models.KnowledgeGraph {
	return &models.KnowledgeGraph{
		Nodes: []*models.Node{
			{ID: models.TableNodeID("brz_lnd_RBP_GPU"), Label: "brz_lnd_RBP_GPU", Kind: models.NodeKindTable},
			{ID: models.TableNodeID("customers"), Label: "customers", Kind: models.NodeKindTable},
		},
		TableAliases: map[string][]string{
			"brz_lnd_RBP_GPU": {"RBP", "RBP GPU"},
		},
	}
}

func TestResolve_ExactLabel(t *testing.T) {
	label, ok := Resolve("Customers", sampleKG())
	assert.True(t, ok)
	assert.Equal(t, "customers", label)
}

func TestResolve_ExactAlias(t *testing.T) {
	label, ok := Resolve("RBP GPU", sampleKG())
	assert.True(t, ok)
	assert.Equal(t, "brz_lnd_RBP_GPU", label)
}

func TestResolve_FuzzyMatch(t *testing.T) {
	label, ok := Resolve("RBP GPU Table", sampleKG())
	assert.True(t, ok)
	assert.Equal(t, "brz_lnd_RBP_GPU", label)
}

func TestResolve_SubstringMatch(t *testing.T) {
	label, ok := Resolve("cust", sampleKG())
	assert.True(t, ok)
	assert.Equal(t, "customers", label)
}

func TestResolve_NoMatchReturnsFalse(t *testing.T) {
	_, ok := Resolve("totally unrelated term", sampleKG())
	assert.False(t, ok)
}

func TestResolve_Deterministic(t *testing.T) {
	kg := sampleKG()
	label1, ok1 := Resolve("RBP", kg)
	label2, ok2 := Resolve("RBP", kg)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, label1, label2)
}

func TestResolve_EmptyTermReturnsFalse(t *testing.T) {
	_, ok := Resolve("", sampleKG())
	assert.False(t, ok)
}
