package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

func sampleRuleset(id string) *models.Ruleset {
	return &models.Ruleset{
		RulesetID: id,
		Name:      "orders-vs-shipments",
		KGName:    "commerce",
		Schemas:   []string{"catalog", "warehouse"},
		Rules: []*models.ReconciliationRule{
			{RuleID: "r1", RuleName: "order_id match", MatchType: models.MatchTypeExact},
		},
	}
}

func TestRulesetRepo_SaveAndLoad(t *testing.T) {
	repo := NewRulesetRepo(New(t.TempDir(), nil))

	rs := sampleRuleset("rs-abc123")
	require.NoError(t, repo.Save(rs))

	loaded, err := repo.Load("rs-abc123")
	require.NoError(t, err)
	assert.Equal(t, rs.Name, loaded.Name)
	require.Len(t, loaded.Rules, 1)
	assert.Equal(t, "r1", loaded.Rules[0].RuleID)
}

func TestRulesetRepo_Save_RequiresID(t *testing.T) {
	repo := NewRulesetRepo(New(t.TempDir(), nil))
	err := repo.Save(&models.Ruleset{})
	assert.Error(t, err)
}

func TestRulesetRepo_List(t *testing.T) {
	repo := NewRulesetRepo(New(t.TempDir(), nil))
	require.NoError(t, repo.Save(sampleRuleset("rs-1")))
	require.NoError(t, repo.Save(sampleRuleset("rs-2")))

	ids, err := repo.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"rs-1", "rs-2"}, ids)
}

func TestRulesetRepo_Load_NotFound(t *testing.T) {
	repo := NewRulesetRepo(New(t.TempDir(), nil))
	_, err := repo.Load("missing")
	assert.Error(t, err)
}
