package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

func TestResultRepo_SaveAndLoad(t *testing.T) {
	repo := NewResultRepo(New(t.TempDir(), nil))

	result := &models.ReconciliationResult{
		RulesetID:          "rs-1",
		ExecutionID:        "exec-1",
		ExecutionTimestamp: time.Date(2026, 7, 30, 12, 30, 0, 0, time.UTC),
		MatchedCount:       10,
	}
	require.NoError(t, repo.Save(result))

	names, err := repo.List()
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Equal(t, "reconciliation_result_rs-1_20260730_123000.json", names[0])

	loaded, err := repo.Load(names[0])
	require.NoError(t, err)
	assert.Equal(t, result.ExecutionID, loaded.ExecutionID)
	assert.Equal(t, 10, loaded.MatchedCount)
}

func TestResultRepo_Save_RequiresRulesetID(t *testing.T) {
	repo := NewResultRepo(New(t.TempDir(), nil))
	err := repo.Save(&models.ReconciliationResult{})
	assert.Error(t, err)
}

func TestResultRepo_Load_NotFound(t *testing.T) {
	repo := NewResultRepo(New(t.TempDir(), nil))
	_, err := repo.Load("reconciliation_result_missing_20260101_000000.json")
	assert.Error(t, err)
}
