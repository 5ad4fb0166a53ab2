package storage

import (
	"fmt"

	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

// ResultRepo persists reconciliation results at
// results/reconciliation_result_<ruleset_id>_<timestamp>.json, where
// timestamp is caller-supplied so it can be frozen for reproducible
// tests and stamped with the real clock in production.
type ResultRepo struct {
	store *Store
}

// NewResultRepo wraps store for result persistence.
func NewResultRepo(store *Store) *ResultRepo {
	return &ResultRepo{store: store}
}

const resultDir = "results"

// timestampLayout matches the YYYYMMDD_HHMMSS convention in the
// directory layout.
const timestampLayout = "20060102_150405"

// Save writes result under a name derived from its RulesetID and
// ExecutionTimestamp.
func (r *ResultRepo) Save(result *models.ReconciliationResult) error {
	if result.RulesetID == "" {
		return fmt.Errorf("result has no ruleset id")
	}
	return r.store.Save(resultDir, resultFileName(result.RulesetID, result.ExecutionTimestamp.Format(timestampLayout)), result)
}

// Load reads a previously saved result by its exact file name (as
// returned by List).
func (r *ResultRepo) Load(fileName string) (*models.ReconciliationResult, error) {
	var result models.ReconciliationResult
	if err := r.store.Load(resultDir, fileName, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// List returns every stored result's file name in lexical order: grouped
// by ruleset id, and oldest to newest within one ruleset.
func (r *ResultRepo) List() ([]string, error) {
	return r.store.List(resultDir)
}

func resultFileName(rulesetID, timestamp string) string {
	return fmt.Sprintf("reconciliation_result_%s_%s.json", rulesetID, timestamp)
}
