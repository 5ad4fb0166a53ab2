package storage

import (
	"fmt"

	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

// RulesetRepo persists generated rulesets at
// data/reconciliation_rules/<ruleset_id>.json.
type RulesetRepo struct {
	store *Store
}

// NewRulesetRepo wraps store for ruleset persistence.
func NewRulesetRepo(store *Store) *RulesetRepo {
	return &RulesetRepo{store: store}
}

const rulesetDir = "data/reconciliation_rules"

// Save writes rs under its RulesetID.
func (r *RulesetRepo) Save(rs *models.Ruleset) error {
	if rs.RulesetID == "" {
		return fmt.Errorf("ruleset has no id")
	}
	return r.store.Save(rulesetDir, rs.RulesetID+".json", rs)
}

// Load reads the ruleset with the given id, returning
// apperrors.ErrNotFound if absent.
func (r *RulesetRepo) Load(rulesetID string) (*models.Ruleset, error) {
	var rs models.Ruleset
	if err := r.store.Load(rulesetDir, rulesetID+".json", &rs); err != nil {
		return nil, err
	}
	return &rs, nil
}

// List returns every stored ruleset's id.
func (r *RulesetRepo) List() ([]string, error) {
	names, err := r.store.List(rulesetDir)
	if err != nil {
		return nil, err
	}
	return trimJSONSuffixes(names), nil
}
