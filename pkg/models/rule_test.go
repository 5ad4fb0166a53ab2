package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconciliationRule_DedupKey(t *testing.T) {
	a := ReconciliationRule{
		SourceTable: "orders", SourceColumns: []string{"customer_id"},
		TargetTable: "customers", TargetColumns: []string{"cust_id"},
		MatchType: MatchTypeExact,
	}
	b := a
	b.Confidence = 0.95
	b.RuleID = "RULE_deadbeef"

	assert.Equal(t, a.DedupKey(), b.DedupKey())

	c := a
	c.MatchType = MatchTypeFuzzy
	assert.NotEqual(t, a.DedupKey(), c.DedupKey())
}
