package models

import (
	"strings"
	"time"
)

// Match types a ReconciliationRule can declare.
const (
	MatchTypeExact          = "exact"
	MatchTypeFuzzy          = "fuzzy"
	MatchTypeSemantic       = "semantic"
	MatchTypePattern        = "pattern"
	MatchTypeComposite      = "composite"
	MatchTypeTransformation = "transformation"
)

// Validation statuses a rule can carry.
const (
	ValidationValid     = "VALID"
	ValidationLikely    = "LIKELY"
	ValidationUncertain = "UNCERTAIN"
)

// ReconciliationRule pairs source and target columns across two tables
// with a match type, confidence, and provenance.
type ReconciliationRule struct {
	RuleID           string    `json:"rule_id"`
	RuleName         string    `json:"rule_name"`
	SourceSchema     string    `json:"source_schema"`
	SourceTable      string    `json:"source_table"`
	SourceColumns    []string  `json:"source_columns"`
	TargetSchema     string    `json:"target_schema"`
	TargetTable      string    `json:"target_table"`
	TargetColumns    []string  `json:"target_columns"`
	MatchType        string    `json:"match_type"`
	Confidence       float64   `json:"confidence"`
	Reasoning        string    `json:"reasoning,omitempty"`
	ValidationStatus string    `json:"validation_status"`
	LLMGenerated     bool      `json:"llm_generated"`
	CreatedAt        time.Time `json:"created_at"`
}

// DedupKey identifies rules that describe the same column mapping;
// identically-keyed rules are merged, keeping the highest confidence.
func (r ReconciliationRule) DedupKey() string {
	return strings.Join([]string{
		r.SourceTable, strings.Join(r.SourceColumns, ","),
		r.TargetTable, strings.Join(r.TargetColumns, ","),
		r.MatchType,
	}, "|")
}

// Ruleset bundles generated rules under a single stable id.
type Ruleset struct {
	RulesetID string                `json:"ruleset_id"`
	Name      string                `json:"name"`
	KGName    string                `json:"kg_name"`
	Schemas   []string              `json:"schemas"`
	Rules     []*ReconciliationRule `json:"rules"`
	CreatedAt time.Time             `json:"created_at"`
}

// FieldPreference is the typed per-table field preference read at the
// pipeline boundary; all internal code operates on this typed form
// rather than an untyped map, once the request has been parsed.
type FieldPreference struct {
	PriorityFields []string          `json:"priority_fields,omitempty"`
	ExcludeFields  []string          `json:"exclude_fields,omitempty"`
	FieldHints     map[string]string `json:"field_hints,omitempty"` // src_col -> tgt_col
}
