package models

import "time"

// GeneratedSQLEntry records one rule's attempted SQL for the persisted
// result file.
type GeneratedSQLEntry struct {
	RuleID      string `json:"rule_id"`
	RuleName    string `json:"rule_name"`
	QueryType   string `json:"query_type"` // matched | unmatched_source | unmatched_target
	SourceSQL   string `json:"source_sql"`
	TargetSQL   string `json:"target_sql,omitempty"`
	Description string `json:"description,omitempty"`
}

// RuleError attaches a per-rule failure to a batch result without
// failing the request — partial failure is the norm here.
type RuleError struct {
	RuleID  string `json:"rule_id"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

// ExecutionOutcome is the output of running one or more rules.
type ExecutionOutcome struct {
	MatchedCount         int                 `json:"matched_count"`
	UnmatchedSourceCount int                 `json:"unmatched_source_count"`
	UnmatchedTargetCount int                 `json:"unmatched_target_count"`
	MatchedRecords       []map[string]any    `json:"matched_records,omitempty"`
	UnmatchedSource      []map[string]any    `json:"unmatched_source,omitempty"`
	UnmatchedTarget      []map[string]any    `json:"unmatched_target,omitempty"`
	ExecutionTimeMs      int64               `json:"execution_time_ms"`
	GeneratedSQL         []GeneratedSQLEntry `json:"generated_sql"`
	RuleErrors           []RuleError         `json:"rule_errors,omitempty"`
}

// ReconciliationResult is the top-level persisted artifact written after
// a ruleset is executed.
type ReconciliationResult struct {
	RulesetID            string              `json:"ruleset_id"`
	ExecutionID          string              `json:"execution_id"`
	ExecutionTimestamp   time.Time           `json:"execution_timestamp"`
	MatchedCount         int                 `json:"matched_count"`
	UnmatchedSourceCount int                 `json:"unmatched_source_count"`
	UnmatchedTargetCount int                 `json:"unmatched_target_count"`
	ExecutionTimeMs      int64               `json:"execution_time_ms"`
	GeneratedSQL         []GeneratedSQLEntry `json:"generated_sql"`
	RuleErrors           []RuleError         `json:"rule_errors"`
}

// KPI statuses.
const (
	RCRStatusHealthy  = "HEALTHY"
	RCRStatusWarning  = "WARNING"
	RCRStatusCritical = "CRITICAL"

	DQCSStatusGood       = "GOOD"
	DQCSStatusAcceptable = "ACCEPTABLE"
	DQCSStatusPoor       = "POOR"
)

// KPILineage carries the identifiers every KPI document shares.
type KPILineage struct {
	RulesetID   string    `json:"ruleset_id"`
	ExecutionID string    `json:"execution_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// RCR is the Reconciliation Coverage Rate document.
type RCR struct {
	KPILineage
	CoverageRate     float64 `json:"coverage_rate"`
	MatchedCount     int     `json:"matched_count"`
	TotalSourceCount int     `json:"total_source_count"`
	Status           string  `json:"status"`
}

// DQCS is the Data Quality Confidence Score document.
type DQCS struct {
	KPILineage
	OverallConfidenceScore float64 `json:"overall_confidence_score"`
	HighCount              int     `json:"high_count"`
	MediumCount            int     `json:"medium_count"`
	LowCount               int     `json:"low_count"`
	Status                 string  `json:"status"`
}

// REI is the Reconciliation Efficiency Index document.
type REI struct {
	KPILineage
	EfficiencyIndex  float64 `json:"efficiency_index"`
	MatchSuccessRate float64 `json:"match_success_rate"`
	RuleUtilization  float64 `json:"rule_utilization"`
	SpeedFactor      float64 `json:"speed_factor"`
}
