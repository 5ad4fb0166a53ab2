package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

// defaultLimit bounds how many key values a single side query returns.
const defaultLimit = 5000

// invalidObjectMarkers are substrings seen across dialects when a
// schema-qualified table reference doesn't resolve; on a first-attempt
// failure matching one of these, Execute retries once unqualified.
var invalidObjectMarkers = []string{
	"invalid object name",  // sqlserver
	"doesn't exist",        // mysql
	"does not exist",       // postgres/oracle
	"unknown table",        // mysql
	"no such table",        // sqlite-style drivers some adapters reuse
	"ora-00942",            // oracle: table or view does not exist
}

// Executor runs rule-based and single-SQL queries against a pair of
// opaque connections, logging each qualified/unqualified attempt.
type Executor struct {
	logger *zap.Logger
}

// New creates an Executor. logger may be nil.
func New(logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{logger: logger.Named("executor")}
}

// Execute runs rule and computes matched, unmatched_source, and
// unmatched_target sets in a single pass: the key column's distinct
// values are pulled once from each side, then diffed in memory three
// ways at once. The two sides are queried independently — sourceConn
// and targetConn are never assumed to share a transaction or even a
// database engine, so a cross-connection JOIN is never attempted.
// Per-rule failure is reported through RuleErrors, not a Go error, so
// a caller running many rules can collect partial results.
func (e *Executor) Execute(ctx context.Context, rule *models.ReconciliationRule, sourceConn, targetConn Connection, limit int) (*models.ExecutionOutcome, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if len(rule.SourceColumns) == 0 || len(rule.TargetColumns) == 0 {
		return nil, fmt.Errorf("rule %s has no source/target columns to reconcile on", rule.RuleName)
	}

	start := timeNow()

	sourceKeys, sourceSQLUsed, err := e.queryKeysWithFallback(ctx, sourceConn, rule.SourceSchema, rule.SourceTable, rule.SourceColumns[0], limit)
	if err != nil {
		return &models.ExecutionOutcome{
			ExecutionTimeMs: timeNow() - start,
			RuleErrors:      []models.RuleError{{RuleID: rule.RuleID, Message: err.Error(), Kind: "source_query_failed"}},
		}, nil
	}

	targetKeys, targetSQLUsed, err := e.queryKeysWithFallback(ctx, targetConn, rule.TargetSchema, rule.TargetTable, rule.TargetColumns[0], limit)
	if err != nil {
		return &models.ExecutionOutcome{
			ExecutionTimeMs: timeNow() - start,
			RuleErrors:      []models.RuleError{{RuleID: rule.RuleID, Message: err.Error(), Kind: "target_query_failed"}},
		}, nil
	}

	matched, unmatchedSource, unmatchedTarget := diff(sourceKeys, targetKeys, rule.SourceColumns[0], rule.TargetColumns[0])

	return &models.ExecutionOutcome{
		MatchedCount:         len(matched),
		UnmatchedSourceCount: len(unmatchedSource),
		UnmatchedTargetCount: len(unmatchedTarget),
		MatchedRecords:       capRecords(matched, limit),
		UnmatchedSource:      capRecords(unmatchedSource, limit),
		UnmatchedTarget:      capRecords(unmatchedTarget, limit),
		ExecutionTimeMs:      timeNow() - start,
		GeneratedSQL: []models.GeneratedSQLEntry{
			{RuleID: rule.RuleID, RuleName: rule.RuleName, QueryType: "matched", SourceSQL: sourceSQLUsed, TargetSQL: targetSQLUsed},
			{RuleID: rule.RuleID, RuleName: rule.RuleName, QueryType: "unmatched_source", SourceSQL: sourceSQLUsed, TargetSQL: targetSQLUsed},
			{RuleID: rule.RuleID, RuleName: rule.RuleName, QueryType: "unmatched_target", SourceSQL: sourceSQLUsed, TargetSQL: targetSQLUsed},
		},
	}, nil
}

// ExecuteSQL runs a single, already-generated SQL statement (typically
// from pkg/sqlgen) against one connection — the natural-language query
// path, which never splits into matched/unmatched sets.
func (e *Executor) ExecuteSQL(ctx context.Context, conn Connection, sql string, limit int) (*models.ExecutionOutcome, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	start := timeNow()
	result, err := conn.Query(ctx, sql)
	elapsed := timeNow() - start
	if err != nil {
		e.logger.Warn("sql execution failed", zap.String("sql", sql), zap.Error(err))
		return &models.ExecutionOutcome{
			ExecutionTimeMs: elapsed,
			GeneratedSQL:    []models.GeneratedSQLEntry{{QueryType: "nl_query", SourceSQL: sql}},
			RuleErrors:      []models.RuleError{{Message: err.Error(), Kind: "query_failed"}},
		}, nil
	}

	rows := result.Rows
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return &models.ExecutionOutcome{
		MatchedCount:    len(rows),
		MatchedRecords:  rows,
		ExecutionTimeMs: elapsed,
		GeneratedSQL:    []models.GeneratedSQLEntry{{QueryType: "nl_query", SourceSQL: sql}},
	}, nil
}

// queryKeysWithFallback runs a schema-qualified key query, and on an
// "object not found" style error retries once with the bare table name
// (some connections are opened already scoped to one schema, making the
// qualified form invalid there).
func (e *Executor) queryKeysWithFallback(ctx context.Context, conn Connection, schema, table, column string, limit int) ([]string, string, error) {
	dialect := conn.Dialect()
	qualifiedSQL := keySelectSQL(dialect, schema, table, column, limit)
	result, err := conn.Query(ctx, qualifiedSQL)
	if err == nil {
		return extractKeys(result, column), qualifiedSQL, nil
	}

	e.logger.Warn("qualified key query failed", zap.String("sql", qualifiedSQL), zap.Error(err))
	if schema == "" || !isInvalidObjectError(err) {
		return nil, qualifiedSQL, fmt.Errorf("query %s.%s: %w", schema, table, err)
	}

	bareSQL := keySelectSQL(dialect, "", table, column, limit)
	result, err = conn.Query(ctx, bareSQL)
	if err != nil {
		e.logger.Warn("unqualified retry also failed", zap.String("sql", bareSQL), zap.Error(err))
		return nil, bareSQL, fmt.Errorf("query %s (and unqualified retry): %w", table, err)
	}
	return extractKeys(result, column), bareSQL, nil
}

func isInvalidObjectError(err error) bool {
	lower := strings.ToLower(err.Error())
	for _, marker := range invalidObjectMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// keySelectSQL builds a "SELECT DISTINCT <column> FROM <ref>" key query
// with dialect's own row-limiting syntax applied, mirroring pkg/sqlgen's
// assembleSelect: TOP (n) for sqlserver, a ROWNUM <= n predicate for
// oracle (this query never has a WHERE clause of its own, so it's
// always the first predicate), LIMIT n elsewhere.
func keySelectSQL(dialect, schema, table, column string, limit int) string {
	ref := table
	if schema != "" {
		ref = schema + "." + table
	}

	var b strings.Builder
	b.WriteString("SELECT DISTINCT ")
	if dialect == DialectSQLServer && limit > 0 {
		fmt.Fprintf(&b, "TOP (%d) ", limit)
	}
	fmt.Fprintf(&b, "%s FROM %s", column, ref)

	if limit > 0 {
		switch dialect {
		case DialectOracle:
			fmt.Fprintf(&b, " WHERE ROWNUM <= %d", limit)
		case DialectSQLServer:
			// already applied via TOP above
		default:
			fmt.Fprintf(&b, " LIMIT %d", limit)
		}
	}
	return b.String()
}

func extractKeys(result *QueryResult, column string) []string {
	keys := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		if v, ok := row[column]; ok && v != nil {
			keys = append(keys, fmt.Sprintf("%v", v))
		}
	}
	return keys
}

// diff computes matched, unmatched-in-source-only, and
// unmatched-in-target-only sets from a single pass over both key
// lists, so Execute never needs more than one query per side to
// produce all three query-mode results at once.
func diff(sourceKeys, targetKeys []string, sourceKeyColumn, targetKeyColumn string) (matched, unmatchedSource, unmatchedTarget []map[string]any) {
	targetSet := make(map[string]struct{}, len(targetKeys))
	for _, k := range targetKeys {
		targetSet[k] = struct{}{}
	}
	sourceSet := make(map[string]struct{}, len(sourceKeys))
	for _, k := range sourceKeys {
		sourceSet[k] = struct{}{}
	}

	for _, k := range sourceKeys {
		if _, inTarget := targetSet[k]; inTarget {
			matched = append(matched, map[string]any{sourceKeyColumn: k})
		} else {
			unmatchedSource = append(unmatchedSource, map[string]any{sourceKeyColumn: k})
		}
	}
	for _, k := range targetKeys {
		if _, inSource := sourceSet[k]; !inSource {
			unmatchedTarget = append(unmatchedTarget, map[string]any{targetKeyColumn: k})
		}
	}
	return matched, unmatchedSource, unmatchedTarget
}

func capRecords(records []map[string]any, limit int) []map[string]any {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}

// timeNow is a wall-clock Unix millisecond reading, isolated behind a var so
// tests can swap it for a deterministic value.
var timeNow = func() int64 {
	return time.Now().UnixMilli()
}
