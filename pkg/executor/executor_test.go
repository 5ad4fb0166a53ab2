package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

// fakeConn answers Query with a canned result per exact SQL string, or
// an error if the SQL isn't registered — letting tests assert exactly
// which SQL the executor issued, including the schema-prefix fallback.
type fakeConn struct {
	responses map[string]*QueryResult
	errors    map[string]error
	calls     []string
	dialect   string
}

func (f *fakeConn) Query(_ context.Context, sql string) (*QueryResult, error) {
	f.calls = append(f.calls, sql)
	if err, ok := f.errors[sql]; ok {
		return nil, err
	}
	if r, ok := f.responses[sql]; ok {
		return r, nil
	}
	return nil, errors.New("fakeConn: unregistered query: " + sql)
}

func (f *fakeConn) Dialect() string {
	if f.dialect == "" {
		return DialectPostgres
	}
	return f.dialect
}

func (f *fakeConn) Close() error { return nil }

func sampleRule() *models.ReconciliationRule {
	return &models.ReconciliationRule{
		RuleID:        "rule-1",
		RuleName:      "orders_to_shipments",
		SourceSchema:  "src",
		SourceTable:   "orders",
		SourceColumns: []string{"order_id"},
		TargetSchema:  "tgt",
		TargetTable:   "shipments",
		TargetColumns: []string{"order_id"},
		MatchType:     models.MatchTypeExact,
	}
}

func TestExecute_ComputesAllThreeSetsInOneCall(t *testing.T) {
	rule := sampleRule()
	sourceSQL := keySelectSQL(DialectPostgres, "src", "orders", "order_id", defaultLimit)
	targetSQL := keySelectSQL(DialectPostgres, "tgt", "shipments", "order_id", defaultLimit)

	sourceConn := &fakeConn{responses: map[string]*QueryResult{
		sourceSQL: {Columns: []string{"order_id"}, Rows: []map[string]any{{"order_id": "1"}, {"order_id": "2"}}},
	}}
	targetConn := &fakeConn{responses: map[string]*QueryResult{
		targetSQL: {Columns: []string{"order_id"}, Rows: []map[string]any{{"order_id": "2"}, {"order_id": "3"}}},
	}}

	e := New(nil)
	outcome, err := e.Execute(context.Background(), rule, sourceConn, targetConn, 0)

	require.NoError(t, err)
	require.Empty(t, outcome.RuleErrors)

	require.Len(t, outcome.MatchedRecords, 1)
	assert.Equal(t, "2", outcome.MatchedRecords[0]["order_id"])
	assert.Equal(t, 1, outcome.MatchedCount)

	require.Len(t, outcome.UnmatchedSource, 1)
	assert.Equal(t, "1", outcome.UnmatchedSource[0]["order_id"])
	assert.Equal(t, 1, outcome.UnmatchedSourceCount)

	require.Len(t, outcome.UnmatchedTarget, 1)
	assert.Equal(t, "3", outcome.UnmatchedTarget[0]["order_id"])
	assert.Equal(t, 1, outcome.UnmatchedTargetCount)

	assert.Len(t, outcome.GeneratedSQL, 3)
}

func TestExecute_SchemaPrefixFallbackRetriesUnqualified(t *testing.T) {
	rule := sampleRule()
	qualifiedSQL := keySelectSQL(DialectPostgres, "src", "orders", "order_id", defaultLimit)
	bareSQL := keySelectSQL(DialectPostgres, "", "orders", "order_id", defaultLimit)
	targetSQL := keySelectSQL(DialectPostgres, "tgt", "shipments", "order_id", defaultLimit)

	sourceConn := &fakeConn{
		errors:    map[string]error{qualifiedSQL: errors.New("ERROR: relation \"src.orders\" does not exist")},
		responses: map[string]*QueryResult{bareSQL: {Rows: []map[string]any{{"order_id": "1"}}}},
	}
	targetConn := &fakeConn{responses: map[string]*QueryResult{
		targetSQL: {Rows: []map[string]any{}},
	}}

	e := New(nil)
	outcome, err := e.Execute(context.Background(), rule, sourceConn, targetConn, 0)

	require.NoError(t, err)
	require.Empty(t, outcome.RuleErrors)
	require.Len(t, outcome.UnmatchedSource, 1)
	assert.Equal(t, []string{qualifiedSQL, bareSQL}, sourceConn.calls)
}

func TestExecute_NonInvalidObjectErrorDoesNotRetryAndReportsRuleError(t *testing.T) {
	rule := sampleRule()
	qualifiedSQL := keySelectSQL(DialectPostgres, "src", "orders", "order_id", defaultLimit)
	targetSQL := keySelectSQL(DialectPostgres, "tgt", "shipments", "order_id", defaultLimit)

	sourceConn := &fakeConn{errors: map[string]error{qualifiedSQL: errors.New("connection refused")}}
	targetConn := &fakeConn{responses: map[string]*QueryResult{targetSQL: {Rows: []map[string]any{}}}}

	e := New(nil)
	outcome, err := e.Execute(context.Background(), rule, sourceConn, targetConn, 0)

	require.NoError(t, err)
	require.Len(t, outcome.RuleErrors, 1)
	assert.Equal(t, "source_query_failed", outcome.RuleErrors[0].Kind)
	assert.Len(t, sourceConn.calls, 1)
	assert.Empty(t, targetConn.calls)
}

func TestExecute_TargetQueryFailureReportsRuleError(t *testing.T) {
	rule := sampleRule()
	sourceSQL := keySelectSQL(DialectPostgres, "src", "orders", "order_id", defaultLimit)
	targetSQL := keySelectSQL(DialectPostgres, "tgt", "shipments", "order_id", defaultLimit)

	sourceConn := &fakeConn{responses: map[string]*QueryResult{sourceSQL: {Rows: []map[string]any{{"order_id": "1"}}}}}
	targetConn := &fakeConn{errors: map[string]error{targetSQL: errors.New("connection refused")}}

	e := New(nil)
	outcome, err := e.Execute(context.Background(), rule, sourceConn, targetConn, 0)

	require.NoError(t, err)
	require.Len(t, outcome.RuleErrors, 1)
	assert.Equal(t, "target_query_failed", outcome.RuleErrors[0].Kind)
}

func TestExecute_NoColumnsErrors(t *testing.T) {
	rule := sampleRule()
	rule.SourceColumns = nil

	e := New(nil)
	_, err := e.Execute(context.Background(), rule, &fakeConn{}, &fakeConn{}, 0)
	assert.Error(t, err)
}

func TestExecuteSQL_SuccessAppliesLimit(t *testing.T) {
	conn := &fakeConn{responses: map[string]*QueryResult{
		"SELECT 1": {Rows: []map[string]any{{"a": 1}, {"a": 2}, {"a": 3}}},
	}}

	e := New(nil)
	outcome, err := e.ExecuteSQL(context.Background(), conn, "SELECT 1", 2)

	require.NoError(t, err)
	assert.Equal(t, 2, outcome.MatchedCount)
	assert.Len(t, outcome.MatchedRecords, 2)
}

func TestKeySelectSQL_DialectRowLimiting(t *testing.T) {
	sql := keySelectSQL(DialectSQLServer, "src", "orders", "order_id", 50)
	assert.Equal(t, "SELECT DISTINCT TOP (50) order_id FROM src.orders", sql)
	assert.NotContains(t, sql, "LIMIT")

	sql = keySelectSQL(DialectOracle, "src", "orders", "order_id", 50)
	assert.Equal(t, "SELECT DISTINCT order_id FROM src.orders WHERE ROWNUM <= 50", sql)

	sql = keySelectSQL(DialectMySQL, "src", "orders", "order_id", 50)
	assert.Equal(t, "SELECT DISTINCT order_id FROM src.orders LIMIT 50", sql)

	sql = keySelectSQL(DialectPostgres, "src", "orders", "order_id", 50)
	assert.Equal(t, "SELECT DISTINCT order_id FROM src.orders LIMIT 50", sql)
}

func TestExecute_SQLServerAndOracleUseDialectSpecificKeySelect(t *testing.T) {
	rule := sampleRule()
	sourceSQL := keySelectSQL(DialectSQLServer, "src", "orders", "order_id", defaultLimit)
	targetSQL := keySelectSQL(DialectOracle, "tgt", "shipments", "order_id", defaultLimit)

	sourceConn := &fakeConn{dialect: DialectSQLServer, responses: map[string]*QueryResult{
		sourceSQL: {Rows: []map[string]any{{"order_id": "1"}}},
	}}
	targetConn := &fakeConn{dialect: DialectOracle, responses: map[string]*QueryResult{
		targetSQL: {Rows: []map[string]any{{"order_id": "1"}}},
	}}

	e := New(nil)
	outcome, err := e.Execute(context.Background(), rule, sourceConn, targetConn, 0)

	require.NoError(t, err)
	require.Empty(t, outcome.RuleErrors)
	assert.Equal(t, []string{sourceSQL}, sourceConn.calls)
	assert.Equal(t, []string{targetSQL}, targetConn.calls)
}

func TestExecuteSQL_Failure(t *testing.T) {
	conn := &fakeConn{errors: map[string]error{"SELECT 1": errors.New("syntax error")}}

	e := New(nil)
	outcome, err := e.ExecuteSQL(context.Background(), conn, "SELECT 1", 10)

	require.NoError(t, err)
	require.Len(t, outcome.RuleErrors, 1)
	assert.Equal(t, "query_failed", outcome.RuleErrors[0].Kind)
}
