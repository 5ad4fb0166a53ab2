package models

// Query types the natural-language classifier can assign.
const (
	QueryTypeComparison   = "comparison_query"
	QueryTypeFilter       = "filter_query"
	QueryTypeAggregation  = "aggregation_query"
	QueryTypeData         = "data_query"
	QueryTypeRelationship = "relationship"
)

// Operations extracted alongside a query type.
const (
	OpIn        = "IN"
	OpNotIn     = "NOT_IN"
	OpEquals    = "EQUALS"
	OpContains  = "CONTAINS"
	OpCount     = "COUNT"
	OpSum       = "SUM"
	OpAvg       = "AVG"
	OpAggregate = "AGGREGATE"
)

// JoinColumnPair is one (source_column, target_column) pair used to join
// two tables.
type JoinColumnPair struct {
	SourceColumn string `json:"source_column"`
	TargetColumn string `json:"target_column"`
}

// Filter is a single predicate extracted from NL text.
type Filter struct {
	Column     string `json:"column"`
	Value      string `json:"value"`
	TableHint  string `json:"table_hint,omitempty"`
	Comparator string `json:"comparator,omitempty"` // defaults to "=" when empty
}

// AdditionalColumn is a projected column from a table reached via a
// precomputed join path, aliased "table_column" style by the generator.
type AdditionalColumn struct {
	Table      string   `json:"table"`
	ColumnName string   `json:"column_name"`
	Alias      string   `json:"alias,omitempty"`
	JoinPath   []string `json:"join_path,omitempty"`
}

// QueryIntent is the immutable value the natural-language parser produces
// and the SQL generator consumes as a pure function of (intent, dialect).
type QueryIntent struct {
	QueryType         string             `json:"query_type"`
	Operation         string             `json:"operation,omitempty"`
	SourceTable       string             `json:"source_table"`
	TargetTable       string             `json:"target_table,omitempty"`
	JoinColumns       []JoinColumnPair   `json:"join_columns,omitempty"`
	Filters           []Filter           `json:"filters,omitempty"`
	AdditionalColumns []AdditionalColumn `json:"additional_columns,omitempty"`
	Confidence        float64            `json:"confidence"`
	OriginalText      string             `json:"original_text"`
	Limit             int                `json:"limit,omitempty"`
}

// QueryResult is the outcome of running a QueryIntent's generated SQL.
type QueryResult struct {
	Definition      string           `json:"definition"`
	QueryType       string           `json:"query_type"`
	Operation       string           `json:"operation,omitempty"`
	SQL             string           `json:"sql"`
	RecordCount     int              `json:"record_count"`
	Records         []map[string]any `json:"records,omitempty"`
	JoinColumns     []JoinColumnPair `json:"join_columns,omitempty"`
	Filters         []Filter         `json:"filters,omitempty"`
	SourceTable     string           `json:"source_table"`
	TargetTable     string           `json:"target_table,omitempty"`
	Confidence      float64          `json:"confidence"`
	ExecutionTimeMs int64            `json:"execution_time_ms"`
	Error           string           `json:"error,omitempty"`
}
