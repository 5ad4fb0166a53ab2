// Package executor runs reconciliation rules and natural-language SQL
// against opaque source/target connections, computing matched and
// unmatched record sets without ever assuming the two connections
// share a database or transaction.
package executor

import "context"

// Dialect names a Connection's database engine, used to pick the
// row-limiting syntax keySelectSQL emits. Values mirror pkg/sqlgen's
// dialect strings so a rule's GeneratedSQL reads consistently whether
// it came from the key-select path or the NL query path.
const (
	DialectPostgres  = "postgresql"
	DialectMySQL     = "mysql"
	DialectSQLServer = "sqlserver"
	DialectOracle    = "oracle"
)

// QueryResult is the generic shape every dialect adapter normalizes its
// driver-specific rows into.
type QueryResult struct {
	Columns []string
	Rows    []map[string]any
}

// Connection is the contract an executor needs from a data source: run
// one query, return normalized rows, report which dialect to speak SQL
// in, and release resources on Close. Each dialect package under
// pkg/executor/dialect implements this over its own driver.
type Connection interface {
	Query(ctx context.Context, sql string) (*QueryResult, error)
	Dialect() string
	Close() error
}
