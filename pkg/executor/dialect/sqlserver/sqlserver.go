// Package sqlserver adapts a database/sql.DB backed by go-mssqldb to
// the executor.Connection contract.
package sqlserver

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/3FramesLab/recon-kg-engine/pkg/executor"
)

// Connection wraps a *sql.DB opened with the sqlserver driver.
type Connection struct {
	db *sql.DB
}

// New opens a connection using connString (an ADO-style SQL Server DSN).
func New(connString string) (*Connection, error) {
	db, err := sql.Open("sqlserver", connString)
	if err != nil {
		return nil, fmt.Errorf("open sqlserver: %w", err)
	}
	return &Connection{db: db}, nil
}

// Wrap adapts an already-open *sql.DB without taking ownership of it.
func Wrap(db *sql.DB) *Connection {
	return &Connection{db: db}
}

// Query runs sql and normalizes the result, converting []byte text
// columns to string the way SQL Server's driver returns CHAR/VARCHAR
// data.
func (c *Connection) Query(ctx context.Context, query string) (*executor.QueryResult, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlserver query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlserver columns: %w", err)
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("sqlserver scan: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			row[col] = val
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlserver row iteration: %w", err)
	}

	return &executor.QueryResult{Columns: columns, Rows: out}, nil
}

// Dialect reports this connection's dialect for dialect-aware SQL
// generation in pkg/executor.
func (c *Connection) Dialect() string { return executor.DialectSQLServer }

// Close releases the underlying *sql.DB.
func (c *Connection) Close() error {
	return c.db.Close()
}
