// Package postgres adapts a pgxpool.Pool to the executor.Connection
// contract.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/3FramesLab/recon-kg-engine/pkg/executor"
)

// Connection wraps a pgxpool.Pool.
type Connection struct {
	pool      *pgxpool.Pool
	ownedPool bool
}

// New connects to connString and returns a ready Connection.
func New(ctx context.Context, connString string) (*Connection, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return &Connection{pool: pool, ownedPool: true}, nil
}

// Wrap adapts an already-open pool (e.g. shared across rules) without
// taking ownership of closing it.
func Wrap(pool *pgxpool.Pool) *Connection {
	return &Connection{pool: pool}
}

// Query runs sql and normalizes the result into executor.QueryResult.
func (c *Connection) Query(ctx context.Context, sql string) (*executor.QueryResult, error) {
	rows, err := c.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("postgres query: %w", err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}

	var out []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgres row values: %w", err)
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres row iteration: %w", err)
	}

	return &executor.QueryResult{Columns: columns, Rows: out}, nil
}

// Dialect reports this connection's dialect for dialect-aware SQL
// generation in pkg/executor.
func (c *Connection) Dialect() string { return executor.DialectPostgres }

// Close releases the pool if this Connection owns it.
func (c *Connection) Close() error {
	if c.ownedPool && c.pool != nil {
		c.pool.Close()
	}
	return nil
}
