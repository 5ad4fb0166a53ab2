package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/3FramesLab/recon-kg-engine/pkg/config"
)

func TestOpenConnection_UnsupportedDialect(t *testing.T) {
	_, err := openConnection(context.Background(), config.DBConfig{Type: "db2"})
	assert.Error(t, err)
}

func TestOpenConnection_PostgresDSNOpensAsyncPool(t *testing.T) {
	// pgxpool.New lazily validates the connection string and does not
	// dial until first use, so an unreachable host still returns a
	// non-nil pool here; only a malformed DSN fails synchronously.
	conn, err := openConnection(context.Background(), config.DBConfig{
		Type: config.DialectPostgreSQL, Host: "127.0.0.1", Port: 5432, Database: "recon",
	})
	assert.NoError(t, err)
	if conn != nil {
		_ = conn.Close()
	}
}

func TestOpenConnection_MySQLDSNFormat(t *testing.T) {
	conn, err := openConnection(context.Background(), config.DBConfig{
		Type: config.DialectMySQL, Host: "127.0.0.1", Port: 3306, Database: "recon", Username: "u", Password: "p",
	})
	assert.NoError(t, err)
	if conn != nil {
		_ = conn.Close()
	}
}
